// Package extra parses protocol specific summaries that some workloads
// print next to the network captures.
package extra

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
)

var (
	wallClockRe = regexp.MustCompile(`Wall Clock time for .*?: ([\d.]+) sec`)
	cpuTimeRe   = regexp.MustCompile(`CPU time for .*?: ([\d.]+) sec`)
	totalCommRe = regexp.MustCompile(`Total communication: ([\d.]+)MB \(sent\) and ([\d.]+)MB \(recv\)`)
	totalCallRe = regexp.MustCompile(`Total calls: (\d+) \(sends\) and (\d+) \(recvs\)`)
	partyCommRe = regexp.MustCompile(`Communication, .*?, (P\d+): ([\d.]+)MB \(sent\) ([\d.]+)MB \(recv\)`)
	partyRndsRe = regexp.MustCompile(`Rounds, .*?, (P\d+): (\d+)\(sends\) (\d+)\(recvs\)`)
)

type Traffic struct {
	SentMB float64 `json:"sent_mb"`
	RecvMB float64 `json:"recv_mb"`
}

type Calls struct {
	Sends int64 `json:"sends"`
	Recvs int64 `json:"recvs"`
}

type PartyTraffic struct {
	Party string `json:"party"`
	Traffic
}

type PartyRounds struct {
	Party string `json:"party"`
	Calls
}

// MeteorSummary is everything a Meteor party log reports about itself.
type MeteorSummary struct {
	WallClock    []float64      `json:"wall_clock_s,omitempty"`
	CPUTime      []float64      `json:"cpu_time_s,omitempty"`
	Total        []Traffic      `json:"total_communication,omitempty"`
	TotalCalls   []Calls        `json:"total_calls,omitempty"`
	PartyTraffic []PartyTraffic `json:"party_communication,omitempty"`
	PartyRounds  []PartyRounds  `json:"party_rounds,omitempty"`
}

func (*MeteorSummary) Protocol() string { return ProtocolMeteor }

func ParseMeteor(r io.Reader) (*MeteorSummary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	content := string(data)
	s := &MeteorSummary{}

	for _, m := range wallClockRe.FindAllStringSubmatch(content, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, fmt.Errorf("wall clock %q: %w", m[1], err)
		}
		s.WallClock = append(s.WallClock, v)
	}
	for _, m := range cpuTimeRe.FindAllStringSubmatch(content, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, fmt.Errorf("cpu time %q: %w", m[1], err)
		}
		s.CPUTime = append(s.CPUTime, v)
	}
	for _, m := range totalCommRe.FindAllStringSubmatch(content, -1) {
		t, err := parseTraffic(m[1], m[2])
		if err != nil {
			return nil, err
		}
		s.Total = append(s.Total, t)
	}
	for _, m := range totalCallRe.FindAllStringSubmatch(content, -1) {
		c, err := parseCalls(m[1], m[2])
		if err != nil {
			return nil, err
		}
		s.TotalCalls = append(s.TotalCalls, c)
	}
	for _, m := range partyCommRe.FindAllStringSubmatch(content, -1) {
		t, err := parseTraffic(m[2], m[3])
		if err != nil {
			return nil, err
		}
		s.PartyTraffic = append(s.PartyTraffic, PartyTraffic{Party: m[1], Traffic: t})
	}
	for _, m := range partyRndsRe.FindAllStringSubmatch(content, -1) {
		c, err := parseCalls(m[2], m[3])
		if err != nil {
			return nil, err
		}
		s.PartyRounds = append(s.PartyRounds, PartyRounds{Party: m[1], Calls: c})
	}
	return s, nil
}

func parseTraffic(sent, recv string) (Traffic, error) {
	s, err := strconv.ParseFloat(sent, 64)
	if err != nil {
		return Traffic{}, fmt.Errorf("sent %q: %w", sent, err)
	}
	r, err := strconv.ParseFloat(recv, 64)
	if err != nil {
		return Traffic{}, fmt.Errorf("recv %q: %w", recv, err)
	}
	return Traffic{SentMB: s, RecvMB: r}, nil
}

func parseCalls(sends, recvs string) (Calls, error) {
	s, err := strconv.ParseInt(sends, 10, 64)
	if err != nil {
		return Calls{}, fmt.Errorf("sends %q: %w", sends, err)
	}
	r, err := strconv.ParseInt(recvs, 10, 64)
	if err != nil {
		return Calls{}, fmt.Errorf("recvs %q: %w", recvs, err)
	}
	return Calls{Sends: s, Recvs: r}, nil
}
