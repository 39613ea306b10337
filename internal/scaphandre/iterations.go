package scaphandre

import "strings"

// SplitIterations groups reports by measurement iteration. An iteration
// starts at the first report listing a consumer whose executable contains
// sentinel under a pid not seen before. Reports preceding the first such
// consumer are dropped.
func SplitIterations(reports []Report, sentinel string) [][]Report {
	seen := make(map[int]bool)
	var out [][]Report

	for _, rep := range reports {
		boundary := false
		for _, c := range rep.Consumers {
			if !strings.Contains(c.Exe, sentinel) || seen[c.Pid] {
				continue
			}
			seen[c.Pid] = true
			boundary = true
		}
		if boundary {
			out = append(out, nil)
		}
		if len(out) == 0 {
			continue
		}
		out[len(out)-1] = append(out[len(out)-1], rep)
	}
	return out
}
