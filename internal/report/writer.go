package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/ALEYI17/InfraSight_traffic/internal/extra"
)

func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText prints a human readable overview of r; the series themselves
// are left to the JSON output.
func WriteText(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintf(tw, "iterations: %d\tstep: %gs\ttrim: %s\n\n", r.Iterations, r.Step, r.Trim)

	fmt.Fprintln(tw, "PARTICIPANT\tNAME\tPOINTS\tDURATION\tBYTES\tMEAN B/s\tP50 B/s\tP99 B/s\tMAX B/s")
	for i, p := range r.Participants {
		var points int
		var duration, total float64
		if i < len(r.DataAmount) {
			s := r.DataAmount[i]
			points, duration = len(s.Values), s.Duration()
			if points > 0 {
				total = s.Values[points-1]
			}
		}
		var mean float64
		var p50, p99, peak int64
		if i < len(r.SpeedSummary) {
			sum := r.SpeedSummary[i]
			mean, p50, p99, peak = sum.Mean, sum.P50, sum.P99, sum.Max
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.2fs\t%.0f\t%.0f\t%d\t%d\t%d\n",
			p.ID, p.Name, points, duration, total, mean, p50, p99, peak)
	}

	for _, s := range r.Skipped {
		fmt.Fprintf(tw, "skipped: %s\n", s)
	}

	if r.Power != nil {
		fmt.Fprintf(tw, "\npower iterations: %d\n", r.Power.Iterations)
		fmt.Fprintln(tw, "EXE\tCONTAINER\tSAMPLES\tMEAN uW\tP50 uW\tP95 uW\tMAX uW")
		for _, c := range r.Power.Consumers {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%.0f\t%.0f\t%.0f\t%.0f\n",
				c.Exe, c.Container, c.Samples, c.Mean, c.P50, c.P95, c.Max)
		}
	}

	names := make([]string, 0, len(r.Extra))
	for name := range r.Extra {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(tw, "\n%s (%s)\n", name, r.Extra[name].Protocol())
		switch e := r.Extra[name].(type) {
		case *extra.MeteorSummary:
			for _, pt := range e.PartyTraffic {
				fmt.Fprintf(tw, "%s\tsent %.2fMB\trecv %.2fMB\n", pt.Party, pt.SentMB, pt.RecvMB)
			}
		case *extra.CryptenSummary:
			if n := len(e.Epochs); n > 0 {
				last := e.Epochs[n-1]
				fmt.Fprintf(tw, "epoch %d batch %d\tloss %.4f\tprec@1 %.3f\tprec@5 %.3f\n",
					last.Epoch, last.Batch, last.AvgLoss, last.AvgPrec1, last.AvgPrec5)
			}
			if n := len(e.Tests); n > 0 {
				last := e.Tests[n-1]
				fmt.Fprintf(tw, "test batch %d\tloss %.4f\tprec@1 %.3f\tprec@5 %.3f\n",
					last.Batch, last.AvgLoss, last.AvgPrec1, last.AvgPrec5)
			}
		}
	}
	return tw.Flush()
}

// WriteFunc renders a report, either WriteJSON or WriteText.
type WriteFunc func(io.Writer, *Report) error

// Save writes r to path with write. The file is closed before returning so a
// failed flush surfaces as an error.
func Save(path string, r *Report, write WriteFunc) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return writeAndClose(f, r, write)
}

func writeAndClose(wc io.WriteCloser, r *Report, write WriteFunc) error {
	if err := write(wc, r); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}
