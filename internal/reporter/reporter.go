package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/uvafan/toy-takeoff-modeling/internal/montecarlo"
	"github.com/uvafan/toy-takeoff-modeling/internal/plan"
	"github.com/uvafan/toy-takeoff-modeling/internal/ui"
)

// Reporter renders a Result Set for people and for machines.
type Reporter struct {
	Results *montecarlo.ResultSet
}

// New creates a new Reporter.
func New(rs *montecarlo.ResultSet) *Reporter {
	return &Reporter{Results: rs}
}

// PrintReport writes one block per start/end pair: trial count, elapsed
// time and the summary statistics in years.
func (r *Reporter) PrintReport(w io.Writer) {
	rs := r.Results
	fmt.Fprintf(w, "%s %s\n", ui.BoldCyan("Takeoff simulation"), ui.Dim("run "+rs.RunID))
	fmt.Fprintf(w, "%s\n", ui.Cyan("══════════════════════════"))
	fmt.Fprintf(w, "Trials:    %d\n", rs.Trials)
	fmt.Fprintf(w, "Seed:      %d\n", rs.Seed)
	fmt.Fprintf(w, "Elapsed:   %s\n\n", ui.Bold(rs.Elapsed.Round(time.Millisecond)))

	for _, p := range rs.Pairs {
		r.printPair(w, p)
	}
}

func (r *Reporter) printPair(w io.Writer, p montecarlo.PairResult) {
	status := p.Status()
	fmt.Fprintf(w, "  %s %s  %s\n",
		ui.StatusIcon(string(status)),
		ui.BoldMagenta(p.Pair.Name),
		ui.Dim(fmt.Sprintf("(%s → %s)", p.Pair.Start, p.Pair.End)))

	if status == montecarlo.StatusNoSamples {
		fmt.Fprintf(w, "      %s: %s in all %d trials\n\n",
			ui.BoldRed("no samples"), "start or end never occurred", p.Excluded)
		return
	}

	s := p.Summary
	fmt.Fprintf(w, "      Trials used:      %d", s.Count)
	if p.Excluded > 0 || p.Clamped > 0 {
		fmt.Fprintf(w, " %s", ui.Dim(fmt.Sprintf("(%d excluded, %d clamped)", p.Excluded, p.Clamped)))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "      Mean:             %s\n", years(s.Mean))
	fmt.Fprintf(w, "      Median:           %s\n", years(s.Median))
	fmt.Fprintf(w, "      10th percentile:  %s\n", years(s.P10))
	fmt.Fprintf(w, "      90th percentile:  %s\n\n", years(s.P90))
}

// PrintMilestones writes the per-milestone occurrence table.
func (r *Reporter) PrintMilestones(w io.Writer) {
	fmt.Fprintf(w, "%s\n", ui.BoldWhite("Milestones"))
	for _, m := range r.Results.Milestones {
		occurs := 1 - m.NeverFraction()
		line := fmt.Sprintf("    %-28s occurs %s", m.Name, ui.Fraction(occurs))
		if m.Summary != nil {
			line += fmt.Sprintf("  median %s  [p10 %s, p90 %s]",
				years(m.Summary.Median), years(m.Summary.P10), years(m.Summary.P90))
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}

// PrintPlan writes the expected-value plan grouped by dependency level.
func PrintPlan(w io.Writer, p *plan.Plan) {
	fmt.Fprintf(w, "%s\n", ui.BoldCyan("Expected-value plan"))
	fmt.Fprintf(w, "Horizon:   %s\n", ui.Bold(years(p.Horizon)))
	if len(p.CriticalChain) > 0 {
		fmt.Fprintf(w, "Critical:  %s\n", ui.BoldYellow("⚡ "+strings.Join(p.CriticalChain, " → ")))
	}
	fmt.Fprintln(w)

	for _, lv := range p.Levels {
		fmt.Fprintf(w, "  %s %d\n", ui.BoldWhite("LEVEL"), lv.Index+1)
		for _, name := range lv.Milestones {
			est := p.Estimate(name)
			critical := " "
			if est.IsCritical {
				critical = ui.StatusIcon("critical")
			}
			ref := "origin"
			if est.Reference != "" {
				ref = est.Reference
			}
			fmt.Fprintf(w, "    %s %-28s at %s %s  occurs %s\n",
				critical, ui.BoldMagenta(name), years(est.Expected),
				ui.Dim(fmt.Sprintf("(%s + %.2f)", ref, est.Delta)),
				ui.Fraction(est.Occurrence))
		}
		fmt.Fprintln(w)
	}
}

func years(v float64) string {
	return fmt.Sprintf("%.2f years", v)
}

// JSON returns the machine-readable Result Set.
func (r *Reporter) JSON() ([]byte, error) {
	type pairOutput struct {
		Name     string              `json:"name"`
		Start    string              `json:"start"`
		End      string              `json:"end"`
		Status   montecarlo.Status   `json:"status"`
		Excluded int                 `json:"excluded"`
		Clamped  int                 `json:"clamped"`
		Summary  *montecarlo.Summary `json:"summary"`
	}

	type milestoneOutput struct {
		Name          string              `json:"name"`
		Occurred      int                 `json:"occurred"`
		Never         int                 `json:"never"`
		NeverFraction float64             `json:"never_fraction"`
		Summary       *montecarlo.Summary `json:"summary"`
	}

	type output struct {
		RunID      string            `json:"run_id"`
		Seed       uint64            `json:"seed"`
		Trials     int               `json:"trials"`
		Workers    int               `json:"workers"`
		StartedAt  time.Time         `json:"started_at"`
		Elapsed    string            `json:"elapsed"`
		Pairs      []pairOutput      `json:"pairs"`
		Milestones []milestoneOutput `json:"milestones"`
	}

	rs := r.Results
	o := output{
		RunID:     rs.RunID,
		Seed:      rs.Seed,
		Trials:    rs.Trials,
		Workers:   rs.Workers,
		StartedAt: rs.StartedAt,
		Elapsed:   rs.Elapsed.String(),
	}
	for _, p := range rs.Pairs {
		o.Pairs = append(o.Pairs, pairOutput{
			Name:     p.Pair.Name,
			Start:    p.Pair.Start,
			End:      p.Pair.End,
			Status:   p.Status(),
			Excluded: p.Excluded,
			Clamped:  p.Clamped,
			Summary:  p.Summary,
		})
	}
	for _, m := range rs.Milestones {
		o.Milestones = append(o.Milestones, milestoneOutput{
			Name:          m.Name,
			Occurred:      m.Occurred,
			Never:         m.Never,
			NeverFraction: m.NeverFraction(),
			Summary:       m.Summary,
		})
	}

	return json.MarshalIndent(o, "", "  ")
}
