package reporter

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/tidwall/gjson"

	"github.com/uvafan/toy-takeoff-modeling/internal/config"
	"github.com/uvafan/toy-takeoff-modeling/internal/montecarlo"
	"github.com/uvafan/toy-takeoff-modeling/internal/plan"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func makeResults() *montecarlo.ResultSet {
	return &montecarlo.ResultSet{
		RunID:     "test-run",
		Seed:      42,
		Trials:    100,
		Workers:   2,
		StartedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Elapsed:   1500 * time.Millisecond,
		Pairs: []montecarlo.PairResult{
			{
				Pair:     config.Pair{Name: "from_now", Start: "now", End: "doom"},
				Excluded: 10,
				Clamped:  3,
				Summary: &montecarlo.Summary{
					Count: 90, Mean: 12.5, Median: 11.25, P10: 4.5, P90: 22,
				},
			},
			{
				Pair:     config.Pair{Name: "from_never", Start: "now", End: "gone"},
				Excluded: 100,
			},
		},
		Milestones: []montecarlo.MilestoneResult{
			{Name: "now", Occurred: 100, Summary: &montecarlo.Summary{Count: 100}},
			{Name: "gone", Never: 100},
		},
	}
}

func TestPrintReport(t *testing.T) {
	rpt := New(makeResults())

	var buf bytes.Buffer
	rpt.PrintReport(&buf)
	output := buf.String()

	for _, want := range []string{
		"Trials:    100",
		"from_now",
		"Mean:             12.50 years",
		"Median:           11.25 years",
		"10th percentile:  4.50 years",
		"90th percentile:  22.00 years",
		"10 excluded, 3 clamped",
		"1.5s",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q\n%s", want, output)
		}
	}
}

func TestPrintReport_NoSamples(t *testing.T) {
	rpt := New(makeResults())

	var buf bytes.Buffer
	rpt.PrintReport(&buf)
	output := buf.String()

	idx := strings.Index(output, "from_never")
	if idx < 0 {
		t.Fatal("expected output to contain 'from_never'")
	}
	rest := output[idx:]
	if !strings.Contains(rest, "no samples") {
		t.Error("expected explicit no samples status")
	}
	if strings.Contains(rest, "Mean:") {
		t.Error("expected no statistics for an empty pair")
	}
}

func TestPrintMilestones(t *testing.T) {
	rpt := New(makeResults())

	var buf bytes.Buffer
	rpt.PrintMilestones(&buf)
	output := buf.String()

	if !strings.Contains(output, "100.0%") {
		t.Errorf("expected now to occur in 100%% of trials:\n%s", output)
	}
	if !strings.Contains(output, "0.0%") {
		t.Errorf("expected gone to occur in 0%% of trials:\n%s", output)
	}
}

func TestPrintPlan(t *testing.T) {
	p := &plan.Plan{
		Order:   []string{"a", "b"},
		Horizon: 3,
		Estimates: map[string]*plan.Estimate{
			"a": {Name: "a", Delta: 1, Expected: 1, Occurrence: 1, IsCritical: true},
			"b": {Name: "b", Reference: "a", Level: 1, Delta: 2, Expected: 3, Occurrence: 0.5, IsCritical: true},
		},
		Levels: []plan.Level{
			{Index: 0, Milestones: []string{"a"}, IsCritical: true},
			{Index: 1, Milestones: []string{"b"}, IsCritical: true},
		},
		CriticalChain: []string{"a", "b"},
	}

	var buf bytes.Buffer
	PrintPlan(&buf, p)
	output := buf.String()

	for _, want := range []string{"Horizon:   3.00 years", "a → b", "LEVEL 2", "(a + 2.00)", "50.0%"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q\n%s", want, output)
		}
	}
}

func TestJSON(t *testing.T) {
	rpt := New(makeResults())

	data, err := rpt.JSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := gjson.ParseBytes(data)
	if got := doc.Get("run_id").String(); got != "test-run" {
		t.Errorf("expected run_id test-run, got %q", got)
	}
	if got := doc.Get("pairs.#").Int(); got != 2 {
		t.Errorf("expected 2 pairs, got %d", got)
	}
	if got := doc.Get("pairs.0.summary.median").Float(); got != 11.25 {
		t.Errorf("expected median 11.25, got %v", got)
	}
	if got := doc.Get("pairs.1.status").String(); got != "no_samples" {
		t.Errorf("expected no_samples status, got %q", got)
	}
	if summary := doc.Get("pairs.1.summary"); summary.Type != gjson.Null {
		t.Errorf("expected null summary, got %s", summary.Raw)
	}
	if got := doc.Get(`milestones.#(name=="gone").never_fraction`).Float(); got != 1 {
		t.Errorf("expected never_fraction 1, got %v", got)
	}
}
