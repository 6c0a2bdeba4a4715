// Package montecarlo runs many independent trials of the milestone model and
// reduces them into per-pair Result Sets.
package montecarlo

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/uvafan/toy-takeoff-modeling/internal/bank"
	"github.com/uvafan/toy-takeoff-modeling/internal/config"
	"github.com/uvafan/toy-takeoff-modeling/internal/logging"
	"github.com/uvafan/toy-takeoff-modeling/internal/metrics"
	"github.com/uvafan/toy-takeoff-modeling/internal/sampler"
	"github.com/uvafan/toy-takeoff-modeling/internal/timeline"
)

// chunkSize is the number of consecutive trials one worker task handles.
const chunkSize = 256

// ErrInvalidRun is returned for runner settings that cannot produce a result.
var ErrInvalidRun = errors.New("invalid run")

// Runner executes a fixed number of trials against a Bank.
type Runner struct {
	Bank    *bank.Bank
	Pairs   []config.Pair
	Config  Config
	Metrics *metrics.Recorder
	Logger  *slog.Logger

	sampler *sampler.Sampler
	slots   [][2]int // start, end slot per pair
}

// New creates a Runner. Pairs must name milestones held by b.
func New(b *bank.Bank, pairs []config.Pair, cfg Config) (*Runner, error) {
	if cfg.Trials < 1 {
		return nil, fmt.Errorf("%w: trials must be >= 1, got %d", ErrInvalidRun, cfg.Trials)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidRun, cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	s, err := sampler.New(b)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		Bank:    b,
		Pairs:   append([]config.Pair(nil), pairs...),
		Config:  cfg,
		Logger:  logging.Discard(),
		sampler: s,
	}
	for _, p := range r.Pairs {
		start, ok := b.Index().Lookup(p.Start)
		if !ok {
			return nil, fmt.Errorf("pair %q start: %w %q", p.Name, bank.ErrUnknownMilestone, p.Start)
		}
		end, ok := b.Index().Lookup(p.End)
		if !ok {
			return nil, fmt.Errorf("pair %q end: %w %q", p.Name, bank.ErrUnknownMilestone, p.End)
		}
		r.slots = append(r.slots, [2]int{start, end})
	}
	return r, nil
}

// Run samples every trial and reduces the outcomes. Trial i always draws from
// the stream keyed by (seed, i), so the result does not depend on the number
// of workers or the order they finish in.
func (r *Runner) Run(ctx context.Context) (*ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run trials: %w", err)
	}

	startedAt := time.Now()
	trials := r.Config.Trials
	workers := min(r.Config.Workers, (trials+chunkSize-1)/chunkSize)

	r.Logger.Info("simulation started",
		"trials", trials, "workers", workers, "seed", r.Config.Seed, "milestones", r.Bank.Len(), "pairs", len(r.Pairs))

	outcomes := make([][]timeline.Time, trials)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < trials; lo += chunkSize {
		hi := min(lo+chunkSize, trials)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				rng := rand.New(trialSource(r.Config.Seed, i))
				outcomes[i] = r.sampler.Sample(rng).Times()
			}
			r.Logger.Debug("chunk done", "from", lo, "to", hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run trials: %w", err)
	}

	rs := &ResultSet{
		RunID:     uuid.NewString(),
		Seed:      r.Config.Seed,
		Trials:    trials,
		Workers:   workers,
		StartedAt: startedAt,
	}
	rs.Milestones = r.reduceMilestones(outcomes)
	rs.Pairs = r.reducePairs(outcomes)
	rs.Elapsed = time.Since(startedAt)

	r.Metrics.AddTrials(trials)
	r.Metrics.ObserveRun(rs.Elapsed)

	r.Logger.Info("simulation finished", "run_id", rs.RunID, "elapsed", rs.Elapsed)
	return rs, nil
}

func (r *Runner) reduceMilestones(outcomes [][]timeline.Time) []MilestoneResult {
	names := r.Bank.Order()
	results := make([]MilestoneResult, len(names))
	for slot, name := range names {
		times := make([]float64, 0, len(outcomes))
		never := 0
		for _, tl := range outcomes {
			if y, ok := tl[slot].Years(); ok {
				times = append(times, y)
			} else {
				never++
			}
		}
		results[slot] = MilestoneResult{
			Name:     name,
			Occurred: len(times),
			Never:    never,
			Summary:  Summarize(times),
		}
		r.Metrics.AddNever(name, never)
		r.Logger.Debug("milestone reduced", "milestone", name, "occurred", len(times), "never", never)
	}
	return results
}

func (r *Runner) reducePairs(outcomes [][]timeline.Time) []PairResult {
	results := make([]PairResult, len(r.Pairs))
	for i, p := range r.Pairs {
		start, end := r.slots[i][0], r.slots[i][1]
		pr := PairResult{Pair: p, Deltas: make([]float64, 0, len(outcomes))}
		for _, tl := range outcomes {
			d, ok := tl[end].Sub(tl[start])
			if !ok {
				pr.Excluded++
				continue
			}
			if d < 0 {
				d = 0
				pr.Clamped++
			}
			pr.Deltas = append(pr.Deltas, d)
		}
		pr.Summary = Summarize(pr.Deltas)
		results[i] = pr

		r.Metrics.AddExcluded(p.Name, pr.Excluded)
		r.Metrics.AddClamped(p.Name, pr.Clamped)
		if pr.Status() == StatusNoSamples {
			r.Metrics.MarkNoSamples(p.Name)
			r.Logger.Warn("pair has no samples", "pair", p.Name, "excluded", pr.Excluded)
		}
	}
	return results
}

// trialSource keys an independent ChaCha8 stream by seed and trial index.
func trialSource(seed uint64, trial int) *rand.ChaCha8 {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[0:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], uint64(trial))
	copy(key[16:], "takeoff-trial-v1")
	return rand.NewChaCha8(key)
}
