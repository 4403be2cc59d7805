package search

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ciphertechsolutions/locke/internal/pattern"
	"github.com/ciphertechsolutions/locke/internal/transform"
	"github.com/ciphertechsolutions/locke/pkg/models"
)

// Candidate is one scored transform. Seq is the first-appearance ordinal
// assigned during enumeration; ties in score keep the lower Seq.
type Candidate struct {
	Transform transform.Transform
	Seq       int
	Score     int
	Reports   []models.PatternReport
}

// Options tunes a search run.
type Options struct {
	Keep      int // stage-1 survivors, default 20
	Save      int // stage-2 survivors, default 10
	Workers   int // default NumCPU
	Verbosity int
}

func (o *Options) fill() {
	if o.Keep <= 0 {
		o.Keep = 20
	}
	if o.Save <= 0 {
		o.Save = 10
	}
	if o.Save > o.Keep {
		o.Save = o.Keep
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
}

// Driver runs the two-stage search: a wide parallel scan of every
// enumerated transform with the stage-1 patterns, then a re-score of the
// survivors with the stage-2 patterns. The input buffer and the pattern
// registry are shared read-only across workers; each worker owns exactly
// one transformed buffer at a time.
type Driver struct {
	reg  *pattern.Registry
	data []byte
	opts Options

	evaluated atomic.Int64
}

func NewDriver(reg *pattern.Registry, data []byte, opts Options) *Driver {
	opts.fill()
	return &Driver{reg: reg, data: data, opts: opts}
}

// Evaluated returns how many transforms have been scored so far.
func (d *Driver) Evaluated() int64 {
	return d.evaluated.Load()
}

type unit struct {
	seq int
	tr  transform.Transform
}

// Run searches all sources and returns the final ranked candidates, at
// most Save of them, carrying stage-2 scores and match reports. The first
// worker or enumeration error cancels the whole run and is returned; no
// partial ranking is reported.
func (d *Driver) Run(ctx context.Context, sources []transform.Source) ([]Candidate, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var failErr error
	var failOnce sync.Once
	fail := func(err error) {
		failOnce.Do(func() {
			failErr = err
			cancel()
		})
	}

	log.Printf("[Driver] Starting stage 1 (%d workers)", d.opts.Workers)
	start := time.Now()
	stage1 := d.runStage(ctx, d.enumerate(ctx, fail, sources), 1, fail)
	if failErr != nil {
		return nil, failErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	log.Printf("[Driver] Stage 1: %d transforms in %s (%.0f trans/sec)",
		len(stage1), elapsed.Round(time.Millisecond), float64(len(stage1))/elapsed.Seconds())

	rank(stage1)
	if len(stage1) > d.opts.Keep {
		stage1 = stage1[:d.opts.Keep]
	}
	if d.opts.Verbosity >= 1 {
		for _, c := range stage1 {
			log.Printf("[Driver] Stage 1 survivor: %s | score %d", c.Transform.Name(), c.Score)
		}
	}

	log.Printf("[Driver] Starting stage 2 (%d survivors)", len(stage1))
	start = time.Now()
	stage2 := d.runStage(ctx, replay(ctx, stage1), 2, fail)
	if failErr != nil {
		return nil, failErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Printf("[Driver] Stage 2: %d transforms in %s",
		len(stage2), time.Since(start).Round(time.Millisecond))

	rank(stage2)
	if len(stage2) > d.opts.Save {
		stage2 = stage2[:d.opts.Save]
	}
	return stage2, nil
}

// enumerate feeds every (family, parameter) unit into a channel, assigning
// first-appearance ordinals. An enumeration error (the table cache can
// fail mid-stream) aborts the run.
func (d *Driver) enumerate(ctx context.Context, fail func(error), sources []transform.Source) <-chan unit {
	jobs := make(chan unit, d.opts.Workers)
	go func() {
		defer close(jobs)
		seq := 0
		for _, src := range sources {
			err := src.ForEach(func(tr transform.Transform) error {
				select {
				case jobs <- unit{seq: seq, tr: tr}:
					seq++
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			})
			if err != nil {
				fail(fmt.Errorf("enumerating %s: %w", src.FamilyName(), err))
				return
			}
		}
	}()
	return jobs
}

// replay re-feeds stage-1 survivors, preserving their ranked position as
// the tie-break ordinal for stage 2.
func replay(ctx context.Context, survivors []Candidate) <-chan unit {
	jobs := make(chan unit, len(survivors))
	go func() {
		defer close(jobs)
		for i, c := range survivors {
			select {
			case jobs <- unit{seq: i, tr: c.Transform}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return jobs
}

// runStage maps the worker pool over the unit stream. Each worker applies
// the transform to the shared input, scans the result at the given stage
// and scores the report. Workers are independent; the only shared state
// is read-only. A worker panic is converted to an error and fails the run.
func (d *Driver) runStage(ctx context.Context, jobs <-chan unit, stage int, fail func(error)) []Candidate {
	out := make(chan Candidate, d.opts.Workers)
	var wg sync.WaitGroup
	for i := 0; i < d.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					fail(fmt.Errorf("worker: %v", r))
				}
			}()
			for u := range jobs {
				buf := u.tr.Apply(d.data, transform.Decode)
				reports := pattern.NewScanner(d.reg, buf).Scan(stage)
				d.evaluated.Add(1)
				c := Candidate{
					Transform: u.tr,
					Seq:       u.seq,
					Score:     models.Score(reports),
					Reports:   reports,
				}
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	var results []Candidate
	best := -1
	for c := range out {
		if d.opts.Verbosity >= 1 && c.Score > best {
			best = c.Score
			log.Printf("[Driver] Best score: %d | Stage: %d | Transform: %s", best, stage, c.Transform.Name())
		}
		results = append(results, c)
	}
	return results
}

// rank orders candidates by score descending, first appearance first on
// ties.
func rank(cs []Candidate) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Score != cs[j].Score {
			return cs[i].Score > cs[j].Score
		}
		return cs[i].Seq < cs[j].Seq
	})
}
