// Package pipeline runs the event batch: isoform reconstruction and ORF
// discovery sharded across workers, comparison on the re-merged result.
package pipeline

import (
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/betsig/GeneStructureTools/internal/compare"
	"github.com/betsig/GeneStructureTools/internal/event"
	"github.com/betsig/GeneStructureTools/internal/isoform"
	"github.com/betsig/GeneStructureTools/internal/orf"
)

// WorkItem holds one event ready for reconstruction.
type WorkItem struct {
	Seq   int
	Event event.Event
}

// WorkResult holds the per-event output of one worker: the isoform pairs
// and the ORF side records for each pair. Events are independent of each
// other, so workers share only the read-only annotation and genome.
type WorkResult struct {
	Seq   int
	Event event.Event
	Pairs []isoform.Pair
	X     []compare.SideRecord
	Y     []compare.SideRecord
	UORFs []orf.Record
	Err   error
}

// Runner wires the builder, ORF engine, and comparator into one batch.
type Runner struct {
	Builder    *isoform.Builder
	Engine     *orf.Engine
	Comparator *compare.Comparator
	Workers    int
	Logger     *zap.Logger
}

// Result is the merged batch output. UORFs is populated only when the ORF
// engine has upstream-ORF discovery enabled.
type Result struct {
	Pairs   []isoform.Pair
	Changes []compare.Change
	UORFs   []orf.Record
}

// Run processes the whole event table. Per-event failures are logged and
// produce no rows; they never abort the batch. Results are re-merged in
// sequence order so output is deterministic regardless of worker count.
func (r *Runner) Run(table *event.Table) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	items := make(chan WorkItem, 2*runtime.NumCPU())
	go func() {
		defer close(items)
		for i, ev := range table.Events {
			items <- WorkItem{Seq: i, Event: ev}
		}
	}()

	results := r.parallelBuild(items)

	events := make(map[string]event.Event, len(table.Events))
	for _, ev := range table.Events {
		events[ev.ID] = ev
	}

	var pairs []isoform.Pair
	var xs, ys []compare.SideRecord
	var uorfs []orf.Record
	done := 0
	if err := OrderedCollect(results, func(res WorkResult) error {
		if res.Err != nil {
			logger.Warn("failed to process event",
				zap.String("event", res.Event.ID),
				zap.Error(res.Err))
			return nil
		}
		pairs = append(pairs, res.Pairs...)
		xs = append(xs, res.X...)
		ys = append(ys, res.Y...)
		uorfs = append(uorfs, res.UORFs...)
		done++
		if done%1000 == 0 {
			logger.Info("processed events", zap.Int("count", done))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	pairs = isoform.DedupePairs(pairs)

	matched := compare.MatchSets(xs, ys, logger)
	changes := r.Comparator.Compare(matched, events)

	return &Result{
		Pairs:   pairs,
		Changes: changes,
		UORFs:   r.limitUORFs(uorfs, xs, ys),
	}, nil
}

// limitUORFs applies the select-longest fraction: when configured, only
// the isoforms whose main ORFs rank in the top fraction report their
// upstream ORFs.
func (r *Runner) limitUORFs(uorfs []orf.Record, xs, ys []compare.SideRecord) []orf.Record {
	if len(uorfs) == 0 {
		return nil
	}
	fraction := r.Engine.Options().SelectLongest
	if fraction <= 0 || fraction >= 1 {
		return uorfs
	}

	mains := make([]orf.Record, 0, len(xs)+len(ys))
	for _, s := range xs {
		mains = append(mains, s.ORF)
	}
	for _, s := range ys {
		mains = append(mains, s.ORF)
	}
	eligible := orf.LimitToLongest(mains, fraction)

	kept := uorfs[:0:0]
	for _, u := range uorfs {
		if eligible[u.IsoformID] {
			kept = append(kept, u)
		}
	}
	return kept
}

// parallelBuild reconstructs and analyzes events using a pool of workers.
// Results arrive in completion order; use OrderedCollect to consume them
// in sequence order.
func (r *Runner) parallelBuild(items <-chan WorkItem) <-chan WorkResult {
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				results <- r.processEvent(item)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// processEvent builds the isoform pairs for one event and runs the ORF
// engine on both sides of each pair.
func (r *Runner) processEvent(item WorkItem) WorkResult {
	res := WorkResult{Seq: item.Seq, Event: item.Event}

	res.Pairs = r.Builder.Build(item.Event)
	typeCode := item.Event.Type.String()

	for _, p := range res.Pairs {
		xRecs, err := r.Engine.Analyze(p.X)
		if err != nil {
			res.Err = err
			return res
		}
		yRecs, err := r.Engine.Analyze(p.Y)
		if err != nil {
			res.Err = err
			return res
		}
		for _, rec := range xRecs {
			if rec.Rank > 0 {
				// uORFs are reported separately, never matched.
				res.UORFs = append(res.UORFs, rec)
				continue
			}
			res.X = append(res.X, compare.FromIsoform(p.X, typeCode, rec))
		}
		for _, rec := range yRecs {
			if rec.Rank > 0 {
				res.UORFs = append(res.UORFs, rec)
				continue
			}
			res.Y = append(res.Y, compare.FromIsoform(p.Y, typeCode, rec))
		}
	}

	return res
}

// OrderedCollect calls fn for each result in sequence-number order. It
// buffers out-of-order results in a pending map and emits them as soon as
// the next expected sequence number is available. Blocks until the
// results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
