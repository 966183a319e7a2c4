package dct

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vfrnav/adr/internal/condition"
	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/internal/routegraph"
	"github.com/vfrnav/adr/internal/store"
	"github.com/vfrnav/adr/internal/terrain"
	"github.com/vfrnav/adr/pkg/log"
)

// resultQueueCapacity and commitBatchSize are the §4.3.3 backpressure and
// transaction-size caps.
const (
	resultQueueCapacity = 1024
	commitBatchSize     = 1024
)

// Pipeline runs the §4.3 DCT precomputation: striping the candidate-pair
// index across Workers worker goroutines, each holding its own terrain
// oracle handle, funneling results through a bounded channel to a single
// committing aggregator.
type Pipeline struct {
	Store        *store.Store
	Workers      int
	Rules        []ApplicableRule
	Avail        condition.AvailabilitySource
	Cutoff       model.Time
	FutureCutoff model.Time
	OracleFor    func(worker int) terrain.Oracle
	Graph        *routegraph.Graph // nil disables airway-preferred elision
	Log          *log.Logger
}

// Run stripes pairs across p.Workers goroutines (an errgroup.Group, §4.3.3
// and §2 domain-stack wiring), computing each pair's PairResult and
// funneling it through a capacity-bounded channel to a single aggregator
// that batches commits to the store's dct relation. Cooperative
// cancellation via ctx is honored between pairs, never mid-pair (§5).
func (p *Pipeline) Run(ctx context.Context, pairs [][2]Candidate) (*PipelineWarning, error) {
	warn := NewPipelineWarning()
	results := make(chan PairResult, resultQueueCapacity)

	g, gctx := errgroup.WithContext(ctx)

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	g.Go(func() error {
		defer close(results)
		return p.dispatch(gctx, pairs, workers, results)
	})

	var commitErr error
	g.Go(func() error {
		commitErr = p.aggregate(ctx, results, warn)
		return commitErr
	})

	if err := g.Wait(); err != nil {
		return warn, err
	}
	return warn, nil
}

// dispatch stripes pairs by worker index and runs workers concurrently,
// each with its own terrain oracle; a worker sends its PairResult onto the
// shared, capacity-bounded results channel (backpressure, §4.3.3).
func (p *Pipeline) dispatch(ctx context.Context, pairs [][2]Candidate, workers int, results chan<- PairResult) error {
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			var oracle terrain.Oracle
			if p.OracleFor != nil {
				oracle = p.OracleFor(w)
			}
			for i := w; i < len(pairs); i += workers {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				pair := pairs[i]
				res := ComputePair(pair[0], pair[1], p.Rules, p.Avail, p.Cutoff, p.FutureCutoff, oracle, p.Graph)
				select {
				case results <- res:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// aggregate pops results off the channel and commits to the store's dct
// relation in batches of commitBatchSize, keeping the transaction size
// bounded (§4.3.3, §5's "committed every 1024 insertions").
func (p *Pipeline) aggregate(ctx context.Context, results <-chan PairResult, warn *PipelineWarning) error {
	batch := make([]PairResult, 0, commitBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.Store.SaveDctPairs(ctx, toDctRows(batch)); err != nil {
			return fmt.Errorf("dct: commit batch: %w", err)
		}
		if p.Log != nil {
			p.Log.Infof("dct: committed %d pairs", len(batch))
		}
		batch = batch[:0]
		return nil
	}

	for res := range results {
		if len(res.Subs) == 0 {
			warn.Add(WarnMalformedTimeTable)
		}
		batch = append(batch, res)
		if len(batch) >= commitBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

func toDctRows(batch []PairResult) []store.DctRow {
	rows := make([]store.DctRow, 0, len(batch))
	for _, r := range batch {
		subs := make([]store.DctSub, len(r.Subs))
		for i, s := range r.Subs {
			subs[i] = store.DctSub{Span: s.Span, Alt: s.Alt}
		}
		rows = append(rows, store.DctRow{A: r.A.ID, B: r.B.ID, ACoord: r.A.Coord, BCoord: r.B.Coord, Subs: subs})
	}
	return rows
}
