package query

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/proteograph/pint/pkg/feature"
	"github.com/proteograph/pint/pkg/graph"
)

// Saver persists built graphs. Implemented by the dataset store.
type Saver interface {
	SaveGraph(g *graph.Graph) error
}

// Failure records a query that could not be built or saved.
type Failure struct {
	QueryID string `json:"query_id"`
	Reason  string `json:"reason"`
}

// ProcessResult summarizes a batch run.
type ProcessResult struct {
	Saved    []string  `json:"saved"`
	Failures []Failure `json:"failures,omitempty"`
}

// Process builds all queries of a collection concurrently and saves the
// resulting graphs. Individual failures do not stop the batch; they are
// reported in the result. Workers <= 0 uses one worker per CPU.
func Process(ctx context.Context, col *Collection, components []feature.Component, store Saver, workers int) (*ProcessResult, error) {
	if col == nil || col.Len() == 0 {
		return nil, errors.New("empty query collection")
	}
	if store == nil {
		return nil, errors.New("store is required")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	res := &ProcessResult{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, q := range col.Queries() {
		q := q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			built, err := q.Build(ctx, components)
			if err != nil {
				log.Errorf("error building %s: %v", q.ID(), err)
				mu.Lock()
				res.Failures = append(res.Failures, Failure{QueryID: q.ID(), Reason: err.Error()})
				mu.Unlock()
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			if err := store.SaveGraph(built); err != nil {
				log.Errorf("error saving %s: %v", q.ID(), err)
				res.Failures = append(res.Failures, Failure{QueryID: q.ID(), Reason: err.Error()})
				return nil
			}
			res.Saved = append(res.Saved, built.ID)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "query batch interrupted")
	}
	return res, nil
}
