package engine

import (
	"context"

	"github.com/underthemoss/construction-taxonomy/source"
)

// RunOptions controls a full pipeline run
type RunOptions struct {
	Remote  string // fetched into the catalog dir first when set
	Propose bool
	Merge   MergeOptions
}

// Run loads every document under dir, analyses the corpus, optionally asks
// the proposer for more, and merges the result
func (e *Engine) Run(ctx context.Context, dir string, opts RunOptions) (*Analysis, *Report, error) {
	if opts.Remote != "" {
		if err := source.Fetch(ctx, opts.Remote, dir); err != nil {
			return nil, nil, err
		}
	}

	docs, err := e.loader.LoadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	a := e.Analyze(docs)

	if opts.Propose {
		if err := e.Propose(ctx, a); err != nil {
			return a, nil, err
		}
	}

	report, err := e.Merge(ctx, a.Candidates(), opts.Merge)
	return a, report, err
}
