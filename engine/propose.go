package engine

import (
	"context"

	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/logger"
	"github.com/underthemoss/construction-taxonomy/propose"
)

// Propose asks the proposer for attributes the corpus implies but the
// library lacks. Screened proposals are prepared like any other candidate
// and stored in a.Proposed; the rest land in a.ProposalRejections.
func (e *Engine) Propose(ctx context.Context, a *Analysis) error {
	if e.proposer == nil {
		return errors.WithHint(
			errors.Mark(errors.New("no proposer configured"), errors.ErrNotConfigured),
			"set proposer.enabled and OPENROUTER_API_KEY",
		)
	}

	lib, err := e.store.Load()
	if err != nil {
		return err
	}
	proposals, err := e.proposer.Propose(ctx, propose.Request{
		Library:  lib.Reduced(),
		Catalog:  a.Catalog,
		Examples: a.Examples,
	})
	if err != nil {
		return errors.Wrap(err, "propose attributes")
	}

	cands, rejected := propose.ToCandidates(proposals)
	for _, r := range rejected {
		e.log.Warnw("proposal rejected",
			logger.FieldCode, r.Code,
			logger.FieldReason, r.Reason)
	}
	a.Proposed = e.prepareAll(cands)
	a.ProposalRejections = rejected
	e.log.Infow("proposals screened",
		"accepted", len(a.Proposed),
		"rejected", len(rejected))
	return nil
}
