package engine

import (
	"context"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/logger"
	"github.com/underthemoss/construction-taxonomy/merge"
	"github.com/underthemoss/construction-taxonomy/publish"
)

// MergeOptions controls one merge
type MergeOptions struct {
	DryRun  bool // decide and validate, write nothing
	Publish bool // hand the committed batch to the publisher
}

// Report is the outcome of a merge
type Report struct {
	BatchID    string             `json:"batch_id"`
	DryRun     bool               `json:"dry_run,omitempty"`
	Accepted   []attribute.Record `json:"accepted"`
	Rejections []merge.Rejection  `json:"rejections,omitempty"`
	Written    []string           `json:"written,omitempty"`
	Version    string             `json:"version"`
	Published  *publish.Result    `json:"published,omitempty"`
}

// Counts returns how many candidates were rejected for each reason
func (r *Report) Counts() map[merge.Reason]int {
	out := make(map[merge.Reason]int)
	for _, rej := range r.Rejections {
		out[rej.Reason]++
	}
	return out
}

// Merge deduplicates cands against the library, promotes the survivors and
// commits them as one batch. A candidate whose record fails the schema is
// rejected on its own; the rest of the batch still stands or falls
// together. Rejections are reported, never returned as errors.
//
// When Commit fails after the version was bumped the report is returned
// together with the error.
func (e *Engine) Merge(ctx context.Context, cands []attribute.Candidate, opts MergeOptions) (*Report, error) {
	if opts.Publish && !opts.DryRun && e.publisher == nil {
		return nil, errors.WithHint(
			errors.Mark(errors.New("publishing requested without a publisher"), errors.ErrNotConfigured),
			"set publish.enabled in taxonomy.toml",
		)
	}

	tx, err := e.store.Begin()
	if err != nil {
		return nil, err
	}
	log := e.log.With(logger.FieldBatchID, tx.ID())
	report := &Report{BatchID: tx.ID(), DryRun: opts.DryRun}

	accepted, rejections := e.dedup.Filter(tx.Snapshot().Records, cands)
	report.Rejections = rejections

	today := e.now()
	for _, c := range accepted {
		rec := merge.Promote(c, today)
		if err := tx.Put(rec); err != nil {
			log.Infow("candidate rejected",
				logger.FieldCode, rec.Code,
				logger.FieldName, rec.Name,
				logger.FieldReason, merge.Invalid,
				logger.FieldError, err)
			report.Rejections = append(report.Rejections, merge.Rejection{
				Code:      rec.Code,
				Name:      rec.Name,
				Reason:    merge.Invalid,
				Detail:    err.Error(),
				Candidate: c,
			})
			continue
		}
		report.Accepted = append(report.Accepted, rec)
	}

	if opts.DryRun {
		tx.Rollback()
		v, err := e.store.Version()
		if err != nil {
			return nil, err
		}
		report.Version = v.String()
		log.Infow("dry run",
			"accepted", len(report.Accepted),
			"rejected", len(report.Rejections))
		return report, nil
	}

	res, err := tx.Commit(ctx)
	if res != nil {
		report.Written = res.Written
		report.Version = res.Version
	}
	if err != nil {
		if res != nil {
			return report, err
		}
		return nil, errors.Wrap(err, "merge batch")
	}

	if opts.Publish && len(report.Accepted) > 0 {
		published, err := e.publish(ctx, report)
		if err != nil {
			return report, err
		}
		report.Published = published
	}
	return report, nil
}

// publish hands a committed batch to the publisher once the store verifies
// as consistent
func (e *Engine) publish(ctx context.Context, report *Report) (*publish.Result, error) {
	verify, err := e.store.Verify()
	if err != nil {
		return nil, err
	}
	if !verify.OK() {
		return nil, errors.WithHint(
			errors.Newf("library is inconsistent after batch %s; not publishing", report.BatchID),
			"run `taxonomy validate` and `taxonomy consolidate`",
		)
	}

	paths := append([]string(nil), report.Written...)
	paths = append(paths,
		e.store.Rel(e.store.ConsolidatedPath()),
		e.store.Rel(e.store.VersionPath()))
	return e.publisher.Publish(ctx, publish.Change{
		BatchID: report.BatchID,
		Version: report.Version,
		Records: report.Accepted,
		Paths:   paths,
	})
}
