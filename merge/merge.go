// Package merge filters candidate attributes against the current library and
// promotes the survivors to records.
package merge

import (
	"time"

	"go.uber.org/zap"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/logger"
	"github.com/underthemoss/construction-taxonomy/normalize"
)

// Reason explains why a candidate was not promoted
type Reason string

const (
	DuplicateCode Reason = "duplicate_code"
	DuplicateName Reason = "duplicate_name"
	Invalid       Reason = "invalid"
)

// Rejection is a diagnostic entry for a candidate that was left out
type Rejection struct {
	Code      string              `json:"code"`
	Name      string              `json:"name"`
	Reason    Reason              `json:"reason"`
	Conflict  string              `json:"conflict,omitempty"` // code of the entry it collided with
	Detail    string              `json:"detail,omitempty"`
	Candidate attribute.Candidate `json:"-"`
}

// Deduplicator rejects candidates whose code or normalized display name is
// already taken, either by the library or by an earlier candidate of the
// same batch, and candidates whose promoted record would fail the schema.
type Deduplicator struct {
	now func() time.Time
	log *zap.SugaredLogger
}

// Option configures a Deduplicator
type Option func(*Deduplicator)

// WithClock sets the clock used to date promoted records
func WithClock(now func() time.Time) Option {
	return func(d *Deduplicator) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDeduplicator creates a Deduplicator
func NewDeduplicator(log *zap.SugaredLogger, opts ...Option) *Deduplicator {
	d := &Deduplicator{now: time.Now, log: logger.OrNop(log)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Filter returns the candidates safe to add to library, in input order, and a
// rejection for every other one. Rejections are diagnostics, not errors.
// Only accepted candidates reserve their code and display name, so an
// invalid candidate never shadows a later valid one.
func (d *Deduplicator) Filter(library map[string]attribute.Record, candidates []attribute.Candidate) ([]attribute.Candidate, []Rejection) {
	codes := make(map[string]bool, len(library)+len(candidates))
	names := make(map[string]string, len(library)+len(candidates))
	for code, rec := range library {
		codes[code] = true
		if key := normalize.DisplayKey(rec.Name); key != "" {
			names[key] = code
		}
	}

	today := d.now()
	var accepted []attribute.Candidate
	var rejected []Rejection
	for _, c := range candidates {
		code := CodeOf(c)
		name := c.DisplayName()
		key := normalize.DisplayKey(name)

		var r *Rejection
		switch {
		case code == "":
			r = &Rejection{Name: name, Reason: Invalid, Detail: "name has no letters or digits to build a code from"}
		case codes[code]:
			r = &Rejection{Code: code, Name: name, Reason: DuplicateCode, Conflict: code}
		case key != "" && names[key] != "":
			r = &Rejection{Code: code, Name: name, Reason: DuplicateName, Conflict: names[key]}
		default:
			if err := Promote(c, today).Validate(); err != nil {
				r = &Rejection{Code: code, Name: name, Reason: Invalid, Detail: err.Error()}
			}
		}
		if r != nil {
			r.Candidate = c
			d.log.Infow("candidate rejected",
				logger.FieldCode, code,
				logger.FieldName, name,
				logger.FieldReason, r.Reason,
				"conflict", r.Conflict,
				"detail", r.Detail)
			rejected = append(rejected, *r)
			continue
		}

		codes[code] = true
		if key != "" {
			names[key] = code
		}
		accepted = append(accepted, c)
	}
	return accepted, rejected
}

// CodeOf is the code a candidate would be stored under: its canonical code
// when normalized, else its raw key.
func CodeOf(c attribute.Candidate) string {
	if c.Code != "" {
		return c.Code
	}
	if c.Key != "" {
		return c.Key
	}
	return attribute.RawKey(c.RawName)
}

// Promote turns an accepted candidate into a record dated today. The unit is
// only carried for physics candidates.
func Promote(c attribute.Candidate, today time.Time) attribute.Record {
	date := attribute.Date(today)
	rec := attribute.Record{
		Code:         CodeOf(c),
		Name:         c.DisplayName(),
		Type:         c.Type,
		Category:     c.Category,
		Subcategory:  c.Subcategory,
		Description:  c.Description,
		AddedDate:    date,
		LastModified: date,
	}
	if rec.Type == "" {
		rec.Type = attribute.String
	}
	if rec.Subcategory == "" {
		rec.Subcategory = attribute.General
	}
	if c.Category == attribute.Physics {
		rec.Unit = c.Unit
	}
	return rec
}
