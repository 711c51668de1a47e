// Package publish hands an accepted batch to version control: it commits the
// written record files, the consolidated view and the VERSION file on a dated
// review branch and optionally pushes it.
//
// Only a committed, verified library is ever published; opening the pull
// request is left to the caller.
package publish

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"go.uber.org/zap"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/logger"
)

// Defaults for Config
const (
	DefaultBranchPrefix = "attr-update-"
	DefaultRemote       = "origin"
	DefaultAuthorName   = "taxonomy-bot"
	DefaultAuthorEmail  = "taxonomy-bot@users.noreply.github.com"
)

// Config controls where and how a batch is published
type Config struct {
	BranchPrefix string
	AuthorName   string
	AuthorEmail  string
	Remote       string
	Push         bool
	Token        string // used as x-access-token basic auth when pushing
}

// Change is an accepted batch. Paths are relative to the library root.
type Change struct {
	BatchID string
	Version string
	Records []attribute.Record
	Paths   []string
}

// Result describes a published batch
type Result struct {
	Branch string `json:"branch"`
	Commit string `json:"commit"`
	Pushed bool   `json:"pushed"`
	Body   string `json:"body"`
}

// Publisher commits batches in the git repository containing a library
type Publisher struct {
	root string
	cfg  Config
	now  func() time.Time
	log  *zap.SugaredLogger
}

// Option configures a Publisher
type Option func(*Publisher)

// WithClock overrides the clock used for branch names and commit times
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

// WithLogger sets the publisher's logger
func WithLogger(log *zap.SugaredLogger) Option {
	return func(p *Publisher) { p.log = logger.OrNop(log) }
}

// New creates a Publisher for the library rooted at root
func New(root string, cfg Config, opts ...Option) *Publisher {
	if cfg.BranchPrefix == "" {
		cfg.BranchPrefix = DefaultBranchPrefix
	}
	if cfg.Remote == "" {
		cfg.Remote = DefaultRemote
	}
	if cfg.AuthorName == "" {
		cfg.AuthorName = DefaultAuthorName
	}
	if cfg.AuthorEmail == "" {
		cfg.AuthorEmail = DefaultAuthorEmail
	}
	p := &Publisher{root: root, cfg: cfg, now: time.Now, log: logger.OrNop(nil)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Branch is the review branch for the current day
func (p *Publisher) Branch() string {
	return p.cfg.BranchPrefix + attribute.Date(p.now())
}

// Publish checks out the day's review branch, keeping the working tree,
// stages the change's files and commits them. With Push set the branch is
// pushed to the configured remote.
func (p *Publisher) Publish(ctx context.Context, change Change) (*Result, error) {
	if len(change.Paths) == 0 {
		return nil, errors.New("nothing to publish")
	}
	if p.cfg.Push && p.cfg.Token == "" {
		return nil, errors.WithHint(
			errors.Mark(errors.New("push requested without a token"), errors.ErrNotConfigured),
			"set GITHUB_TOKEN or publish.token",
		)
	}

	repo, err := git.PlainOpenWithOptions(p.root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Wrapf(err, "open repository at %s", p.root)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.Wrap(err, "open worktree")
	}

	branch := plumbing.NewBranchReferenceName(p.Branch())
	_, err = repo.Reference(branch, true)
	exists := err == nil
	if err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, errors.Wrapf(err, "look up %s", branch)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: branch, Create: !exists, Keep: true}); err != nil {
		return nil, errors.Wrapf(err, "check out %s", branch.Short())
	}

	for _, rel := range change.Paths {
		path, err := filepath.Rel(wt.Filesystem.Root(), filepath.Join(p.root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, errors.Wrapf(err, "locate %s", rel)
		}
		if _, err := wt.Add(filepath.ToSlash(path)); err != nil {
			return nil, errors.Wrapf(err, "stage %s", rel)
		}
	}

	body := RenderBody(change)
	hash, err := wt.Commit(commitTitle(change)+"\n\n"+body, &git.CommitOptions{
		Author: &object.Signature{Name: p.cfg.AuthorName, Email: p.cfg.AuthorEmail, When: p.now()},
	})
	if err != nil {
		return nil, errors.Wrap(err, "commit batch")
	}
	res := &Result{Branch: branch.Short(), Commit: hash.String(), Body: body}
	p.log.Infow("batch committed to review branch",
		logger.FieldBatchID, change.BatchID,
		"branch", res.Branch,
		"commit", res.Commit)

	if !p.cfg.Push {
		return res, nil
	}
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: p.cfg.Remote,
		RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec(branch + ":" + branch)},
		Auth:       &githttp.BasicAuth{Username: "x-access-token", Password: p.cfg.Token},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return res, errors.WithHint(errors.Wrapf(err, "push %s", res.Branch),
			"the commit is on the local branch; push it manually")
	}
	res.Pushed = true
	return res, nil
}

func commitTitle(change Change) string {
	n := len(change.Records)
	noun := "attributes"
	if n == 1 {
		noun = "attribute"
	}
	if change.Version == "" {
		return fmt.Sprintf("Add %d %s", n, noun)
	}
	return fmt.Sprintf("Add %d %s (library %s)", n, noun, change.Version)
}

// RenderBody renders the review description: the new attributes grouped by
// category and subcategory.
func RenderBody(change Change) string {
	groups := make(map[string][]attribute.Record)
	for _, rec := range change.Records {
		key := string(rec.Category) + "/" + string(rec.Subcategory)
		groups[key] = append(groups[key], rec)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	// physics before brand, then subcategory
	slices.SortFunc(keys, func(a, b string) int {
		ca, _, _ := strings.Cut(a, "/")
		cb, _, _ := strings.Cut(b, "/")
		if ca != cb {
			return slices.Index(attribute.Categories, attribute.Category(ca)) - slices.Index(attribute.Categories, attribute.Category(cb))
		}
		return strings.Compare(a, b)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "## New attributes (%d)\n\n", len(change.Records))
	if change.Version != "" {
		fmt.Fprintf(&b, "Library version: %s\n", change.Version)
	}
	if change.BatchID != "" {
		fmt.Fprintf(&b, "Batch: %s\n", change.BatchID)
	}
	for _, k := range keys {
		cat, sub, _ := strings.Cut(k, "/")
		fmt.Fprintf(&b, "\n### %s / %s\n\n", cat, sub)
		recs := groups[k]
		slices.SortFunc(recs, func(x, y attribute.Record) int { return strings.Compare(x.Code, y.Code) })
		for _, rec := range recs {
			line := fmt.Sprintf("- `%s`: %s (%s", rec.Code, rec.Name, rec.Type)
			if rec.Unit != "" {
				line += ", " + rec.Unit
			}
			b.WriteString(line + ")\n")
		}
	}
	return b.String()
}
