// Package source loads the documents the extractor reads: plain text and
// Markdown spec sheets, HTML catalog pages and JSON product examples.
package source

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/extract"
	"github.com/underthemoss/construction-taxonomy/lexicon"
	"github.com/underthemoss/construction-taxonomy/logger"
)

// Kind is the format a document was read from
type Kind string

const (
	KindText     Kind = "text"
	KindHTML     Kind = "html"
	KindExamples Kind = "examples"
)

// Document is one source document. Text documents carry Text; example files
// carry Examples instead.
type Document struct {
	Ref          string            `json:"ref"`
	Kind         Kind              `json:"kind"`
	Title        string            `json:"title,omitempty"`
	Text         string            `json:"-"`
	Manufacturer string            `json:"manufacturer,omitempty"`
	Examples     []extract.Example `json:"-"`
}

// Loader reads documents from disk
type Loader struct {
	lex      *lexicon.Lexicon
	log      *zap.SugaredLogger
	patterns []*regexp.Regexp // manufacturer name matchers, lexicon order
	names    []string
}

// Option configures a Loader
type Option func(*Loader)

// WithLogger sets the loader's logger
func WithLogger(log *zap.SugaredLogger) Option {
	return func(l *Loader) { l.log = logger.OrNop(log) }
}

// New creates a Loader. A nil lexicon selects lexicon.Default().
func New(lex *lexicon.Lexicon, opts ...Option) *Loader {
	if lex == nil {
		lex = lexicon.Default()
	}
	l := &Loader{lex: lex, log: logger.OrNop(nil)}
	for _, opt := range opts {
		opt(l)
	}
	for _, name := range lex.Manufacturers() {
		l.names = append(l.names, name)
		l.patterns = append(l.patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(name)+`\b`))
	}
	return l
}

// DetectManufacturer returns the first lexicon manufacturer named in text as
// a whole word, ignoring case, or "" when none is.
func (l *Loader) DetectManufacturer(text string) string {
	for i, re := range l.patterns {
		if re.MatchString(text) {
			return l.names[i]
		}
	}
	return ""
}

var kinds = map[string]Kind{
	".txt":  KindText,
	".md":   KindText,
	".html": KindHTML,
	".htm":  KindHTML,
	".json": KindExamples,
}

// Supported reports whether path has an extension LoadDir reads
func Supported(path string) bool {
	_, ok := kinds[strings.ToLower(filepath.Ext(path))]
	return ok
}

// LoadDir reads every supported file under dir, recursively, in lexical
// order. Documents that cannot be read or parsed are skipped with a warning;
// only a missing or unreadable dir is an error.
func (l *Loader) LoadDir(dir string) ([]Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Newf("%s is not a directory", dir)
	}
	// fetched local catalogs arrive as a symlink, which WalkDir does not follow
	if link, err := os.Lstat(dir); err == nil && link.Mode()&fs.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve %s", dir)
		}
		dir = resolved
	}

	var docs []Document
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !Supported(path) {
			return nil
		}
		doc, err := l.LoadFile(path)
		if err != nil {
			l.log.Warnw("document skipped",
				logger.FieldFile, path,
				logger.FieldError, err)
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", dir)
	}

	l.log.Infow("documents loaded",
		logger.FieldPath, dir,
		logger.FieldCount, len(docs))
	return docs, nil
}

// LoadFile reads one document, choosing the parser by extension
func (l *Loader) LoadFile(path string) (Document, error) {
	kind, ok := kinds[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return Document{}, errors.Newf("unsupported document type %q", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, errors.Wrapf(err, "read %s", path)
	}

	doc := Document{Ref: path, Kind: kind}
	switch kind {
	case KindText:
		doc.Text = string(data)
	case KindHTML:
		page, err := ParseHTML(bytes.NewReader(data), path)
		if err != nil {
			return Document{}, err
		}
		doc.Title = page.Title
		doc.Text = page.Text
		if page.Site != "" {
			doc.Text = page.Site + "\n" + doc.Text
		}
	case KindExamples:
		examples, err := DecodeExamples(data)
		if err != nil {
			return Document{}, errors.Wrapf(err, "parse %s", path)
		}
		for i := range examples {
			examples[i].Ref = path
		}
		doc.Examples = examples
	}

	l.detect(&doc)
	return doc, nil
}

// detect sets the document's manufacturer. Each product example keeps its
// own manufacturer or takes the one named in its product name; the document
// takes the first example's.
func (l *Loader) detect(doc *Document) {
	if doc.Kind != KindExamples {
		doc.Manufacturer = l.DetectManufacturer(doc.Title + "\n" + doc.Text)
		return
	}
	for i := range doc.Examples {
		ex := &doc.Examples[i]
		if ex.Manufacturer == "" {
			ex.Manufacturer = l.DetectManufacturer(ex.Name)
		}
		if doc.Manufacturer == "" {
			doc.Manufacturer = ex.Manufacturer
		}
	}
}

// DecodeExamples accepts a single example object, an array of them, or an
// object with an "examples" array.
func DecodeExamples(data []byte) ([]extract.Example, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.Mark(errors.New("empty document"), errors.ErrInvalid)
	}

	var examples []extract.Example
	if data[0] == '[' {
		if err := json.Unmarshal(data, &examples); err != nil {
			return nil, errors.Mark(err, errors.ErrInvalid)
		}
	} else {
		var wrapped struct {
			Examples []extract.Example `json:"examples"`
			extract.Example
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, errors.Mark(err, errors.ErrInvalid)
		}
		examples = wrapped.Examples
		if len(wrapped.Attributes) > 0 {
			examples = append(examples, wrapped.Example)
		}
	}

	examples = slices.DeleteFunc(examples, func(ex extract.Example) bool { return len(ex.Attributes) == 0 })
	if len(examples) == 0 {
		return nil, errors.Mark(errors.New("no product examples with attributes"), errors.ErrInvalid)
	}
	return examples, nil
}
