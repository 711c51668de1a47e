package source

import (
	"bytes"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/underthemoss/construction-taxonomy/errors"
)

// Page is an HTML catalog page rendered to extractor-friendly text
type Page struct {
	Title string
	Site  string
	Text  string
}

// ParseHTML renders a catalog page as text the extractor understands:
// list items become "* " bullets, table rows become "| a | b |" rows and
// definition lists become "term: definition" lines. Readability supplies the
// page title and site name; pages it cannot make sense of still render.
func ParseHTML(r io.Reader, ref string) (*Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", ref)
	}
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parse %s", ref), errors.ErrInvalid)
	}

	page := &Page{}
	if article, err := readability.FromReader(bytes.NewReader(data), pageURL(ref)); err == nil {
		page.Title = strings.TrimSpace(article.Title)
		page.Site = strings.TrimSpace(article.SiteName)
	}
	if page.Title == "" {
		if n := find(root, atom.Title); n != nil {
			page.Title = strings.TrimSpace(textOf(n))
		}
	}

	body := find(root, atom.Body)
	if body == nil {
		body = root
	}
	var w renderer
	w.node(body)
	page.Text = w.String()
	return page, nil
}

func pageURL(ref string) *url.URL {
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && u.Host != "" {
		return u
	}
	abs, err := filepath.Abs(ref)
	if err != nil {
		abs = ref
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
}

var skipped = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true,
	atom.Head: true, atom.Template: true, atom.Svg: true,
}

var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Br: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Ul: true, atom.Ol: true, atom.Dl: true,
	atom.Table: true, atom.Header: true, atom.Footer: true, atom.Main: true,
}

// renderer accumulates rendered lines
type renderer struct {
	lines []string
	cur   strings.Builder
}

func (w *renderer) flush() {
	if line := strings.Join(strings.Fields(w.cur.String()), " "); line != "" {
		w.lines = append(w.lines, line)
	}
	w.cur.Reset()
}

func (w *renderer) String() string {
	w.flush()
	if len(w.lines) == 0 {
		return ""
	}
	return strings.Join(w.lines, "\n") + "\n"
}

func (w *renderer) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.cur.WriteString(n.Data)
		return
	case html.ElementNode:
		if skipped[n.DataAtom] {
			return
		}
		switch n.DataAtom {
		case atom.Li:
			w.flush()
			w.cur.WriteString("* " + inline(n))
			w.flush()
			return
		case atom.Tr:
			w.flush()
			w.row(n)
			return
		case atom.Dt:
			w.flush()
			w.cur.WriteString(inline(n) + ":")
			return
		case atom.Dd:
			w.cur.WriteString(" " + inline(n))
			w.flush()
			return
		}
	}

	block := n.Type == html.ElementNode && blocks[n.DataAtom]
	if block {
		w.flush()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
	if block {
		w.flush()
	}
}

// row renders a table row with at least two cells. Header rows made only of
// <th> cells are dropped.
func (w *renderer) row(tr *html.Node) {
	var cells []string
	header := true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		if c.DataAtom == atom.Td {
			header = false
		}
		cells = append(cells, strings.ReplaceAll(inline(c), "|", "/"))
	}
	if len(cells) < 2 || header {
		return
	}
	w.lines = append(w.lines, "| "+strings.Join(cells, " | ")+" |")
}

// inline flattens the text of n onto one line
func inline(n *html.Node) string {
	return strings.Join(strings.Fields(textOf(n)), " ")
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipped[n.DataAtom] && n.DataAtom != atom.Head {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, a); found != nil {
			return found
		}
	}
	return nil
}
