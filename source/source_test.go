package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/internal/testutil"
)

const catalogPage = `<!DOCTYPE html>
<html>
<head>
  <title>Cat 320 Hydraulic Excavator</title>
  <script>var specs = {"a": 1};</script>
</head>
<body>
  <h1>Cat 320 Specifications</h1>
  <ul>
    <li>Operating Weight: 22,500 kg</li>
    <li><b>Maximum Dig Depth</b>: 24 ft 1 in (7.34 m)</li>
  </ul>
  <table>
    <tr><th>Spec</th><th>Value</th></tr>
    <tr><th>Engine Model</th><td>Cat C7.1</td></tr>
    <tr><td>Net Power</td><td>121 kW</td></tr>
    <tr><td colspan="2">footnote</td></tr>
  </table>
  <dl>
    <dt>Bucket Capacity</dt>
    <dd>1.19 m3</dd>
  </dl>
  <p>Built by Caterpillar.</p>
</body>
</html>
`

func TestParseHTML(t *testing.T) {
	page, err := ParseHTML(strings.NewReader(catalogPage), "testdata/cat-320.html")
	require.NoError(t, err)

	assert.Contains(t, page.Title, "320")
	assert.Equal(t, []string{
		"Cat 320 Specifications",
		"* Operating Weight: 22,500 kg",
		"* Maximum Dig Depth: 24 ft 1 in (7.34 m)",
		"| Engine Model | Cat C7.1 |",
		"| Net Power | 121 kW |",
		"Bucket Capacity: 1.19 m3",
		"Built by Caterpillar.",
	}, strings.Split(strings.TrimSuffix(page.Text, "\n"), "\n"))
	assert.NotContains(t, page.Text, "var specs")
}

func TestDetectManufacturer(t *testing.T) {
	l := New(nil)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"full name", "Built by Caterpillar Inc.", "Caterpillar"},
		{"earlier list entry wins", "CAT engine, Caterpillar dealer", "Caterpillar"},
		{"ignores case", "cat c7.1 acert", "CAT"},
		{"multi word", "John Deere 350G LC", "John Deere"},
		{"whole words only", "concatenated specifications", ""},
		{"none", "Operating Weight: 22,500 kg", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.DetectManufacturer(tt.text))
		})
	}
}

func TestDecodeExamples(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		count int
	}{
		{"single object", `{"name":"320","attributes":[{"name":"Weight","value":22500,"unit":"kg"}]}`, 1},
		{"array", `[{"name":"a","attributes":[{"name":"Weight","value":1}]},{"name":"b","attributes":[{"name":"Weight","value":2}]}]`, 2},
		{"wrapped", `{"examples":[{"name":"a","attributes":[{"name":"Weight","value":1}]}]}`, 1},
		{"drops examples without attributes", `[{"name":"a"},{"name":"b","attributes":[{"name":"Weight","value":2}]}]`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			examples, err := DecodeExamples([]byte(tt.data))
			require.NoError(t, err)
			assert.Len(t, examples, tt.count)
		})
	}

	for _, bad := range []string{``, `{`, `{"name":"x"}`, `[]`} {
		_, err := DecodeExamples([]byte(bad))
		assert.True(t, errors.IsInvalid(err), bad)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "a-deere.txt"), "John Deere 350G\nOperating Weight: 35,000 kg\n")
	testutil.WriteFile(t, filepath.Join(dir, "b-cat.html"), catalogPage)
	testutil.WriteFile(t, filepath.Join(dir, "c-jlg.md"), "# JLG 600S\n* Platform Height: 60 ft\n")
	testutil.WriteFile(t, filepath.Join(dir, "d-examples.json"),
		`[{"name":"Genie S-65","attributes":[{"name":"Platform Height","value":65,"unit":"ft"}]},
		  {"name":"X","manufacturer":"Skyjack","attributes":[{"name":"Platform Height","value":60,"unit":"ft"}]}]`)
	testutil.WriteFile(t, filepath.Join(dir, "e-broken.json"), `{"name":`)
	testutil.WriteFile(t, filepath.Join(dir, "notes.pdf"), "%PDF")
	testutil.WriteFile(t, filepath.Join(dir, "nested", "f-kubota.txt"), "Kubota KX040\nBucket Width: 24 in\n")
	testutil.WriteFile(t, filepath.Join(dir, ".cache", "g.txt"), "Weight: 1 kg\n")

	docs, err := New(nil).LoadDir(dir)
	require.NoError(t, err)

	var refs, makers []string
	for _, d := range docs {
		rel, err := filepath.Rel(dir, d.Ref)
		require.NoError(t, err)
		refs = append(refs, filepath.ToSlash(rel))
		makers = append(makers, d.Manufacturer)
	}
	assert.Equal(t, []string{"a-deere.txt", "b-cat.html", "c-jlg.md", "d-examples.json", "nested/f-kubota.txt"}, refs)
	assert.Equal(t, []string{"John Deere", "Caterpillar", "JLG", "Genie", "Kubota"}, makers)

	examples := docs[3]
	assert.Equal(t, KindExamples, examples.Kind)
	require.Len(t, examples.Examples, 2)
	assert.Equal(t, "Genie", examples.Examples[0].Manufacturer)
	assert.Equal(t, "Skyjack", examples.Examples[1].Manufacturer)
	assert.Equal(t, examples.Ref, examples.Examples[0].Ref)

	assert.Equal(t, KindHTML, docs[1].Kind)
	assert.Contains(t, docs[1].Text, "| Net Power | 121 kW |")
}

func TestLoadDirMissing(t *testing.T) {
	_, err := New(nil).LoadDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestFetchWithoutSource(t *testing.T) {
	err := Fetch(context.Background(), "", t.TempDir())
	assert.True(t, errors.Is(err, errors.ErrNotConfigured))
}

func TestLoadDirFollowsSymlink(t *testing.T) {
	target := t.TempDir()
	testutil.WriteFile(t, filepath.Join(target, "jlg.txt"), "JLG 600S\nPlatform Height: 60 ft\n")
	link := filepath.Join(t.TempDir(), "catalog")
	require.NoError(t, os.Symlink(target, link))

	docs, err := New(nil).LoadDir(link)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "JLG", docs[0].Manufacturer)
}

func TestFetchLocalDir(t *testing.T) {
	src := t.TempDir()
	testutil.WriteFile(t, filepath.Join(src, "genie.txt"), "Genie GS-1930\nPlatform Height: 19 ft\n")
	dst := filepath.Join(t.TempDir(), "catalog")

	require.NoError(t, Fetch(context.Background(), src, dst))
	docs, err := New(nil).LoadDir(dst)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Genie", docs[0].Manufacturer)
}
