package shell

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio/headmeta"
)

const testShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Default Title</title>
<meta name="description" content="Default description">
<meta property="og:title" content="Default OG">
</head>
<body><main></main></body>
</html>`

var _ headmeta.Head = (*Document)(nil)

func render(t *testing.T, d *Document) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	_, err := d.WriteTo(&buf)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(buf.String(), "<!DOCTYPE html>\n<html"))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestParseRequiresMain(t *testing.T) {
	_, err := Parse([]byte(`<html><head></head><body></body></html>`))
	assert.Error(t, err)
}

func TestApplyUpdatesAndAppendsTags(t *testing.T) {
	tmpl, err := Parse([]byte(testShell))
	require.NoError(t, err)

	d := tmpl.New()
	applied := headmeta.Apply(d, headmeta.Resolution{
		Status:   headmeta.StatusFound,
		Document: headmeta.Document{Title: "Foo", Description: "Bar"},
	})
	require.True(t, applied)

	doc := render(t, d)
	assert.Equal(t, "Foo", doc.Find("title").Text())
	assert.Equal(t, 1, doc.Find("title").Length())

	desc := doc.Find(`meta[name="description"]`)
	assert.Equal(t, 1, desc.Length())
	assert.Equal(t, "Bar", desc.AttrOr("content", "?"))

	og := doc.Find(`meta[property="og:title"]`)
	assert.Equal(t, 1, og.Length())
	assert.Equal(t, "", og.AttrOr("content", "?"))

	card := doc.Find(`meta[name="twitter:card"]`)
	assert.Equal(t, 1, card.Length())
	assert.Equal(t, "", card.AttrOr("content", "?"))

	// 1 charset + 10 managed tags
	assert.Equal(t, 11, doc.Find("head meta").Length())
}

func TestDocumentsAreIndependent(t *testing.T) {
	tmpl, err := Parse([]byte(testShell))
	require.NoError(t, err)

	first := tmpl.New()
	first.SetTitle("Changed")
	second := tmpl.New()
	assert.Equal(t, "Changed", first.Title())
	assert.Equal(t, "Default Title", second.Title())
}

func TestUnavailableKeepsDefaults(t *testing.T) {
	tmpl, err := Parse([]byte(testShell))
	require.NoError(t, err)
	d := tmpl.New()
	assert.False(t, headmeta.Apply(d, headmeta.Resolution{Status: headmeta.StatusUnavailable}))
	assert.Equal(t, "Default Title", d.Title())
	desc, ok := d.Meta("name", "description")
	assert.True(t, ok)
	assert.Equal(t, "Default description", desc)
}

func TestContentIsEscaped(t *testing.T) {
	tmpl, err := Parse([]byte(`<html><head></head><body><main></main></body></html>`))
	require.NoError(t, err)
	d := tmpl.New()
	d.SetTitle(`<script>x</script>`)
	d.UpsertMetaTag("name", "description", `"quoted" & <b>`)
	d.SetCanonical("https://example.com/a?b=1&c=2")

	doc := render(t, d)
	assert.Equal(t, `<script>x</script>`, doc.Find("title").Text())
	assert.Equal(t, 0, doc.Find("head script").Length())
	assert.Equal(t, `"quoted" & <b>`, doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	assert.Equal(t, "https://example.com/a?b=1&c=2", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
}

func TestUpsertRejectsUnknownAttr(t *testing.T) {
	tmpl, err := Parse([]byte(testShell))
	require.NoError(t, err)
	d := tmpl.New()
	d.UpsertMetaTag("http-equiv", "refresh", "0")
	_, ok := d.Meta("http-equiv", "refresh")
	assert.False(t, ok)
}

func TestSetMain(t *testing.T) {
	tmpl, err := Parse([]byte(testShell))
	require.NoError(t, err)
	d := tmpl.New()
	d.SetMain(`<h1 id="hello">Hello</h1>`)
	doc := render(t, d)
	assert.Equal(t, "Hello", doc.Find("main #hello").Text())
}
