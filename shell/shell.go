// Package shell holds the HTML application shell every page is rendered
// into. The shell's <head> carries the site-wide default title and meta
// tags; per-route metadata is written over it through headmeta.Head.
package shell

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Template is a parsed shell kept as source so each page gets its own copy.
type Template struct {
	src []byte
}

// Parse validates src as an HTML document with a <main> element.
func Parse(src []byte) (*Template, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse shell: %w", err)
	}
	if doc.Find("main").Length() == 0 {
		return nil, fmt.Errorf("parse shell: missing <main>")
	}
	return &Template{src: append([]byte(nil), src...)}, nil
}

// New returns a fresh document built from the template.
func (t *Template) New() *Document {
	// Parse succeeded on the same bytes, so this cannot fail.
	doc, _ := goquery.NewDocumentFromReader(bytes.NewReader(t.src))
	return &Document{doc: doc}
}

// Document is one page being rendered. It implements headmeta.Head.
type Document struct {
	mu  sync.Mutex
	doc *goquery.Document
}

// SetTitle replaces the text of <title>, creating it when missing.
func (d *Document) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	head := d.doc.Find("head").First()
	sel := head.Find("title")
	if sel.Length() == 0 {
		head.PrependHtml("<title></title>")
		sel = head.Find("title")
	}
	sel.First().SetText(title)
	sel.Slice(1, sel.Length()).Remove()
}

// UpsertMetaTag sets the content attribute of <meta attr="key">, appending
// the element to <head> when it does not exist yet.
func (d *Document) UpsertMetaTag(attr, key, content string) {
	if attr != "name" && attr != "property" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	head := d.doc.Find("head").First()
	sel := head.Find("meta").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, ok := s.Attr(attr)
		return ok && v == key
	})
	if sel.Length() == 0 {
		head.AppendHtml(fmt.Sprintf(`<meta %s="%s" content="%s">`,
			attr, html.EscapeString(key), html.EscapeString(content)))
		return
	}
	sel.First().SetAttr("content", content)
}

// Title returns the current <title> text.
func (d *Document) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find("head title").First().Text()
}

// Meta returns the content of <meta attr="key">.
func (d *Document) Meta(attr, key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var content string
	var found bool
	d.doc.Find("head meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr(attr); ok && v == key {
			content, _ = s.Attr("content")
			found = true
			return false
		}
		return true
	})
	return content, found
}

// SetCanonical points <link rel="canonical"> at href.
func (d *Document) SetCanonical(href string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	head := d.doc.Find("head").First()
	sel := head.Find(`link[rel="canonical"]`)
	if sel.Length() == 0 {
		head.AppendHtml(fmt.Sprintf(`<link rel="canonical" href="%s">`, html.EscapeString(href)))
		return
	}
	sel.First().SetAttr("href", href)
}

// AppendHead appends raw markup to <head>. Callers must pass trusted HTML.
func (d *Document) AppendHead(markup string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc.Find("head").First().AppendHtml(markup)
}

// SetMain replaces the content of <main> with trusted HTML.
func (d *Document) SetMain(markup string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc.Find("main").First().SetHtml(markup)
}

// SetText replaces the text of every element matching selector.
func (d *Document) SetText(selector, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc.Find(selector).SetText(text)
}

// Bytes renders the document; see WriteTo.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo renders the full document, including the doctype.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out, err := goquery.OuterHtml(d.doc.Selection)
	if err != nil {
		return 0, fmt.Errorf("render shell: %w", err)
	}
	n, err := io.WriteString(w, "<!DOCTYPE html>\n"+strings.TrimPrefix(out, "<!DOCTYPE html>"))
	return int64(n), err
}
