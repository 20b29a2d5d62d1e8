// Package headmeta keeps a page's <head> title and SEO/social meta tags in
// sync with the route being viewed. Per-route metadata lives in flat JSON
// documents addressed by the normalized URL path.
package headmeta

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by a Store when no document exists for a key.
	ErrNotFound = errors.New("headmeta: document not found")
	// ErrMalformed is returned when a payload is not a flat object of strings.
	ErrMalformed = errors.New("headmeta: malformed document")
)

// Document is the SEO and social metadata for one route.
// Absent fields are empty strings.
type Document struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`

	OGTitle       string `json:"og:title"`
	OGDescription string `json:"og:description"`
	OGImage       string `json:"og:image"`
	OGURL         string `json:"og:url"`

	TwitterCard        string `json:"twitter:card"`
	TwitterTitle       string `json:"twitter:title"`
	TwitterDescription string `json:"twitter:description"`
	TwitterImage       string `json:"twitter:image"`
}

// field binds a Document member to its tag key and its camelCase alias.
type field struct {
	key   string
	alias string
	get   func(*Document) *string
}

var fields = []field{
	{"title", "title", func(d *Document) *string { return &d.Title }},
	{"description", "description", func(d *Document) *string { return &d.Description }},
	{"keywords", "keywords", func(d *Document) *string { return &d.Keywords }},
	{"og:title", "ogTitle", func(d *Document) *string { return &d.OGTitle }},
	{"og:description", "ogDescription", func(d *Document) *string { return &d.OGDescription }},
	{"og:image", "ogImage", func(d *Document) *string { return &d.OGImage }},
	{"og:url", "ogUrl", func(d *Document) *string { return &d.OGURL }},
	{"twitter:card", "twitterCard", func(d *Document) *string { return &d.TwitterCard }},
	{"twitter:title", "twitterTitle", func(d *Document) *string { return &d.TwitterTitle }},
	{"twitter:description", "twitterDescription", func(d *Document) *string { return &d.TwitterDescription }},
	{"twitter:image", "twitterImage", func(d *Document) *string { return &d.TwitterImage }},
}

// UnmarshalJSON accepts both tag-name keys ("og:title") and camelCase keys
// ("ogTitle"). The tag-name key wins when both are present. Unknown keys are
// ignored; a known key holding anything but a string or null is malformed.
func (d *Document) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return fmt.Errorf("%w: expected JSON object", ErrMalformed)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var out Document
	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok {
			v, ok = raw[f.alias]
		}
		if !ok {
			continue
		}
		s, err := decodeString(v)
		if err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrMalformed, f.key, err)
		}
		*f.get(&out) = s
	}
	*d = out
	return nil
}

func decodeString(v json.RawMessage) (string, error) {
	if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", errors.New("not a string")
	}
	return s, nil
}

// ParseDocument decodes a JSON payload into a Document.
func ParseDocument(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		if errors.Is(err, ErrMalformed) {
			return Document{}, err
		}
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return d, nil
}

// Tag is one <meta> element written by Apply.
type Tag struct {
	Attr    string // "name" or "property"
	Key     string
	Content string
}

// Tags returns the ten meta tags that represent d, in a fixed order.
func (d Document) Tags() []Tag {
	return []Tag{
		{"name", "description", d.Description},
		{"name", "keywords", d.Keywords},
		{"property", "og:title", d.OGTitle},
		{"property", "og:description", d.OGDescription},
		{"property", "og:image", d.OGImage},
		{"property", "og:url", d.OGURL},
		{"name", "twitter:card", d.TwitterCard},
		{"name", "twitter:title", d.TwitterTitle},
		{"name", "twitter:description", d.TwitterDescription},
		{"name", "twitter:image", d.TwitterImage},
	}
}
