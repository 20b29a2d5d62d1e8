package headmeta

import "sync"

// Head is the document head a resolution is written into.
type Head interface {
	SetTitle(title string)
	// UpsertMetaTag sets the content of the <meta> whose attr ("name" or
	// "property") equals key, creating it when missing.
	UpsertMetaTag(attr, key, content string)
}

// Apply writes a found resolution into head: the title verbatim and the ten
// meta tags of Document.Tags. Any other resolution leaves head untouched.
// It reports whether head was mutated.
func Apply(head Head, res Resolution) bool {
	if !res.Found() {
		return false
	}
	head.SetTitle(res.Document.Title)
	for _, t := range res.Document.Tags() {
		head.UpsertMetaTag(t.Attr, t.Key, t.Content)
	}
	return true
}

// MemoryHead is an in-memory Head safe for concurrent writers. The last
// write wins.
type MemoryHead struct {
	mu    sync.RWMutex
	title string
	order []string
	tags  map[string]Tag
}

// NewMemoryHead returns a head starting with the given title and tags.
func NewMemoryHead(title string, tags ...Tag) *MemoryHead {
	h := &MemoryHead{title: title, tags: make(map[string]Tag)}
	for _, t := range tags {
		h.UpsertMetaTag(t.Attr, t.Key, t.Content)
	}
	return h
}

// SetTitle implements Head.
func (h *MemoryHead) SetTitle(title string) {
	h.mu.Lock()
	h.title = title
	h.mu.Unlock()
}

// UpsertMetaTag implements Head.
func (h *MemoryHead) UpsertMetaTag(attr, key, content string) {
	id := attr + "=" + key
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.tags[id]; !ok {
		h.order = append(h.order, id)
	}
	h.tags[id] = Tag{Attr: attr, Key: key, Content: content}
}

// Title returns the current title.
func (h *MemoryHead) Title() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.title
}

// Meta returns the content of the tag identified by attr and key.
func (h *MemoryHead) Meta(attr, key string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	t, ok := h.tags[attr+"="+key]
	return t.Content, ok
}

// Snapshot returns the tags in insertion order.
func (h *MemoryHead) Snapshot() []Tag {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Tag, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.tags[id])
	}
	return out
}
