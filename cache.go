package folio

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = errors.New("folio: post not found")

// postSource is the part of Store the cache reads from.
type postSource interface {
	ListPosts(tag string) ([]BlogPost, error)
}

// postSnapshot is one load of published posts with derived indexes.
type postSnapshot struct {
	posts   []BlogPost
	tags    []string
	bySlug  map[string]int
	fetched time.Time
}

// PostCache keeps published posts in memory for ttl. Metadata documents are
// never cached here; every navigation fetches its document fresh.
type PostCache struct {
	mu    sync.RWMutex
	snap  *postSnapshot
	ttl   time.Duration
	store postSource
	now   func() time.Time
}

// NewPostCache creates a PostCache backed by s.
func NewPostCache(s postSource, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl, now: time.Now}
}

func (c *PostCache) fresh(snap *postSnapshot) bool {
	return snap != nil && c.now().Sub(snap.fetched) < c.ttl
}

// Invalidate drops the snapshot so the next read reloads from the store.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}

// snapshot returns a fresh snapshot, reloading under the write lock only
// when the current one expired.
func (c *PostCache) snapshot() (*postSnapshot, error) {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()
	if c.fresh(snap) {
		return snap, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fresh(c.snap) {
		return c.snap, nil
	}
	posts, err := c.store.ListPosts("")
	if err != nil {
		return nil, err
	}
	snap = &postSnapshot{
		posts:   posts,
		tags:    collectTags(posts),
		bySlug:  make(map[string]int, len(posts)),
		fetched: c.now(),
	}
	for i, p := range posts {
		snap.bySlug[p.Slug] = i
	}
	c.snap = snap
	return snap, nil
}

// ListPosts returns published posts, optionally filtered by tag.
func (c *PostCache) ListPosts(tag string) ([]BlogPost, error) {
	snap, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return snap.posts, nil
	}
	want := normalizeTag(tag)
	var filtered []BlogPost
	for _, p := range snap.posts {
		for _, t := range p.Tags {
			if normalizeTag(t) == want {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// ListTags returns all unique tags from published posts.
func (c *PostCache) ListTags() ([]string, error) {
	snap, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.tags, nil
}

// GetPost returns a published post by slug, or ErrNotFound.
func (c *PostCache) GetPost(slug string) (BlogPost, error) {
	snap, err := c.snapshot()
	if err != nil {
		return BlogPost{}, err
	}
	i, ok := snap.bySlug[slug]
	if !ok {
		return BlogPost{}, ErrNotFound
	}
	return snap.posts[i], nil
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
