package headmeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MetaDir is where published metadata documents live, relative to the site
// root. A document for key k is served at /MetaDir/k.json.
const MetaDir = "assets/data/meta"

// maxDocumentSize bounds how much of a payload is read.
const maxDocumentSize = 64 << 10

// Store looks up a metadata document by key. Implementations return an error
// wrapping ErrNotFound when the key has no document.
type Store interface {
	Fetch(ctx context.Context, key string) (Document, error)
}

// StoreFunc adapts a function to the Store interface.
type StoreFunc func(ctx context.Context, key string) (Document, error)

// Fetch calls f.
func (f StoreFunc) Fetch(ctx context.Context, key string) (Document, error) {
	return f(ctx, key)
}

// FSStore reads documents from a file system laid out as {key}.json.
type FSStore struct {
	fsys fs.FS
}

// NewFSStore returns a store over fsys. fsys should be rooted at the
// metadata directory, e.g. os.DirFS("public/assets/data/meta").
func NewFSStore(fsys fs.FS) *FSStore {
	return &FSStore{fsys: fsys}
}

// Fetch implements Store.
func (s *FSStore) Fetch(ctx context.Context, key string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	name := key + ".json"
	if !fs.ValidPath(name) {
		return Document{}, fmt.Errorf("%w: invalid key %q", ErrNotFound, key)
	}
	f, err := s.fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return Document{}, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxDocumentSize))
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", name, err)
	}
	return ParseDocument(data)
}

// HTTPStore fetches documents from a site that publishes them at
// {base}/assets/data/meta/{key}.json.
type HTTPStore struct {
	base   string
	client *http.Client
}

// NewHTTPStore returns a store fetching from base. A nil client gets a
// default one with a short timeout.
func NewHTTPStore(base string, client *http.Client) *HTTPStore {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPStore{base: strings.TrimRight(base, "/"), client: client}
}

// Fetch implements Store. Any status other than 200 is an error; 404 wraps
// ErrNotFound.
func (s *HTTPStore) Fetch(ctx context.Context, key string) (Document, error) {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	u := s.base + "/" + MetaDir + "/" + strings.Join(segments, "/") + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Document{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("get %s: %w", u, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	case resp.StatusCode != http.StatusOK:
		return Document{}, fmt.Errorf("get %s: unexpected status %d", u, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", u, err)
	}
	return ParseDocument(data)
}

// Chain tries each store in order and returns the first document found.
// Only not-found results fall through; other errors stop the lookup.
type Chain []Store

// Fetch implements Store.
func (c Chain) Fetch(ctx context.Context, key string) (Document, error) {
	for _, s := range c {
		doc, err := s.Fetch(ctx, key)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Document{}, err
		}
	}
	return Document{}, fmt.Errorf("%w: %s", ErrNotFound, key)
}
