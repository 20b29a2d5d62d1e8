package headmeta

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"/":                "",
		"///":              "",
		"/projects/foo":    "projects/foo",
		"projects/foo/":    "projects/foo",
		"//projects/foo//": "projects/foo",
		"about":            "about",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
		assert.Equal(t, Normalize(in), Normalize(Normalize(in)), "idempotent for %q", in)
		assert.Equal(t, Normalize(in), Normalize("/"+in+"/"), "extra slashes for %q", in)
	}
}

func TestPathOf(t *testing.T) {
	assert.Equal(t, "/projects/foo", PathOf("/projects/foo?tab=1"))
	assert.Equal(t, "/projects/foo", PathOf("/projects/foo#top"))
	assert.Equal(t, "/", PathOf("/"))
}

func TestExcluded(t *testing.T) {
	assert.True(t, Excluded("blog/post-1"))
	assert.True(t, Excluded("studio/x"))
	assert.True(t, Excluded("artifact/a/b"))
	assert.False(t, Excluded("blog"), "the blog index itself has no trailing segment")
	assert.False(t, Excluded("projects/blog/x"))
	assert.False(t, Excluded("blogger/x"))
}

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"title":"Foo","og:title":"OG","twitterCard":"summary","extra":1}`))
	require.NoError(t, err)
	assert.Equal(t, "Foo", doc.Title)
	assert.Equal(t, "OG", doc.OGTitle)
	assert.Equal(t, "summary", doc.TwitterCard)
	assert.Empty(t, doc.Description)

	doc, err = ParseDocument([]byte(`{"og:title":"tag","ogTitle":"camel"}`))
	require.NoError(t, err)
	assert.Equal(t, "tag", doc.OGTitle)

	doc, err = ParseDocument([]byte(`{"title":null}`))
	require.NoError(t, err)
	assert.Empty(t, doc.Title)

	for _, payload := range []string{`[]`, `"x"`, `{"title":5}`, `{not json`, ``} {
		_, err := ParseDocument([]byte(payload))
		assert.ErrorIs(t, err, ErrMalformed, "payload %q", payload)
	}
}

func TestFSStore(t *testing.T) {
	store := NewFSStore(fstest.MapFS{
		"projects/foo.json": {Data: []byte(`{"title":"Foo"}`)},
		"broken.json":       {Data: []byte(`nope`)},
	})
	ctx := context.Background()

	doc, err := store.Fetch(ctx, "projects/foo")
	require.NoError(t, err)
	assert.Equal(t, "Foo", doc.Title)

	_, err = store.Fetch(ctx, "projects/missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Fetch(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Fetch(ctx, "broken")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestHTTPStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/assets/data/meta/projects/foo.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"title":"Foo","description":"Bar"}`))
		case "/assets/data/meta/down.json":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL+"/", srv.Client())
	ctx := context.Background()

	doc, err := store.Fetch(ctx, "projects/foo")
	require.NoError(t, err)
	assert.Equal(t, Document{Title: "Foo", Description: "Bar"}, doc)

	_, err = store.Fetch(ctx, "nothing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Fetch(ctx, "down")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestChain(t *testing.T) {
	missing := StoreFunc(func(context.Context, string) (Document, error) { return Document{}, ErrNotFound })
	found := StoreFunc(func(_ context.Context, key string) (Document, error) { return Document{Title: key}, nil })
	broken := StoreFunc(func(context.Context, string) (Document, error) { return Document{}, errors.New("boom") })

	doc, err := Chain{missing, found}.Fetch(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "k", doc.Title)

	_, err = Chain{broken, found}.Fetch(context.Background(), "k")
	assert.EqualError(t, err, "boom")

	_, err = Chain{missing}.Fetch(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

// countingStore records every key fetched.
type countingStore struct {
	mu   sync.Mutex
	keys []string
	docs map[string]Document
}

func (s *countingStore) Fetch(_ context.Context, key string) (Document, error) {
	s.mu.Lock()
	s.keys = append(s.keys, key)
	s.mu.Unlock()
	doc, ok := s.docs[key]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (s *countingStore) fetched() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...)
}

func TestResolveHomeSkipsFetch(t *testing.T) {
	store := &countingStore{}
	r := NewResolver(store, nil)
	for _, p := range []string{"", "/", "//"} {
		res := r.Resolve(context.Background(), p)
		assert.Equal(t, StatusHome, res.Status)
		assert.False(t, res.Found())
	}
	assert.Empty(t, store.fetched())
}

func TestResolveExcludedSkipsFetchAndMutation(t *testing.T) {
	store := &countingStore{docs: map[string]Document{"blog/post-1": {Title: "nope"}}}
	head := NewMemoryHead("Default")
	r := NewResolver(store, nil)
	for _, p := range []string{"/blog/post-1", "/studio/x/", "artifact/y"} {
		res := r.Resolve(context.Background(), p)
		assert.Equal(t, StatusSkipped, res.Status)
		assert.False(t, Apply(head, res))
	}
	assert.Empty(t, store.fetched())
	assert.Equal(t, "Default", head.Title())
	assert.Empty(t, head.Snapshot())
}

func TestApplyFoundDocument(t *testing.T) {
	store := &countingStore{docs: map[string]Document{
		"projects/foo": {Title: "Foo", Description: "Bar"},
	}}
	head := NewMemoryHead("Default", Tag{"name", "keywords", "old"})
	res := NewResolver(store, nil).Resolve(context.Background(), "/projects/foo")
	require.Equal(t, StatusFound, res.Status)
	require.True(t, Apply(head, res))

	assert.Equal(t, "Foo", head.Title())
	desc, _ := head.Meta("name", "description")
	assert.Equal(t, "Bar", desc)

	tags := head.Snapshot()
	assert.Len(t, tags, 10)
	for _, tag := range tags {
		if tag.Key == "description" {
			continue
		}
		assert.Empty(t, tag.Content, "%s=%s", tag.Attr, tag.Key)
	}
	og, ok := head.Meta("property", "og:title")
	assert.True(t, ok)
	assert.Empty(t, og)
}

func TestResolveFailureLeavesHeadUnchanged(t *testing.T) {
	head := NewMemoryHead("Default", Tag{"name", "description", "shell"})
	failing := StoreFunc(func(context.Context, string) (Document, error) {
		return Document{}, errors.New("network down")
	})
	res := NewResolver(failing, nil).Resolve(context.Background(), "/projects/foo")
	assert.Equal(t, StatusUnavailable, res.Status)
	assert.Equal(t, "projects/foo", res.Key)
	assert.False(t, Apply(head, res))
	assert.Equal(t, "Default", head.Title())
	desc, _ := head.Meta("name", "description")
	assert.Equal(t, "shell", desc)
}

func TestRouterDropsForSlowSubscriber(t *testing.T) {
	r := NewRouter()
	ch, cancel := r.Subscribe()
	for i := 0; i < subscriberBuffer+5; i++ {
		r.Publish(NavigationEnd{URL: "/x"})
	}
	cancel()
	cancel()
	n := 0
	for range ch {
		n++
	}
	assert.Equal(t, subscriberBuffer, n)

	r.Close()
	closed, _ := r.Subscribe()
	_, ok := <-closed
	assert.False(t, ok)
}

func TestManagerEndToEnd(t *testing.T) {
	store := &countingStore{docs: map[string]Document{
		"projects/foo": {Title: "Foo", Description: "Bar"},
	}}
	head := NewMemoryHead("Shell")
	router := NewRouter()

	var mu sync.Mutex
	outcomes := map[string]Status{}
	var applied atomic.Int32
	m := NewManager(NewResolver(store, nil), router, head, WithObserver(func(res Resolution, ok bool) {
		mu.Lock()
		outcomes[res.Key] = res.Status
		mu.Unlock()
		if ok {
			applied.Add(1)
		}
	}))

	sub, err := m.Initialize(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, "Shell", head.Title(), "home keeps the shell defaults")

	router.Publish(NavigationEnd{URL: "/projects/foo"})
	require.Eventually(t, func() bool {
		return head.Title() == "Foo" && len(head.Snapshot()) == 10
	}, 2*time.Second, 5*time.Millisecond)
	afterProject := head.Snapshot()

	router.Publish(NavigationEnd{URL: "/blog/post-1"})
	sub.Close()

	assert.Equal(t, map[string]Status{
		"":             StatusHome,
		"projects/foo": StatusFound,
		"blog/post-1":  StatusSkipped,
	}, outcomes)
	assert.Equal(t, int32(1), applied.Load())
	assert.Equal(t, "Foo", head.Title(), "excluded route leaves the title alone")
	assert.Equal(t, afterProject, head.Snapshot(), "excluded route leaves the tags alone")
	assert.Equal(t, []string{"projects/foo"}, store.fetched())
}

func TestManagerAppliesPreResolvedEvents(t *testing.T) {
	store := &countingStore{}
	head := NewMemoryHead("Shell")
	router := NewRouter()
	var observed atomic.Int32
	m := NewManager(NewResolver(store, nil), router, head, WithObserver(func(Resolution, bool) {
		observed.Add(1)
	}))
	sub, err := m.Initialize(context.Background(), "/")
	require.NoError(t, err)

	res := Resolution{Key: "projects/foo", Status: StatusFound, Document: Document{Title: "Foo"}}
	router.Publish(NavigationEnd{URL: "/projects/foo", Resolved: &res})
	sub.Close()

	assert.Equal(t, "Foo", head.Title())
	assert.Empty(t, store.fetched(), "a resolved event must not be fetched again")
	assert.Equal(t, int32(1), observed.Load(), "only the initial resolution is observed")
}

func TestManagerStopsWithContext(t *testing.T) {
	router := NewRouter()
	m := NewManager(NewResolver(&countingStore{}, nil), router, NewMemoryHead(""))
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := m.Initialize(ctx, "/")
	require.NoError(t, err)
	cancel()
	<-sub.Done()
	sub.Close()
}

func TestManagerRequiresCollaborators(t *testing.T) {
	_, err := NewManager(NewResolver(&countingStore{}, nil), nil, NewMemoryHead("")).Initialize(context.Background(), "/")
	assert.Error(t, err)
}
