package folio

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/eringen/folio/headmeta"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedPosts(t *testing.T, s *Store, posts ...BlogPost) {
	t.Helper()
	for _, p := range posts {
		if err := s.SavePost(p); err != nil {
			t.Fatalf("SavePost(%s): %v", p.Slug, err)
		}
	}
}

func TestSaveAndGetPost(t *testing.T) {
	s := setupTestStore(t)

	post := BlogPost{
		Slug:      "test-post",
		Title:     "Test Post",
		Date:      "2024-01-15",
		Tags:      []string{"Go", " testing "},
		Summary:   "A test post summary",
		Content:   "# Test Content\n\nThis is test content.",
		Published: true,
	}
	seedPosts(t, s, post)

	got, err := s.GetPost("test-post")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != post.Title {
		t.Errorf("Title = %q, want %q", got.Title, post.Title)
	}
	if got.Content != post.Content {
		t.Errorf("Content = %q, want %q", got.Content, post.Content)
	}
	if got.Link != "/blog/test-post/" {
		t.Errorf("Link = %q, want /blog/test-post/", got.Link)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "go" || got.Tags[1] != "testing" {
		t.Errorf("Tags = %v, want [go testing]", got.Tags)
	}
}

func TestGetPostMissing(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.GetPost("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetPost error = %v, want ErrNotFound", err)
	}
}

func TestDraftsAreHidden(t *testing.T) {
	s := setupTestStore(t)
	seedPosts(t, s,
		BlogPost{Slug: "live", Title: "Live", Date: "2024-01-02", Published: true},
		BlogPost{Slug: "draft", Title: "Draft", Date: "2024-01-03"},
	)

	if _, err := s.GetPost("draft"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost(draft) error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetPostAny("draft"); err != nil {
		t.Errorf("GetPostAny(draft) failed: %v", err)
	}
	posts, err := s.ListPosts("")
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 || posts[0].Slug != "live" {
		t.Errorf("ListPosts = %v, want only live", posts)
	}
	all, err := s.ListAllPosts()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].Slug != "draft" {
		t.Errorf("ListAllPosts should return both, newest first; got %v", all)
	}
}

func TestListPostsByTag(t *testing.T) {
	s := setupTestStore(t)
	seedPosts(t, s,
		BlogPost{Slug: "a", Title: "A", Date: "2024-01-01", Tags: []string{"go"}, Published: true},
		BlogPost{Slug: "b", Title: "B", Date: "2024-01-02", Tags: []string{"golang", "web"}, Published: true},
	)

	posts, err := s.ListPosts("GO")
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 || posts[0].Slug != "a" {
		t.Errorf("ListPosts(GO) = %v, want only a", posts)
	}

	tags, err := s.ListTags()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"go", "golang", "web"}
	if len(tags) != len(want) {
		t.Fatalf("ListTags = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("ListTags[%d] = %q, want %q", i, tags[i], want[i])
		}
	}
}

func TestDeletePost(t *testing.T) {
	s := setupTestStore(t)
	seedPosts(t, s, BlogPost{Slug: "gone", Title: "Gone", Date: "2024-01-01", Published: true})
	if err := s.DeletePost("gone"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetPostAny("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("post still present after delete: %v", err)
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{",,", 0},
		{",go,", 1},
		{",go,web,", 2},
	}
	for _, tt := range tests {
		if got := ParseTags(tt.in); len(got) != tt.want {
			t.Errorf("ParseTags(%q) = %v, want %d tags", tt.in, got, tt.want)
		}
	}
}

func TestMetaDocuments(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.GetMetaDocument(ctx, "projects/foo"); !errors.Is(err, headmeta.ErrNotFound) {
		t.Fatalf("GetMetaDocument on empty store = %v, want headmeta.ErrNotFound", err)
	}

	doc := headmeta.Document{Title: "Foo", Description: "Bar", OGImage: "https://example.com/foo.jpg"}
	if err := s.SaveMetaDocument("projects/foo", doc); err != nil {
		t.Fatal(err)
	}
	got, err := s.MetaStore().Fetch(ctx, "projects/foo")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got != doc {
		t.Errorf("Fetch = %+v, want %+v", got, doc)
	}

	doc.Title = "Foo 2"
	if err := s.SaveMetaDocument("projects/foo", doc); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveMetaDocument("about", headmeta.Document{Title: "About"}); err != nil {
		t.Fatal(err)
	}
	entries, err := s.ListMetaDocuments()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListMetaDocuments = %v, want 2 entries", entries)
	}
	if entries[0].Key != "about" || entries[1].Key != "projects/foo" || entries[1].Title != "Foo 2" {
		t.Errorf("unexpected entries %+v", entries)
	}
	if entries[0].UpdatedAt == "" {
		t.Error("UpdatedAt should be set")
	}

	if err := s.DeleteMetaDocument("about"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetMetaDocument(ctx, "about"); !errors.Is(err, headmeta.ErrNotFound) {
		t.Errorf("deleted document still resolvable: %v", err)
	}
}
