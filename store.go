package folio

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/folio/headmeta"
)

// Store wraps the site's SQLite database: blog posts and metadata documents
// published from the admin dashboard.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// WAL lets page reads proceed while the admin writes; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure %s: %w", path, err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    tags TEXT NOT NULL,
    summary TEXT NOT NULL,
    content TEXT NOT NULL,
    published INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS meta_documents (
    key TEXT PRIMARY KEY,
    doc TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`)
	return err
}

const postColumns = `slug, title, date, tags, summary, content, published`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (BlogPost, error) {
	var p BlogPost
	var tags string
	var published int
	if err := row.Scan(&p.Slug, &p.Title, &p.Date, &tags, &p.Summary, &p.Content, &published); err != nil {
		return BlogPost{}, err
	}
	p.Tags = ParseTags(tags)
	p.Link = "/blog/" + p.Slug + "/"
	p.Published = published == 1
	return p, nil
}

func (s *Store) queryPosts(query string, args ...any) ([]BlogPost, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListPosts returns published posts ordered by date descending, optionally
// restricted to those carrying tag.
func (s *Store) ListPosts(tag string) ([]BlogPost, error) {
	if tag == "" {
		return s.queryPosts(`SELECT ` + postColumns + ` FROM posts WHERE published = 1 ORDER BY date DESC`)
	}
	return s.queryPosts(`SELECT `+postColumns+` FROM posts WHERE published = 1 AND instr(tags, ',' || ? || ',') > 0 ORDER BY date DESC`,
		normalizeTag(tag))
}

// ListAllPosts returns every post, drafts included, newest first.
func (s *Store) ListAllPosts() ([]BlogPost, error) {
	return s.queryPosts(`SELECT ` + postColumns + ` FROM posts ORDER BY date DESC`)
}

// ListTags returns the sorted, deduplicated tags of published posts.
func (s *Store) ListTags() ([]string, error) {
	posts, err := s.ListPosts("")
	if err != nil {
		return nil, err
	}
	return collectTags(posts), nil
}

func collectTags(posts []BlogPost) []string {
	set := make(map[string]struct{})
	for _, p := range posts {
		for _, t := range p.Tags {
			set[normalizeTag(t)] = struct{}{}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// GetPost returns a published post by slug, or ErrNotFound.
func (s *Store) GetPost(slug string) (BlogPost, error) {
	p, err := scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND published = 1`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return BlogPost{}, ErrNotFound
	}
	return p, err
}

// GetPostAny returns a post by slug regardless of published status.
func (s *Store) GetPostAny(slug string) (BlogPost, error) {
	p, err := scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return BlogPost{}, ErrNotFound
	}
	return p, err
}

// SavePost upserts a post. Tags are stored lowercased as ",a,b,".
func (s *Store) SavePost(p BlogPost) error {
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t = normalizeTag(t); t != "" {
			tags = append(tags, t)
		}
	}
	published := 0
	if p.Published {
		published = 1
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Slug, p.Title, p.Date, ","+strings.Join(tags, ",")+",", p.Summary, p.Content, published)
	return err
}

// DeletePost removes a post by slug.
func (s *Store) DeletePost(slug string) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE slug = ?`, slug)
	return err
}

// ParseTags splits a stored tag string such as ",go,web," into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// GetMetaDocument returns the admin-published document for key. It
// satisfies headmeta.Store through MetaStore.
func (s *Store) GetMetaDocument(ctx context.Context, key string) (headmeta.Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM meta_documents WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return headmeta.Document{}, fmt.Errorf("%w: %s", headmeta.ErrNotFound, key)
	}
	if err != nil {
		return headmeta.Document{}, fmt.Errorf("query meta %s: %w", key, err)
	}
	return headmeta.ParseDocument([]byte(raw))
}

// MetaStore exposes the published documents as a headmeta.Store.
func (s *Store) MetaStore() headmeta.Store {
	return headmeta.StoreFunc(s.GetMetaDocument)
}

// SaveMetaDocument upserts the document for key. The key must already be
// normalized.
func (s *Store) SaveMetaDocument(key string, doc headmeta.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode meta %s: %w", key, err)
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO meta_documents (key, doc, updated_at) VALUES (?, ?, ?)`,
		key, string(raw), time.Now().UTC().Format(time.RFC3339))
	return err
}

// DeleteMetaDocument removes the document for key.
func (s *Store) DeleteMetaDocument(key string) error {
	_, err := s.db.Exec(`DELETE FROM meta_documents WHERE key = ?`, key)
	return err
}

// ListMetaDocuments returns every published document's key, title and last
// update, ordered by key.
func (s *Store) ListMetaDocuments() ([]MetaEntry, error) {
	rows, err := s.db.Query(`SELECT key, doc, updated_at FROM meta_documents ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []MetaEntry
	for rows.Next() {
		var e MetaEntry
		var raw string
		if err := rows.Scan(&e.Key, &raw, &e.UpdatedAt); err != nil {
			return nil, err
		}
		if doc, err := headmeta.ParseDocument([]byte(raw)); err == nil {
			e.Title = doc.Title
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
