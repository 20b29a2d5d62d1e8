// Package folio serves a personal website: a home page, a blog, and an app
// shell whose head carries per-route SEO and social metadata.
//
// Metadata documents are keyed by the normalized request path and resolved
// by the headmeta package. Every public page is rendered into a fresh copy of
// the shell; completed navigations are also published to a router that keeps
// a live head in sync for the admin dashboard.
package folio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/folio/headmeta"
	"github.com/eringen/folio/shell"
)

const shutdownTimeout = 10 * time.Second

// App is the central folio application. It wires together the store, the
// post cache, metadata resolution, handlers and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *PostCache
	Meta   *headmeta.Manager
	Router *headmeta.Router
	Logger *zap.Logger

	liveHead     *headmeta.MemoryHead
	stats        *metaStats
	shell        *shell.Template
	shellSrc     []byte
	metaStore    headmeta.Store
	validator    *FormValidator
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	subscription *headmeta.Subscription
}

// New creates a folio App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &App{
		Config:    cfg,
		Echo:      e,
		Logger:    zap.NewNop(),
		validator: NewFormValidator(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init opens the store, builds the shell and the metadata pipeline, and
// registers middleware and routes. Background work stops when ctx is done.
func (a *App) Init(ctx context.Context) error {
	if err := a.Config.validate(); err != nil {
		return fmt.Errorf("folio: invalid config: %w", err)
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("folio: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)
	a.loginLimiter = NewLoginLimiter(ctx, 5, time.Minute)

	if err := a.initShell(); err != nil {
		return err
	}
	if err := a.initMeta(ctx); err != nil {
		return err
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) initShell() error {
	src := a.shellSrc
	if src == nil && a.Config.ShellPath != "" {
		data, err := os.ReadFile(a.Config.ShellPath)
		if err != nil {
			return fmt.Errorf("folio: read shell: %w", err)
		}
		src = data
	}
	if src == nil {
		src = defaultShell
	}
	tmpl, err := newShell(src, a.Config)
	if err != nil {
		return fmt.Errorf("folio: parse shell: %w", err)
	}
	a.shell = tmpl
	return nil
}

func (a *App) initMeta(ctx context.Context) error {
	if a.metaStore == nil {
		a.metaStore = a.defaultMetaStore()
	}
	a.Router = headmeta.NewRouter()
	a.liveHead = headmeta.NewMemoryHead(a.Config.Name)
	a.stats = newMetaStats()
	a.Meta = headmeta.NewManager(
		headmeta.NewResolver(a.metaStore, a.Logger.Named("headmeta")),
		a.Router,
		a.liveHead,
		headmeta.WithLogger(a.Logger.Named("headmeta")),
		headmeta.WithObserver(a.stats.observe),
	)
	sub, err := a.Meta.Initialize(ctx, "/")
	if err != nil {
		return fmt.Errorf("folio: init metadata: %w", err)
	}
	a.subscription = sub
	return nil
}

// defaultMetaStore picks the document source named by Config.MetaSource.
func (a *App) defaultMetaStore() headmeta.Store {
	switch a.Config.MetaSource {
	case MetaSourceHTTP:
		return headmeta.NewHTTPStore(a.Config.MetaBaseURL, nil)
	case MetaSourceDB:
		return a.Store.MetaStore()
	default:
		dir := filepath.Join(a.Config.PublicDir, filepath.FromSlash(headmeta.MetaDir))
		return headmeta.Chain{
			headmeta.NewFSStore(os.DirFS(dir)),
			a.Store.MetaStore(),
		}
	}
}

// Start initializes the app and serves until ctx is done, then shuts the
// server down gracefully and releases resources.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	defer a.Close()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("listening", zap.String("addr", a.Config.Addr), zap.String("meta_source", a.Config.MetaSource))
		errCh <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.Logger.Info("shutting down")
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("folio: shutdown: %w", err)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.PublicDir)
	e.GET("/assets/data/meta/*", a.handleMetaDocument)
	e.Static("/assets", filepath.Join(a.Config.PublicDir, "assets"))
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	admin := e.Group("/admin", requireAdmin)
	admin.POST("/logout/", handleAdminLogout)
	admin.GET("/post/:slug/", a.handleAdminPost)
	admin.POST("/save/", a.handleAdminSave)
	admin.POST("/delete/", a.handleAdminDelete)
	admin.POST("/meta/", a.handleAdminMetaSave)
	admin.POST("/meta/delete/", a.handleAdminMetaDelete)
	admin.POST("/images/", a.handleShareImageUpload)
	admin.POST("/images/delete/", a.handleShareImageDelete)

	e.GET("/*", a.handleAppRoute)
}

// handleMetaDocument publishes the document for a key as JSON, for the
// client-side app that resolves metadata itself.
func (a *App) handleMetaDocument(c echo.Context) error {
	name := c.Param("*")
	if !strings.HasSuffix(name, ".json") {
		return echo.ErrNotFound
	}
	key := headmeta.Normalize(strings.TrimSuffix(name, ".json"))
	if key == "" || headmeta.Excluded(key) {
		return echo.ErrNotFound
	}
	doc, err := a.metaStore.Fetch(c.Request().Context(), key)
	if errors.Is(err, headmeta.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// Close stops metadata tracking and releases the store.
func (a *App) Close() error {
	if a.subscription != nil {
		a.subscription.Close()
	}
	if a.Router != nil {
		a.Router.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
