package folio

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/headmeta"
	"github.com/eringen/folio/shell"
)

// page describes one server-rendered response.
type page struct {
	status int
	body   templ.Component
	// meta is the page's own head. Applied before metadata resolution, so a
	// published document for the same path overrides it unless the path is
	// excluded.
	meta *PageMeta
	// resolve looks up the request path's metadata document.
	resolve bool
	jsonLD  string
}

// renderPage renders p into a fresh copy of the shell. Successful public
// pages are published to the router as completed navigations, together with
// their resolution, so each page view is fetched once.
func (a *App) renderPage(c echo.Context, p page) error {
	ctx := c.Request().Context()
	path := c.Request().URL.Path
	doc := a.shell.New()

	if p.meta != nil {
		applyPageMeta(doc, *p.meta)
	}
	var res headmeta.Resolution
	if p.resolve {
		res = a.Meta.NavigateHead(ctx, doc, path)
	}
	if p.jsonLD != "" {
		doc.AppendHead(p.jsonLD)
	}

	var body bytes.Buffer
	if err := p.body.Render(ctx, &body); err != nil {
		return fmt.Errorf("render body: %w", err)
	}
	doc.SetMain(body.String())

	out, err := doc.Bytes()
	if err != nil {
		return err
	}
	status := p.status
	if status == 0 {
		status = http.StatusOK
	}
	if err := c.HTMLBlob(status, out); err != nil {
		return err
	}
	if p.resolve && status < http.StatusBadRequest {
		a.Router.Publish(headmeta.NavigationEnd{URL: path, Resolved: &res})
	}
	return nil
}

// applyPageMeta writes a page's own metadata, e.g. a blog post, into doc.
func applyPageMeta(doc *shell.Document, m PageMeta) {
	doc.SetTitle(m.Title)
	doc.UpsertMetaTag("name", "description", m.Description)
	if m.Keywords != "" {
		doc.UpsertMetaTag("name", "keywords", m.Keywords)
	}
	doc.UpsertMetaTag("property", "og:title", m.Title)
	doc.UpsertMetaTag("property", "og:description", m.Description)
	doc.UpsertMetaTag("property", "og:type", m.OGType)
	doc.UpsertMetaTag("name", "twitter:card", "summary")
	doc.UpsertMetaTag("name", "twitter:title", m.Title)
	doc.UpsertMetaTag("name", "twitter:description", m.Description)
	if m.URL != "" {
		doc.UpsertMetaTag("property", "og:url", m.URL)
		doc.SetCanonical(m.URL)
	}
}

// newShell builds the site's shell template, stamping the configured name
// and description over the source defaults.
func newShell(src []byte, cfg SiteConfig) (*shell.Template, error) {
	base, err := shell.Parse(src)
	if err != nil {
		return nil, err
	}
	doc := base.New()
	doc.SetTitle(cfg.Name)
	doc.UpsertMetaTag("name", "description", cfg.Description)
	doc.UpsertMetaTag("property", "og:site_name", cfg.Name)
	doc.SetText(".brand", cfg.Name)
	stamped, err := doc.Bytes()
	if err != nil {
		return nil, err
	}
	return shell.Parse(stamped)
}
