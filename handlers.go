package folio

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/markdown"
	"github.com/eringen/folio/views"
)

const homeLatestPosts = 3

func (a *App) handleHome(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	if len(posts) > homeLatestPosts {
		posts = posts[:homeLatestPosts]
	}
	return a.renderPage(c, page{
		body:    views.Home(a.viewConfig(), a.Config.SocialLinks, posts),
		resolve: true,
		jsonLD:  views.JsonLDScript(views.WebsiteJsonLD(a.viewConfig())),
	})
}

// handleAppRoute serves every other public path: the shell with the head
// resolved for that path, mounted for the client-side app.
func (a *App) handleAppRoute(c echo.Context) error {
	return a.renderPage(c, page{
		body:    views.AppRoute(c.Request().URL.Path),
		resolve: true,
	})
}

func (a *App) handleBlog(c echo.Context) error {
	tag := c.QueryParam("tag")
	posts, err := a.Cache.ListPosts(tag)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	return a.renderPage(c, page{
		body: views.BlogIndex(posts, tag, tags),
		meta: &PageMeta{
			Title:       "Blog | " + a.Config.Name,
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL, "blog"),
			OGType:      "website",
		},
		resolve: true,
	})
}

// handlePost serves a post. Its head comes from the post itself; blog/ is
// an excluded prefix, so resolution never touches it.
func (a *App) handlePost(c echo.Context) error {
	post, err := a.Cache.GetPost(c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return a.renderPage(c, page{
		body: views.Post(post, markdown.Markdown(post.Content), views.FilterRelatedPosts(post, posts)),
		meta: &PageMeta{
			Title:       post.Title + " | " + a.Config.Name,
			Description: post.Summary,
			URL:         BuildURL(a.Config.URL, "blog", post.Slug),
			OGType:      "article",
			Keywords:    views.JoinTags(post.Tags),
		},
		resolve: true,
		jsonLD:  views.JsonLDScript(views.BlogPostingJsonLD(a.viewConfig(), post)),
	})
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	metas, err := a.Store.ListMetaDocuments()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, metas)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.Config.PublicDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, "User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: "+a.Config.URL+"/sitemap.xml\n")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	code := http.StatusInternalServerError
	if errors.As(err, &he) {
		code = he.Code
	}
	switch {
	case code == http.StatusNotFound:
		if rerr := a.renderPage(c, page{status: code, body: views.NotFound()}); rerr != nil {
			a.Logger.Sugar().Errorf("render 404: %v", rerr)
		}
	case code >= http.StatusInternalServerError:
		a.Logger.Sugar().Errorf("server error: %v", err)
		if rerr := a.renderPage(c, page{status: code, body: views.ServerError()}); rerr != nil {
			a.Logger.Sugar().Errorf("render 500: %v", rerr)
		}
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}

func (a *App) viewConfig() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
}
