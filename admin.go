package folio

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/folio/headmeta"
	"github.com/eringen/folio/views"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return a.renderAdminLogin(c, http.StatusOK, nil, "")
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if msgs := ValidateLogin(a.validator, &req); len(msgs) > 0 {
		return a.renderAdminLogin(c, http.StatusUnprocessableEntity, msgs, req.Username)
	}
	userOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(req.Username)), []byte(strings.ToLower(a.Config.AdminUser))) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(a.Config.AdminPassword)) == 1
	if !userOK || !passOK {
		a.loginLimiter.Record(ip)
		a.Logger.Warn("admin login failed", zap.String("remote_ip", ip))
		return a.renderAdminLogin(c, http.StatusUnauthorized, []string{"Invalid username or password"}, req.Username)
	}
	a.loginLimiter.Reset(ip)
	if err := setAdminSession(c, req.Username); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) renderAdminLogin(c echo.Context, status int, msgs []string, username string) error {
	return a.renderPage(c, page{
		status: status,
		body:   views.AdminLogin(msgs, username, CsrfToken(c)),
		meta:   &PageMeta{Title: "Sign in | " + a.Config.Name},
	})
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminPost(c echo.Context) error {
	post, err := a.Store.GetPostAny(c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	return a.renderPage(c, page{
		body: views.AdminPostForm(post, CsrfToken(c)),
		meta: &PageMeta{Title: "Edit " + post.Title + " | " + a.Config.Name},
	})
}

func (a *App) handleAdminSave(c echo.Context) error {
	title := strings.TrimSpace(c.FormValue("title"))
	slug := strings.TrimSpace(c.FormValue("slug"))
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return redirectWithMessage(c, "Slug is required. Add a title or slug.")
	}
	date := strings.TrimSpace(c.FormValue("date"))
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return redirectWithMessage(c, "Invalid date format. Use YYYY-MM-DD.")
	}
	post := BlogPost{
		Slug:      slug,
		Title:     title,
		Date:      date,
		Tags:      FilterEmpty(strings.Split(c.FormValue("tags"), ",")),
		Summary:   c.FormValue("summary"),
		Content:   c.FormValue("content"),
		Published: c.FormValue("published") != "",
	}
	if err := a.Store.SavePost(post); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return redirectWithMessage(c, "Post saved.")
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if err := a.Store.DeletePost(c.FormValue("slug")); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return redirectWithMessage(c, "Post deleted.")
}

// metaForm is a metadata document submitted from the dashboard.
type metaForm struct {
	Key string `validate:"required,max=512"`
	Doc headmeta.Document
}

func (a *App) handleAdminMetaSave(c echo.Context) error {
	form := metaForm{Key: headmeta.Normalize(strings.TrimSpace(c.FormValue("key")))}
	form.Doc = headmeta.Document{
		Title:              c.FormValue("title"),
		Description:        c.FormValue("description"),
		Keywords:           c.FormValue("keywords"),
		OGTitle:            c.FormValue("og:title"),
		OGDescription:      c.FormValue("og:description"),
		OGImage:            c.FormValue("og:image"),
		OGURL:              c.FormValue("og:url"),
		TwitterCard:        c.FormValue("twitter:card"),
		TwitterTitle:       c.FormValue("twitter:title"),
		TwitterDescription: c.FormValue("twitter:description"),
		TwitterImage:       c.FormValue("twitter:image"),
	}
	if err := c.Validate(&form); err != nil {
		return redirectWithMessage(c, "A path is required.")
	}
	if headmeta.Excluded(form.Key) {
		return redirectWithMessage(c, "Pages under /"+form.Key+" manage their own metadata.")
	}
	if err := a.Store.SaveMetaDocument(form.Key, form.Doc); err != nil {
		return err
	}
	return redirectWithMessage(c, "Metadata for /"+form.Key+" published.")
}

func (a *App) handleAdminMetaDelete(c echo.Context) error {
	key := headmeta.Normalize(c.FormValue("key"))
	if err := a.Store.DeleteMetaDocument(key); err != nil {
		return err
	}
	return redirectWithMessage(c, "Metadata for /"+key+" deleted.")
}

func redirectWithMessage(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Store.ListAllPosts()
	if err != nil {
		return err
	}
	metas, err := a.Store.ListMetaDocuments()
	if err != nil {
		return err
	}
	images, err := a.ListShareImages()
	if err != nil {
		return err
	}
	live := a.liveHead.Snapshot()
	tags := make([]views.HeadTag, len(live))
	for i, t := range live {
		tags[i] = views.HeadTag{Attr: t.Attr, Key: t.Key, Content: t.Content}
	}
	return a.renderPage(c, page{
		body: views.AdminDashboard(views.Dashboard{
			Posts:     posts,
			Metas:     metas,
			Images:    images,
			Message:   msg,
			CSRFToken: CsrfToken(c),
			LiveTitle: a.liveHead.Title(),
			LiveTags:  tags,
			Stats:     a.stats.rows(),
		}),
		meta: &PageMeta{Title: "Dashboard | " + a.Config.Name},
	})
}
