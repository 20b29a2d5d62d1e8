package views

import (
	"net/url"
	"strconv"

	"github.com/a-h/templ"
)

// AdminLogin renders the login form with any validation messages.
func AdminLogin(messages []string, username, csrfToken string) templ.Component {
	return component(func(w *writer) {
		w.raw(`<section class="admin-login"><h1>Sign in</h1>`)
		if len(messages) > 0 {
			w.raw(`<ul class="errors" role="alert">`)
			for _, m := range messages {
				w.raw(`<li>`)
				w.text(m)
				w.raw(`</li>`)
			}
			w.raw(`</ul>`)
		}
		w.raw(`<form method="post" action="/admin/login/">`)
		writeCSRF(w, csrfToken)
		w.raw(`<label>Username or email <input name="username" maxlength="128" autocomplete="username"`)
		w.attr("value", username)
		w.raw(`></label><label>Password <input type="password" name="password" maxlength="256" autocomplete="current-password"></label><button type="submit">Sign in</button></form></section>`)
	})
}

func writeCSRF(w *writer, token string) {
	w.raw(`<input type="hidden" name="_csrf"`)
	w.attr("value", token)
	w.raw(`>`)
}

// AdminDashboard lists posts and metadata documents with their edit forms,
// and shows the head most recently applied for visitor navigation.
func AdminDashboard(d Dashboard) templ.Component {
	return component(func(w *writer) {
		w.raw(`<section class="admin"><header><h1>Dashboard</h1><form method="post" action="/admin/logout/">`)
		writeCSRF(w, d.CSRFToken)
		w.raw(`<button type="submit">Sign out</button></form></header>`)
		if d.Message != "" {
			w.raw(`<p class="flash" role="status">`)
			w.text(d.Message)
			w.raw(`</p>`)
		}

		w.raw(`<h2>Posts</h2><table class="posts"><tbody>`)
		for _, p := range d.Posts {
			w.raw(`<tr><td><a`)
			w.href("/admin/post/" + PathEscape(p.Slug) + "/")
			w.raw(`>`)
			w.text(p.Title)
			w.raw(`</a></td><td>`)
			w.text(p.Date)
			w.raw(`</td><td>`)
			if p.Published {
				w.raw(`published`)
			} else {
				w.raw(`draft`)
			}
			w.raw(`</td></tr>`)
		}
		w.raw(`</tbody></table>`)
		writePostForm(w, BlogPost{Published: true}, d.CSRFToken)

		w.raw(`<h2>Page metadata</h2><table class="metas"><tbody>`)
		for _, m := range d.Metas {
			w.raw(`<tr><td><code>/`)
			w.text(m.Key)
			w.raw(`</code></td><td>`)
			w.text(m.Title)
			w.raw(`</td><td>`)
			w.text(m.UpdatedAt)
			w.raw(`</td><td><form method="post" action="/admin/meta/delete/">`)
			writeCSRF(w, d.CSRFToken)
			w.raw(`<input type="hidden" name="key"`)
			w.attr("value", m.Key)
			w.raw(`><button type="submit">Delete</button></form></td></tr>`)
		}
		w.raw(`</tbody></table>`)
		writeMetaForm(w, d.CSRFToken)

		w.raw(`<h2>Share images</h2><ul class="share-images">`)
		for _, img := range d.Images {
			w.raw(`<li><img width="240" height="126" alt=""`)
			w.attr("src", img.URL)
			w.raw(`><input readonly`)
			w.attr("value", img.URL)
			w.raw(`><form method="post" action="/admin/images/delete/">`)
			writeCSRF(w, d.CSRFToken)
			w.raw(`<input type="hidden" name="filename"`)
			w.attr("value", img.Filename)
			w.raw(`><button type="submit">Delete</button></form></li>`)
		}
		w.raw(`</ul><form method="post" action="/admin/images/" enctype="multipart/form-data">`)
		writeCSRF(w, d.CSRFToken)
		w.raw(`<input type="file" name="image" accept="image/jpeg,image/png,image/gif" required><button type="submit">Upload</button></form>`)

		w.raw(`<h2>Live head</h2><p class="live-title">`)
		w.text(d.LiveTitle)
		w.raw(`</p><dl class="live-tags">`)
		for _, t := range d.LiveTags {
			w.raw(`<dt>`)
			w.text(t.Attr + "=" + t.Key)
			w.raw(`</dt><dd>`)
			w.text(t.Content)
			w.raw(`</dd>`)
		}
		w.raw(`</dl><table class="meta-stats"><tbody>`)
		for _, st := range d.Stats {
			w.raw(`<tr><th>`)
			w.text(st.Status)
			w.raw(`</th><td>`)
			w.text(strconv.Itoa(st.Count))
			w.raw(`</td><td><code>`)
			w.text(st.LastKey)
			w.raw(`</code></td></tr>`)
		}
		w.raw(`</tbody></table></section>`)
	})
}

// AdminPostForm renders the edit form for one post.
func AdminPostForm(post BlogPost, csrfToken string) templ.Component {
	return component(func(w *writer) {
		writePostForm(w, post, csrfToken)
	})
}

func writePostForm(w *writer, p BlogPost, csrfToken string) {
	w.raw(`<form class="post-form" method="post" action="/admin/save/">`)
	writeCSRF(w, csrfToken)
	w.raw(`<label>Title <input name="title"`)
	w.attr("value", p.Title)
	w.raw(`></label><label>Slug <input name="slug"`)
	w.attr("value", p.Slug)
	w.raw(`></label><label>Date <input name="date" placeholder="YYYY-MM-DD"`)
	w.attr("value", p.Date)
	w.raw(`></label><label>Tags <input name="tags"`)
	w.attr("value", JoinTags(p.Tags))
	w.raw(`></label><label>Summary <textarea name="summary">`)
	w.text(p.Summary)
	w.raw(`</textarea></label><label>Content <textarea name="content" rows="20">`)
	w.text(p.Content)
	w.raw(`</textarea></label><label><input type="checkbox" name="published" value="1"`)
	if p.Published {
		w.raw(` checked`)
	}
	w.raw(`> Published</label><button type="submit">Save</button></form>`)
	if p.Slug != "" {
		w.raw(`<form method="post" action="/admin/delete/">`)
		writeCSRF(w, csrfToken)
		w.raw(`<input type="hidden" name="slug"`)
		w.attr("value", p.Slug)
		w.raw(`><button type="submit">Delete</button></form>`)
	}
}

var metaFormFields = []struct{ name, label string }{
	{"title", "Title"},
	{"description", "Description"},
	{"keywords", "Keywords"},
	{"og:title", "OG title"},
	{"og:description", "OG description"},
	{"og:image", "OG image"},
	{"og:url", "OG URL"},
	{"twitter:card", "Twitter card"},
	{"twitter:title", "Twitter title"},
	{"twitter:description", "Twitter description"},
	{"twitter:image", "Twitter image"},
}

func writeMetaForm(w *writer, csrfToken string) {
	w.raw(`<form class="meta-form" method="post" action="/admin/meta/">`)
	writeCSRF(w, csrfToken)
	w.raw(`<label>Path <input name="key" placeholder="projects/foo" required></label>`)
	for _, f := range metaFormFields {
		w.raw(`<label>`)
		w.text(f.label)
		w.raw(` <input`)
		w.attr("name", f.name)
		w.raw(`></label>`)
	}
	w.raw(`<button type="submit">Publish</button></form>`)
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}
