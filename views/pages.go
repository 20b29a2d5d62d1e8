package views

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"
)

func component(fn func(w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{ctx: ctx, w: out}
		fn(w)
		return w.err
	})
}

// Home renders the landing page: intro, social links and latest posts.
func Home(cfg SiteConfig, links []SocialLink, latest []BlogPost) templ.Component {
	return component(func(w *writer) {
		w.raw(`<section class="hero" data-aos="fade-up"><h1>`)
		w.text(cfg.Name)
		w.raw(`</h1>`)
		if cfg.Description != "" {
			w.raw(`<p class="lead">`)
			w.text(cfg.Description)
			w.raw(`</p>`)
		}
		w.raw(`</section>`)
		writeSocialLinks(w, links)
		if len(latest) > 0 {
			w.raw(`<section class="latest"><h2>Latest writing</h2>`)
			writePostList(w, latest)
			w.raw(`</section>`)
		}
	})
}

func writeSocialLinks(w *writer, links []SocialLink) {
	if len(links) == 0 {
		return
	}
	w.raw(`<ul class="social">`)
	for _, l := range links {
		w.raw(`<li><a`)
		w.href(l.URL)
		w.attr("aria-label", l.Platform)
		w.raw(` target="_blank" rel="noopener"><i`)
		w.attr("class", "ai "+l.Icon)
		w.raw(`></i><span>`)
		w.text(l.Platform)
		w.raw(`</span></a></li>`)
	}
	w.raw(`</ul>`)
}

func writePostList(w *writer, posts []BlogPost) {
	w.raw(`<ul class="posts">`)
	for _, p := range posts {
		w.raw(`<li><a`)
		w.href(p.Link)
		w.raw(`>`)
		w.text(p.Title)
		w.raw(`</a> <time`)
		w.attr("datetime", p.Date)
		w.raw(`>`)
		w.text(p.Date)
		w.raw(`</time>`)
		if p.Summary != "" {
			w.raw(`<p>`)
			w.text(p.Summary)
			w.raw(`</p>`)
		}
		w.raw(`</li>`)
	}
	w.raw(`</ul>`)
}

// BlogIndex lists published posts, optionally filtered by tag.
func BlogIndex(posts []BlogPost, activeTag string, tags []string) templ.Component {
	return component(func(w *writer) {
		w.raw(`<section class="blog"><h1>Blog</h1><nav class="tags">`)
		for _, t := range tags {
			w.raw(`<a`)
			w.href("/blog/?tag=" + url.QueryEscape(t))
			if t == activeTag {
				w.raw(` class="tag active" aria-current="true"`)
			} else {
				w.raw(` class="tag"`)
			}
			w.raw(`>`)
			w.text(t)
			w.raw(`</a>`)
		}
		w.raw(`</nav>`)
		if len(posts) == 0 {
			w.raw(`<p class="empty">Nothing here yet.</p>`)
		} else {
			writePostList(w, posts)
		}
		w.raw(`</section>`)
	})
}

// Post renders one post around its rendered body.
func Post(post BlogPost, body templ.Component, related []BlogPost) templ.Component {
	return component(func(w *writer) {
		w.raw(`<article class="post"><header><h1>`)
		w.text(post.Title)
		w.raw(`</h1><time`)
		w.attr("datetime", post.Date)
		w.raw(`>`)
		w.text(post.Date)
		w.raw(`</time>`)
		if len(post.Tags) > 0 {
			w.raw(`<p class="tags">`)
			w.text(JoinTags(post.Tags))
			w.raw(`</p>`)
		}
		w.raw(`</header><div class="prose">`)
		w.render(body)
		w.raw(`</div></article>`)
		if len(related) > 0 {
			w.raw(`<aside class="related"><h2>Related</h2>`)
			writePostList(w, related)
			w.raw(`</aside>`)
		}
	})
}

// AppRoute is the mount point for client-rendered routes. The head has
// already been resolved server-side.
func AppRoute(path string) templ.Component {
	return component(func(w *writer) {
		w.raw(`<div id="app"`)
		w.attr("data-path", path)
		w.raw(`></div>`)
	})
}

// NotFound renders the 404 page body.
func NotFound() templ.Component {
	return component(func(w *writer) {
		w.raw(`<section class="error"><h1>Page not found</h1><p>The page you are looking for does not exist.</p><a href="/">Go home</a></section>`)
	})
}

// ServerError renders the 500 page body.
func ServerError() templ.Component {
	return component(func(w *writer) {
		w.raw(`<section class="error"><h1>Something went wrong</h1><p>Please try again later.</p></section>`)
	})
}
