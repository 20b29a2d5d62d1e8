package folio

import "github.com/eringen/folio/views"

// BlogPost is a post stored in SQLite. Post pages under /blog/ build their
// own head from the post rather than from a metadata document.
type BlogPost = views.BlogPost

// SocialLink is one entry of the home page's social list.
type SocialLink = views.SocialLink

// MetaEntry is a metadata document published through the admin dashboard.
type MetaEntry = views.MetaEntry

// MetaStat summarizes resolutions with one outcome.
type MetaStat = views.MetaStat

// PageMeta carries a blog page's OpenGraph and SEO metadata into the shell head.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Keywords    string
}
