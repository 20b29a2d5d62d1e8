package views

// SiteConfig holds the site-wide values templates read.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// BlogPost is the core content type stored in SQLite and rendered by templates.
type BlogPost struct {
	Title     string
	Date      string
	Tags      []string
	Summary   string
	Link      string
	Slug      string
	Content   string
	Published bool
}

// SocialLink is one entry of the home page's social list.
type SocialLink struct {
	Platform string `yaml:"platform"`
	Icon     string `yaml:"icon"`
	URL      string `yaml:"url"`
}

// MetaEntry is a metadata document listed on the admin dashboard.
type MetaEntry struct {
	Key       string
	Title     string
	UpdatedAt string
}

// ShareImage is an uploaded image sized for social cards.
type ShareImage struct {
	Filename string
	URL      string
}

// MetaStat is how often metadata resolution ended with one status.
type MetaStat struct {
	Status  string
	Count   int
	LastKey string
}

// HeadTag is one <meta> of the live head shown on the dashboard.
type HeadTag struct {
	Attr    string
	Key     string
	Content string
}

// Dashboard is everything the admin dashboard renders.
type Dashboard struct {
	Posts     []BlogPost
	Metas     []MetaEntry
	Images    []ShareImage
	Message   string
	CSRFToken string
	LiveTitle string
	LiveTags  []HeadTag
	Stats     []MetaStat
}
