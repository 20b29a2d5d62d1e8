package folio

import _ "embed"

// defaultShell is the application shell used when SiteConfig.ShellPath is
// empty. Its title and description are replaced by the site's own at startup.
//
//go:embed embedded/index.html
var defaultShell []byte
