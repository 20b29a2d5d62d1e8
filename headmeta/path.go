package headmeta

import "strings"

// ExcludedPrefixes lists normalized path prefixes whose routes manage their
// own metadata. The manager never fetches or writes anything for them.
var ExcludedPrefixes = []string{"blog/", "studio/", "artifact/"}

// Normalize strips every leading and trailing slash from path.
func Normalize(path string) string {
	return strings.Trim(path, "/")
}

// PathOf drops the query string and fragment from a navigated URL.
func PathOf(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		return url[:i]
	}
	return url
}

// Excluded reports whether the normalized path belongs to a route that
// manages its own metadata.
func Excluded(normalized string) bool {
	for _, prefix := range ExcludedPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}
	return false
}
