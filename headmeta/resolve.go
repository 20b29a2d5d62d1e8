package headmeta

import (
	"context"

	"go.uber.org/zap"
)

// Status says how a resolution ended.
type Status int

const (
	// StatusHome means the path normalized to "" and carries no override.
	StatusHome Status = iota
	// StatusSkipped means the path is under an excluded prefix.
	StatusSkipped
	// StatusUnavailable means the fetch failed (missing, network, malformed).
	StatusUnavailable
	// StatusFound means a document was fetched.
	StatusFound
)

func (s Status) String() string {
	switch s {
	case StatusHome:
		return "home"
	case StatusSkipped:
		return "skipped"
	case StatusUnavailable:
		return "unavailable"
	case StatusFound:
		return "found"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of resolving one path. Document is only
// meaningful when Status is StatusFound.
type Resolution struct {
	Key      string
	Status   Status
	Document Document
}

// Found reports whether the resolution carries a document.
func (r Resolution) Found() bool {
	return r.Status == StatusFound
}

// Resolver maps navigated paths to metadata documents.
type Resolver struct {
	store  Store
	logger *zap.Logger
}

// NewResolver returns a Resolver reading from store. A nil logger is
// replaced by a no-op logger.
func NewResolver(store Store, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve normalizes path and looks up its document. Fetch failures are
// logged and reported as StatusUnavailable; Resolve never returns an error
// and never retries.
func (r *Resolver) Resolve(ctx context.Context, path string) Resolution {
	key := Normalize(PathOf(path))
	switch {
	case key == "":
		return Resolution{Status: StatusHome}
	case Excluded(key):
		return Resolution{Key: key, Status: StatusSkipped}
	}
	doc, err := r.store.Fetch(ctx, key)
	if err != nil {
		r.logger.Warn("metadata unavailable", zap.String("key", key), zap.Error(err))
		return Resolution{Key: key, Status: StatusUnavailable}
	}
	return Resolution{Key: key, Status: StatusFound, Document: doc}
}
