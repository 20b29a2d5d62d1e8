package folio

import (
	"sync"

	"github.com/eringen/folio/headmeta"
)

// metaStats counts metadata resolutions by outcome for the dashboard.
type metaStats struct {
	mu     sync.Mutex
	counts map[headmeta.Status]int
	last   map[headmeta.Status]string
}

func newMetaStats() *metaStats {
	return &metaStats{
		counts: make(map[headmeta.Status]int),
		last:   make(map[headmeta.Status]string),
	}
}

func (s *metaStats) observe(res headmeta.Resolution, _ bool) {
	s.mu.Lock()
	s.counts[res.Status]++
	s.last[res.Status] = res.Key
	s.mu.Unlock()
}

// rows returns one row per outcome in a fixed order.
func (s *metaStats) rows() []MetaStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	statuses := []headmeta.Status{headmeta.StatusFound, headmeta.StatusUnavailable, headmeta.StatusSkipped, headmeta.StatusHome}
	out := make([]MetaStat, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, MetaStat{Status: st.String(), Count: s.counts[st], LastKey: s.last[st]})
	}
	return out
}
