package agent

import (
	"sync"
	"time"
)

// dedupSet remembers recently reported URLs for a bounded window, so the
// same failure seen through several detection channels reports once.
type dedupSet struct {
	ttl time.Duration

	mu   sync.Mutex
	seen map[string]time.Time
}

func newDedupSet(ttl time.Duration) *dedupSet {
	return &dedupSet{ttl: ttl, seen: make(map[string]time.Time)}
}

// first reports whether url has not been seen within the window, and
// records it. Stale entries are evicted on the way.
func (s *dedupSet) first(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for u, seen := range s.seen {
		if now.Sub(seen) > s.ttl {
			delete(s.seen, u)
		}
	}

	if _, ok := s.seen[url]; ok {
		return false
	}
	s.seen[url] = now
	return true
}
