package ledger

import "time"

// SetClock is a test helper that fixes the creation clock of an in-memory store.
func SetClock(s Store, now func() time.Time) {
	if mem, ok := s.(*inMemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.now = now
	}
}
