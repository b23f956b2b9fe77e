// Package echo tells self-inflicted player changes apart from user actions.
//
// Applying a remote event to mpv makes mpv report the very change syncwatch just made. Without
// bookkeeping that report would be re-broadcast, re-applied by the peer and echoed back forever.
// A Suppressor counts the reports still expected so they can be swallowed one by one; a counter
// rather than a flag, because several remote events may be applied before mpv reports any of them.
package echo

import "sync"

// Suppressor is a mutex-guarded count of pending self-inflicted notifications.
// The zero value is ready to use with nothing pending.
type Suppressor struct {
	mu      sync.Mutex
	pending uint32
}

// NewSuppressor returns a Suppressor with initial notifications already expected.
func NewSuppressor(initial uint32) *Suppressor {
	return &Suppressor{pending: initial}
}

// Absorb records that one more notification is on its way and must not be forwarded.
// Call it before the mutation that triggers the notification.
func (s *Suppressor) Absorb() {
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
}

// TryConsume swallows one pending notification. It returns false when none is pending,
// meaning the notification came from the user.
func (s *Suppressor) TryConsume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == 0 {
		return false
	}
	s.pending--
	return true
}

// Pending returns the number of notifications still expected.
func (s *Suppressor) Pending() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}
