package crm

import "sync/atomic"

// Session is an authenticated handle on the remote source
type Session struct {
	InstanceURL string
	AccessToken string
}

// sessionSlot is the single shared, swappable session reference.
// Re-authentication replaces the session in place, so every caller reads the
// current session through Current each time rather than caching a snapshot
type sessionSlot struct {
	cur atomic.Pointer[Session]
}

// Current returns the active session, or nil before Connect
func (s *sessionSlot) Current() *Session { return s.cur.Load() }

// Replace swaps in a new session; all in-flight callers observe it on their
// next Current read
func (s *sessionSlot) Replace(sess *Session) { s.cur.Store(sess) }
