// ABOUTME: Authenticated session state shared by the TUI controllers
// ABOUTME: The root model writes it; controllers read copies of its fields

package session

import "github.com/markalston/live-lottery/cli/internal/client"

// Session holds the identity and settings produced by authentication.
// Each field has a single writer (the root model); readers get copies.
type Session struct {
	account         *client.Account
	watchedRooms    []int64
	backgroundImage string
}

// New creates an empty session
func New() *Session {
	return &Session{}
}

// Account returns a copy of the logged-in identity, or nil
func (s *Session) Account() *client.Account {
	if s.account == nil {
		return nil
	}
	a := *s.account
	return &a
}

// SetAccount records the logged-in identity
func (s *Session) SetAccount(a *client.Account) {
	if a == nil {
		s.account = nil
		return
	}
	cp := *a
	s.account = &cp
}

// WatchedRooms returns a copy of the ordered watched-room list
func (s *Session) WatchedRooms() []int64 {
	out := make([]int64, len(s.watchedRooms))
	copy(out, s.watchedRooms)
	return out
}

// SetWatchedRooms replaces the watched-room list after a refresh from the backend
func (s *Session) SetWatchedRooms(rooms []int64) {
	s.watchedRooms = make([]int64, len(rooms))
	copy(s.watchedRooms, rooms)
}

// BackgroundImage returns the configured background image reference
func (s *Session) BackgroundImage() string {
	return s.backgroundImage
}

// SetBackgroundImage records the background image reference
func (s *Session) SetBackgroundImage(image string) {
	s.backgroundImage = image
}

// Clear drops everything, used on logout
func (s *Session) Clear() {
	s.account = nil
	s.watchedRooms = nil
	s.backgroundImage = ""
}
