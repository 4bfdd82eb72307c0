// ABOUTME: Persisted backend settings: login cookie, watched rooms, background image
// ABOUTME: Stored as one JSON file, rewritten atomically on every change

package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/markalston/live-lottery/backend/models"
)

// ErrDuplicateRoom is returned when adding a room that is already watched
var ErrDuplicateRoom = errors.New("room is already watched")

// ErrRoomNotWatched is returned when removing a room that is not watched
var ErrRoomNotWatched = errors.New("room is not watched")

// SettingsStore guards the settings file
type SettingsStore struct {
	path string
	mu   sync.RWMutex
	data models.Settings
}

// NewSettingsStore loads path. A missing file starts empty; a corrupt file is an error.
func NewSettingsStore(path string) (*SettingsStore, error) {
	s := &SettingsStore{path: path}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return s, nil
}

// Cookie returns the stored login cookie, or "" when logged out
func (s *SettingsStore) Cookie() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Cookie
}

// SetCookie stores (or with "" clears) the login cookie
func (s *SettingsStore) SetCookie(cookie string) error {
	return s.update(func(d *models.Settings) error {
		d.Cookie = cookie
		return nil
	})
}

// Rooms returns the watched rooms in insertion order
func (s *SettingsStore) Rooms() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]int64, len(s.data.Rooms))
	copy(rooms, s.data.Rooms)
	return rooms
}

// AddRoom appends a room to the watched list
func (s *SettingsStore) AddRoom(id int64) error {
	if err := ValidateRoomID(id); err != nil {
		return err
	}
	return s.update(func(d *models.Settings) error {
		if slices.Contains(d.Rooms, id) {
			return ErrDuplicateRoom
		}
		d.Rooms = append(d.Rooms, id)
		return nil
	})
}

// RemoveRoom drops a room from the watched list
func (s *SettingsStore) RemoveRoom(id int64) error {
	return s.update(func(d *models.Settings) error {
		idx := slices.Index(d.Rooms, id)
		if idx < 0 {
			return ErrRoomNotWatched
		}
		d.Rooms = slices.Delete(d.Rooms, idx, idx+1)
		return nil
	})
}

// BackgroundImage returns the stored background image reference
func (s *SettingsStore) BackgroundImage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.BackgroundImage
}

// SetBackgroundImage stores the background image reference
func (s *SettingsStore) SetBackgroundImage(image string) error {
	return s.update(func(d *models.Settings) error {
		d.BackgroundImage = image
		return nil
	})
}

// update applies fn to a copy and persists it; memory only changes when the write succeeds.
func (s *SettingsStore) update(fn func(*models.Settings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data
	next.Rooms = slices.Clone(s.data.Rooms)
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

func (s *SettingsStore) write(data models.Settings) error {
	if data.Rooms == nil {
		data.Rooms = []int64{}
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}
