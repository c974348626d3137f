// Package store holds the issues received from the server, keyed by issue
// key. Lists elsewhere keep only ordered keys and read issues back from
// here, so a mutation of one issue is visible to every view of it.
package store

import (
	"errors"
	"sync"

	"github.com/ALT-F4-LLC/lintdeck/internal/model"
)

// ErrNotFound is returned when a key has never been received.
var ErrNotFound = errors.New("issue not in store")

// Store is the shared issue store. It is safe for concurrent use. Issues go
// in and come out as copies, so callers can never edit stored state except
// through Apply.
type Store struct {
	mu       sync.RWMutex
	issues   map[string]*model.Issue
	versions map[string]uint64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		issues:   make(map[string]*model.Issue),
		versions: make(map[string]uint64),
	}
}

// Snapshot is the state of one issue before an optimistic change, tagged
// with the version the change produced.
type Snapshot struct {
	key     string
	issue   *model.Issue
	version uint64
}

// Key returns the key of the snapshotted issue.
func (s Snapshot) Key() string {
	return s.key
}

// Receive stores issues as returned by the server, replacing any previous
// version of the same key.
func (s *Store) Receive(issues ...*model.Issue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, issue := range issues {
		if issue == nil || issue.Key == "" {
			continue
		}
		s.issues[issue.Key] = issue.Clone()
		s.versions[issue.Key]++
	}
}

// Get returns a copy of the issue with the given key.
func (s *Store) Get(key string) (*model.Issue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	issue, ok := s.issues[key]
	if !ok {
		return nil, false
	}
	return issue.Clone(), true
}

// Issues returns copies of the issues for keys, in order. Unknown keys are
// skipped.
func (s *Store) Issues(keys []string) []*model.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Issue, 0, len(keys))
	for _, key := range keys {
		if issue, ok := s.issues[key]; ok {
			out = append(out, issue.Clone())
		}
	}
	return out
}

// Version returns a counter that moves every time the issue with key is
// received, changed or restored.
func (s *Store) Version(key string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[key]
}

// Len returns the number of stored issues.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.issues)
}

// Apply edits the stored issue in place with fn and returns the state it
// had before. Pass the snapshot to Restore if the server rejects the
// change.
func (s *Store) Apply(key string, fn func(*model.Issue)) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[key]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	snap := Snapshot{key: key, issue: issue.Clone()}
	fn(issue)
	s.versions[key]++
	snap.version = s.versions[key]
	return snap, nil
}

// Restore puts back the issue as it was when snap was taken, but only if
// nothing received or changed it since. It reports whether it did; when it
// did not, the stored issue mixes the rejected change with later state and
// the caller should fetch it again.
func (s *Store) Restore(snap Snapshot) bool {
	if snap.issue == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions[snap.key] != snap.version {
		return false
	}
	s.issues[snap.key] = snap.issue.Clone()
	s.versions[snap.key]++
	return true
}
