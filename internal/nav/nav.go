// Package nav holds the navigation state of the issue browser. A location is
// the serialized filter plus the open issue, as url.Values; the browser
// reads it through a Navigator and changes it only by pushing a new one.
package nav

import (
	"net/url"
	"sync"

	"github.com/ALT-F4-LLC/lintdeck/internal/filter"
)

// Navigator is the port through which the page reads and changes the
// current location.
type Navigator interface {
	// Location returns a copy of the current location.
	Location() url.Values
	// Push makes loc the current location.
	Push(loc url.Values) error
	// Back returns to the previous location. It reports false when there is
	// nothing to go back to.
	Back() (url.Values, bool)
}

// Recorder persists visited locations.
type Recorder func(loc url.Values) error

// History is an in-memory Navigator with a back stack. Every push is handed
// to the optional recorder.
type History struct {
	mu     sync.Mutex
	stack  []url.Values
	record Recorder
	limit  int
}

// DefaultLimit bounds the back stack.
const DefaultLimit = 100

// Option configures a History.
type Option func(*History)

// WithRecorder persists every pushed location.
func WithRecorder(r Recorder) Option {
	return func(h *History) { h.record = r }
}

// WithLimit bounds the back stack to n locations.
func WithLimit(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.limit = n
		}
	}
}

// NewHistory returns a History starting at initial.
func NewHistory(initial url.Values, opts ...Option) *History {
	h := &History{limit: DefaultLimit}
	for _, opt := range opts {
		opt(h)
	}
	h.stack = []url.Values{clone(initial)}
	return h
}

// Location returns a copy of the current location.
func (h *History) Location() url.Values {
	h.mu.Lock()
	defer h.mu.Unlock()
	return clone(h.stack[len(h.stack)-1])
}

// Push makes loc current. Pushing the location that is already current is
// a no-op. The location is kept even when recording fails; the error is
// returned for the caller to report.
func (h *History) Push(loc url.Values) error {
	h.mu.Lock()
	current := h.stack[len(h.stack)-1]
	if same(current, loc) {
		h.mu.Unlock()
		return nil
	}
	h.stack = append(h.stack, clone(loc))
	if len(h.stack) > h.limit {
		h.stack = h.stack[len(h.stack)-h.limit:]
	}
	record := h.record
	h.mu.Unlock()

	if record != nil {
		return record(clone(loc))
	}
	return nil
}

// Back pops the current location.
func (h *History) Back() (url.Values, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.stack) < 2 {
		return nil, false
	}
	h.stack = h.stack[:len(h.stack)-1]
	return clone(h.stack[len(h.stack)-1]), true
}

// Depth returns how many locations are on the back stack.
func (h *History) Depth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stack)
}

// same compares two locations by filter and open issue.
func same(a, b url.Values) bool {
	return filter.Equal(a, b) && filter.Open(a) == filter.Open(b)
}

func clone(loc url.Values) url.Values {
	out := make(url.Values, len(loc))
	for k, v := range loc {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Encode returns the canonical string form of a location: the filter
// serialized without defaults, plus the open issue.
func Encode(loc url.Values) string {
	return filter.Location(filter.Parse(loc), filter.Open(loc)).Encode()
}

// Decode parses a string produced by Encode, or any query string.
func Decode(s string) (url.Values, error) {
	return url.ParseQuery(s)
}
