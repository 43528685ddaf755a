// Package checkout aggregates the errors reported by the individual checkout
// steps so the page can surface the most important one first.
package checkout

import (
	"sort"
	"sync"

	"storefront/internal/validation"
)

// ErrorSink receives step errors under a key with a numeric priority.
// Lower numbers are more important.
type ErrorSink interface {
	SetCheckoutErrors(errs validation.Errors, key string, priority int)
}

// Entry is one step's reported errors.
type Entry struct {
	Key      string            `json:"key"`
	Priority int               `json:"priority"`
	Errors   validation.Errors `json:"errors"`
}

// Aggregator is an ErrorSink that keeps the latest report per key.
type Aggregator struct {
	mu      sync.Mutex
	entries map[string]Entry
	seq     map[string]int
	next    int
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		entries: make(map[string]Entry),
		seq:     make(map[string]int),
	}
}

// SetCheckoutErrors replaces the entry for key. Empty errs clear it.
func (a *Aggregator) SetCheckoutErrors(errs validation.Errors, key string, priority int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(errs) == 0 {
		delete(a.entries, key)
		delete(a.seq, key)
		return
	}
	a.entries[key] = Entry{Key: key, Priority: priority, Errors: errs}
	if _, ok := a.seq[key]; !ok {
		a.seq[key] = a.next
		a.next++
	}
}

// Clear drops the entry for key.
func (a *Aggregator) Clear(key string) {
	a.SetCheckoutErrors(nil, key, 0)
}

// Entries returns every entry, most important first; ties keep report order.
func (a *Aggregator) Entries() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Entry, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return a.seq[out[i].Key] < a.seq[out[j].Key]
	})
	return out
}

// Top returns the most important entry.
func (a *Aggregator) Top() (Entry, bool) {
	entries := a.Entries()
	if len(entries) == 0 {
		return Entry{}, false
	}
	return entries[0], true
}

var _ ErrorSink = (*Aggregator)(nil)
