// Package collection holds the pure transforms applied to persisted record
// collections. Every function returns a new slice and never mutates its input.
package collection

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("record not found")

// Identifiable is implemented by every persisted record.
type Identifiable interface {
	RecordID() string
}

// Repository is the read/write surface a service sees for one collection.
type Repository[T Identifiable] interface {
	List() []T
	Get(id string) (T, bool)
	Add(ctx context.Context, item T) error
	Update(ctx context.Context, item T) error
	Delete(ctx context.Context, id string) error
	// Apply replaces the whole collection with the result of fn. fn may be
	// invoked more than once and must not have side effects.
	Apply(ctx context.Context, fn func(items []T) ([]T, error)) error
}

// Clone returns a shallow copy of items. A nil input yields an empty slice.
func Clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

// Append returns items with item added at the end.
func Append[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}

// Replace swaps the record whose id matches item's id.
func Replace[T Identifiable](items []T, item T) ([]T, bool) {
	out := Clone(items)
	for i := range out {
		if out[i].RecordID() == item.RecordID() {
			out[i] = item
			return out, true
		}
	}
	return out, false
}

// Remove drops the record with the given id.
func Remove[T Identifiable](items []T, id string) ([]T, bool) {
	out := make([]T, 0, len(items))
	found := false
	for _, it := range items {
		if it.RecordID() == id {
			found = true
			continue
		}
		out = append(out, it)
	}
	return out, found
}

func Find[T Identifiable](items []T, id string) (T, bool) {
	for _, it := range items {
		if it.RecordID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Filter keeps the records for which keep returns true.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0)
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func Count[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, it := range items {
		if pred(it) {
			n++
		}
	}
	return n
}

// Any reports whether at least one record satisfies pred.
func Any[T any](items []T, pred func(T) bool) bool {
	for _, it := range items {
		if pred(it) {
			return true
		}
	}
	return false
}
