// Package stream provides pull-based, lazy sequences of trading data models
// with combine, filter, JSON array and search-extension composition.
package stream

import "errors"

// ErrNoMoreData is returned by Next when a stream is exhausted.
var ErrNoMoreData = errors.New("no more objects")

// Visitor is a side-effect callback invoked exactly once per emitted element
// before it is returned to the caller.
type Visitor[Model any] func(Model)

// NoVisitor is a Visitor that does nothing.
func NoVisitor[Model any](Model) {}

// Stream is a pull-based iterator over trading data models. Close is
// idempotent and releases underlying resources on the first call.
type Stream[Model any] interface {
	// HasNext reports whether another element is available from Next. A
	// HasNext that hits an underlying failure returns true so that the error
	// surfaces from the following Next call.
	HasNext() bool
	// Next returns the next element, ErrNoMoreData when exhausted, or the
	// underlying failure.
	Next() (Model, error)
	// Close releases underlying resources.
	Close() error
}

// Collect drains a stream into a slice. The stream is not closed.
func Collect[Model any](s Stream[Model]) ([]Model, error) {
	var items []Model
	for s.HasNext() {
		item, err := s.Next()
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ForEach applies fn to every remaining element. The stream is not closed.
func ForEach[Model any](s Stream[Model], fn func(Model)) error {
	for s.HasNext() {
		item, err := s.Next()
		if err != nil {
			return err
		}
		fn(item)
	}
	return nil
}
