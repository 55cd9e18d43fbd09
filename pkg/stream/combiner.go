package stream

// StreamSupplier hands out the next sub-stream, or false when none remain.
// Suppliers let combiners open expensive sub-streams only when needed.
type StreamSupplier[Model any] func() (Stream[Model], bool)

// combiner concatenates sub-streams lazily, applying an element filter.
type combiner[Model any] struct {
	supplier StreamSupplier[Model]
	filter   func(Model) bool
	current  Stream[Model]
	peek     *Model
	err      error
	closed   bool
}

// Combine concatenates the supplied streams into a single stream that reads
// from each in sequence. Elements failing the filter are silently skipped. A
// nil filter accepts everything.
func Combine[Model any](streams []Stream[Model], filter func(Model) bool) Stream[Model] {
	index := 0
	return CombineSupplier(func() (Stream[Model], bool) {
		if index >= len(streams) {
			return nil, false
		}
		next := streams[index]
		index++
		return next, true
	}, filter)
}

// CombineSupplier concatenates sub-streams produced on demand by the supplier,
// applying an optional element filter. The current sub-stream is closed as
// soon as it is exhausted; the next is opened only when needed.
func CombineSupplier[Model any](supplier StreamSupplier[Model], filter func(Model) bool) Stream[Model] {
	if filter == nil {
		filter = func(Model) bool { return true }
	}
	return &combiner[Model]{supplier: supplier, filter: filter}
}

func (c *combiner[Model]) Next() (Model, error) {
	var zero Model
	if c.peek != nil {
		next := *c.peek
		c.peek = nil
		return next, nil
	}
	next, found, err := c.scanForNext()
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, ErrNoMoreData
	}
	return next, nil
}

func (c *combiner[Model]) HasNext() bool {
	if c.peek != nil || c.err != nil {
		return true
	}
	next, found, err := c.scanForNext()
	if err != nil {
		// park the failure so the caller's Next surfaces it
		c.err = err
		return true
	}
	if found {
		c.peek = &next
	}
	return found
}

func (c *combiner[Model]) Close() error {
	c.closed = true
	if c.current != nil {
		current := c.current
		c.current = nil
		return current.Close()
	}
	return nil
}

func (c *combiner[Model]) scanForNext() (Model, bool, error) {
	var zero Model
	if c.err != nil {
		err := c.err
		c.err = nil
		return zero, false, err
	}
	for {
		if err := c.advanceToStreamWithData(); err != nil {
			return zero, false, err
		}
		if c.current == nil {
			// at end of data
			return zero, false, nil
		}
		next, err := c.current.Next()
		if err != nil {
			return zero, false, err
		}
		if c.filter(next) {
			return next, true, nil
		}
	}
}

func (c *combiner[Model]) advanceToStreamWithData() error {
	if c.current != nil && c.current.HasNext() {
		return nil
	}
	for {
		if c.current != nil {
			if err := c.current.Close(); err != nil {
				c.current = nil
				return err
			}
			c.current = nil
		}
		next, ok := c.supplier()
		if !ok {
			return nil
		}
		if next.HasNext() {
			c.current = next
			return nil
		}
		c.current = next
	}
}
