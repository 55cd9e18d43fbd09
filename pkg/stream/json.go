package stream

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSONArray writes the stream to the output as a JSON array, encoding one
// element at a time so the full payload is never held twice in memory.
func WriteJSONArray[Model any](s Stream[Model], out io.Writer) error {
	if _, err := out.Write([]byte("[")); err != nil {
		return err
	}
	first := true
	for s.HasNext() {
		next, err := s.Next()
		if err != nil {
			return err
		}
		if !first {
			if _, err := out.Write([]byte(",")); err != nil {
				return err
			}
		}
		first = false
		encoded, err := json.Marshal(next)
		if err != nil {
			return err
		}
		if _, err := out.Write(encoded); err != nil {
			return err
		}
	}
	_, err := out.Write([]byte("]"))
	return err
}

// WriteSliceAsJSONArray writes the slice to the output as a JSON array.
func WriteSliceAsJSONArray[Model any](items []Model, out io.Writer) error {
	return WriteJSONArray(FromSlice(items, nil), out)
}

// jsonArrayStream decodes one element per token group from a JSON array.
type jsonArrayStream[Model any] struct {
	decoder *json.Decoder
	source  io.Closer
	visitor Visitor[Model]
	closed  bool
}

// FromJSONArray creates a stream reading a JSON array of models one element at
// a time. The visitor is applied to each decoded element before emission.
// When the source is an io.Closer, Close releases it.
func FromJSONArray[Model any](source io.Reader, visitor Visitor[Model]) (Stream[Model], error) {
	if visitor == nil {
		visitor = NoVisitor[Model]
	}
	decoder := json.NewDecoder(source)
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("expected JSON array, found %v", token)
	}
	closer, _ := source.(io.Closer)
	return &jsonArrayStream[Model]{decoder: decoder, source: closer, visitor: visitor}, nil
}

func (s *jsonArrayStream[Model]) HasNext() bool {
	return s.decoder.More()
}

func (s *jsonArrayStream[Model]) Next() (Model, error) {
	var next Model
	if !s.decoder.More() {
		return next, ErrNoMoreData
	}
	if err := s.decoder.Decode(&next); err != nil {
		return next, err
	}
	s.visitor(next)
	return next, nil
}

func (s *jsonArrayStream[Model]) Close() error {
	if s.closed || s.source == nil {
		return nil
	}
	s.closed = true
	return s.source.Close()
}
