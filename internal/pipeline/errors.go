package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoSnapshot is returned when a stage finds no input artifact to work on.
var ErrNoSnapshot = errors.New("pipeline: no snapshot available")

// ParseError reports a raw snapshot whose shape is not a sequence of coin
// objects. Index is -1 when the top level itself is wrong.
type ParseError struct {
	Artifact string
	Index    int
	Err      error
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("parse %s: %v", e.Artifact, e.Err)
	}
	return fmt.Sprintf("parse %s: element %d: %v", e.Artifact, e.Index, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadError reports a cleaned record that cannot become a coin row.
type LoadError struct {
	Index int
	ID    string
	Field string
	Err   error
}

func (e *LoadError) Error() string {
	id := e.ID
	if id == "" {
		id = "?"
	}
	return fmt.Sprintf("load record %d (id=%s): field %s: %v", e.Index, id, e.Field, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
