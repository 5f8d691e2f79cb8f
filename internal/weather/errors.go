package weather

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyLocation     = errors.New("location is empty")
	ErrLocationNotFound  = errors.New("no matching location")
	ErrLocationAmbiguous = errors.New("location is ambiguous")
)

// ResolutionError reports that a place name could not be mapped to exactly one location.
type ResolutionError struct {
	Location   string
	Candidates int
	Err        error
}

func (e *ResolutionError) Error() string {
	if errors.Is(e.Err, ErrLocationAmbiguous) {
		return fmt.Sprintf("resolve %q: %v (%d candidates)", e.Location, e.Err, e.Candidates)
	}
	return fmt.Sprintf("resolve %q: %v", e.Location, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// FetchError reports a failed provider call or an unusable provider payload.
// Op is "geocode" or "forecast".
type FetchError struct {
	Op       string
	Location string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Location, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
