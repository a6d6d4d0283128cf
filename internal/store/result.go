package store

import "fmt"

// Result is the outcome of a lookup: either Found with a record, or Absent.
//
// The zero Result is Absent. A Found result holding a zero-value record is
// still Found; callers must check Found rather than inspecting the record.
type Result[R any] struct {
	record R
	found  bool
}

// Found wraps a record that exists in the store.
func Found[R any](r R) Result[R] {
	return Result[R]{record: r, found: true}
}

// Absent returns the marker for a key with no record.
func Absent[R any]() Result[R] {
	return Result[R]{}
}

// Found reports whether the lookup found a record.
func (r Result[R]) Found() bool {
	return r.found
}

// Get returns the record and whether it was found, in comma-ok form.
func (r Result[R]) Get() (R, bool) {
	return r.record, r.found
}

// Record returns the found record, or the zero value of R when absent.
func (r Result[R]) Record() R {
	return r.record
}

// String renders "Found(<record>)" or "Absent".
func (r Result[R]) String() string {
	if !r.found {
		return "Absent"
	}
	return fmt.Sprintf("Found(%v)", r.record)
}
