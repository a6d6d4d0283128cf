// Package store provides the keyed record lookup used to resolve items.
//
// The store answers point lookups by identifier with an explicit
// two-variant Result:
//   - Found: the record stored under the identifier
//   - Absent: no record exists under the identifier
//
// Absence is a normal outcome, never an error. The only error a lookup can
// return is an *InvalidKeyError, raised when the identifier is empty or not
// valid UTF-8; that is a caller bug rather than a data condition.
//
// # Ownership
//
// A Memory store is an explicit value owned by whoever creates it and passed
// to consumers. There is no package-level default store. Readers depend on
// the Reader interface; writes go through the concrete *Memory owned by the
// external collaborator that populates it.
//
// # Concurrency
//
// Lookups are synchronous and never block on I/O. Memory guards its map with
// a sync.RWMutex, but two reads of the same key interleaved with an external
// write may observe different records. Callers that need a consistent view
// capture a Result once and reuse it.
package store
