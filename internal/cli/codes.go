package cli

import (
	"errors"

	"github.com/roach88/itemview/internal/fixture"
	"github.com/roach88/itemview/internal/store"
)

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeNoFixture      = "E002" // No fixture path given
	ErrCodeNotFound       = "E005" // Path not found
	ErrCodeWriteFailed    = "E007" // File write error
	ErrCodeFormat         = "E008" // Unsupported fixture format
	ErrCodeInvalidFixture = "E009" // Fixture could not be decoded
	ErrCodeInvalidKey     = "E010" // Empty or malformed item id
	ErrCodeTestFailed     = "E_TEST_FAILED"
)

// errorCode maps a domain error to its CLI error code. Fixture errors win
// over the key errors they may wrap.
func errorCode(err error) string {
	switch {
	case errors.Is(err, fixture.ErrFixtureNotFound):
		return ErrCodeNotFound
	case errors.Is(err, fixture.ErrUnsupportedFormat):
		return ErrCodeFormat
	case errors.Is(err, fixture.ErrInvalidFixture):
		return ErrCodeInvalidFixture
	case errors.Is(err, store.ErrInvalidKey):
		return ErrCodeInvalidKey
	default:
		return ErrCodeGeneric
	}
}
