package store

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidKey matches every *InvalidKeyError via errors.Is.
var ErrInvalidKey = errors.New("invalid key")

// InvalidKeyError reports an identifier that is not a well-formed key.
type InvalidKeyError struct {
	Key    string // The rejected identifier
	Reason string // Why it was rejected
}

func (e *InvalidKeyError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("invalid key: %s", e.Reason)
	}
	return fmt.Sprintf("invalid key %q: %s", e.Key, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidKey) match any InvalidKeyError.
func (e *InvalidKeyError) Is(target error) bool {
	return target == ErrInvalidKey
}

// ValidateKey checks that id is a non-empty, valid UTF-8 string.
func ValidateKey(id string) error {
	if id == "" {
		return &InvalidKeyError{Key: id, Reason: "must be non-empty"}
	}
	if !utf8.ValidString(id) {
		return &InvalidKeyError{Key: id, Reason: "must be valid UTF-8"}
	}
	return nil
}
