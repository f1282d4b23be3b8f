// This file contains bounds-checking helpers that prevent integer overflow
// and denial-of-service via large allocations when reading untrusted input.

package utils

import (
	"errors"
	"math"
)

// Maximum allowed lengths for data read from files and the network.
const (
	// MaxMessageSize is the maximum allowed message size in bytes.
	MaxMessageSize = 1 << 26 // 64MB

	// MaxKeyFileSize is the maximum size of an exported key file.
	MaxKeyFileSize = 100 * 1024 * 1024 // 100MB

	// MaxEncodedKeySize bounds a raw encoded key.
	MaxEncodedKeySize = 1 << 24 // 16MB
)

var (
	// ErrOverflow indicates an integer overflow occurred.
	ErrOverflow = errors.New("integer overflow")

	// ErrExceedsLimit indicates a value exceeds the allowed limit.
	ErrExceedsLimit = errors.New("value exceeds allowed limit")

	// ErrInvalidLength indicates an invalid length value.
	ErrInvalidLength = errors.New("invalid length")
)

// SafeMultiply multiplies two non-negative integers and returns an error if overflow occurs.
func SafeMultiply(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, ErrInvalidLength
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxInt/b {
		return 0, ErrOverflow
	}
	return a * b, nil
}

// SafeAdd adds two non-negative integers and returns an error if overflow occurs.
func SafeAdd(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, ErrInvalidLength
	}
	if a > math.MaxInt-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// CheckLength validates that length is within [0, maxAllowed].
func CheckLength(length, maxAllowed int) error {
	if length < 0 {
		return ErrInvalidLength
	}
	if length > maxAllowed {
		return ErrExceedsLimit
	}
	return nil
}
