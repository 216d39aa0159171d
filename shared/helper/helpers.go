package helper

import (
	"errors"
	"fmt"
)

// GetTypedValueOf safely asserts the result of a getter function to the
// expected type T. Returns an error if the getter fails or the assertion
// does not hold.
func GetTypedValueOf[T any](getFn func() (any, error)) (T, error) {
	var zero T

	res, err := getFn()
	if err != nil {
		return zero, fmt.Errorf("failed to get value: %w", err)
	}

	val, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected type: %T", res)
	}

	return val, nil
}

// MustGetTypedValue is the panic-on-failure variant of GetTypedValueOf.
// Use when a failed assertion is a programming error rather than a
// recoverable condition.
func MustGetTypedValue[T any](getFn func() (any, error)) T {
	res, err := GetTypedValueOf[T](getFn)
	if err != nil {
		panic(err)
	}
	return res
}

var ErrMaxAttempts = errors.New("max attempts reached")

// Retry runs fn until it succeeds or maxAttempts failures have occurred.
func Retry(maxAttempts int, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %d: %w", ErrMaxAttempts, maxAttempts, err)
}
