package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors
	ErrConfiguration    = errors.New("invalid configuration")
	ErrUnknownCondition = fmt.Errorf("%w: unknown condition", ErrConfiguration)
	ErrBandTooSmall     = fmt.Errorf("%w: band too small, no frequency bins available", ErrConfiguration)

	// Synthesis errors
	ErrAcceptanceExhausted = errors.New("acceptance sampling exhausted")

	// Verdict errors
	ErrMissingReferenceCondition = errors.New("reference baseline missing condition")
	ErrMissingMeasuredCondition  = errors.New("measured summary missing condition")

	// Determinism errors
	ErrNonDeterministic = errors.New("non-deterministic result")
	ErrSeedMismatch     = errors.New("seed mismatch")
	ErrHashMismatch     = errors.New("hash mismatch")
)

// Error constructors with context
func NewConfigurationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrConfiguration, field, reason)
}

func NewAcceptanceExhaustedError(replicate, attempts int) error {
	return fmt.Errorf("%w: replicate %d found no accepted candidate in %d attempts", ErrAcceptanceExhausted, replicate, attempts)
}

func NewMissingConditionError(sentinel error, condition string) error {
	return fmt.Errorf("%w: %s", sentinel, condition)
}

// Error checking helpers
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsAcceptanceExhausted(err error) bool {
	return errors.Is(err, ErrAcceptanceExhausted)
}

func IsVerdictInputError(err error) bool {
	return errors.Is(err, ErrMissingReferenceCondition) ||
		errors.Is(err, ErrMissingMeasuredCondition)
}

func IsDeterminismError(err error) bool {
	return errors.Is(err, ErrNonDeterministic) ||
		errors.Is(err, ErrSeedMismatch) ||
		errors.Is(err, ErrHashMismatch)
}
