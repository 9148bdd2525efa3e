// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrCellNotFound     = errors.New("combination cell not found")
	ErrCellDisabled     = errors.New("combination cell disabled")
	ErrSymbolNotFound   = errors.New("symbol not configured in matrix")
	ErrChainNotFound    = errors.New("chain not found")
	ErrChainTerminal    = errors.New("chain is terminal")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrDatabaseError    = errors.New("database error")
	ErrMatrixNotLoaded  = errors.New("matrix not loaded")
	ErrDuplicateClosure = errors.New("duplicate closure for trade")
)

// RejectReason identifies why the validator refused a resolved decision.
type RejectReason string

const (
	ReasonRiskLimitExceeded       RejectReason = "RiskLimitExceeded"
	ReasonInvalidStopTakeProfit   RejectReason = "InvalidStopTakeProfit"
	ReasonStopLossTooTight        RejectReason = "StopLossTooTight"
	ReasonGenerationLimitExceeded RejectReason = "GenerationLimitExceeded"
)

// MalformedContextError reports a trade classification inconsistent with
// the combination key grammar.
type MalformedContextError struct {
	Signal  string
	Field   string
	Message string
}

func (e *MalformedContextError) Error() string {
	return fmt.Sprintf("malformed context [%s] %s: %s", e.Signal, e.Field, e.Message)
}

// NewMalformedContextError creates a new MalformedContextError.
func NewMalformedContextError(signal, field, message string) *MalformedContextError {
	return &MalformedContextError{
		Signal:  signal,
		Field:   field,
		Message: message,
	}
}

// RejectError is a terminal validation rejection. The engine never
// clamps an offending value; the caller must not place the trade.
type RejectError struct {
	Reason         RejectReason
	CombinationKey string
	Current        float64
	Limit          float64
	Message        string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("validation reject [%s] key=%s: %s (current: %.2f, limit: %.2f)",
		e.Reason, e.CombinationKey, e.Message, e.Current, e.Limit)
}

// NewRejectError creates a new RejectError.
func NewRejectError(reason RejectReason, key string, current, limit float64, message string) *RejectError {
	return &RejectError{
		Reason:         reason,
		CombinationKey: key,
		Current:        current,
		Limit:          limit,
		Message:        message,
	}
}

// GenerationOverflowError reports an attempt to construct a generation
// beyond the hard cap. This is a contract breach in the caller's chain
// bookkeeping, never a recoverable runtime condition.
type GenerationOverflowError struct {
	ChainID    string
	Generation int
}

func (e *GenerationOverflowError) Error() string {
	return fmt.Sprintf("generation overflow [chain %s]: requested generation %d exceeds hard cap", e.ChainID, e.Generation)
}

// NewGenerationOverflowError creates a new GenerationOverflowError.
func NewGenerationOverflowError(chainID string, generation int) *GenerationOverflowError {
	return &GenerationOverflowError{
		ChainID:    chainID,
		Generation: generation,
	}
}

// KeyParseError reports a persisted or configured key string that does
// not match the combination key grammar.
type KeyParseError struct {
	Key     string
	Message string
}

func (e *KeyParseError) Error() string {
	return fmt.Sprintf("key parse error %q: %s", e.Key, e.Message)
}

// NewKeyParseError creates a new KeyParseError.
func NewKeyParseError(key, message string) *KeyParseError {
	return &KeyParseError{Key: key, Message: message}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
