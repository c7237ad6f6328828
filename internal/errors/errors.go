// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrDegenerateInput        = errors.New("degenerate input")
	ErrStrategyNotImplemented = errors.New("strategy not implemented")
	ErrConfigInvalid          = errors.New("invalid configuration")
	ErrDataNotFound           = errors.New("data not found")
	ErrDatabaseError          = errors.New("database error")
)

// ValidationError represents a rejected input field. It matches
// ErrInvalidInput under errors.Is.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// PricingError represents a failure inside the pricing kernel.
type PricingError struct {
	Operation string
	Reason    string
	Err       error
}

func (e *PricingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pricing error [%s]: %s: %v", e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("pricing error [%s]: %s", e.Operation, e.Reason)
}

func (e *PricingError) Unwrap() error {
	return e.Err
}

// NewPricingError creates a new PricingError.
func NewPricingError(operation, reason string, err error) *PricingError {
	return &PricingError{
		Operation: operation,
		Reason:    reason,
		Err:       err,
	}
}

// StrategyError represents a failure building or analyzing a strategy.
type StrategyError struct {
	Strategy string
	Reason   string
	Err      error
}

func (e *StrategyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("strategy error [%s]: %s: %v", e.Strategy, e.Reason, e.Err)
	}
	return fmt.Sprintf("strategy error [%s]: %s", e.Strategy, e.Reason)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}

// NewStrategyError creates a new StrategyError.
func NewStrategyError(strategy, reason string, err error) *StrategyError {
	return &StrategyError{
		Strategy: strategy,
		Reason:   reason,
		Err:      err,
	}
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
