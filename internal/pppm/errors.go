package pppm

import (
	"errors"
	"fmt"
)

var (
	// ErrGridSize indicates a grid dimension the transform does not support.
	ErrGridSize = errors.New("pppm: grid dimension must be a power of two in [2, 1024]")

	// ErrOrderCapacity indicates the coefficient table would overflow.
	ErrOrderCapacity = errors.New("pppm: interpolation order too high, does not fit coefficient table")

	// ErrOrderTooHigh indicates an order above MaxOrder.
	ErrOrderTooHigh = errors.New("pppm: interpolation order above maximum")

	// ErrInvalidParam indicates a non-positive or non-finite parameter.
	ErrInvalidParam = errors.New("pppm: invalid parameter")

	// ErrUnknownQuantity indicates a log quantity this compute does not provide.
	ErrUnknownQuantity = errors.New("pppm: not a valid log quantity")

	// ErrNotConfigured indicates a force evaluation before SetParams succeeded.
	ErrNotConfigured = errors.New("pppm: parameters not set")
)

// ParamError records which parameter failed validation.
type ParamError struct {
	Param   string
	Value   float64
	Wrapped error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s (%s = %g)", e.Wrapped.Error(), e.Param, e.Value)
}

func (e *ParamError) Unwrap() error {
	return e.Wrapped
}
