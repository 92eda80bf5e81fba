// Package businessflow contains the core business logic and use cases for the freight rate catalog and quote engine
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Quote validation errors
	ErrNoPieces                = errors.New("at least one piece is required")
	ErrTooManyPieces           = errors.New("too many pieces for a single quote")
	ErrPieceCountMismatch      = errors.New("declared piece count does not match supplied pieces")
	ErrPieceOutOfRange         = errors.New("piece dimension out of range")
	ErrInvalidVolumetricFactor = errors.New("volumetric factor must be greater than zero")
	ErrInvalidRateAmount       = errors.New("rate amount must be greater than zero")
	ErrInvalidTransportMode    = errors.New("transport mode must be AIR or SEA")

	// Catalog errors
	ErrInvalidPricingKey       = errors.New("invalid pricing key")
	ErrRateNotFound            = errors.New("no effective rate version covers the requested date")
	ErrTierNotFound            = errors.New("no weight tier matches the chargeable weight")
	ErrTierOverlap             = errors.New("weight tier interval overlaps an existing active tier")
	ErrTierBoundsInvalid       = errors.New("weight tier bounds are invalid")
	ErrRateVersionNotFound     = errors.New("rate version not found")
	ErrConcurrentRateConflict  = errors.New("a competing writer holds the pricing key, retry the administrative action")
	ErrEffectiveFromBeforeOpen = errors.New("effective date precedes the currently open version")

	// Location errors
	ErrLocationNotFound      = errors.New("location not found")
	ErrLocationInactive      = errors.New("location is inactive")
	ErrLocationCodeRequired  = errors.New("location code is required")
	ErrLocationTypeInvalid   = errors.New("location type must be AIRPORT or SEAPORT")
	ErrLocationAlreadyExists = errors.New("location code already exists")

	// Administration errors
	ErrActorRequired = errors.New("actor is required for administrative actions")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
