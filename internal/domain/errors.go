package domain

import "errors"

// Domain error kinds. Services wrap these with the offending id so the caller
// can act on the failure; HTTP maps them to status codes.
var (
	ErrNotFound            = errors.New("not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrCrossPharmacyAccess = errors.New("batch belongs to another pharmacy")
	ErrForbidden           = errors.New("forbidden")
	ErrDuplicateSerial     = errors.New("device with this serial number already exists")
	ErrValidation          = errors.New("validation error")
)
