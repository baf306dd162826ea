package employees

import "errors"

var (
	ErrNotFound      = errors.New("employee not found")
	ErrEmailExists   = errors.New("email already exists")
	ErrCodeExists    = errors.New("employee code already exists")
	ErrEmailRequired = errors.New("email is required")
	ErrNameRequired  = errors.New("name is required")
	ErrInvalidCost   = errors.New("annual cost must be a non-negative number")
	ErrInvalidStatus = errors.New("unknown employee status")
)
