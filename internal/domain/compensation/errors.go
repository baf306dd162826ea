package compensation

import "errors"

var (
	ErrNegativeCost = errors.New("annual cost must not be negative")
	ErrNotFinite    = errors.New("annual cost must be a finite number")
)
