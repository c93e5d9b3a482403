package model

import (
	"errors"
	"fmt"
)

// ErrDataUnavailable marks a market data lookup that returned nothing usable.
var ErrDataUnavailable = errors.New("data unavailable")

// DataUnavailable builds an error wrapping ErrDataUnavailable.
func DataUnavailable(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDataUnavailable, fmt.Sprintf(format, args...))
}
