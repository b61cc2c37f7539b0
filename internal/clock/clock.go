// Package clock abstracts time for components whose behavior is
// derived from the wall clock, so tests can drive it deterministically.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// Real is the wall clock.
type Real struct{}

// NewReal returns a wall clock.
func NewReal() *Real {
	return &Real{}
}

func (c *Real) Now() time.Time {
	return time.Now()
}
