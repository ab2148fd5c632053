package clock

import "time"

// Clock abstracts wall-clock time so timer arithmetic can be tested
// against a controlled time source instead of time.Now.
type Clock interface {
	Now() time.Time
}

// Real is the production clock backed by the system time.
type Real struct{}

// Now returns the current system time.
func (Real) Now() time.Time {
	return time.Now()
}

var _ Clock = Real{}
