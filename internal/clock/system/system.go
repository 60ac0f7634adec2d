// Package system supplies the wall clock used outside of tests.
package system

import "time"

// Clock yields wall-clock time in UTC. The zero value is ready to use;
// it satisfies workflow.Clock.
type Clock struct{}

// New returns the process wall clock.
func New() *Clock {
	return &Clock{}
}

// Now reports the current UTC time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
