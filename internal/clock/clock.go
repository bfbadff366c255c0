// Package clock abstracts the current time so that time-dependent policies
// (reminder eligibility, paid-at stamping, scheduled dates) are deterministic
// under test.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns a Clock backed by time.Now.
func System() Clock { return systemClock{} }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// Fixed returns a Clock pinned to t.
func Fixed(t time.Time) Clock { return fixedClock{t: t} }
