package services

import "time"

// Clock supplies the current time to the engines. Hold expiry and the
// verification window both derive from Clock.Now so tests can pin time.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }
