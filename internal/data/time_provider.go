package data

import "time"

// TimeProvider abstracts the clock so repository tests can pin timestamps.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider returns the actual current time.
type RealTimeProvider struct{}

// Now implements TimeProvider.
func (*RealTimeProvider) Now() time.Time {
	return time.Now()
}
