package utils

import "time"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}

func (m *MockClock) Advance(d time.Duration) {
	m.FixedNow = m.FixedNow.Add(d)
}

// Today returns the calendar day of clock's current instant as seen in loc, at midnight.
func Today(clock Clock, loc *time.Location) time.Time {
	y, mo, d := clock.Now().In(loc).Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, loc)
}
