package services

import "time"

// Clock is injected wherever issuance, expiry or audit timestamps are
// taken, so tests can pin time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

var SystemClock Clock = systemClock{}
