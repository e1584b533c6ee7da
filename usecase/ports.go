package usecase

import (
	"context"
	"time"

	"github.com/fastygo/tasktracker/domain"
)

// Mailer abstracts the mail transport so use cases stay protocol-agnostic.
// A nil error means the message was accepted by the relay.
type Mailer interface {
	Send(ctx context.Context, settings domain.EmailSettings, msg domain.Message) error
}

// Clock yields the current instant in the zone that defines "today".
type Clock func() time.Time

// SystemClock reads the wall clock in loc.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}

// Now returns the current instant, falling back to the wall clock for a nil Clock.
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// Today returns the current calendar date.
func (c Clock) Today() time.Time {
	return domain.DateOf(c.Now())
}
