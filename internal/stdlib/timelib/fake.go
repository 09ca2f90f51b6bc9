package timelib

import (
	"time"

	"github.com/spellshift/eldritch/internal/value"
)

// frozenClock backs the fake binding: Now() always returns a fixed
// instant, Sleep() is a no-op, so tests calling time.now()/time.sleep()
// stay deterministic and instant (§4.6 fake bindings).
type frozenClock struct{ at time.Time }

func (c frozenClock) Now() time.Time  { return c.at }
func (frozenClock) Sleep(time.Duration) {}

// NewFake returns a time library frozen at 2024-01-01T00:00:00Z.
func NewFake() value.Dispatcher {
	return newWithClock(frozenClock{at: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
}
