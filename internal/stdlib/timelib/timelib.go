// Package timelib implements the time standard library (§4.7): Unix
// seconds, sleep, and strftime-style parse/format translated to Go's
// reference-time layouts.
package timelib

import (
	"strings"
	"time"

	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

// Clock abstracts "now" and "sleep" so the fake binding can freeze time.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

func New() value.Dispatcher { return newWithClock(realClock{}) }

func newWithClock(c Clock) value.Dispatcher {
	t := &impl{clock: c}
	return &library.Table{Name: "time", Methods: map[string]library.Method{
		"now":                t.now,
		"sleep":              t.sleep,
		"format_to_epoch":    t.formatToEpoch,
		"format_to_readable": t.formatToReadable,
	}}
}

type impl struct{ clock Clock }

func (t *impl) now(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("now", args, 0); err != nil {
		return value.None, err
	}
	return value.Int(t.clock.Now().Unix()), nil
}

func (t *impl) sleep(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("sleep", args, 1); err != nil {
		return value.None, err
	}
	secs, err := library.Float("sleep", args[0])
	if err != nil {
		return value.None, err
	}
	t.clock.Sleep(time.Duration(secs * float64(time.Second)))
	return value.None, nil
}

func (t *impl) formatToEpoch(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("format_to_epoch", args, 2); err != nil {
		return value.None, err
	}
	s, err := library.Str("format_to_epoch", args[0])
	if err != nil {
		return value.None, err
	}
	format, err := library.Str("format_to_epoch", args[1])
	if err != nil {
		return value.None, err
	}
	layout := strftimeToGo(format)
	parsed, err := time.Parse(layout, s)
	if err != nil {
		return value.None, library.MethodError(diag.ValueError, "format_to_epoch() "+err.Error())
	}
	return value.Int(parsed.Unix()), nil
}

func (t *impl) formatToReadable(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("format_to_readable", args, 2); err != nil {
		return value.None, err
	}
	ts, err := library.Int("format_to_readable", args[0])
	if err != nil {
		return value.None, err
	}
	format, err := library.Str("format_to_readable", args[1])
	if err != nil {
		return value.None, err
	}
	layout := strftimeToGo(format)
	return value.String(time.Unix(ts, 0).UTC().Format(layout)), nil
}

// strftimeToGo translates the common strftime directives (§2 table,
// SPEC_FULL.md §C) to Go's reference-time layout string.
func strftimeToGo(format string) string {
	replacer := strings.NewReplacer(
		"%Y", "2006", "%m", "01", "%d", "02",
		"%H", "15", "%M", "04", "%S", "05",
		"%y", "06", "%b", "Jan", "%B", "January",
		"%a", "Mon", "%A", "Monday", "%p", "PM",
		"%z", "-0700", "%Z", "MST",
	)
	return replacer.Replace(format)
}
