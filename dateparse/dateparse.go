// Package dateparse parses forum timestamps by trying an ordered chain of
// formats and falling back to the current time when all of them fail.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Layout tries to read s as a timestamp. now supplies the location and the
// reference day for relative dates.
type Layout func(s string, now time.Time) (time.Time, bool)

// Chain tries layouts in order. The first success wins.
type Chain []Layout

// DefaultChain returns the chain used by Parse: RFC3339, dotted numeric
// dates, Russian month names, relative days, then free-form parsing.
func DefaultChain() Chain {
	return Chain{
		Formats(time.RFC3339, time.RFC3339Nano),
		Formats(
			"02.01.2006, 15:04",
			"02.01.2006 15:04",
			"2.1.2006, 15:04",
			"2.1.2006 15:04",
			"02.01.2006",
			"2.1.2006",
		),
		RussianMonths(),
		Relative(),
		Any(),
	}
}

// Parse reads s with the default chain, returning now when nothing matches.
func Parse(s string, now time.Time) time.Time {
	return DefaultChain().Parse(s, now)
}

// Parse returns the first successful layout result, or now when every
// layout fails or s is blank.
func (c Chain) Parse(s string, now time.Time) time.Time {
	if t, ok := c.TryParse(s, now); ok {
		return t
	}
	return now
}

// TryParse is like Parse but reports failure instead of defaulting.
func (c Chain) TryParse(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range c {
		if t, ok := layout(s, now); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Formats returns a layout trying each Go time format in now's location.
func Formats(formats ...string) Layout {
	return func(s string, now time.Time) (time.Time, bool) {
		for _, f := range formats {
			if t, err := time.ParseInLocation(f, s, now.Location()); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
}

var russianDateRe = regexp.MustCompile(`^(\d{1,2})\s+([а-яё]+)\.?\s+(\d{4})(?:\s*г\.?)?(?:,?\s*(?:в\s+)?(\d{1,2}):(\d{2}))?`)

var russianMonths = []struct {
	prefix string
	month  time.Month
}{
	{"янв", time.January},
	{"фев", time.February},
	{"мар", time.March},
	{"апр", time.April},
	{"мая", time.May},
	{"май", time.May},
	{"июн", time.June},
	{"июл", time.July},
	{"авг", time.August},
	{"сен", time.September},
	{"окт", time.October},
	{"ноя", time.November},
	{"дек", time.December},
}

// RussianMonths returns a layout reading dates like "12 марта 2024, 14:35"
// or "3 янв. 2023 г. в 09:05".
func RussianMonths() Layout {
	return func(s string, now time.Time) (time.Time, bool) {
		m := russianDateRe.FindStringSubmatch(strings.ToLower(s))
		if m == nil {
			return time.Time{}, false
		}

		month, ok := parseRussianMonth(m[2])
		if !ok {
			return time.Time{}, false
		}
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		hour, minute := clock(m[4], m[5])
		if day < 1 || day > 31 || hour > 23 || minute > 59 {
			return time.Time{}, false
		}

		return time.Date(year, month, day, hour, minute, 0, 0, now.Location()), true
	}
}

func parseRussianMonth(word string) (time.Month, bool) {
	for _, rm := range russianMonths {
		if strings.HasPrefix(word, rm.prefix) {
			return rm.month, true
		}
	}
	return 0, false
}

var relativeRe = regexp.MustCompile(`^(сегодня|вчера|today|yesterday)(?:,?\s*(?:в\s+|at\s+)?(\d{1,2}):(\d{2}))?`)

// Relative returns a layout reading "сегодня, 14:35" and "вчера в 09:00"
// (and their English equivalents) relative to now.
func Relative() Layout {
	return func(s string, now time.Time) (time.Time, bool) {
		m := relativeRe.FindStringSubmatch(strings.ToLower(s))
		if m == nil {
			return time.Time{}, false
		}

		day := now
		if m[1] == "вчера" || m[1] == "yesterday" {
			day = now.AddDate(0, 0, -1)
		}
		hour, minute := clock(m[2], m[3])
		if hour > 23 || minute > 59 {
			return time.Time{}, false
		}

		y, mo, d := day.Date()
		return time.Date(y, mo, d, hour, minute, 0, 0, now.Location()), true
	}
}

// Any returns a layout backed by dateparse, which recognizes most common
// English and numeric formats.
func Any() Layout {
	return func(s string, now time.Time) (time.Time, bool) {
		t, err := dateparse.ParseIn(s, now.Location())
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
}

func clock(h, m string) (int, int) {
	if h == "" {
		return 0, 0
	}
	hour, _ := strconv.Atoi(h)
	minute, _ := strconv.Atoi(m)
	return hour, minute
}
