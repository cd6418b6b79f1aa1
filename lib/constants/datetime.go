// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package constants

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateToken pairs a PHP date letter with its renderer.
type dateToken struct {
	letter byte
	render func(t time.Time) string
}

var dateTokens = []dateToken{
	// Day
	{'d', layout("02")},
	{'D', layout("Mon")},
	{'j', func(t time.Time) string { return strconv.Itoa(t.Day()) }},
	{'l', func(t time.Time) string { return t.Weekday().String() }},
	{'N', func(t time.Time) string { return strconv.Itoa(isoWeekday(t)) }},
	{'S', func(t time.Time) string { return ordinalSuffix(t.Day()) }},
	{'w', func(t time.Time) string { return strconv.Itoa(int(t.Weekday())) }},
	{'z', func(t time.Time) string { return strconv.Itoa(t.YearDay() - 1) }},

	// Week
	{'W', func(t time.Time) string {
		_, week := t.ISOWeek()
		return fmt.Sprintf("%02d", week)
	}},

	// Month
	{'F', func(t time.Time) string { return t.Month().String() }},
	{'m', layout("01")},
	{'M', layout("Jan")},
	{'n', func(t time.Time) string { return strconv.Itoa(int(t.Month())) }},
	{'t', func(t time.Time) string { return strconv.Itoa(daysInMonth(t)) }},

	// Year
	{'L', func(t time.Time) string { return boolDigit(isLeap(t.Year())) }},
	{'o', func(t time.Time) string {
		year, _ := t.ISOWeek()
		return strconv.Itoa(year)
	}},
	{'Y', func(t time.Time) string { return fmt.Sprintf("%04d", t.Year()) }},
	{'y', layout("06")},

	// Time
	{'a', layout("pm")},
	{'A', layout("PM")},
	{'g', layout("3")},
	{'G', func(t time.Time) string { return strconv.Itoa(t.Hour()) }},
	{'h', layout("03")},
	{'H', layout("15")},
	{'i', layout("04")},
	{'s', layout("05")},
	{'u', func(t time.Time) string { return fmt.Sprintf("%06d", t.Nanosecond()/1000) }},
	{'v', func(t time.Time) string { return fmt.Sprintf("%03d", t.Nanosecond()/1000000) }},

	// Timezone
	{'e', func(t time.Time) string { return t.Location().String() }},
	{'I', func(t time.Time) string { return boolDigit(t.IsDST()) }},
	{'O', layout("-0700")},
	{'P', layout("-07:00")},
	{'p', layout("Z07:00")},
	{'T', layout("MST")},
	{'Z', func(t time.Time) string {
		_, offset := t.Zone()
		return strconv.Itoa(offset)
	}},

	// Full date/time
	{'c', layout("2006-01-02T15:04:05-07:00")},
	{'r', layout("Mon, 02 Jan 2006 15:04:05 -0700")},
	{'U', func(t time.Time) string { return strconv.FormatInt(t.Unix(), 10) }},
}

// DateTimeToken returns the placeholder for a PHP date letter, e.g.
// DateTimeToken('Y') == "%Y%".
func DateTimeToken(letter byte) string {
	return "%" + string(letter) + "%"
}

// DateTime replaces date tokens with components of t, rendered in t's
// location.
func DateTime(s string, t time.Time) string {
	if !strings.Contains(s, "%") {
		return s
	}
	pairs := make([]string, 0, 2*len(dateTokens))
	for _, token := range dateTokens {
		pairs = append(pairs, DateTimeToken(token.letter), token.render(t))
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

func layout(format string) func(time.Time) string {
	return func(t time.Time) string { return t.Format(format) }
}

func isoWeekday(t time.Time) int {
	if t.Weekday() == time.Sunday {
		return 7
	}
	return int(t.Weekday())
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func boolDigit(value bool) string {
	if value {
		return "1"
	}
	return "0"
}
