// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zipstream

package zipstream

import (
	"fmt"
	"time"
)

// DateTime is a calendar timestamp within the MS-DOS representable range.
// The zero value means "no timestamp" and encodes as zero date/time codes.
// Out-of-range fields are rejected when the timestamp is encoded for an
// entry; values are never clamped or wrapped.
type DateTime struct {
	// Year is the full calendar year, 1980-2107.
	Year int `json:"year" yaml:"year"`
	// Month is 1-12.
	Month int `json:"month" yaml:"month"`
	// Day is 1-31, not validated against month length.
	Day int `json:"day" yaml:"day"`
	// Hour is 0-23.
	Hour int `json:"hour" yaml:"hour"`
	// Minute is 0-59.
	Minute int `json:"minute" yaml:"minute"`
	// Second is 0-59, stored truncated to even values.
	Second int `json:"second" yaml:"second"`
}

// DateTimeFromTime fills a DateTime from t in its location.
func DateTimeFromTime(t time.Time) DateTime {
	return DateTime{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// Now returns the current wall-clock time as a DateTime.
func Now() DateTime {
	return DateTimeFromTime(time.Now())
}

// IsZero reports whether dt is the zero "no timestamp" value.
func (dt DateTime) IsZero() bool {
	return dt == DateTime{}
}

// encode packs dt into MS-DOS date and time codes.
func (dt DateTime) encode() (date, clock uint16, err error) {
	if dt.IsZero() {
		return 0, 0, nil
	}

	switch {
	case dt.Year < minDOSYear || dt.Year > maxDOSYear:
		return 0, 0, fmt.Errorf("%w: year %d", ErrDateTimeOutOfRange, dt.Year)
	case dt.Month < 1 || dt.Month > 12:
		return 0, 0, fmt.Errorf("%w: month %d", ErrDateTimeOutOfRange, dt.Month)
	case dt.Day < 1 || dt.Day > 31:
		return 0, 0, fmt.Errorf("%w: day %d", ErrDateTimeOutOfRange, dt.Day)
	case dt.Hour < 0 || dt.Hour > 23:
		return 0, 0, fmt.Errorf("%w: hour %d", ErrDateTimeOutOfRange, dt.Hour)
	case dt.Minute < 0 || dt.Minute > 59:
		return 0, 0, fmt.Errorf("%w: minute %d", ErrDateTimeOutOfRange, dt.Minute)
	case dt.Second < 0 || dt.Second > 59:
		return 0, 0, fmt.Errorf("%w: second %d", ErrDateTimeOutOfRange, dt.Second)
	}

	date = uint16(dt.Day) | uint16(dt.Month)<<5 | uint16(dt.Year-minDOSYear)<<9
	clock = uint16(dt.Second/2) | uint16(dt.Minute)<<5 | uint16(dt.Hour)<<11

	return date, clock, nil
}

// inRange reports whether dt encodes without error.
func (dt DateTime) inRange() bool {
	_, _, err := dt.encode()
	return err == nil
}
