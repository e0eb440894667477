// Package time contains time related helpers
package time

import (
	"time"
)

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// NormalizeStamp rewrites a remote timestamp suffix to the canonical
// "+HH:MM" offset form so normalized stamps compare lexicographically.
// The source emits either a trailing "Z" or a fixed "+HHMM"/"-HHMM" offset
// with millisecond precision; anything else passes through unchanged
func NormalizeStamp(s string) string {
	n := len(s)
	if n == 0 {
		return s
	}
	if s[n-1] == 'Z' || s[n-1] == 'z' {
		return s[:n-1] + "+00:00"
	}
	// fixed offset without a colon, e.g. +0000 or -0530
	if n >= 5 {
		sign := s[n-5]
		if (sign == '+' || sign == '-') && allDigits(s[n-4:]) {
			return s[:n-2] + ":" + s[n-2:]
		}
	}
	return s
}

// ParseStamp parses a remote timestamp (either suffix form) into a time.Time.
// Returns the zero time and an error when the stamp is unparseable
func ParseStamp(s string) (time.Time, error) {
	norm := NormalizeStamp(s)
	t, err := time.Parse(time.RFC3339Nano, norm)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
