// Package dates handles the DD/MM/YYYY date format used for task dates
// and import/export files.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the reference layout for DD/MM/YYYY.
const Layout = "02/01/2006"

// Parse converts a DD/MM/YYYY string into a time.Time.
// Leading and trailing whitespace is ignored.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not a valid DD/MM/YYYY date: %w", s, err)
	}
	return t, nil
}

// Format renders t as a DD/MM/YYYY string.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Before reports whether date string a falls strictly before date string b.
// Both arguments must be valid DD/MM/YYYY values.
func Before(a, b string) (bool, error) {
	ta, err := Parse(a)
	if err != nil {
		return false, err
	}
	tb, err := Parse(b)
	if err != nil {
		return false, err
	}
	return ta.Before(tb), nil
}
