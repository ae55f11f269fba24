// Package dates parses the date formats that show up in field data and
// normalizes them to ISO 8601.
package dates

import (
	"strings"
	"time"
)

// ISO is the normalized form every parseable date is rewritten to.
const ISO = "2006-01-02T15:04:05"

var layouts = []string{
	ISO,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"2-Jan-2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01",
	"2006/01",
	"2006",
}

// Parse tries every known layout in order.
func Parse(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Normalize rewrites a date or a "start/end" date range to ISO 8601.
// The whole value is tried as a single date first, so slash-formatted
// dates are not mistaken for ranges; only then is the value split once
// on "/".
func Normalize(s string) (string, error) {
	t, firstErr := Parse(strings.TrimSpace(s))
	if firstErr == nil {
		return t.Format(ISO), nil
	}
	parts := strings.SplitN(s, "/", 2)
	if len(parts) < 2 {
		return "", firstErr
	}
	res := make([]string, len(parts))
	for i, part := range parts {
		t, err := Parse(strings.TrimSpace(part))
		if err != nil {
			return "", err
		}
		res[i] = t.Format(ISO)
	}
	return strings.Join(res, "/"), nil
}
