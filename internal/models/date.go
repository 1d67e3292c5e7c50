package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-date form stored on appointments and
// used for slot lookups.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// dateLayouts are tried in order. The US short form is what browsers emit
// for toLocaleDateString("en-US"); the last one is Date.toDateString.
var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"1/2/2006",
	"Mon Jan 02 2006",
}

// NormalizeDate converts any accepted date representation to DateLayout.
// Timestamps keep the calendar day of their own offset.
func NormalizeDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDate)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}
