package rendering

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006",
	"January 2006",
	"Jan 2006",
	"01/2006",
}

// FormatDate renders a stored date as "Jan 2006". Empty input yields "" and
// anything unparseable is returned unchanged.
func FormatDate(s string) string {
	if s == "" {
		return ""
	}
	v := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("Jan 2006")
		}
	}
	return s
}

// DateRange renders "start - end", using "Present" for current entries and
// placeholders for missing dates.
func DateRange(start, end string, current bool) string {
	from := FormatDate(start)
	if from == "" {
		from = "Start Date"
	}
	to := "Present"
	if !current {
		to = FormatDate(end)
		if to == "" {
			to = "End Date"
		}
	}
	return from + " - " + to
}
