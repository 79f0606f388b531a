package printing

import (
	"fmt"
	"strings"
	"time"
)

const buddhistEraOffset = 543

var thaiShortMonths = [...]string{
	"ม.ค.", "ก.พ.", "มี.ค.", "เม.ย.", "พ.ค.", "มิ.ย.",
	"ก.ค.", "ส.ค.", "ก.ย.", "ต.ค.", "พ.ย.", "ธ.ค.",
}

// FormatDate renders a YYYY-MM-DD prep date for print. Thai output uses the
// Buddhist year and abbreviated month names.
func FormatDate(language string, value string, location *time.Location) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "-"
	}
	if location == nil {
		location = time.UTC
	}

	parsed, err := time.ParseInLocation("2006-01-02", trimmed, location)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, trimmed)
		if err != nil {
			return trimmed
		}
		parsed = parsed.In(location)
	}
	return formatDay(language, parsed)
}

// FormatExpiry renders an expiry stamp, keeping the time of day for
// hour-based shelf lives.
func FormatExpiry(language string, value string, location *time.Location) string {
	trimmed := strings.TrimSpace(value)
	if !strings.Contains(trimmed, "T") {
		return FormatDate(language, trimmed, location)
	}
	if location == nil {
		location = time.UTC
	}

	parsed, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return trimmed
	}
	parsed = parsed.In(location)
	return fmt.Sprintf("%s %s", formatDay(language, parsed), parsed.Format("15:04"))
}

func formatDay(language string, day time.Time) string {
	if language == "en" {
		return day.Format("2 Jan 2006")
	}
	return fmt.Sprintf("%d %s %d", day.Day(), thaiShortMonths[day.Month()-1], day.Year()+buddhistEraOffset)
}
