package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const prepDateLayout = "2006-01-02"

const (
	ExpiryUnitDays  = "days"
	ExpiryUnitHours = "hours"
)

var ErrInvalidPrepDate = errors.New("invalid prep date")

// ComputeExpiry derives the expiry stamp of a prep. Positive expiryDays add
// calendar days and yield a date; negative values add hours to the moment of
// preparation (prep date at preparedAt's clock time) and yield an RFC 3339
// timestamp.
func ComputeExpiry(prepDate string, expiryDays int, preparedAt time.Time, location *time.Location) (string, error) {
	if location == nil {
		location = time.UTC
	}

	day, err := time.ParseInLocation(prepDateLayout, strings.TrimSpace(prepDate), location)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPrepDate, prepDate)
	}

	if expiryDays >= 0 {
		return day.AddDate(0, 0, expiryDays).Format(prepDateLayout), nil
	}

	clock := preparedAt.In(location)
	start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, location)
	return start.Add(time.Duration(-expiryDays) * time.Hour).Format(time.RFC3339), nil
}

// ExpiryHasTime reports whether an expiry stamp carries a time of day.
func ExpiryHasTime(expiry string) bool {
	return strings.Contains(expiry, "T")
}

// NormalizeExpiryInput turns an editor value and unit into the signed
// storage form. Zero falls back to the default shelf life.
func NormalizeExpiryInput(value int, unit string) int {
	magnitude := value
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude == 0 {
		magnitude = 7
	}
	if strings.EqualFold(strings.TrimSpace(unit), ExpiryUnitHours) {
		return -magnitude
	}
	return magnitude
}

func ValidDate(value string) bool {
	_, err := time.Parse(prepDateLayout, strings.TrimSpace(value))
	return err == nil
}
