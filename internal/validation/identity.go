package validation

import (
	"regexp"
	"strconv"
	"time"
)

// KTP validation failure reasons.
const (
	ReasonInvalidFormat = "invalid-format"
	ReasonInvalidAge    = "invalid-age"
)

var (
	ktpPattern = regexp.MustCompile(`^\d{16}$`)
	minDOB     = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// KTPResult is the outcome of a national ID check.
type KTPResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsValidDOB reports whether t is a plausible date of birth.
func IsValidDOB(t, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	t = Day(t)
	return !t.Before(minDOB) && !t.After(Day(now))
}

// LegalDate is the latest birth date that satisfies legalAge on now.
func LegalDate(now time.Time, legalAge int) time.Time {
	return Day(now).AddDate(-legalAge, 0, 0)
}

// IsOfLegalAge reports whether dob is on or before the legal date.
func IsOfLegalAge(dob, now time.Time, legalAge int) bool {
	return !Day(dob).After(LegalDate(now, legalAge))
}

// KTPBirthDate extracts the date of birth embedded in a 16 digit KTP number.
// Digits 7..12 hold DDMMYY; women have 40 added to the day.
func KTPBirthDate(ktp string, now time.Time) (time.Time, bool) {
	if !ktpPattern.MatchString(ktp) {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(ktp[6:8])
	month, _ := strconv.Atoi(ktp[8:10])
	yy, _ := strconv.Atoi(ktp[10:12])

	if day > 40 {
		day -= 40
	}
	year := 2000 + yy
	if year > now.Year() {
		year -= 100
	}

	dob := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow; reject dates that did not survive it
	if dob.Day() != day || int(dob.Month()) != month {
		return time.Time{}, false
	}
	return dob, true
}

// ValidateKTP checks a KTP number format and the age of its holder.
func ValidateKTP(ktp string, now time.Time, legalAge int) KTPResult {
	dob, ok := KTPBirthDate(ktp, now)
	if !ok || !IsValidDOB(dob, now) {
		return KTPResult{Reason: ReasonInvalidFormat}
	}
	if !IsOfLegalAge(dob, now, legalAge) {
		return KTPResult{Reason: ReasonInvalidAge}
	}
	return KTPResult{Valid: true}
}
