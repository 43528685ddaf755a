package locale

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDate is returned when a date string matches no known layout.
var ErrInvalidDate = errors.New("locale: invalid date")

// DateStyle selects the display style of FormatDate.
type DateStyle string

const (
	DateStyleLong    DateStyle = "long"    // January 2, 2006
	DateStyleMedium  DateStyle = "medium"  // Jan 2, 2006
	DateStyleNumeric DateStyle = "numeric" // 01/02/2006
)

// DateOptions adjusts FormatDate.
type DateOptions struct {
	Style DateStyle `json:"style,omitempty"`
	// StoreFormat is tried after the fixed layouts, e.g. "dd/MM/yyyy".
	StoreFormat string `json:"store_format,omitempty"`
}

var displayLayouts = map[DateStyle]string{
	DateStyleLong:    "January 2, 2006",
	DateStyleMedium:  "Jan 2, 2006",
	DateStyleNumeric: "01/02/2006",
}

var inputLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatDate normalizes value and renders it in the brand's en-PH display
// style, whatever the active store's locale.
func FormatDate(value string, opts DateOptions) (string, error) {
	t, err := NormalizeDate(value, opts.StoreFormat)
	if err != nil {
		return "", err
	}
	layout, ok := displayLayouts[opts.Style]
	if !ok {
		layout = displayLayouts[DateStyleLong]
	}
	return t.Format(layout), nil
}

// NormalizeDate parses value using the backend layouts, then storeFormat.
func NormalizeDate(value, storeFormat string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	if storeFormat != "" {
		return ParseStoreDate(value, storeFormat)
	}
	return time.Time{}, ErrInvalidDate
}

// ParseStoreDate parses value in a dd/MM/yyyy-style pattern.
func ParseStoreDate(value, dateFormat string) (time.Time, error) {
	t, err := time.Parse(GoLayout(dateFormat), strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatStoreDate renders t in a dd/MM/yyyy-style pattern.
func FormatStoreDate(t time.Time, dateFormat string) string {
	return t.Format(GoLayout(dateFormat))
}

// SubmissionDate renders t the way the backend expects dates on submit.
func SubmissionDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

var layoutTokens = []struct{ pattern, layout string }{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dd", "02"},
	{"d", "2"},
}

// GoLayout converts a dd/MM/yyyy-style pattern to a Go time layout.
// Characters outside the token set are copied through.
func GoLayout(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); {
		matched := false
		for _, tok := range layoutTokens {
			if strings.HasPrefix(pattern[i:], tok.pattern) {
				b.WriteString(tok.layout)
				i += len(tok.pattern)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(pattern[i])
			i++
		}
	}
	return b.String()
}
