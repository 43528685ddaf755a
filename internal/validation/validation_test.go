package validation

import (
	"errors"
	"testing"
	"time"

	"storefront/internal/locale"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	trans, err := locale.StoreTranslator("en-US", "")
	if err != nil {
		t.Fatalf("StoreTranslator() error: %v", err)
	}
	v, err := New(trans)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return v
}

func TestCheck(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name  string
		value string
		rules string
		want  string
	}{
		{"required empty", "", Required, "This field is required"},
		{"required ok", "x", Required, ""},
		{"trim spaces", "   ", Rules(Required, Trim), "This field cannot contain only spaces"},
		{"min length", "ab", Rules(Required, MinLength(StreetMinLength)), "Please enter at least 3 characters"},
		{"max length", "12345678901", MaxLength(10), "Please enter no more than 10 characters"},
		{"house number missing", "Main Street", Rules(Required, HouseNumber, MinLength(3)), "Please include your house number"},
		{"house number ok", "12 Main Street", Rules(Required, HouseNumber, MinLength(3)), ""},
		{"postcode letters", "12a4", Rules(Required, Digits), "Please use numbers only"},
		{"email", "not-an-email", Rules(Required, Email), "Please enter a valid email address"},
		{"ph phone short", "912345678", Phone("ph"), "Please enter a valid phone number"},
		{"id phone ok", "812345678", Phone("id"), ""},
		{"phone too long", "12345678901234", Phone("ph"), "Please enter a valid phone number"},
		{"password short", "Ab1!", Password(8, 3), "Password must be at least 8 characters long"},
		{"password classes", "abcdefgh1", Password(8, 3), "Password must contain at least 3 of: lower case, upper case, digits, special characters"},
		{"password ok", "Abcdefg1", Password(8, 3), ""},
		{"no rules", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Check(tt.value, tt.rules); got != tt.want {
				t.Errorf("Check(%q, %q) = %q, want %q", tt.value, tt.rules, got, tt.want)
			}
		})
	}
}

func TestRules(t *testing.T) {
	if got := Rules(Required, MinLength(0), "", MaxLength(5)); got != "required,max=5" {
		t.Errorf("Rules() = %q", got)
	}
}

func TestCharacterClasses(t *testing.T) {
	tests := map[string]int{
		"":         0,
		"abc":      1,
		"abcDEF":   2,
		"abcDEF12": 3,
		"aB1!":     4,
	}
	for s, want := range tests {
		if got := CharacterClasses(s); got != want {
			t.Errorf("CharacterClasses(%q) = %d, want %d", s, got, want)
		}
	}
}

func TestSanitizeDigits(t *testing.T) {
	if got := SanitizeDigits("+63 (917) 555-12a34"); got != "639175551234" {
		t.Errorf("SanitizeDigits() = %q", got)
	}
}

func TestLegalAge(t *testing.T) {
	now := time.Date(2024, time.June, 15, 13, 0, 0, 0, time.UTC)

	if got := LegalDate(now, 18); !got.Equal(time.Date(2006, time.June, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("LegalDate() = %v", got)
	}

	tests := []struct {
		dob  time.Time
		want bool
	}{
		{time.Date(2006, time.June, 15, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2006, time.June, 16, 0, 0, 0, 0, time.UTC), false},
		{time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		if got := IsOfLegalAge(tt.dob, now, 18); got != tt.want {
			t.Errorf("IsOfLegalAge(%v) = %v, want %v", tt.dob, got, tt.want)
		}
	}
}

func TestIsValidDOB(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		dob  time.Time
		want bool
	}{
		{"zero", time.Time{}, false},
		{"before 1900", time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC), false},
		{"future", now.AddDate(0, 0, 1), false},
		{"today", now, true},
		{"ordinary", time.Date(1990, time.May, 1, 0, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidDOB(tt.dob, now); got != tt.want {
				t.Errorf("IsValidDOB() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateKTP(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		ktp    string
		want   KTPResult
		dob    time.Time
		hasDOB bool
	}{
		{
			name:   "adult male",
			ktp:    "3171011505900001",
			want:   KTPResult{Valid: true},
			dob:    time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC),
			hasDOB: true,
		},
		{
			name:   "adult female day offset",
			ktp:    "3171015505900001",
			want:   KTPResult{Valid: true},
			dob:    time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC),
			hasDOB: true,
		},
		{
			name:   "minor",
			ktp:    "3171011505100001",
			want:   KTPResult{Reason: ReasonInvalidAge},
			dob:    time.Date(2010, time.May, 15, 0, 0, 0, 0, time.UTC),
			hasDOB: true,
		},
		{name: "too short", ktp: "31710115059000", want: KTPResult{Reason: ReasonInvalidFormat}},
		{name: "letters", ktp: "317101150590000A", want: KTPResult{Reason: ReasonInvalidFormat}},
		{name: "impossible date", ktp: "3171013102900001", want: KTPResult{Reason: ReasonInvalidFormat}},
		{name: "empty", ktp: "", want: KTPResult{Reason: ReasonInvalidFormat}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateKTP(tt.ktp, now, 21); got != tt.want {
				t.Errorf("ValidateKTP(%s) = %+v, want %+v", tt.ktp, got, tt.want)
			}
			dob, ok := KTPBirthDate(tt.ktp, now)
			if ok != tt.hasDOB {
				t.Fatalf("KTPBirthDate() ok = %v, want %v", ok, tt.hasDOB)
			}
			if ok && !dob.Equal(tt.dob) {
				t.Errorf("KTPBirthDate() = %v, want %v", dob, tt.dob)
			}
		})
	}
}

func TestErrors(t *testing.T) {
	var errs Errors
	if errs.Err() != nil {
		t.Error("empty Errors should be nil error")
	}

	errs.Add("postcode", "Please use numbers only")
	errs.Add("street[0]", "")
	errs.Add("postcode", "second message")
	errs.Add("city", "This field is required")

	if len(errs) != 3 {
		t.Fatalf("len = %d, want 3", len(errs))
	}
	if msg, _ := errs.Get("postcode"); msg != "Please use numbers only" {
		t.Errorf("Get(postcode) = %q", msg)
	}
	if errs.Has("street[0]") {
		t.Error("empty message should not be recorded")
	}
	if m := errs.Map(); len(m) != 2 || m["city"] == "" {
		t.Errorf("Map() = %v", m)
	}

	var target Errors
	if !errors.As(errs.Err(), &target) || len(target) != 3 {
		t.Error("Err() should unwrap to Errors")
	}
}
