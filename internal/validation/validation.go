// Package validation holds the reusable field rules shared by the billing and
// registration forms. Rules are validator tag strings built per store, so
// server-supplied limits never need to be hardcoded.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	ut "github.com/go-playground/universal-translator"

	"storefront/internal/locale"
	"storefront/internal/store"
)

// Custom validator tags.
const (
	tagTrim        = "trim"
	tagHouseNumber = "housenumber"
	tagDigits      = "digits"
	tagPostcode    = "postcodechars"
	tagPhone       = "phone"
	tagPwLen       = "pwlen"
	tagPwClasses   = "pwclasses"
)

// Per-field minimum lengths that do not come from server settings.
const (
	StreetMinLength = 3
	PhoneMaxLength  = 13
)

var (
	houseNumberPattern = regexp.MustCompile(`\d+`)
	digitsPattern      = regexp.MustCompile(`^\d+$`)
)

// tagMessages maps a failing tag to its bundle key.
var tagMessages = map[string]string{
	"required":     "required",
	tagTrim:        "trim_error",
	"min":          "min_length",
	"max":          "max_length",
	"email":        "email_pattern",
	tagHouseNumber: "error_house_number",
	tagDigits:      "digits_pattern",
	tagPostcode:    "error_postcode_characters",
	tagPhone:       "phone_pattern",
	tagPwLen:       "password_min_length",
	tagPwClasses:   "password_classes",
}

// Validator checks single values against rule tags and renders failures
// through a store translator.
type Validator struct {
	v     *validator.Validate
	trans ut.Translator
}

// New creates a Validator whose messages come from trans.
func New(trans ut.Translator) (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	custom := map[string]validator.Func{
		tagTrim:        validateTrim,
		tagHouseNumber: validateHouseNumber,
		tagDigits:      validateDigits,
		tagPostcode:    validateDigits,
		tagPhone:       validatePhone,
		tagPwLen:       validatePasswordLength,
		tagPwClasses:   validatePasswordClasses,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("registering %s rule: %w", tag, err)
		}
	}

	if trans != nil {
		for tag, key := range tagMessages {
			err := v.RegisterTranslation(tag, trans,
				func(ut.Translator) error { return nil },
				func(t ut.Translator, fe validator.FieldError) string {
					return locale.T(t, key, fe.Param())
				})
			if err != nil {
				return nil, fmt.Errorf("registering %s translation: %w", tag, err)
			}
		}
	}

	return &Validator{v: v, trans: trans}, nil
}

// Check validates value against a comma separated rule string and returns
// the message of the first failing rule, or "" when the value passes.
func (v *Validator) Check(value, rules string) string {
	if rules == "" {
		return ""
	}
	err := v.v.Var(value, rules)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	if v.trans == nil {
		if key, ok := tagMessages[verrs[0].Tag()]; ok {
			return key
		}
		return verrs[0].Tag()
	}
	return verrs[0].Translate(v.trans)
}

// Message renders a bundle key through the validator's translator.
func (v *Validator) Message(key string, params ...string) string {
	return locale.T(v.trans, key, params...)
}

// Rules joins rule fragments, skipping empty ones.
func Rules(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ",")
}

// Rule fragments.
const (
	Required    = "required"
	Trim        = tagTrim
	Email       = "email"
	HouseNumber = tagHouseNumber
	Digits      = tagDigits
	Postcode    = tagPostcode
)

// MinLength returns a minimum length rule, or "" for n <= 0.
func MinLength(n int) string {
	if n <= 0 {
		return ""
	}
	return "min=" + strconv.Itoa(n)
}

// MaxLength returns a maximum length rule, or "" for n <= 0.
func MaxLength(n int) string {
	if n <= 0 {
		return ""
	}
	return "max=" + strconv.Itoa(n)
}

// PhoneMinLength returns the minimum number of digits per market.
func PhoneMinLength(storeCode string) int {
	if storeCode == store.MarketID {
		return 9
	}
	return 10
}

// Phone returns the phone rule for a market: digits only, between the market
// minimum and PhoneMaxLength.
func Phone(storeCode string) string {
	return tagPhone + "=" + strconv.Itoa(PhoneMinLength(storeCode))
}

// Password returns the password rule for server supplied limits.
func Password(minLength, requiredClasses int) string {
	return Rules(
		tagPwLen+"="+strconv.Itoa(max(minLength, 1)),
		tagPwClasses+"="+strconv.Itoa(max(requiredClasses, 0)),
	)
}

func validateTrim(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || strings.TrimSpace(s) != ""
}

func validateHouseNumber(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || houseNumberPattern.MatchString(s)
}

func validateDigits(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || digitsPattern.MatchString(s)
}

func validatePhone(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	minLen, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return digitsPattern.MatchString(s) && len(s) >= minLen && len(s) <= PhoneMaxLength
}

func validatePasswordLength(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len([]rune(fl.Field().String())) >= n
}

func validatePasswordClasses(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return CharacterClasses(fl.Field().String()) >= n
}

// CharacterClasses counts the distinct classes present in s: lower case,
// upper case, digits and special characters.
func CharacterClasses(s string) int {
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	n := 0
	for _, ok := range []bool{lower, upper, digit, special} {
		if ok {
			n++
		}
	}
	return n
}

// SanitizeDigits strips every non-digit character.
func SanitizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
