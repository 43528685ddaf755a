// Package locale resolves the per-store formatting rules and translation
// bundles, and formats money and dates the same way for every component that
// is shown the same store code.
package locale

import "storefront/internal/store"

// Date patterns in the storefront's dd/MM/yyyy notation.
const (
	DateFormatMonthFirst = "MM/dd/yyyy"
	DateFormatDayFirst   = "dd/MM/yyyy"
	DefaultDateFormat    = DateFormatMonthFirst
)

// Formatting is the store-dependent formatting decision.
type Formatting struct {
	// FractionDigits is nil when the currency default applies.
	FractionDigits *int   `json:"fraction_digits"`
	DateFormat     string `json:"date_format"`
	PhonePrefix    string `json:"phone_prefix"`
}

// Digits returns the fraction digits, or def when the store does not fix them.
func (f Formatting) Digits(def int) int {
	if f.FractionDigits == nil {
		return def
	}
	return *f.FractionDigits
}

// ResolveFormatting returns the formatting rules for a market code as
// returned by store.StoreCodeByPathname.
func ResolveFormatting(storeCode string) Formatting {
	switch storeCode {
	case store.MarketPH:
		return Formatting{FractionDigits: intPtr(2), DateFormat: DateFormatMonthFirst, PhonePrefix: "+63"}
	case store.MarketID:
		return Formatting{FractionDigits: intPtr(0), DateFormat: DateFormatDayFirst, PhonePrefix: "+62"}
	default:
		return Formatting{DateFormat: DefaultDateFormat}
	}
}

func intPtr(v int) *int { return &v }
