package locale

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"storefront/internal/model"
	"storefront/internal/store"
)

// Named number formats accepted in MoneyOptions.Format.
const (
	FormatNameMoney   = "money"
	FormatNameInteger = "integer"
)

// MoneyOptions adjusts a single money rendering.
type MoneyOptions struct {
	IsNegative bool `json:"is_negative"`
	// Qty multiplies the value when positive.
	Qty    float64 `json:"qty"`
	Format string  `json:"format"`
	// FractionDigits overrides every other fraction digit rule.
	FractionDigits *int `json:"fraction_digits,omitempty"`
}

// symbolSubstitutions maps a market to its currency code patch.
var symbolSubstitutions = map[string][2]string{
	store.MarketPH: {"PHP", "₱"},
	store.MarketID: {"IDR", "Pp"},
}

// FormatMoney renders money as "{CODE} {number}" for the store locale, then
// patches the first currency code occurrence with the market symbol.
// A nil money renders as "".
func FormatMoney(storeCode, locale string, money *model.Money, opts MoneyOptions) string {
	if money == nil {
		return ""
	}

	value := money.Value
	if opts.IsNegative {
		value *= -1
	}
	if opts.Qty > 0 {
		value *= opts.Qty
	}

	code := strings.ToUpper(money.Currency)
	digits := fractionDigits(storeCode, code, opts)

	p := message.NewPrinter(displayTag(locale))
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	num := p.Sprint(number.Decimal(value, number.Scale(digits)))

	formatted := sign + num
	if code != "" {
		formatted = sign + code + " " + num
	}

	if sub, ok := symbolSubstitutions[storeCode]; ok {
		formatted = strings.Replace(formatted, sub[0], sub[1], 1)
	}
	return formatted
}

// fractionDigits applies explicit options, then the named format, then the
// store rule, then the currency's standard rounding.
func fractionDigits(storeCode, code string, opts MoneyOptions) int {
	if opts.FractionDigits != nil {
		return *opts.FractionDigits
	}
	if opts.Format == FormatNameInteger {
		return 0
	}
	if f := ResolveFormatting(storeCode); f.FractionDigits != nil {
		return *f.FractionDigits
	}
	if unit, err := currency.ParseISO(code); err == nil {
		scale, _ := currency.Standard.Rounding(unit)
		return scale
	}
	return 2
}

func displayTag(locale string) language.Tag {
	if locale == "" {
		return language.AmericanEnglish
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.AmericanEnglish
	}
	return tag
}
