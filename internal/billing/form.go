// Package billing renders and validates the checkout billing address form.
package billing

import (
	"context"
	"fmt"
	"strconv"

	"storefront/internal/checkout"
	"storefront/internal/store"
	"storefront/internal/validation"
)

// Checkout error reporting for this form.
const (
	ErrorKey      = "address empty"
	ErrorPriority = 3
)

// Address is the billing address input.
type Address struct {
	Firstname   string   `json:"firstname"`
	Lastname    string   `json:"lastname"`
	Telephone   string   `json:"telephone"`
	Company     string   `json:"company,omitempty"`
	Street      []string `json:"street"`
	CountryCode string   `json:"country_code"`
	Region      string   `json:"region"`
	City        string   `json:"city"`
	District    string   `json:"district,omitempty"`
	Postcode    string   `json:"postcode"`
}

func (a Address) value(name string) string {
	switch name {
	case "firstname":
		return a.Firstname
	case "lastname":
		return a.Lastname
	case "telephone":
		return a.Telephone
	case "company":
		return a.Company
	case "country_code":
		return a.CountryCode
	case "region":
		return a.Region
	case "city":
		return a.City
	case "district":
		return a.District
	case "postcode":
		return a.Postcode
	}
	var i int
	if _, err := fmt.Sscanf(name, "street[%d]", &i); err == nil && i >= 0 && i < len(a.Street) {
		return a.Street[i]
	}
	return ""
}

// Field is one rendered form control.
type Field struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	LabelKey    string `json:"label_key"`
	LabelParam  string `json:"label_param,omitempty"`
	Select      bool   `json:"select,omitempty"`
	Required    bool   `json:"required"`
	Placeholder string `json:"placeholder,omitempty"`
	Rules       string `json:"-"`
}

// FieldPlan lists the fields rendered for a market and its address settings.
// Labels are left untranslated.
func FieldPlan(storeCode string, settings store.AddressSettings) []Field {
	fields := []Field{
		{Name: "firstname", LabelKey: "firstname", Required: true, Rules: validation.Rules(validation.Required, validation.Trim)},
		{Name: "lastname", LabelKey: "lastname", Required: true, Rules: validation.Rules(validation.Required, validation.Trim)},
		{Name: "telephone", LabelKey: "telephone", Required: true, Rules: validation.Rules(validation.Required, validation.Phone(storeCode))},
	}

	switch settings.ShowCompany {
	case store.CompanyRequired:
		fields = append(fields, Field{Name: "company", LabelKey: "company", Required: true, Rules: validation.Rules(validation.Required, validation.Trim)})
	case store.CompanyOptional:
		fields = append(fields, Field{Name: "company", LabelKey: "company_optional", Rules: validation.Trim})
	}

	for i := 0; i < settings.StreetMaxLines; i++ {
		f := Field{Name: "street[" + strconv.Itoa(i) + "]"}
		if i == 0 {
			f.LabelKey = "address"
			f.Required = true
			f.Rules = validation.Rules(validation.Required, validation.HouseNumber, validation.MinLength(validation.StreetMinLength))
		} else {
			f.LabelKey = "additional_address"
			f.LabelParam = strconv.Itoa(i + 1)
		}
		fields = append(fields, f)
	}

	levels := []Level{LevelCountry, LevelRegion, LevelCity}
	if storeCode == store.MarketID {
		levels = append(levels, LevelDistrict)
	}
	for _, l := range levels {
		fields = append(fields, Field{
			Name:     l.String(),
			LabelKey: labelKeys[l],
			Select:   true,
			Required: true,
			Rules:    validation.Required,
		})
	}

	fields = append(fields, Field{
		Name:     "postcode",
		LabelKey: "postcode",
		Required: true,
		Rules: validation.Rules(
			validation.Required,
			validation.Postcode,
			validation.MinLength(settings.PostcodeMinLength),
			validation.MaxLength(settings.PostcodeMaxLength),
		),
	})
	return fields
}

// Form is the billing address form for one store.
type Form struct {
	storeCode string
	settings  store.AddressSettings
	validator *validation.Validator
	sink      checkout.ErrorSink
}

// NewForm creates a Form. sink may be nil outside checkout.
func NewForm(storeCode string, settings store.AddressSettings, v *validation.Validator, sink checkout.ErrorSink) *Form {
	return &Form{storeCode: storeCode, settings: settings, validator: v, sink: sink}
}

// Fields returns the translated field plan, with select placeholders derived
// from the current cascade state.
func (f *Form) Fields(state *AddressState) []Field {
	fields := FieldPlan(f.storeCode, f.settings)
	for i := range fields {
		fd := &fields[i]
		if fd.LabelParam != "" {
			fd.Label = f.validator.Message(fd.LabelKey, fd.LabelParam)
		} else {
			fd.Label = f.validator.Message(fd.LabelKey)
		}
		if fd.Select && state != nil {
			key, parent := state.Placeholder(levelByName(fd.Name))
			if parent != "" {
				fd.Placeholder = f.validator.Message(key, f.validator.Message(parent))
			} else {
				fd.Placeholder = f.validator.Message(key)
			}
		}
	}
	return fields
}

func levelByName(name string) Level {
	if l, ok := ParseLevel(name); ok {
		return l
	}
	return -1
}

// Validate checks every rendered field and reports failures to the checkout
// sink. A clean pass clears this form's entry.
func (f *Form) Validate(a Address) validation.Errors {
	var errs validation.Errors
	for _, fd := range FieldPlan(f.storeCode, f.settings) {
		errs.Add(fd.Name, f.validator.Check(a.value(fd.Name), fd.Rules))
	}

	if f.sink != nil {
		f.sink.SetCheckoutErrors(errs, ErrorKey, ErrorPriority)
	}
	return errs
}

// Submit validates a and calls onSubmit only when no field error is pending.
// The returned error is onSubmit's own failure.
func (f *Form) Submit(ctx context.Context, a Address, onSubmit func(context.Context, Address) error) (validation.Errors, error) {
	if errs := f.Validate(a); len(errs) > 0 {
		return errs, nil
	}
	if onSubmit == nil {
		return nil, nil
	}
	return nil, onSubmit(ctx, f.normalize(a))
}

// normalize drops values for fields that are not rendered.
func (f *Form) normalize(a Address) Address {
	if f.settings.ShowCompany == store.CompanyHidden {
		a.Company = ""
	}
	if f.storeCode != store.MarketID {
		a.District = ""
	}
	if len(a.Street) > f.settings.StreetMaxLines {
		a.Street = a.Street[:f.settings.StreetMaxLines]
	}
	return a
}
