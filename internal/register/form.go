// Package register implements the customer registration form and the
// container that submits it to the storefront backend.
package register

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"storefront/internal/locale"
	"storefront/internal/storage"
	"storefront/internal/store"
	"storefront/internal/validation"
)

// Input is the raw registration form submission.
type Input struct {
	Prefix          string   `json:"prefix,omitempty"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Email           string   `json:"email"`
	KTPID           string   `json:"ktp_id,omitempty"`
	DOB             string   `json:"dob"`
	Gender          string   `json:"gender"`
	PhoneNumber     string   `json:"phone_number"`
	Referral        string   `json:"referral,omitempty"`
	Password        string   `json:"password,omitempty"`
	ConfirmPassword string   `json:"confirmPassword,omitempty"`
	TermsConditions bool     `json:"terms_conditions"`
	IsSubscribed    bool     `json:"is_subscribed"`
	OrderIDs        []string `json:"order_ids,omitempty"`
}

// VerifiedData is identity data confirmed by an external lookup.
type VerifiedData struct {
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	DOB            string `json:"dob,omitempty"`
	DocumentType   string `json:"document_type,omitempty"`
	DocumentNumber string `json:"document_number,omitempty"`
}

// Payload is the normalized submission sent to the backend.
type Payload struct {
	Prefix           string   `json:"prefix,omitempty"`
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	Email            string   `json:"email"`
	KTPID            string   `json:"ktp_id,omitempty"`
	DOB              string   `json:"dob"`
	Gender           string   `json:"gender,omitempty"`
	PhoneNumber      string   `json:"phone_number"`
	Referral         string   `json:"referral,omitempty"`
	Password         string   `json:"password,omitempty"`
	IsSubscribed     bool     `json:"is_subscribed"`
	DocumentType     string   `json:"document_type,omitempty"`
	DocumentNumber   string   `json:"document_number,omitempty"`
	IsSocialRegister bool     `json:"is_social_register"`
	OrderIDs         []string `json:"order_ids"`
	Consent          bool     `json:"consent,omitempty"`
	BackURL          string   `json:"back_url,omitempty"`
}

// DOBExtractor looks up the date of birth registered for a national ID.
type DOBExtractor interface {
	ExtractDOB(ctx context.Context, nationalID string) (string, error)
}

// Options configure a Form for one store and shopper.
type Options struct {
	StoreCode              string
	HiddenFields           []string
	LegalAge               int
	DateFormat             string
	PhonePrefix            string
	DisableConfirmPassword bool
	IsSocialRegister       bool
	IsEmailPredefined      bool
	ReferralCode           string
	ReferralReadOnly       bool
	SubscriptionEnabled    bool
	DOBAutocomplete        bool
	MinPasswordLength      int
	PasswordClasses        int
	VerifiedData           *VerifiedData
	Prefill                Input
}

// OptionsFor derives form options from the store's remote config.
func OptionsFor(storeCode string, cfg *store.Config) Options {
	f := locale.ResolveFormatting(storeCode)
	return Options{
		StoreCode:           storeCode,
		HiddenFields:        cfg.HiddenAttributes(),
		LegalAge:            cfg.LegalAge(storeCode),
		DateFormat:          f.DateFormat,
		PhonePrefix:         f.PhonePrefix,
		SubscriptionEnabled: cfg.IsSubscriptionEnabled(),
		DOBAutocomplete:     cfg.IsDOBAutocompleteEnabled(),
		MinPasswordLength:   cfg.MinimumPasswordLength(),
		PasswordClasses:     cfg.PasswordRequiredClasses(),
	}
}

// Field is one rendered registration control.
type Field struct {
	Name         string `json:"name"`
	Label        string `json:"label,omitempty"`
	Required     bool   `json:"required"`
	ReadOnly     bool   `json:"read_only,omitempty"`
	Disabled     bool   `json:"disabled,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`
}

// aliases lists the alternate names the backend may use to hide a field.
var aliases = map[string][]string{
	"first_name": {"firstname"},
	"last_name":  {"lastname"},
}

// Form is one mounted registration form. Identity lookups started by the form
// are bound to its lifetime: a result arriving after Close is discarded.
type Form struct {
	opts      Options
	validator *validation.Validator
	extractor DOBExtractor
	session   storage.Session
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mount  sync.Once

	mu          sync.Mutex
	extracted   string
	lookupError error
}

// NewForm mounts a form whose lookups live until ctx ends or Close is called.
func NewForm(ctx context.Context, opts Options, v *validation.Validator, extractor DOBExtractor, session storage.Session, logger *slog.Logger) *Form {
	if opts.DateFormat == "" {
		opts.DateFormat = locale.DefaultDateFormat
	}
	if opts.LegalAge <= 0 {
		opts.LegalAge = store.DefaultLegalAge
	}
	fctx, cancel := context.WithCancel(ctx)
	return &Form{
		opts:      opts,
		validator: v,
		extractor: extractor,
		session:   session,
		logger:    logger,
		ctx:       fctx,
		cancel:    cancel,
	}
}

// Close unmounts the form and waits for pending lookups to finish.
func (f *Form) Close() {
	f.cancel()
	f.wg.Wait()
}

// Wait blocks until pending lookups have finished.
func (f *Form) Wait() {
	f.wg.Wait()
}

// IsRendered reports whether a field survives the hidden-field list.
func (f *Form) IsRendered(name string) bool {
	if slices.Contains(f.opts.HiddenFields, name) {
		return false
	}
	for _, alias := range aliases[name] {
		if slices.Contains(f.opts.HiddenFields, alias) {
			return false
		}
	}
	return true
}

func (f *Form) isIndonesia() bool {
	return f.opts.StoreCode == store.MarketID
}

// IsDOBDisabled reports whether the date of birth comes from verification
// rather than user input.
func (f *Form) IsDOBDisabled() bool {
	return (f.opts.VerifiedData != nil && f.opts.VerifiedData.DOB != "") ||
		(f.isIndonesia() && f.opts.DOBAutocomplete)
}

// Fields lists the rendered controls in display order.
func (f *Form) Fields() []Field {
	p := f.opts.Prefill
	vd := f.verified()

	candidates := []Field{
		{Name: "prefix", DefaultValue: p.Prefix},
		{Name: "first_name", Required: true, DefaultValue: firstNonEmpty(vd.FirstName, p.FirstName)},
		{Name: "last_name", Required: true, DefaultValue: firstNonEmpty(vd.LastName, p.LastName)},
		{Name: "email", Required: true, DefaultValue: p.Email,
			ReadOnly: p.Email != "" && (f.opts.IsEmailPredefined || f.opts.IsSocialRegister)},
		{Name: "ktp_id", DefaultValue: f.storedKTP()},
		{Name: "dob", Required: true, Disabled: f.IsDOBDisabled(), DefaultValue: f.displayDOB()},
		{Name: "gender", Required: true, DefaultValue: p.Gender},
		{Name: "phone_number", Required: true, DefaultValue: p.PhoneNumber},
	}

	var fields []Field
	for _, fd := range candidates {
		if f.IsRendered(fd.Name) {
			fields = append(fields, fd)
		}
	}

	fields = append(fields, Field{Name: "referral", DefaultValue: f.opts.ReferralCode, ReadOnly: f.opts.ReferralReadOnly})
	if !f.opts.IsSocialRegister {
		fields = append(fields, Field{Name: "password", Required: true})
		if !f.opts.DisableConfirmPassword {
			fields = append(fields, Field{Name: "confirmPassword", Required: true})
		}
	}
	fields = append(fields, Field{Name: "terms_conditions", Required: true})
	if f.opts.SubscriptionEnabled {
		fields = append(fields, Field{Name: "is_subscribed", DefaultValue: "true"})
	}

	for i := range fields {
		fields[i].Label = f.validator.Message(fields[i].Name)
	}
	return fields
}

// PasswordHint renders the server-driven password tooltip parameters.
func (f *Form) PasswordHint() string {
	return f.validator.Message("tooltip_password",
		strconv.Itoa(f.opts.MinPasswordLength), strconv.Itoa(f.opts.PasswordClasses))
}

// Validate checks every rendered field.
func (f *Form) Validate(in Input, now time.Time) validation.Errors {
	var errs validation.Errors
	text := validation.Rules(validation.Required, validation.Trim)

	if f.IsRendered("first_name") {
		errs.Add("first_name", f.validator.Check(f.firstName(in), text))
	}
	if f.IsRendered("last_name") {
		errs.Add("last_name", f.validator.Check(f.lastName(in), text))
	}
	if f.IsRendered("email") {
		errs.Add("email", f.validator.Check(in.Email, validation.Rules(validation.Required, validation.Email)))
	}
	if f.IsRendered("ktp_id") {
		errs.Add("ktp_id", f.KTPError(validation.SanitizeDigits(in.KTPID), now))
	}
	if f.IsRendered("dob") {
		errs.Add("dob", f.validateDOB(f.dobValue(in), now))
	}
	if f.IsRendered("gender") {
		errs.Add("gender", f.validator.Check(in.Gender, validation.Required))
	}
	if f.IsRendered("phone_number") {
		phone := validation.SanitizeDigits(in.PhoneNumber)
		errs.Add("phone_number", f.validator.Check(phone, validation.Rules(validation.Required, validation.Phone(f.opts.StoreCode))))
	}
	if !f.opts.IsSocialRegister {
		errs.Add("password", f.validator.Check(in.Password,
			validation.Rules(validation.Required, validation.Password(f.opts.MinPasswordLength, f.opts.PasswordClasses))))
		if !f.opts.DisableConfirmPassword {
			if msg := f.validator.Check(in.ConfirmPassword, validation.Required); msg != "" {
				errs.Add("confirmPassword", msg)
			} else if in.ConfirmPassword != in.Password {
				errs.Add("confirmPassword", f.validator.Message("confirm_password_error"))
			}
		}
	}
	if !in.TermsConditions {
		errs.Add("terms_conditions", f.validator.Message("required"))
	}
	return errs
}

// KTPError returns the message shown for ktp, or "" when it is valid.
func (f *Form) KTPError(ktp string, now time.Time) string {
	res := validation.ValidateKTP(ktp, now, f.opts.LegalAge)
	if res.Valid {
		return ""
	}
	if res.Reason == validation.ReasonInvalidFormat {
		return f.validator.Message("error_message_empty")
	}
	return f.validator.Message("ktp_error_message", strconv.Itoa(f.opts.LegalAge))
}

// validateDOB runs the structural check before the legal age check.
func (f *Form) validateDOB(value string, now time.Time) string {
	if msg := f.validator.Check(value, validation.Required); msg != "" {
		return msg
	}
	dob, err := locale.ParseStoreDate(value, f.opts.DateFormat)
	if err != nil || !validation.IsValidDOB(dob, now) {
		return f.validator.Message("incorrect_date_format")
	}
	if !validation.IsOfLegalAge(dob, now, f.opts.LegalAge) {
		return f.validator.Message("dob_error_message", strconv.Itoa(f.opts.LegalAge))
	}
	return ""
}

// Submit validates in and builds the payload when it passes.
func (f *Form) Submit(in Input, now time.Time) (*Payload, validation.Errors) {
	if errs := f.Validate(in, now); len(errs) > 0 {
		return nil, errs
	}
	p := f.Payload(in)
	return &p, nil
}

// Payload normalizes a validated submission.
func (f *Form) Payload(in Input) Payload {
	vd := f.verified()

	dob := ""
	if t, err := locale.ParseStoreDate(f.dobValue(in), f.opts.DateFormat); err == nil {
		dob = locale.SubmissionDate(t)
	}

	orderIDs := in.OrderIDs
	if orderIDs == nil {
		orderIDs = f.opts.Prefill.OrderIDs
	}
	if orderIDs == nil {
		orderIDs = []string{}
	}

	p := Payload{
		Prefix:           in.Prefix,
		FirstName:        strings.TrimSpace(f.firstName(in)),
		LastName:         strings.TrimSpace(f.lastName(in)),
		Email:            strings.TrimSpace(in.Email),
		KTPID:            validation.SanitizeDigits(in.KTPID),
		DOB:              dob,
		Gender:           in.Gender,
		PhoneNumber:      f.opts.PhonePrefix + validation.SanitizeDigits(in.PhoneNumber),
		Referral:         in.Referral,
		Password:         in.Password,
		IsSubscribed:     in.IsSubscribed,
		DocumentType:     vd.DocumentType,
		DocumentNumber:   vd.DocumentNumber,
		IsSocialRegister: f.opts.IsSocialRegister,
		OrderIDs:         orderIDs,
	}
	if in.IsSubscribed {
		p.Consent = true
	}
	return p
}

// OnKTPBlur starts a date of birth lookup when autocomplete is enabled and the
// value is a valid KTP. It reports whether a lookup started.
func (f *Form) OnKTPBlur(value string, now time.Time) bool {
	if !f.opts.DOBAutocomplete {
		return false
	}
	ktp := validation.SanitizeDigits(value)
	if !validation.ValidateKTP(ktp, now, f.opts.LegalAge).Valid {
		return false
	}
	f.lookup(ktp)
	return true
}

// Mount runs the lookup once for a KTP remembered from earlier in the session.
func (f *Form) Mount() {
	f.mount.Do(func() {
		if !f.isIndonesia() || !f.opts.DOBAutocomplete {
			return
		}
		if ktp := f.storedKTP(); ktp != "" {
			f.lookup(ktp)
		}
	})
}

func (f *Form) lookup(ktp string) {
	if f.extractor == nil {
		return
	}
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		dob, err := f.extractor.ExtractDOB(f.ctx, ktp)

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.ctx.Err() != nil {
			return
		}
		if err != nil {
			f.lookupError = err
			f.logger.WarnContext(f.ctx, "dob lookup failed", slog.String("error", err.Error()))
			return
		}
		f.extracted = dob
		f.lookupError = nil

		if err := f.session.Set(f.ctx, storage.NameKTPID, ktp); err != nil {
			f.logger.WarnContext(f.ctx, "storing ktp failed", slog.String("error", err.Error()))
		}
		if err := f.session.Set(f.ctx, storage.NameDOB, dob); err != nil {
			f.logger.WarnContext(f.ctx, "storing dob failed", slog.String("error", err.Error()))
		}
	}()
}

// ExtractedDOB returns the last lookup result and error.
func (f *Form) ExtractedDOB() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.extracted, f.lookupError
}

func (f *Form) verified() VerifiedData {
	if f.opts.VerifiedData == nil {
		return VerifiedData{}
	}
	return *f.opts.VerifiedData
}

func (f *Form) firstName(in Input) string {
	return firstNonEmpty(in.FirstName, f.verified().FirstName)
}

func (f *Form) lastName(in Input) string {
	return firstNonEmpty(in.LastName, f.verified().LastName)
}

// dobValue returns the date of birth in the store format. A disabled field
// takes its value from verification or the lookup, never from input.
func (f *Form) dobValue(in Input) string {
	if f.IsDOBDisabled() {
		return f.displayDOB()
	}
	return in.DOB
}

// displayDOB converts the known backend date of birth to the store format.
func (f *Form) displayDOB() string {
	extracted, _ := f.ExtractedDOB()
	raw := firstNonEmpty(f.verified().DOB, extracted, f.opts.Prefill.DOB)
	if raw == "" {
		return ""
	}
	t, err := locale.NormalizeDate(raw, f.opts.DateFormat)
	if err != nil {
		return raw
	}
	return locale.FormatStoreDate(t, f.opts.DateFormat)
}

func (f *Form) storedKTP() string {
	ktp, err := f.session.Get(f.ctx, storage.NameKTPID)
	if err != nil {
		f.logger.WarnContext(f.ctx, "reading stored ktp failed", slog.String("error", err.Error()))
		return ""
	}
	return ktp
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
