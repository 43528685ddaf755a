package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"storefront/internal/billing"
	"storefront/internal/checkout"
	"storefront/internal/locale"
	"storefront/internal/model"
	"storefront/internal/product"
	"storefront/internal/register"
	"storefront/internal/session"
	"storefront/internal/storage"
	"storefront/internal/validation"
)

// Form names used in metrics and error envelopes.
const (
	formBillingAddress = "billing_address"
	formKTP            = "ktp"
)

// === Formatting ===

type formatMoneyRequest struct {
	Store   string              `json:"store"`
	Money   *model.Money        `json:"money"`
	Options locale.MoneyOptions `json:"options"`
}

type formattedResponse struct {
	Formatted string `json:"formatted"`
}

func (h *Handler) formatMoney(req formatMoneyRequest) (*formattedResponse, error) {
	sc, err := h.lookupStore(req.Store)
	if err != nil {
		return nil, err
	}
	return &formattedResponse{
		Formatted: locale.FormatMoney(sc.market, sc.desc.Locale, req.Money, req.Options),
	}, nil
}

// handleFormatMoney renders an amount the way the store displays prices.
// POST /api/format/money
func (h *Handler) handleFormatMoney(w http.ResponseWriter, r *http.Request) {
	var req formatMoneyRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	resp, err := h.formatMoney(req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type formatDateRequest struct {
	// Store is optional; when set its date format is tried as an input layout.
	Store string           `json:"store,omitempty"`
	Value string           `json:"value"`
	Style locale.DateStyle `json:"style,omitempty"`
}

// handleFormatDate renders a backend date in the brand display style.
// POST /api/format/date
func (h *Handler) handleFormatDate(w http.ResponseWriter, r *http.Request) {
	var req formatDateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	opts := locale.DateOptions{Style: req.Style}
	if req.Store != "" {
		sc, err := h.lookupStore(req.Store)
		if err != nil {
			h.writeError(w, err)
			return
		}
		opts.StoreFormat = locale.ResolveFormatting(sc.market).DateFormat
	}

	formatted, err := locale.FormatDate(req.Value, opts)
	if err != nil {
		h.writeError(w, model.NewValidationError("value", "unrecognized date"))
		return
	}
	h.writeJSON(w, http.StatusOK, formattedResponse{Formatted: formatted})
}

// === Billing address ===

type billingRequest struct {
	Store   string          `json:"store"`
	Address billing.Address `json:"address"`
	// Change is an optional cascade step applied before rendering fields.
	Change *billingChange `json:"change,omitempty"`
}

type billingChange struct {
	Level string `json:"level"`
	Value string `json:"value"`
	billing.ChangeOptions
}

type billingResponse struct {
	Valid   bool            `json:"valid"`
	Address billing.Address `json:"address"`
	Fields  []billing.Field `json:"fields"`
}

func (h *Handler) billingForm(ctx context.Context, code string, sink checkout.ErrorSink) (*billing.Form, error) {
	sc, err := h.loadStore(ctx, code)
	if err != nil {
		return nil, err
	}
	v, err := h.validator(sc)
	if err != nil {
		return nil, err
	}
	return billing.NewForm(sc.market, sc.config.AddressSettings(), v, sink), nil
}

// validateBilling runs the billing form against a and returns the most
// important checkout error as a form error.
func (h *Handler) validateBilling(ctx context.Context, code string, a billing.Address) error {
	agg := checkout.NewAggregator()
	form, err := h.billingForm(ctx, code, agg)
	if err != nil {
		return err
	}
	form.Validate(a)
	if top, ok := agg.Top(); ok {
		h.metrics.FormFailed(formBillingAddress)
		return model.NewFormError(formBillingAddress, top.Errors.Map())
	}
	return nil
}

// handleValidateBilling validates a billing address for a store.
// POST /api/billing-address/validate
func (h *Handler) handleValidateBilling(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req billingRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.validateBilling(ctx, req.Store, req.Address); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, billingResponse{Valid: true, Address: req.Address})
}

// handleBillingFields applies an optional cascade change to the address and
// renders the field plan with its select placeholders.
// POST /api/billing-address/fields
func (h *Handler) handleBillingFields(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req billingRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	form, err := h.billingForm(ctx, req.Store, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}

	state := billing.NewAddressState(req.Address)
	if c := req.Change; c != nil {
		level, ok := billing.ParseLevel(c.Level)
		if !ok {
			h.writeError(w, model.NewValidationError("change.level", "unknown level "+c.Level))
			return
		}
		state.Change(level, c.Value, c.ChangeOptions)
	}

	addr := req.Address
	state.Apply(&addr)
	h.writeJSON(w, http.StatusOK, billingResponse{
		Valid:   len(form.Validate(addr)) == 0,
		Address: addr,
		Fields:  form.Fields(state),
	})
}

// === Registration ===

type registerRequest struct {
	Store string               `json:"store"`
	Input register.Input       `json:"input"`
	State register.RouterState `json:"state"`
	// URL is the page the form was opened on; it may carry a referral code.
	URL          string                 `json:"url,omitempty"`
	VerifiedData *register.VerifiedData `json:"verified_data,omitempty"`
}

// handleRegister validates and submits a customer registration.
// POST /api/register
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.container == nil {
		h.writeError(w, model.NewNotFoundError("registration"))
		return
	}

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	sess := storage.NewSession(h.sessions, session.FromContext(ctx).ID)
	sc, err := h.loadStore(ctx, req.Store)
	if err != nil {
		h.writeError(w, err)
		return
	}
	v, err := h.validator(sc)
	if err != nil {
		h.writeError(w, err)
		return
	}

	opts := register.OptionsFor(sc.market, sc.config)
	opts.IsSocialRegister = req.State.SocialRegister
	opts.VerifiedData = req.VerifiedData
	if sc.config.IsReferralProgramEnabled() {
		code, err := h.referralCode(ctx, sess, req.URL)
		if err != nil {
			h.logger.WarnContext(ctx, "reading referral code failed", slog.String("error", err.Error()))
		}
		if code != "" {
			opts.ReferralCode = code
			opts.ReferralReadOnly = true
			if req.Input.Referral == "" {
				req.Input.Referral = code
			}
		}
	}

	form := register.NewForm(ctx, opts, v, h.extractor, sess, h.logger)
	defer form.Close()

	out := h.container.Register(ctx, register.Request{
		Form:    form,
		Input:   req.Input,
		State:   req.State,
		Session: sess,
	})

	switch out.Status {
	case register.StatusInvalid:
		h.writeError(w, model.NewFormError("registration", out.Errors.Map()))
	case register.StatusFailed:
		h.writeJSON(w, http.StatusUnprocessableEntity, out)
	case register.StatusConfirmationRequired:
		h.writeJSON(w, http.StatusAccepted, out)
	default:
		h.writeJSON(w, http.StatusCreated, out)
	}
}

func (h *Handler) referralCode(ctx context.Context, sess storage.Session, raw string) (string, error) {
	if raw == "" {
		return sess.Get(ctx, storage.NameReferralCode)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return h.referrals.GetCode(ctx, sess, u.Path, u.RawQuery)
}

type extractDOBRequest struct {
	Store string `json:"store"`
	KTPID string `json:"ktp_id"`
}

type extractDOBResponse struct {
	KTPID string `json:"ktp_id"`
	// Lookup reports whether the backend was asked; false when autocomplete
	// is disabled for the store.
	Lookup bool   `json:"lookup"`
	DOB    string `json:"dob,omitempty"`
}

// handleExtractDOB validates a KTP number and looks up its holder's date of
// birth, remembering both for the session.
// POST /api/register/extract-dob
func (h *Handler) handleExtractDOB(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req extractDOBRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	sc, err := h.loadStore(ctx, req.Store)
	if err != nil {
		h.writeError(w, err)
		return
	}
	v, err := h.validator(sc)
	if err != nil {
		h.writeError(w, err)
		return
	}

	now := h.now()
	ktp := validation.SanitizeDigits(req.KTPID)
	sess := storage.NewSession(h.sessions, session.FromContext(ctx).ID)
	form := register.NewForm(ctx, register.OptionsFor(sc.market, sc.config), v, h.extractor, sess, h.logger)
	defer form.Close()

	if msg := form.KTPError(ktp, now); msg != "" {
		h.metrics.FormFailed(formKTP)
		h.writeError(w, model.NewFormError(formKTP, map[string]string{"ktp_id": msg}))
		return
	}

	started := form.OnKTPBlur(ktp, now)
	form.Wait()
	dob, lookupErr := form.ExtractedDOB()
	if lookupErr != nil {
		var apiErr *model.APIError
		if !errors.As(lookupErr, &apiErr) {
			lookupErr = model.NewUpstreamError("dob lookup", lookupErr)
		}
		h.writeError(w, lookupErr)
		return
	}
	h.writeJSON(w, http.StatusOK, extractDOBResponse{KTPID: ktp, Lookup: started, DOB: dob})
}

// === Product information hash ===

// Product hash actions.
const (
	hashActionLoad   = "load"
	hashActionToggle = "toggle"
	hashActionSelect = "select"
)

type productHashRequest struct {
	URL         string              `json:"url"`
	Action      string              `json:"action"`
	Key         string              `json:"key,omitempty"`
	Open        bool                `json:"open,omitempty"`
	Items       []product.Item      `json:"items"`
	Description string              `json:"description,omitempty"`
	Attributes  []product.Attribute `json:"attributes,omitempty"`
}

type productHashResponse struct {
	OpenKey  string           `json:"open_key,omitempty"`
	TabKey   string           `json:"tab_key,omitempty"`
	Location product.Location `json:"location"`
	URL      string           `json:"url"`
	// Replace asks the caller to replace the current history entry.
	Replace bool `json:"replace"`
}

// handleProductHash resolves which product information section is open for a
// location and how the location changes on interaction.
// POST /api/product/hash
func (h *Handler) handleProductHash(w http.ResponseWriter, r *http.Request) {
	var req productHashRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	loc, err := product.ParseLocation(req.URL)
	if err != nil {
		h.writeError(w, model.NewValidationError("url", "malformed URL"))
		return
	}

	var resp productHashResponse
	switch req.Action {
	case hashActionLoad, "":
		var ok bool
		resp.OpenKey, resp.Location, ok = product.ResolveHash(req.Items, loc)
		resp.TabKey = product.DefaultTabKey(req.Description, req.Attributes)
		resp.Replace = ok
	case hashActionToggle:
		resp.OpenKey, resp.Location = product.Toggle(loc, req.Key, req.Open)
		resp.Replace = resp.Location != loc
	case hashActionSelect:
		resp.TabKey, resp.Location = product.SelectTab(loc, req.Key)
		resp.Replace = resp.Location != loc
	default:
		h.writeError(w, model.NewValidationError("action", "unknown action "+req.Action))
		return
	}
	resp.URL = resp.Location.String()
	h.writeJSON(w, http.StatusOK, resp)
}
