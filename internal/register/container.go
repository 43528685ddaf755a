package register

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/model"
	"storefront/internal/storage"
	"storefront/internal/validation"
)

// Navigation targets.
const (
	DefaultBackURL = "/account"
	LoginURL       = "/account/login"
)

// Registration analytics outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFail    = "fail"
)

// Registrar submits a registration to the backend.
type Registrar interface {
	Register(ctx context.Context, p Payload) (*Result, error)
}

// Analytics receives registration tracking events.
type Analytics interface {
	TrackRegistration(ctx context.Context, outcome string, errs validation.Errors)
	TrackNewsletter(ctx context.Context)
}

// Result is the backend's registration response.
type Result struct {
	// Confirmed is nil when the backend does not report confirmation.
	Confirmed *bool `json:"confirmed,omitempty"`
	User      *User `json:"user,omitempty"`
}

// User is the registered account.
type User struct {
	Email     string `json:"email"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Consent   bool   `json:"consent"`
}

// IsConfirmed reports whether the account can sign in right away.
func (r *Result) IsConfirmed() bool {
	return r == nil || r.Confirmed == nil || *r.Confirmed
}

// RouterState is the navigation state the registration page was opened with.
type RouterState struct {
	From           string `json:"from,omitempty"`
	SocialName     string `json:"social_name,omitempty"`
	SocialRegister bool   `json:"social_register,omitempty"`
}

// Toast is a user notification.
type Toast struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// RedirectState travels with a redirect.
type RedirectState struct {
	ShowAccountConfirmNotification bool   `json:"show_account_confirm_notification"`
	BackURL                        string `json:"back_url"`
}

// Outcome statuses.
const (
	StatusRegistered           = "registered"
	StatusConfirmationRequired = "confirmation_required"
	StatusInvalid              = "invalid"
	StatusFailed               = "failed"
)

// Outcome is what the page does after a registration attempt. A failed
// attempt always leaves the form re-submittable.
type Outcome struct {
	Status           string            `json:"status"`
	Redirect         string            `json:"redirect,omitempty"`
	RedirectState    *RedirectState    `json:"redirect_state,omitempty"`
	Toast            *Toast            `json:"toast,omitempty"`
	Errors           validation.Errors `json:"errors,omitempty"`
	ReferralReadOnly bool              `json:"referral_read_only"`
	Result           *Result           `json:"result,omitempty"`
}

// Request is one registration attempt.
type Request struct {
	Form    *Form
	Input   Input
	State   RouterState
	Session storage.Session
}

// Container drives registration submissions.
type Container struct {
	registrar  Registrar
	analytics  Analytics
	referrals  ReferralManager
	onRegister func(ctx context.Context, r *Result, isSocial bool)
	now        func() time.Time
	logger     *slog.Logger
}

// NewContainer creates a Container. onRegister may be nil.
func NewContainer(registrar Registrar, analytics Analytics, onRegister func(context.Context, *Result, bool), logger *slog.Logger) *Container {
	return &Container{
		registrar:  registrar,
		analytics:  analytics,
		onRegister: onRegister,
		now:        time.Now,
		logger:     logger,
	}
}

// Register validates and submits req.
func (c *Container) Register(ctx context.Context, req Request) *Outcome {
	form := req.Form
	readOnly := form.opts.ReferralReadOnly

	payload, errs := form.Submit(req.Input, c.now())
	if len(errs) > 0 {
		c.analytics.TrackRegistration(ctx, OutcomeFail, errs)
		return &Outcome{Status: StatusInvalid, Errors: errs, ReferralReadOnly: readOnly}
	}

	backURL := req.State.From
	if backURL == "" {
		backURL = DefaultBackURL
	}
	payload.BackURL = backURL

	res, err := c.registrar.Register(ctx, *payload)
	if err != nil {
		c.logger.WarnContext(ctx, "registration failed", slog.String("error", err.Error()))
		if req.Input.Referral != "" {
			readOnly = false
		}
		return &Outcome{
			Status:           StatusFailed,
			Toast:            &Toast{Message: c.failureMessage(form, err), Type: "error"},
			ReferralReadOnly: readOnly,
		}
	}

	if !res.IsConfirmed() {
		return &Outcome{
			Status:           StatusConfirmationRequired,
			Redirect:         LoginURL,
			RedirectState:    &RedirectState{ShowAccountConfirmNotification: true, BackURL: backURL},
			ReferralReadOnly: readOnly,
			Result:           res,
		}
	}

	isSocial := form.opts.IsSocialRegister
	msg := form.validator.Message("registration_success")
	if isSocial {
		msg = form.validator.Message("social_register_in_success", req.State.SocialName)
	}

	if c.onRegister != nil {
		c.onRegister(ctx, res, isSocial)
	}
	c.analytics.TrackRegistration(ctx, OutcomeSuccess, nil)
	if err := c.referrals.ClearCode(ctx, req.Session); err != nil {
		c.logger.WarnContext(ctx, "clearing referral code failed", slog.String("error", err.Error()))
	}
	if res.User != nil && res.User.Consent {
		c.analytics.TrackNewsletter(ctx)
	}

	return &Outcome{
		Status:           StatusRegistered,
		Toast:            &Toast{Message: msg, Type: "success"},
		ReferralReadOnly: readOnly,
		Result:           res,
	}
}

// failureMessage prefers the backend's own message for rejected input.
func (c *Container) failureMessage(form *Form, err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" && !errors.Is(err, model.ErrUpstreamError) {
		return apiErr.Message
	}
	return form.validator.Message("registration_failed")
}
