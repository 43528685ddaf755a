package register

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/model"
	"storefront/internal/storage"
)

type containerFixture struct {
	container  *Container
	registrar  *MockRegistrar
	analytics  *MockAnalytics
	session    storage.Session
	registered int
}

func newContainerFixture(t *testing.T, fn func(context.Context, Payload) (*Result, error)) *containerFixture {
	t.Helper()
	fx := &containerFixture{
		registrar: &MockRegistrar{RegisterFunc: fn},
		analytics: &MockAnalytics{},
		session:   storage.NewSession(storage.NewMemory(), "s1"),
	}
	fx.container = NewContainer(fx.registrar, fx.analytics, func(context.Context, *Result, bool) {
		fx.registered++
	}, testLogger())
	fx.container.now = func() time.Time { return testNow }
	return fx
}

func boolPtr(b bool) *bool { return &b }

func TestContainerSuccess(t *testing.T) {
	ctx := context.Background()
	fx := newContainerFixture(t, func(context.Context, Payload) (*Result, error) {
		return &Result{Confirmed: boolPtr(true), User: &User{Email: "maria@example.com", Consent: true}}, nil
	})
	if err := fx.session.Set(ctx, storage.NameReferralCode, "FRIEND1"); err != nil {
		t.Fatal(err)
	}

	opts := phOptions()
	opts.ReferralCode = "FRIEND1"
	opts.ReferralReadOnly = true
	form := newTestForm(t, opts, nil, fx.session)

	in := validInput()
	in.Referral = "FRIEND1"
	out := fx.container.Register(ctx, Request{Form: form, Input: in, Session: fx.session})

	if out.Status != StatusRegistered {
		t.Fatalf("Status = %s", out.Status)
	}
	if out.Toast == nil || out.Toast.Message != "Thank you for registering" || out.Toast.Type != "success" {
		t.Errorf("Toast = %+v", out.Toast)
	}
	if fx.registered != 1 {
		t.Errorf("onRegister calls = %d", fx.registered)
	}
	if len(fx.analytics.Registrations) != 1 || fx.analytics.Registrations[0] != OutcomeSuccess {
		t.Errorf("registration events = %v", fx.analytics.Registrations)
	}
	if fx.analytics.Newsletters != 1 {
		t.Errorf("newsletter events = %d, want 1", fx.analytics.Newsletters)
	}
	if code, _ := fx.session.Get(ctx, storage.NameReferralCode); code != "" {
		t.Errorf("referral code not cleared: %q", code)
	}
	if got := fx.registrar.Payloads[0].BackURL; got != DefaultBackURL {
		t.Errorf("BackURL = %s", got)
	}
}

func TestContainerSocialToast(t *testing.T) {
	fx := newContainerFixture(t, nil)
	opts := phOptions()
	opts.IsSocialRegister = true
	form := newTestForm(t, opts, nil, fx.session)

	out := fx.container.Register(context.Background(), Request{
		Form:  form,
		Input: validInput(),
		State: RouterState{SocialName: "Google", SocialRegister: true},
	})
	if out.Toast == nil || out.Toast.Message != "You have registered with Google" {
		t.Errorf("Toast = %+v", out.Toast)
	}
	if fx.analytics.Newsletters != 0 {
		t.Error("newsletter tracked without consent")
	}
}

func TestContainerConfirmationRequired(t *testing.T) {
	fx := newContainerFixture(t, func(context.Context, Payload) (*Result, error) {
		return &Result{Confirmed: boolPtr(false)}, nil
	})
	form := newTestForm(t, phOptions(), nil, fx.session)

	out := fx.container.Register(context.Background(), Request{
		Form:  form,
		Input: validInput(),
		State: RouterState{From: "/checkout"},
	})
	if out.Status != StatusConfirmationRequired || out.Redirect != LoginURL {
		t.Fatalf("Outcome = %+v", out)
	}
	if out.RedirectState == nil || !out.RedirectState.ShowAccountConfirmNotification || out.RedirectState.BackURL != "/checkout" {
		t.Errorf("RedirectState = %+v", out.RedirectState)
	}
	if fx.registered != 0 || len(fx.analytics.Registrations) != 0 {
		t.Error("unconfirmed registration must not complete")
	}
}

func TestContainerFailureReleasesReferral(t *testing.T) {
	tests := []struct {
		name         string
		referral     string
		wantReadOnly bool
	}{
		{"with referral", "FRIEND1", false},
		{"without referral", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newContainerFixture(t, func(context.Context, Payload) (*Result, error) {
				return nil, model.NewUpstreamError("register", errors.New("connection reset"))
			})
			opts := phOptions()
			opts.ReferralCode = "FRIEND1"
			opts.ReferralReadOnly = true
			form := newTestForm(t, opts, nil, fx.session)

			in := validInput()
			in.Referral = tt.referral
			out := fx.container.Register(context.Background(), Request{Form: form, Input: in})

			if out.Status != StatusFailed {
				t.Fatalf("Status = %s", out.Status)
			}
			if out.ReferralReadOnly != tt.wantReadOnly {
				t.Errorf("ReferralReadOnly = %v, want %v", out.ReferralReadOnly, tt.wantReadOnly)
			}
			if out.Toast == nil || out.Toast.Message != "Registration failed, please try again" {
				t.Errorf("Toast = %+v", out.Toast)
			}
		})
	}
}

func TestContainerRejectedInputMessage(t *testing.T) {
	fx := newContainerFixture(t, func(context.Context, Payload) (*Result, error) {
		return nil, &model.APIError{Code: "GRAPHQL_ERROR", Message: "A customer with the same email already exists", Err: model.ErrInvalidRequest}
	})
	form := newTestForm(t, phOptions(), nil, fx.session)

	out := fx.container.Register(context.Background(), Request{Form: form, Input: validInput()})
	if out.Toast == nil || out.Toast.Message != "A customer with the same email already exists" {
		t.Errorf("Toast = %+v", out.Toast)
	}
}

func TestContainerInvalid(t *testing.T) {
	fx := newContainerFixture(t, nil)
	form := newTestForm(t, phOptions(), nil, fx.session)

	in := validInput()
	in.Email = "nope"
	out := fx.container.Register(context.Background(), Request{Form: form, Input: in})

	if out.Status != StatusInvalid || !out.Errors.Has("email") {
		t.Fatalf("Outcome = %+v", out)
	}
	if len(fx.registrar.Payloads) != 0 {
		t.Error("registrar called with invalid input")
	}
	if len(fx.analytics.Registrations) != 1 || fx.analytics.Registrations[0] != OutcomeFail {
		t.Errorf("registration events = %v", fx.analytics.Registrations)
	}
}

func TestReferralManager(t *testing.T) {
	ctx := context.Background()
	var m ReferralManager

	tests := []struct {
		path, query, want string
	}{
		{"/ph/en/r/ABC123", "", "ABC123"},
		{"/ph/en/customer/account/create", "referral=XYZ", "XYZ"},
		{"/ph/en/r/", "", ""},
		{"/ph/en/cart", "", ""},
	}
	for _, tt := range tests {
		if got := m.CodeFromURL(tt.path, tt.query); got != tt.want {
			t.Errorf("CodeFromURL(%s, %s) = %q, want %q", tt.path, tt.query, got, tt.want)
		}
	}

	session := storage.NewSession(storage.NewMemory(), "s1")
	if code, err := m.GetCode(ctx, session, "/ph/en/r/ABC123", ""); err != nil || code != "ABC123" {
		t.Fatalf("GetCode() = %q, %v", code, err)
	}
	if code, _ := m.GetCode(ctx, session, "/ph/en/account/create", ""); code != "ABC123" {
		t.Errorf("remembered code = %q", code)
	}
	if err := m.ClearCode(ctx, session); err != nil {
		t.Fatal(err)
	}
	if code, _ := m.GetCode(ctx, session, "/ph/en/account/create", ""); code != "" {
		t.Errorf("code after clear = %q", code)
	}
}
