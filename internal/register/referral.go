package register

import (
	"context"
	"net/url"
	"strings"

	"storefront/internal/storage"
)

// ReferralManager reads referral codes from storefront URLs and keeps the last
// one seen for the session until registration succeeds.
type ReferralManager struct{}

// CodeFromURL extracts a referral code from a "/r/{code}" path segment or the
// "referral" query parameter.
func (ReferralManager) CodeFromURL(pathname, rawQuery string) string {
	segs := strings.Split(strings.Trim(pathname, "/"), "/")
	for i := 0; i+1 < len(segs); i++ {
		if segs[i] == "r" && segs[i+1] != "" {
			return segs[i+1]
		}
	}
	if q, err := url.ParseQuery(rawQuery); err == nil {
		return strings.TrimSpace(q.Get("referral"))
	}
	return ""
}

// GetCode returns the URL code, remembering it for the session, or the code
// remembered earlier.
func (m ReferralManager) GetCode(ctx context.Context, session storage.Session, pathname, rawQuery string) (string, error) {
	if code := m.CodeFromURL(pathname, rawQuery); code != "" {
		return code, session.Set(ctx, storage.NameReferralCode, code)
	}
	return session.Get(ctx, storage.NameReferralCode)
}

// ClearCode forgets the session's referral code.
func (ReferralManager) ClearCode(ctx context.Context, session storage.Session) error {
	return session.Delete(ctx, storage.NameReferralCode)
}
