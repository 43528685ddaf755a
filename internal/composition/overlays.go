package composition

import (
	"strings"

	"storefront/internal/session"
	"storefront/internal/store"
)

// OverlayKind names a floating widget mounted next to the page.
type OverlayKind string

const (
	OverlayRestrictAccess   OverlayKind = "RestrictAccessAdvancedContainer"
	OverlayToast            OverlayKind = "ToastComponent"
	OverlayUpdatePassword   OverlayKind = "UpdatePasswordContainer"
	OverlayDataLayer        OverlayKind = "DataLayerPageVisitContainer"
	OverlayFreeGift         OverlayKind = "FreeGiftContainer"
	OverlayMiniCart         OverlayKind = "MiniCartTransitionComponent"
	OverlayChat             OverlayKind = "DotDigitalChatComponent"
	OverlayPushNotification OverlayKind = "PushNotificationModalContainer"
	OverlayGoogleOptimize   OverlayKind = "GoogleOptimizeComponent"
)

// Overlay is a mounted widget with its props.
type Overlay struct {
	Kind  OverlayKind       `json:"kind"`
	Props map[string]string `json:"props,omitempty"`
}

// overlayInput is everything an overlay predicate may look at.
type overlayInput struct {
	cfg     *store.Config
	path    string
	session session.State
}

type overlayRule struct {
	kind  OverlayKind
	when  func(in overlayInput) bool
	props func(in overlayInput) map[string]string
}

func always(overlayInput) bool { return true }

// overlayRules is the mount order of the floating widgets.
var overlayRules = []overlayRule{
	{kind: OverlayRestrictAccess, when: always},
	{kind: OverlayToast, when: always},
	{
		kind: OverlayUpdatePassword,
		when: func(in overlayInput) bool { return in.session.ShouldUpdatePassword() },
	},
	{
		kind: OverlayDataLayer,
		when: func(in overlayInput) bool { return in.cfg.IsGTMEnabled() },
	},
	{
		kind: OverlayFreeGift,
		when: func(in overlayInput) bool { return matchesRoute(in.path, "/cart") || matchesRoute(in.path, "/checkout") },
	},
	{
		kind: OverlayMiniCart,
		when: func(in overlayInput) bool { return in.cfg.IsMinicartEnabled() },
		props: func(in overlayInput) map[string]string {
			return map[string]string{"base_currency_code": in.cfg.BaseCurrency()}
		},
	},
	{
		kind: OverlayChat,
		when: func(in overlayInput) bool { return in.cfg.IsChatEnabled() },
		props: func(in overlayInput) map[string]string {
			return map[string]string{"api_space": in.cfg.ChatSpace()}
		},
	},
	{
		kind: OverlayPushNotification,
		when: func(in overlayInput) bool { return in.cfg.IsPushNotificationEnabled() },
		props: func(overlayInput) map[string]string {
			return map[string]string{"brand_name": BrandName}
		},
	},
	{
		kind: OverlayGoogleOptimize,
		when: func(in overlayInput) bool { return in.cfg.IsGoogleOptEnabled() },
		props: func(in overlayInput) map[string]string {
			return map[string]string{"container_id": in.cfg.GoogleOptContainer()}
		},
	},
}

// Overlays returns the widgets mounted for path, in mount order.
func Overlays(cfg *store.Config, path string, state session.State) []Overlay {
	in := overlayInput{cfg: cfg, path: path, session: state}
	out := make([]Overlay, 0, len(overlayRules))
	for _, rule := range overlayRules {
		if !rule.when(in) {
			continue
		}
		o := Overlay{Kind: rule.kind}
		if rule.props != nil {
			o.Props = rule.props(in)
		}
		out = append(out, o)
	}
	return out
}

// matchesRoute reports whether path is route or lies below it.
func matchesRoute(path, route string) bool {
	return path == route || strings.HasPrefix(path, route+"/")
}
