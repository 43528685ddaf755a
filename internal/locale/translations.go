package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/id"
	ut "github.com/go-playground/universal-translator"

	"storefront/internal/store"
)

//go:embed bundles/*.json
var bundles embed.FS

// Messages is a flat message-key to text bundle. Placeholders are positional: {0}, {1}.
type Messages map[string]string

// Loader lazily produces a translation bundle. A nil Loader means the caller's
// default bundle applies unchanged.
type Loader func() (Messages, error)

// LocaleIndonesian is the locale that merges the market override bundle.
const LocaleIndonesian = "id-ID"

// ResolveTranslations picks the bundle loader for a locale and market code.
// The returned loader reads the embedded bundles at most once.
func ResolveTranslations(locale, storeCode string) Loader {
	switch {
	case locale == LocaleIndonesian:
		return once(func() (Messages, error) {
			return loadMerged("id.json", "micro-id.json")
		})
	case storeCode == store.MarketPH:
		return once(func() (Messages, error) {
			return loadMerged("micro-ph.json")
		})
	default:
		return nil
	}
}

func once(fn func() (Messages, error)) Loader {
	return Loader(sync.OnceValues(fn))
}

// DefaultMessages returns the base English bundle.
func DefaultMessages() (Messages, error) {
	return loadBundle("en.json")
}

// Bundle returns the default bundle overlaid with the store's resolved bundle.
func Bundle(locale, storeCode string) (Messages, error) {
	msgs, err := DefaultMessages()
	if err != nil {
		return nil, err
	}
	loader := ResolveTranslations(locale, storeCode)
	if loader == nil {
		return msgs, nil
	}
	extra, err := loader()
	if err != nil {
		return nil, err
	}
	maps.Copy(msgs, extra)
	return msgs, nil
}

// loadMerged reads the named bundles in order; later keys win.
func loadMerged(names ...string) (Messages, error) {
	merged := Messages{}
	for _, name := range names {
		msgs, err := loadBundle(name)
		if err != nil {
			return nil, err
		}
		maps.Copy(merged, msgs)
	}
	return merged, nil
}

func loadBundle(name string) (Messages, error) {
	data, err := bundles.ReadFile("bundles/" + name)
	if err != nil {
		return nil, fmt.Errorf("reading bundle %s: %w", name, err)
	}
	var msgs Messages
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("parsing bundle %s: %w", name, err)
	}
	return msgs, nil
}

// Translator builds a universal translator for locale seeded with msgs.
// Locales other than Indonesian use English plural rules.
func Translator(locale string, msgs Messages) (ut.Translator, error) {
	uni := ut.New(en.New(), en.New(), id.New())

	tag := "en"
	if strings.HasPrefix(strings.ToLower(locale), "id") {
		tag = "id"
	}
	trans, _ := uni.GetTranslator(tag)

	for key, text := range msgs {
		if err := trans.Add(key, text, true); err != nil {
			return nil, fmt.Errorf("adding translation %q: %w", key, err)
		}
	}
	if err := trans.VerifyTranslations(); err != nil {
		return nil, fmt.Errorf("verifying translations: %w", err)
	}
	return trans, nil
}

// StoreTranslator resolves the bundle for a store and builds its translator.
func StoreTranslator(locale, storeCode string) (ut.Translator, error) {
	msgs, err := Bundle(locale, storeCode)
	if err != nil {
		return nil, err
	}
	return Translator(locale, msgs)
}

// T renders key with params, falling back to the key itself when missing.
func T(trans ut.Translator, key string, params ...string) string {
	if trans == nil {
		return key
	}
	s, err := trans.T(key, params...)
	if err != nil {
		return key
	}
	return s
}
