// Package i18n resolves locales from request paths and serves message
// bundles. Bundles are embedded and parsed once at startup into a static
// map; there is no runtime path construction.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed locales/*.json
var localeFS embed.FS

// Bundle is one locale's message catalog.
type Bundle struct {
	Locale   string
	Messages map[string]string
}

// Catalog holds every supported locale, resolved at startup.
type Catalog struct {
	bundles       map[string]*Bundle
	defaultLocale string
}

// Load parses the embedded catalogs. defaultLocale must be one of the
// embedded locales.
func Load(defaultLocale string) (*Catalog, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}

	c := &Catalog{bundles: map[string]*Bundle{}, defaultLocale: defaultLocale}
	for _, e := range entries {
		locale := strings.TrimSuffix(e.Name(), ".json")
		raw, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, err
		}
		msgs := map[string]string{}
		if err := json.Unmarshal(raw, &msgs); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", locale, err)
		}
		c.bundles[locale] = &Bundle{Locale: locale, Messages: msgs}
	}

	if _, ok := c.bundles[defaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %q has no bundle", defaultLocale)
	}
	return c, nil
}

// Default returns the configured fallback locale.
func (c *Catalog) Default() string { return c.defaultLocale }

// Supported reports whether the locale has a bundle.
func (c *Catalog) Supported(locale string) bool {
	_, ok := c.bundles[locale]
	return ok
}

// Bundle returns the catalog for locale, falling back to the default.
func (c *Catalog) Bundle(locale string) *Bundle {
	if b, ok := c.bundles[locale]; ok {
		return b
	}
	return c.bundles[c.defaultLocale]
}

// T returns the message for key, falling back to the key itself.
func (b *Bundle) T(key string) string {
	if v, ok := b.Messages[key]; ok {
		return v
	}
	return key
}

// Resolve splits a leading locale segment off the path. ok is false when the
// path carries no recognized locale prefix.
func (c *Catalog) Resolve(path string) (locale, rest string, ok bool) {
	trimmed := strings.TrimPrefix(path, "/")
	seg, tail, _ := strings.Cut(trimmed, "/")
	if !c.Supported(seg) {
		return "", path, false
	}
	return seg, "/" + tail, true
}

// Pick chooses a redirect locale from an Accept-Language header, falling
// back to the default. Quality values are ignored; first supported tag wins.
func (c *Catalog) Pick(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		// "en-US" matches the "en" bundle
		base := strings.SplitN(tag, "-", 2)[0]
		if c.Supported(tag) {
			return tag
		}
		if c.Supported(base) {
			return base
		}
	}
	return c.defaultLocale
}
