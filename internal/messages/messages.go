// Package messages renders the operator-facing text of the converter
// (summary line and usage) from embedded locale files.
package messages

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-ivu-ics/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Catalog translates message keys for one language.
type Catalog struct {
	Languages []string
	localizer *i18n.Localizer
}

// New loads the embedded locales and returns a Catalog for lang.
// Unknown languages fall back to English.
func New(lang string) *Catalog {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	c := &Catalog{}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		c.Languages = append(c.Languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	if lang == "" {
		lang = config.DefaultLanguage
	}
	c.localizer = i18n.NewLocalizer(bundle, lang, config.DefaultLanguage)
	return c
}

// Get translates key with the given template data. Missing keys return the key itself.
func (c *Catalog) Get(key string, data map[string]any) string {
	msg, err := c.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// EventsWritten is the one-line summary printed after a successful run.
func (c *Catalog) EventsWritten(count int, path string) string {
	return c.Get(config.TKeyEventsWritten, map[string]any{
		"Count": count,
		"Path":  path,
	})
}

// Usage is the command synopsis.
func (c *Catalog) Usage(prog string) string {
	return c.Get(config.TKeyUsage, map[string]any{"Prog": prog})
}

// OutputExt explains the ".ics" requirement, followed by the usage.
func (c *Catalog) OutputExt(prog string) string {
	return c.Get(config.TKeyOutputExt, map[string]any{"Usage": c.Usage(prog)})
}
