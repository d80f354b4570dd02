// Package i18n localise les libellés renvoyés par les statistiques
// (mois, titres de graphiques) à partir de fichiers TOML embarqués.
package i18n

import (
	"embed"
	"log/slog"
	"strconv"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"ensaj-backend/services"
)

//go:embed active.*.toml
var localeFS embed.FS

// Translator enveloppe le Bundle go-i18n
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
}

// NewTranslator construit un Translator avec la langue par défaut donnée (ex. "fr")
func NewTranslator(defaultLocale string) *Translator {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.French
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range []string{"active.fr.toml", "active.en.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			slog.Error("i18n: chargement impossible", "file", file, "error", err)
		}
	}

	return &Translator{bundle: bundle, defaultLanguage: tag}
}

// T rend le message key pour la langue demandée. locale accepte un en-tête
// Accept-Language complet. À défaut, la langue par défaut puis la clé sont utilisées.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())

	localizer := i18n.NewLocalizer(t.bundle, languages...)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Warn("i18n: traduction introuvable", "key", key, "locales", languages, "error", err)
		return key
	}
	return msg
}

// MonthLabeler retourne le libellé de mois ("janv. 2025") dans la langue demandée
func (t *Translator) MonthLabeler(locale string) services.MonthLabeler {
	return func(year int, month time.Month) string {
		return t.T(locale, "month_"+strconv.Itoa(int(month)), map[string]any{"Year": year})
	}
}
