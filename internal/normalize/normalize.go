// Package normalize maps the language labels found in imported book
// files onto the supported language codes. Exported files come from
// many sources and spell their language as an ISO code ("de", "deu"),
// a BCP 47 tag ("de-AT"), or a plain English name ("German").
package normalize

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/storytimeapp/storytime-server/internal/domain"
)

// languageNames maps English language names to supported codes.
//
//nolint:gochecknoglobals // Static lookup table for language normalization
var languageNames = map[string]domain.LanguageCode{
	"english":    domain.LangEnglish,
	"german":     domain.LangGerman,
	"french":     domain.LangFrench,
	"spanish":    domain.LangSpanish,
	"italian":    domain.LangItalian,
	"portuguese": domain.LangPortuguese,
	"dutch":      domain.LangDutch,
	"polish":     domain.LangPolish,
	"russian":    domain.LangRussian,
	"swedish":    domain.LangSwedish,
	"croatian":   domain.LangCroatian,
}

// Language resolves a raw language label to a supported code. It
// returns false when the label names a language the app does not
// carry, or is not a language at all.
func Language(raw string) (domain.LanguageCode, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}

	if code := domain.LanguageCode(s); code.IsValid() {
		return code, true
	}
	if code, ok := languageNames[s]; ok {
		return code, true
	}

	// Fall back to BCP 47 parsing: "de-AT" and the three-letter
	// ISO 639-2 codes ("deu", "ger") both reduce to a base language.
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	if code := domain.LanguageCode(base.String()); code.IsValid() {
		return code, true
	}
	return "", false
}
