package domain

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguageCode is a supported story language.
// The stored language of a book never changes; only session-local
// display copies carry a different code.
type LanguageCode string

// Supported languages, matching the reader UI.
const (
	LangEnglish    LanguageCode = "en"
	LangGerman     LanguageCode = "de"
	LangFrench     LanguageCode = "fr"
	LangSpanish    LanguageCode = "es"
	LangItalian    LanguageCode = "it"
	LangPortuguese LanguageCode = "pt"
	LangDutch      LanguageCode = "nl"
	LangPolish     LanguageCode = "pl"
	LangRussian    LanguageCode = "ru"
	LangSwedish    LanguageCode = "sv"
	LangCroatian   LanguageCode = "hr"
)

// Languages lists every supported code in UI order.
var Languages = []LanguageCode{
	LangEnglish, LangGerman, LangFrench, LangSpanish, LangItalian,
	LangPortuguese, LangDutch, LangPolish, LangRussian, LangSwedish,
	LangCroatian,
}

// IsValid reports whether the code is one of the supported languages.
func (c LanguageCode) IsValid() bool {
	for _, l := range Languages {
		if l == c {
			return true
		}
	}
	return false
}

// EnglishName returns the English display name for the language
// ("German", "Croatian", ...). Translation prompts use this so the AI
// capability sees a name rather than a bare code.
func (c LanguageCode) EnglishName() string {
	tag, err := language.Parse(string(c))
	if err != nil {
		return string(c)
	}
	return display.English.Languages().Name(tag)
}

// NativeName returns the language's name in itself ("Deutsch",
// "Hrvatski", ...), used by the language picker.
func (c LanguageCode) NativeName() string {
	tag, err := language.Parse(string(c))
	if err != nil {
		return string(c)
	}
	return display.Self.Name(tag)
}

// ParseLanguage validates a raw code from config or an API request.
func ParseLanguage(raw string) (LanguageCode, error) {
	code := LanguageCode(raw)
	if !code.IsValid() {
		return "", fmt.Errorf("unsupported language %q", raw)
	}
	return code, nil
}
