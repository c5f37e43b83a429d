package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storytimeapp/storytime-server/internal/domain"
	"github.com/storytimeapp/storytime-server/internal/normalize"
)

func TestLanguage(t *testing.T) {
	tests := []struct {
		raw    string
		want   domain.LanguageCode
		wantOK bool
	}{
		{"en", domain.LangEnglish, true},
		{"DE", domain.LangGerman, true},
		{" hr ", domain.LangCroatian, true},
		{"German", domain.LangGerman, true},
		{"swedish", domain.LangSwedish, true},
		{"deu", domain.LangGerman, true},
		{"fra", domain.LangFrench, true},
		{"de-AT", domain.LangGerman, true},
		{"pt-BR", domain.LangPortuguese, true},
		{"ja", "", false},       // real language, not supported
		{"japanese", "", false}, // name of an unsupported language
		{"klingon", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := normalize.Language(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
