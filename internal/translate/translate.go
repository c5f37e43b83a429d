// Package translate generates story translations and illustrations
// through a hosted generative model. Responses are parsed leniently:
// the model is asked for strict JSON but callers always get a usable
// result, with original text filling any field the model dropped.
package translate

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/storytimeapp/storytime-server/internal/domain"
)

var (
	// ErrNoAPIKey means the client was constructed without credentials.
	ErrNoAPIKey = errors.New("translation api key not configured")
	// ErrBlocked means the model refused to generate for this input.
	ErrBlocked = errors.New("generation blocked by the model")
	// ErrEmptyResponse means the model returned no usable candidates.
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// Request asks for one book's text in another language. Pages carries
// the page texts in reading order; the Result preserves that order.
type Request struct {
	Title  string
	Pages  []string
	Source domain.LanguageCode
	Target domain.LanguageCode
}

// Result is a translated book text. Pages always has exactly as many
// entries as the request, with untranslated fields carried over.
type Result struct {
	Title string
	Pages []string
}

// Illustration is a generated page image.
type Illustration struct {
	Data     []byte
	MIMEType string
}

// DataURI renders the image as a data: URI, the form page image slots
// store inline images in.
func (i *Illustration) DataURI() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Translator is the generation capability the session layer consumes.
type Translator interface {
	Translate(ctx context.Context, req Request) (*Result, error)
	Illustrate(ctx context.Context, prompt string) (*Illustration, error)
}
