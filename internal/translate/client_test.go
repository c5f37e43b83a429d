package translate

import (
	"context"
	"encoding/base64"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storytimeapp/storytime-server/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(Options{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "gemini-3-flash-preview",
		RPS:     1000,
		Burst:   1000,
		Timeout: 5 * time.Second,
	}, testLogger())
	t.Cleanup(client.Close)
	return client
}

// textResponse builds a generateContent response carrying one text part.
func textResponse(t *testing.T, text string) []byte {
	t.Helper()
	resp := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	return data
}

func TestTranslate(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-3-flash-preview:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		w.Write(textResponse(t, `{"title":"Der tapfere kleine Löwe","pages":["Seite eins","Seite zwei"]}`))
	}))

	result, err := client.Translate(context.Background(), Request{
		Title:  "The Brave Little Lion",
		Pages:  []string{"Page one", "Page two"},
		Source: domain.LangEnglish,
		Target: domain.LangGerman,
	})
	require.NoError(t, err)
	assert.Equal(t, "Der tapfere kleine Löwe", result.Title)
	assert.Equal(t, []string{"Seite eins", "Seite zwei"}, result.Pages)
}

func TestTranslateStripsCodeFence(t *testing.T) {
	fenced := "```json\n{\"title\":\"Le Lion\",\"pages\":[\"Une\"]}\n```"
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(textResponse(t, fenced))
	}))

	result, err := client.Translate(context.Background(), Request{
		Title:  "The Lion",
		Pages:  []string{"One"},
		Source: domain.LangEnglish,
		Target: domain.LangFrench,
	})
	require.NoError(t, err)
	assert.Equal(t, "Le Lion", result.Title)
	assert.Equal(t, []string{"Une"}, result.Pages)
}

func TestTranslatePartialResponseKeepsOriginals(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantTitle string
		wantPages []string
	}{
		{
			name:      "missing title",
			response:  `{"pages":["Seite eins","Seite zwei"]}`,
			wantTitle: "Original Title",
			wantPages: []string{"Seite eins", "Seite zwei"},
		},
		{
			name:      "short pages array",
			response:  `{"title":"Neu","pages":["Seite eins"]}`,
			wantTitle: "Neu",
			wantPages: []string{"Seite eins", "page two"},
		},
		{
			name:      "blank page entry",
			response:  `{"title":"Neu","pages":["","Seite zwei"]}`,
			wantTitle: "Neu",
			wantPages: []string{"page one", "Seite zwei"},
		},
		{
			name:      "malformed json",
			response:  `not json at all`,
			wantTitle: "Original Title",
			wantPages: []string{"page one", "page two"},
		},
		{
			name:      "extra pages are ignored",
			response:  `{"title":"Neu","pages":["a","b","c","d"]}`,
			wantTitle: "Neu",
			wantPages: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write(textResponse(t, tt.response))
			}))

			result, err := client.Translate(context.Background(), Request{
				Title:  "Original Title",
				Pages:  []string{"page one", "page two"},
				Source: domain.LangEnglish,
				Target: domain.LangGerman,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, result.Title)
			assert.Equal(t, tt.wantPages, result.Pages)
		})
	}
}

func TestTranslateNoAPIKey(t *testing.T) {
	client := NewClient(Options{BaseURL: "http://example.invalid", Model: "m"}, testLogger())
	defer client.Close()

	_, err := client.Translate(context.Background(), Request{Title: "T", Pages: []string{"p"}})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestTranslateBlocked(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`)
	}))

	_, err := client.Translate(context.Background(), Request{Title: "T", Pages: []string{"p"}})
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestTranslateServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.Translate(context.Background(), Request{Title: "T", Pages: []string{"p"}})
	assert.Error(t, err)
}

func TestIllustrate(t *testing.T) {
	imageBytes := []byte{0x89, 0x50, 0x4e, 0x47}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"parts": []any{
							map[string]any{"text": "Here is your image."},
							map[string]any{"inlineData": map[string]any{
								"mimeType": "image/png",
								"data":     base64.StdEncoding.EncodeToString(imageBytes),
							}},
						},
					},
				},
			},
		}
		data, err := json.Marshal(resp)
		require.NoError(t, err)
		w.Write(data)
	}))

	ill, err := client.Illustrate(context.Background(), "a brave little lion")
	require.NoError(t, err)
	assert.Equal(t, "image/png", ill.MIMEType)
	assert.Equal(t, imageBytes, ill.Data)
}

func TestIllustrateEmptyResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(textResponse(t, "no image, only words"))
	}))

	_, err := client.Illustrate(context.Background(), "a fox")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
