package translate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/storytimeapp/storytime-server/internal/ratelimit"
)

const (
	defaultTimeout = 60 * time.Second

	// Per-model outbound rate limit.
	defaultRPS   = 2.0
	defaultBurst = 4
)

// Options configures the generation client.
type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

// Client is a rate-limited generative API client.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// NewClient creates a generation client. The API key may be empty, in
// which case every call fails with ErrNoAPIKey and the session layer
// falls back to the untranslated text.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RPS <= 0 {
		opts.RPS = defaultRPS
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}
	return &Client{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		model:   opts.Model,
		http: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter: ratelimit.New(opts.RPS, opts.Burst),
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// Translate renders one book's title and pages into the target
// language. Fields the model omits keep their original text, so the
// result is always complete.
func (c *Client) Translate(ctx context.Context, req Request) (*Result, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	prompt := buildTranslatePrompt(req)
	text, err := c.generateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseTranslation(text, req), nil
}

// Illustrate generates one page illustration from a text prompt.
func (c *Client) Illustrate(ctx context.Context, prompt string) (*Illustration, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	resp, err := c.generate(ctx, generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	})
	if err != nil {
		return nil, err
	}

	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData == nil || p.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("decode image data: %w", err)
			}
			return &Illustration{
				Data:     data,
				MIMEType: p.InlineData.MIMEType,
			}, nil
		}
	}
	return nil, ErrEmptyResponse
}

// generateText runs a text-only generation and returns the first
// candidate's concatenated text.
func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generate(ctx, generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
		}
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

func (c *Client) generate(ctx context.Context, payload generateRequest) (*generateResponse, error) {
	if err := c.limiter.Wait(ctx, c.model); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	c.logger.Debug("generation request", "model", c.model)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation failed with status %d: %s", resp.StatusCode, string(body))
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// buildTranslatePrompt asks for the whole book in one call so page
// texts stay consistent with each other and with the title.
func buildTranslatePrompt(req Request) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Translate this children's story from %s to %s.\n",
		req.Source.EnglishName(), req.Target.EnglishName())
	sb.WriteString("Keep the tone simple and warm, suitable for reading aloud to young children.\n")
	sb.WriteString("Respond with ONLY a JSON object of the form {\"title\": string, \"pages\": [string, ...]}.\n")
	sb.WriteString("The pages array must have exactly one entry per input page, in the same order.\n\n")
	fmt.Fprintf(&sb, "Title: %s\n", req.Title)
	for i, page := range req.Pages {
		fmt.Fprintf(&sb, "Page %d: %s\n", i+1, page)
	}
	return sb.String()
}

// parseTranslation decodes the model's JSON answer. Any missing or
// blank field keeps the original text; a malformed pages array only
// loses the positions it fails to cover.
func parseTranslation(text string, req Request) *Result {
	result := &Result{
		Title: req.Title,
		Pages: make([]string, len(req.Pages)),
	}
	copy(result.Pages, req.Pages)

	var parsed struct {
		Title string   `json:"title"`
		Pages []string `json:"pages"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &parsed); err != nil {
		return result
	}

	if strings.TrimSpace(parsed.Title) != "" {
		result.Title = parsed.Title
	}
	for i := range result.Pages {
		if i < len(parsed.Pages) && strings.TrimSpace(parsed.Pages[i]) != "" {
			result.Pages[i] = parsed.Pages[i]
		}
	}
	return result
}

// stripCodeFence removes a markdown ```json fence if the model wrapped
// its answer in one despite the JSON response mode.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// Wire types for the generateContent API.

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseMIMEType   string   `json:"responseMimeType,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback"`
}

type candidate struct {
	Content content `json:"content"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason"`
}
