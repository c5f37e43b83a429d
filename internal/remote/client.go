package remote

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/storytimeapp/storytime-server/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Client is an HTTP implementation of Store.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a remote store client. baseURL points at the cloud
// story service, e.g. "https://sync.storytime.example".
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ListBooks returns the user's cloud collection, newest first.
func (c *Client) ListBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	body, err := c.doRequest(ctx, http.MethodGet, c.userBooksPath(userID), nil)
	if err != nil {
		return nil, err
	}

	var books []*domain.Book
	if err := json.Unmarshal(body, &books); err != nil {
		return nil, fmt.Errorf("decode remote books: %w", err)
	}
	return books, nil
}

// PutBook writes a book into the user's cloud collection.
func (c *Client) PutBook(ctx context.Context, userID string, book *domain.Book) error {
	path := c.userBooksPath(userID) + "/" + url.PathEscape(book.ID)
	_, err := c.doRequest(ctx, http.MethodPut, path, book)
	return err
}

// DeleteBook removes a book from the user's cloud collection.
func (c *Client) DeleteBook(ctx context.Context, userID, bookID string) error {
	path := c.userBooksPath(userID) + "/" + url.PathEscape(bookID)
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	if err == ErrNotFound {
		// Already gone remotely, which is what the caller wanted.
		return nil
	}
	return err
}

// PublishBook adds a copy of the book to the universal library.
func (c *Client) PublishBook(ctx context.Context, book *domain.Book) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/v1/books", book)
	return err
}

// ListUniversal returns approved universal books, newest first.
func (c *Client) ListUniversal(ctx context.Context) ([]*domain.Book, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/v1/books", nil)
	if err != nil {
		return nil, err
	}

	var books []*domain.Book
	if err := json.Unmarshal(body, &books); err != nil {
		return nil, fmt.Errorf("decode universal books: %w", err)
	}
	return books, nil
}

func (c *Client) userBooksPath(userID string) string {
	return "/v1/users/" + url.PathEscape(userID) + "/books"
}

// doRequest executes an HTTP request against the remote service and
// maps failure modes onto the package sentinel errors.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "StoryTime/1.0")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("remote request",
		"method", method,
		"path", path,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport failures (DNS, refused, timeout) all collapse to
		// unavailable so the sync engine can treat them uniformly.
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, ErrServer
	default:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
