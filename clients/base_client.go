package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// TokenSource supplies the bearer token attached to outgoing requests.
// An empty token means the request is sent unauthenticated.
type TokenSource interface {
	Token() string
}

// APIError is a non-2xx response normalized into the backend's {"msg": ...}
// error shape. Transport-level failures are returned as plain wrapped errors,
// never as APIError.
type APIError struct {
	StatusCode int
	Msg        string
}

func (e *APIError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("API returned status code: %d", e.StatusCode)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// IsUnauthorized reports whether err is a 401 response, which callers treat
// as an invalidated session.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

type BaseClient struct {
	baseURL string
	client  *http.Client
	headers map[string]string
	tokens  TokenSource
}

func NewBaseClient(baseURL string, tokens TokenSource) *BaseClient {
	return &BaseClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		headers: make(map[string]string),
		tokens:  tokens,
	}
}

func (c *BaseClient) SetHeader(key, value string) {
	c.headers[key] = value
}

func (c *BaseClient) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// MakeRequest issues a JSON request against the backend. A non-nil body is
// marshaled as the JSON request body. Non-2xx responses are normalized into
// *APIError; the raw response body is returned otherwise.
func (c *BaseClient) MakeRequest(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(responseBody, &payload); err == nil {
			apiErr.Msg = payload.Msg
		}
		return nil, apiErr
	}

	return responseBody, nil
}

// GetJSON issues a GET and decodes the response into out.
func (c *BaseClient) GetJSON(ctx context.Context, endpoint string, out any) error {
	body, err := c.MakeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// PostJSON issues a POST with the given body and decodes the response into
// out. A nil out discards the response body.
func (c *BaseClient) PostJSON(ctx context.Context, endpoint string, in, out any) error {
	body, err := c.MakeRequest(ctx, http.MethodPost, endpoint, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(body, out)
}

// PutJSON issues a PUT with the given body and decodes the response into out.
func (c *BaseClient) PutJSON(ctx context.Context, endpoint string, in, out any) error {
	body, err := c.MakeRequest(ctx, http.MethodPut, endpoint, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(body, out)
}

// Delete issues a DELETE and discards the response body.
func (c *BaseClient) Delete(ctx context.Context, endpoint string) error {
	_, err := c.MakeRequest(ctx, http.MethodDelete, endpoint, nil)
	return err
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}
	return nil
}
