package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playsafe/rgportal/pkg/domain"
)

// DefaultTimeout bounds every request unless overridden with WithTimeout.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the current bearer token. An empty token sends no
// Authorization header.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed bearer token.
type StaticToken string

// Token returns the token itself.
func (t StaticToken) Token() string { return string(t) }

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUnauthorizedHandler registers fn to run whenever the API answers 401.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// Client is the responsible-gaming API client.
type Client struct {
	baseURL        string
	tokens         TokenSource
	httpClient     *http.Client
	onUnauthorized func()
}

// New creates a new API client.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if tokens == nil {
		tokens = StaticToken("")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendOTP asks the backend to text a passcode to mobile.
func (c *Client) SendOTP(ctx context.Context, mobile string) (*domain.OTPDispatch, error) {
	var out domain.OTPDispatch
	body := map[string]string{"mobile_number": mobile}
	if err := c.post(ctx, "/auth/send-otp", body, &out); err != nil {
		return nil, fmt.Errorf("client.SendOTP: %w", err)
	}
	return &out, nil
}

// VerifyOTP exchanges a passcode for a session token.
func (c *Client) VerifyOTP(ctx context.Context, mobile, otp string) (*domain.OTPVerification, error) {
	var out domain.OTPVerification
	body := map[string]string{"mobile_number": mobile, "otp": otp}
	if err := c.post(ctx, "/auth/verify-otp", body, &out); err != nil {
		return nil, fmt.Errorf("client.VerifyOTP: %w", err)
	}
	if out.Token == "" {
		return nil, fmt.Errorf("client.VerifyOTP: %w", &HTTPError{StatusCode: http.StatusOK, Message: "response carried no token"})
	}
	return &out, nil
}

// GetMyLimits returns the customer's current limits snapshot.
func (c *Client) GetMyLimits(ctx context.Context) (*domain.LimitsSnapshot, error) {
	var out struct {
		Data domain.LimitsSnapshot `json:"data"`
	}
	if err := c.get(ctx, "/responsible-gaming/my-limits", &out); err != nil {
		return nil, fmt.Errorf("client.GetMyLimits: %w", err)
	}
	return &out.Data, nil
}

// SetLimits submits a set-limits payload built by the limits form.
func (c *Client) SetLimits(ctx context.Context, payload map[string]any) (*domain.SetLimitsResult, error) {
	var out struct {
		Message string                 `json:"message"`
		Data    domain.SetLimitsResult `json:"data"`
	}
	if err := c.post(ctx, "/responsible-gaming/set-limits", payload, &out); err != nil {
		return nil, fmt.Errorf("client.SetLimits: %w", err)
	}
	res := out.Data
	if res.Message == "" {
		res.Message = out.Message
	}
	return &res, nil
}

// GetHistory lists operator notifications sent for the customer's limit changes.
func (c *Client) GetHistory(ctx context.Context) ([]domain.DeliveryRecord, error) {
	var out struct {
		Data []domain.DeliveryRecord `json:"data"`
	}
	if err := c.get(ctx, "/responsible-gaming/history", &out); err != nil {
		return nil, fmt.Errorf("client.GetHistory: %w", err)
	}
	return out.Data, nil
}

// Logout revokes the current token on the backend.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/responsible-gaming/logout", nil, nil); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

// envelope is the common shape of every response body.
type envelope struct {
	Success *bool                      `json:"success"`
	Message string                     `json:"message"`
	Error   string                     `json:"error"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return errorFromBody(resp.StatusCode, respBody)
	}

	var env envelope
	if json.Unmarshal(respBody, &env) == nil && env.Success != nil && !*env.Success {
		return errorFromBody(resp.StatusCode, respBody)
	}

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// errorFromBody builds an HTTPError from an error response. Field errors may
// arrive as a single string or a list of strings per field.
func errorFromBody(status int, body []byte) *HTTPError {
	herr := &HTTPError{StatusCode: status}
	var env envelope
	if json.Unmarshal(body, &env) != nil {
		herr.Message = strings.TrimSpace(string(body))
		return herr
	}
	herr.Message = env.Message
	if herr.Message == "" {
		herr.Message = env.Error
	}
	for field, raw := range env.Errors {
		if msg := fieldMessage(raw); msg != "" {
			if herr.FieldErrors == nil {
				herr.FieldErrors = make(map[string]string, len(env.Errors))
			}
			herr.FieldErrors[field] = msg
		}
	}
	return herr
}

func fieldMessage(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, " ")
	}
	return ""
}
