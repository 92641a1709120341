// Client for the external identity provider (GoTrue-style HTTP API).
// The provider is the source of truth for credentials when
// AUTH_PROVIDER=external; this package only translates a handful of
// calls (signup, password grant, user lookup, token revocation) and
// normalizes the provider's failures into a small error taxonomy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var (
	// ErrIdentityUnavailable covers connectivity failures, timeouts,
	// provider 5xx responses, and missing configuration.
	ErrIdentityUnavailable = errors.New("identity provider unavailable")
	// ErrInvalidCredentials is any provider-side rejection of the
	// submitted credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAlreadyRegistered is the provider-reported duplicate account.
	ErrAlreadyRegistered = errors.New("already registered")
)

type ExternalUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type ExternalSession struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	User         ExternalUser `json:"user"`
}

type IdentityClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewIdentityClient(baseURL, serviceKey string, timeout time.Duration, logger *zap.Logger) *IdentityClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "identity-provider",
		Interval: 30 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &IdentityClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
		logger:     logger,
	}
}

// IsConfigured reports whether the provider URL and service key are set.
func (c *IdentityClient) IsConfigured() bool {
	return c.baseURL != "" && c.serviceKey != ""
}

// Register creates an account in the provider. A duplicate account maps
// to ErrAlreadyRegistered.
func (c *IdentityClient) Register(ctx context.Context, email, password, name string) (*ExternalUser, error) {
	payload := map[string]any{"email": email, "password": password}
	if name != "" {
		payload["data"] = map[string]any{"name": name}
	}

	body, err := c.call(ctx, http.MethodPost, "/auth/v1/signup", c.serviceKey, payload)
	if err != nil {
		return nil, err
	}

	// The provider nests the user under "user" when email confirmation
	// is enabled and returns it at the top level otherwise.
	var resp struct {
		ExternalUser
		User *ExternalUser `json:"user"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding signup response: %v", ErrIdentityUnavailable, err)
	}
	if resp.User != nil {
		return resp.User, nil
	}
	return &resp.ExternalUser, nil
}

// Authenticate verifies credentials via the password grant and returns
// the provider session.
func (c *IdentityClient) Authenticate(ctx context.Context, email, password string) (*ExternalSession, error) {
	payload := map[string]any{"email": email, "password": password}

	body, err := c.call(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", c.serviceKey, payload)
	if err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	var session ExternalSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("%w: decoding token response: %v", ErrIdentityUnavailable, err)
	}
	return &session, nil
}

// GetUser resolves the provider's user record for a provider-issued
// access token.
func (c *IdentityClient) GetUser(ctx context.Context, externalToken string) (*ExternalUser, error) {
	body, err := c.call(ctx, http.MethodGet, "/auth/v1/user", externalToken, nil)
	if err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	var user ExternalUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("%w: decoding user response: %v", ErrIdentityUnavailable, err)
	}
	return &user, nil
}

// Revoke invalidates a provider-issued access token. Callers on the
// logout path treat failures as non-fatal.
func (c *IdentityClient) Revoke(ctx context.Context, externalToken string) error {
	_, err := c.call(ctx, http.MethodPost, "/auth/v1/logout", externalToken, nil)
	if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrAlreadyRegistered) {
		// The provider already considers the token dead.
		return nil
	}
	return err
}

// call POSTs a JSON payload and returns the response body. Transport
// failures and 5xx responses are retried with backoff; repeated failure
// opens the circuit breaker, which short-circuits subsequent calls to
// ErrIdentityUnavailable until the provider recovers.
func (c *IdentityClient) call(ctx context.Context, method, path, bearer string, payload any) ([]byte, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("%w: IDENTITY_URL/IDENTITY_SERVICE_KEY not set", ErrIdentityUnavailable)
	}

	result, err := c.cb.Execute(func() (interface{}, error) {
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(3),
			retry.RetryIf(func(err error) bool {
				return errors.Is(err, ErrIdentityUnavailable)
			}),
		)

		var body []byte
		retryErr := r.Do(func() error {
			var doErr error
			body, doErr = c.do(ctx, method, path, bearer, payload)
			return doErr
		})
		return body, retryErr
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", ErrIdentityUnavailable)
		}
		return nil, err
	}

	return result.([]byte), nil
}

func (c *IdentityClient) do(ctx context.Context, method, path, bearer string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		reqBody = bytes.NewBuffer(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrIdentityUnavailable, err)
	}

	switch {
	case resp.StatusCode < 400:
		return body, nil
	case resp.StatusCode >= 500:
		c.logger.Warn("identity provider server error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: provider returned %d", ErrIdentityUnavailable, resp.StatusCode)
	default:
		msg := providerMessage(body)
		if strings.Contains(strings.ToLower(msg), "already registered") {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, msg)
		}
		return nil, fmt.Errorf("%w: provider returned %d", ErrInvalidCredentials, resp.StatusCode)
	}
}

func providerMessage(body []byte) string {
	var parsed struct {
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return string(body)
	}
	for _, m := range []string{parsed.Msg, parsed.ErrorDescription, parsed.Error} {
		if m != "" {
			return m
		}
	}
	return string(body)
}
