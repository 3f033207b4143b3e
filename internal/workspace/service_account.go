package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/jwt"
)

const (
	defaultDirectoryURL = "https://admin.googleapis.com/admin/directory/v1"
	directoryUserScope  = "https://www.googleapis.com/auth/admin.directory.user"
)

// DefaultMaxRetries bounds the transport retry loop.
const DefaultMaxRetries = 5

// ServiceAccountKey is the subset of a service account JSON key file needed
// to mint impersonated access tokens.
type ServiceAccountKey struct {
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	PrivateKeyID string `json:"private_key_id"`
	TokenURI     string `json:"token_uri"`
}

// LoadServiceAccountKey reads and decodes a service account key file.
func LoadServiceAccountKey(path string) (*ServiceAccountKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var key ServiceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, fmt.Errorf("%s: missing client_email or private_key", path)
	}
	return &key, nil
}

// ServiceAccount is the REST implementation of Gateway. It authenticates per
// call with an RFC 7523 JWT bearer grant, impersonating the principal via
// domain-wide delegation.
type ServiceAccount struct {
	key          *ServiceAccountKey
	directoryURL string
	maxRetries   int
	base         *http.Client
}

// SAOption customizes a ServiceAccount.
type SAOption func(*ServiceAccount)

// WithDirectoryURL points the client at a different admin API root (tests).
func WithDirectoryURL(u string) SAOption {
	return func(s *ServiceAccount) { s.directoryURL = u }
}

// WithMaxRetries overrides the transport retry budget.
func WithMaxRetries(n int) SAOption {
	return func(s *ServiceAccount) { s.maxRetries = n }
}

// NewServiceAccount creates a directory client from a service account key.
func NewServiceAccount(key *ServiceAccountKey, opts ...SAOption) *ServiceAccount {
	s := &ServiceAccount{
		key:          key,
		directoryURL: defaultDirectoryURL,
		maxRetries:   DefaultMaxRetries,
		base:         &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// client returns an HTTP client whose tokens act as principal.
func (s *ServiceAccount) client(ctx context.Context, principal string) *http.Client {
	cfg := &jwt.Config{
		Email:        s.key.ClientEmail,
		PrivateKey:   []byte(s.key.PrivateKey),
		PrivateKeyID: s.key.PrivateKeyID,
		Subject:      principal,
		Scopes:       []string{directoryUserScope},
		TokenURL:     s.key.TokenURI,
		Expires:      time.Hour,
	}
	return cfg.Client(ctx)
}

// CreateUser provisions a directory user. A duplicate primary email surfaces
// as ErrConflict.
func (s *ServiceAccount) CreateUser(ctx context.Context, principal string, user CreateUser) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	status, body, err := s.do(ctx, principal, http.MethodPost, s.directoryURL+"/users", payload)
	if err != nil {
		return err
	}
	switch {
	case status >= 200 && status < 300:
		log.WithField("email", user.PrimaryEmail).Info("created workspace user")
		return nil
	case status == http.StatusConflict:
		return fmt.Errorf("create user %s: %w", user.PrimaryEmail, ErrConflict)
	default:
		return fmt.Errorf("create user %s: HTTP %d: %s", user.PrimaryEmail, status, truncate(body, 200))
	}
}

// DeleteUser removes a directory user by primary email. Deleting an absent
// user surfaces as ErrNotFound.
func (s *ServiceAccount) DeleteUser(ctx context.Context, principal, email string) error {
	u := s.directoryURL + "/users/" + url.PathEscape(email)
	status, body, err := s.do(ctx, principal, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	switch {
	case status >= 200 && status < 300:
		log.WithField("email", email).Info("deleted workspace user")
		return nil
	case status == http.StatusNotFound:
		return fmt.Errorf("delete user %s: %w", email, ErrNotFound)
	default:
		return fmt.Errorf("delete user %s: HTTP %d: %s", email, status, truncate(body, 200))
	}
}

// do performs one authenticated request, retrying 429, 412 and network
// errors with exponential backoff. The provider returns 412 for deletes of
// users created moments earlier, inside its consistency window.
func (s *ServiceAccount) do(ctx context.Context, principal, method, u string, payload []byte) (int, string, error) {
	hc := s.client(ctx, principal)

	backoff := 500 * time.Millisecond
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			log.WithFields(log.Fields{"url": u, "attempt": attempt}).Debug("retrying directory request")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return 0, "", ctx.Err()
			}
			backoff *= 2
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
		if err != nil {
			return 0, "", fmt.Errorf("creating request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := hc.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%s %s: %w", method, u, err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusPreconditionFailed {
			lastErr = fmt.Errorf("%s %s: HTTP %d", method, u, resp.StatusCode)
			continue
		}
		return resp.StatusCode, string(body), nil
	}
	return 0, "", fmt.Errorf("retries exhausted: %w", lastErr)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
