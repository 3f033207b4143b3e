package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultSendURL = "https://api.sendgrid.com/v3/mail/send"

// DefaultMaxRetries bounds the transport retry loop.
const DefaultMaxRetries = 5

const (
	fromAddress = "onboarding@developforgood.org"
	fromName    = "Develop for Good"
	subject     = "Develop for Good: Onboarding instructions"
)

// Sendgrid is the HTTP implementation of Gateway against the provider's v3
// mail send API.
type Sendgrid struct {
	apiKey     string
	sendURL    string
	maxRetries int
	// overrideRecipient, when set, redirects every message to a single
	// address. Development deployments use it to keep test runs from
	// mailing real volunteers.
	overrideRecipient string
	httpClient        *http.Client
}

// SGOption customizes a Sendgrid client.
type SGOption func(*Sendgrid)

// WithSendURL points the client at a different send endpoint (tests).
func WithSendURL(u string) SGOption {
	return func(s *Sendgrid) { s.sendURL = u }
}

// WithMaxRetries overrides the transport retry budget.
func WithMaxRetries(n int) SGOption {
	return func(s *Sendgrid) { s.maxRetries = n }
}

// WithOverrideRecipient redirects all mail to one address.
func WithOverrideRecipient(email string) SGOption {
	return func(s *Sendgrid) { s.overrideRecipient = email }
}

// NewSendgrid creates a mail client authenticating with the given API key.
func NewSendgrid(apiKey string, opts ...SGOption) *Sendgrid {
	s := &Sendgrid{
		apiKey:     apiKey,
		sendURL:    defaultSendURL,
		maxRetries: DefaultMaxRetries,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// v3 mail send payload.
type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type personalization struct {
	To []address `json:"to"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type message struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
	SendAt           int64             `json:"send_at,omitempty"`
}

// SendOnboardingEmail renders and dispatches one onboarding email.
func (s *Sendgrid) SendOnboardingEmail(ctx context.Context, params OnboardingEmailParams) error {
	body, err := renderOnboarding(params)
	if err != nil {
		return err
	}

	recipient := params.Email
	if s.overrideRecipient != "" {
		log.WithFields(log.Fields{"from": recipient, "to": s.overrideRecipient}).
			Warn("redirecting onboarding email to override recipient")
		recipient = s.overrideRecipient
	}

	msg := message{
		Personalizations: []personalization{{To: []address{{
			Email: recipient,
			Name:  params.FirstName + " " + params.LastName,
		}}}},
		From:    address{Email: fromAddress, Name: fromName},
		Subject: subject,
		Content: []content{{Type: "text/html", Value: body}},
	}
	if !params.SendAt.IsZero() {
		msg.SendAt = params.SendAt.Unix()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding mail: %w", err)
	}
	return s.post(ctx, payload)
}

// post sends the payload, retrying rate limits and network errors with
// exponential backoff.
func (s *Sendgrid) post(ctx context.Context, payload []byte) error {
	backoff := 500 * time.Millisecond
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			log.WithField("attempt", attempt).Debug("retrying mail send")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sendURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("POST %s: %w", s.sendURL, err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading response: %w", err)
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("mail send: HTTP 429")
			continue
		default:
			return fmt.Errorf("mail send: HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
		}
	}
	return fmt.Errorf("retries exhausted: %w", lastErr)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
