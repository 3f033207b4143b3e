// Package mail renders and dispatches transactional email through the mail
// provider.
package mail

import (
	"context"
	"time"
)

// OnboardingEmailParams is the data needed to send one onboarding email to a
// freshly provisioned volunteer.
type OnboardingEmailParams struct {
	FirstName string
	LastName  string

	// Email is the recipient (the volunteer's personal address).
	Email string

	WorkspaceEmail    string
	TemporaryPassword string

	// SendAt optionally schedules delivery; zero means immediately.
	SendAt time.Time
}

// Gateway is the mail capability the export pipeline depends on.
type Gateway interface {
	SendOnboardingEmail(ctx context.Context, params OnboardingEmailParams) error
}
