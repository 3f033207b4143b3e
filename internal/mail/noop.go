package mail

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Noop is a Gateway that logs instead of sending.
type Noop struct{}

func (Noop) SendOnboardingEmail(_ context.Context, params OnboardingEmailParams) error {
	log.WithFields(log.Fields{
		"recipient":       params.Email,
		"workspace_email": params.WorkspaceEmail,
	}).Info("noop mail: onboarding email")
	return nil
}
