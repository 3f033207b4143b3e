package workspace

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Noop is a Gateway that records nothing and always succeeds. Useful for
// dry runs and local development against a production database copy.
type Noop struct{}

func (Noop) CreateUser(_ context.Context, principal string, user CreateUser) error {
	log.WithFields(log.Fields{"principal": principal, "email": user.PrimaryEmail}).
		Info("noop workspace: create user")
	return nil
}

func (Noop) DeleteUser(_ context.Context, principal, email string) error {
	log.WithFields(log.Fields{"principal": principal, "email": email}).
		Info("noop workspace: delete user")
	return nil
}
