// Package workspace provisions and deprovisions directory accounts at the
// external identity provider (Google Workspace Admin SDK).
package workspace

import (
	"context"
	"errors"
)

var (
	// ErrConflict means the primary email is already taken in the directory.
	ErrConflict = errors.New("workspace: user already exists")
	// ErrNotFound means the user does not exist (already deleted).
	ErrNotFound = errors.New("workspace: user not found")
)

// Name carries the given and family name of a directory user.
type Name struct {
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
}

// CreateUser is the payload for provisioning one directory user.
type CreateUser struct {
	PrimaryEmail              string `json:"primaryEmail"`
	Name                      Name   `json:"name"`
	Password                  string `json:"password"`
	ChangePasswordAtNextLogin bool   `json:"changePasswordAtNextLogin"`
	RecoveryEmail             string `json:"recoveryEmail,omitempty"`
	OrgUnitPath               string `json:"orgUnitPath,omitempty"`
}

// Gateway is the directory capability the export pipeline depends on. All
// calls are made on behalf of a principal (the authenticated admin whose
// identity the service account impersonates).
type Gateway interface {
	CreateUser(ctx context.Context, principal string, user CreateUser) error
	DeleteUser(ctx context.Context, principal, email string) error
}
