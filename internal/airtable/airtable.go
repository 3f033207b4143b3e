// Package airtable talks to the tabular SaaS source that holds a recruiting
// cycle's volunteers, mentors and nonprofit projects.
package airtable

import (
	"context"
	"errors"
)

// Sentinel errors surfaced by the client. Transport-level transients (429,
// network) are retried internally and never reach callers.
var (
	ErrNotFound     = errors.New("airtable: not found")
	ErrUnauthorized = errors.New("airtable: unauthorized")
	ErrDecode       = errors.New("airtable: malformed response")
)

// Record is one raw row from a table: the provider record id plus its loose
// field document.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Pairing maps a mentor's email to the emails of their mentees.
type Pairing struct {
	MentorEmail  string
	MenteeEmails []string
}

// Base is one externally managed tabular workspace.
type Base struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PermissionLevel string `json:"permissionLevel"`
}

// Gateway is the capability the pipelines depend on. The default
// implementation is Client; tests substitute fakes.
type Gateway interface {
	// ListVolunteers drains the committed-student-volunteers view.
	ListVolunteers(ctx context.Context, baseID string) ([]Record, error)
	// ListMentors drains the committed-mentor-volunteers view. Role
	// filtering is the pipeline's job, not the gateway's.
	ListMentors(ctx context.Context, baseID string) ([]Record, error)
	// ListNonprofits drains the finalized-nonprofit-projects view. The view
	// is located by name: prefix "Finalized", suffix "Nonprofit Projects".
	ListNonprofits(ctx context.Context, baseID string) ([]Record, error)
	// ListMentorMenteePairings drains the 1:1 pairings view.
	ListMentorMenteePairings(ctx context.Context, baseID string) ([]Pairing, error)
	// ValidateSchema reports whether the base exposes the expected tables,
	// fields and views.
	ValidateSchema(ctx context.Context, baseID string) (bool, error)
}
