package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// SchemaField is one field definition in a table schema.
type SchemaField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// SchemaView is one view definition in a table schema.
type SchemaView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// SchemaTable is one table in a base schema.
type SchemaTable struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Fields []SchemaField `json:"fields"`
	Views  []SchemaView  `json:"views"`
}

// Schema is a base's full table/field/view layout.
type Schema struct {
	Tables []SchemaTable `json:"tables"`
}

// Required layout for a v1 base. Import refuses bases missing any of these.
var requiredVolunteerFields = []string{
	"FirstName",
	"LastName",
	"Email",
	"Phone",
	"Gender",
	"Ethnicity",
	"AgeRange",
	FieldOrgName,
	"Company",
	"JobTitle",
	"University",
	"LGBT",
	"Country",
	"State",
	"FLI",
	"StudentStage",
	"Majors",
	"Minors",
	"HearAbout",
}

var requiredVolunteerViews = []string{
	viewActiveVolunteers,
	"All Committed Student + Management Volunteers",
	viewCommittedMentors,
	viewMentorPairings,
}

var requiredNonprofitFields = []string{
	"FirstName",
	"LastName",
	"JobTitle",
	"NonprofitEmail",
	"Cc",
	"OrgName",
	"ProjectName",
	"OrgWebsite",
	"CountryHQ",
	"StateHQ",
	"Address",
	"Size",
	"ImpactCauses",
}

// table returns the named table, or nil.
func (s *Schema) table(name string) *SchemaTable {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// FinalizedNonprofitsView returns the name of the per-cycle finalized
// nonprofit projects view, or "" when the base has none.
func (s *Schema) FinalizedNonprofitsView() string {
	t := s.table(tableNonprofits)
	if t == nil {
		return ""
	}
	for _, v := range t.Views {
		if strings.HasPrefix(v.Name, "Finalized") && strings.HasSuffix(v.Name, "Nonprofit Projects") {
			return v.Name
		}
	}
	return ""
}

// Validate reports whether the base exposes the expected tables, fields and
// views for a v1 import.
func (s *Schema) Validate() bool {
	volunteers := s.table(tableVolunteers)
	nonprofits := s.table(tableNonprofits)
	if volunteers == nil || nonprofits == nil {
		return false
	}

	return hasFields(volunteers, requiredVolunteerFields) &&
		hasViews(volunteers, requiredVolunteerViews) &&
		hasFields(nonprofits, requiredNonprofitFields) &&
		s.FinalizedNonprofitsView() != ""
}

func hasFields(t *SchemaTable, required []string) bool {
	names := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		names[f.Name] = true
	}
	for _, r := range required {
		if !names[r] {
			return false
		}
	}
	return true
}

func hasViews(t *SchemaTable, required []string) bool {
	names := make(map[string]bool, len(t.Views))
	for _, v := range t.Views {
		names[v.Name] = true
	}
	for _, r := range required {
		if !names[r] {
			return false
		}
	}
	return true
}

// GetBaseSchema fetches the table schema of a base.
func (c *Client) GetBaseSchema(ctx context.Context, baseID string) (*Schema, error) {
	body, err := c.get(ctx, fmt.Sprintf("/meta/bases/%s/tables", baseID), nil)
	if err != nil {
		return nil, err
	}
	var schema Schema
	if err := json.Unmarshal(body, &schema); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &schema, nil
}

// ValidateSchema fetches and validates the base schema.
func (c *Client) ValidateSchema(ctx context.Context, baseID string) (bool, error) {
	schema, err := c.GetBaseSchema(ctx, baseID)
	if err != nil {
		return false, err
	}
	return schema.Validate(), nil
}

// listBasesResponse is the provider's paginated base envelope.
type listBasesResponse struct {
	Bases  []Base `json:"bases"`
	Offset string `json:"offset"`
}

// ListBases drains every base the token can see.
func (c *Client) ListBases(ctx context.Context) ([]Base, error) {
	params := url.Values{}
	var all []Base
	for {
		body, err := c.get(ctx, "/meta/bases", params)
		if err != nil {
			return nil, err
		}
		var page listBasesResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		all = append(all, page.Bases...)
		if page.Offset == "" {
			return all, nil
		}
		params.Set("offset", page.Offset)
	}
}
