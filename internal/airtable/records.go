package airtable

import (
	"context"
	"fmt"
)

// Table and view names in the v1 base schema.
const (
	tableVolunteers = "Volunteers"
	tableNonprofits = "Nonprofits"

	viewActiveVolunteers = "All Committed Student Volunteers - Active"
	viewCommittedMentors = "All Committed Mentor Volunteers"
	viewMentorPairings   = "All Committed Mentor Volunteers - 1:1 Mentor-Mentee Pairings"
)

// Well-known field names shared across record shapes.
const (
	FieldEmail        = "Email"
	FieldOrgName      = "OrgName (from ProjectRecordID)"
	FieldProjectRole  = "ProjectRole"
	FieldMenteeEmails = "Mentee Email (from Volunteers)"
)

var volunteerFields = []string{
	"FirstName",
	"LastName",
	FieldOrgName,
	"Email",
	"Phone",
	"Gender",
	"Ethnicity",
	"AgeRange",
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

var mentorFields = []string{
	"FirstName",
	"LastName",
	"Email",
	"Phone",
	"Company",
	"JobTitle",
	FieldProjectRole,
	FieldOrgName,
	"Country",
	"State",
	"YearsExperience",
	"ExperienceLevel",
	"PriorMentorship",
	"PriorDFG",
	"University",
	"HearAbout",
}

var nonprofitFields = []string{
	"OrgName",
	"ProjectName",
	"OrgWebsite",
	"FirstName",
	"LastName",
	"JobTitle",
	"NonprofitEmail",
	"Cc",
	"Phone",
	"CountryHQ",
	"StateHQ",
	"Address",
	"Size",
	"ImpactCauses",
}

// ListVolunteers drains the active committed student volunteers view.
func (c *Client) ListVolunteers(ctx context.Context, baseID string) ([]Record, error) {
	return c.listAll(ctx, baseID, tableVolunteers, volunteerFields, viewActiveVolunteers)
}

// ListMentors drains the committed mentor volunteers view.
func (c *Client) ListMentors(ctx context.Context, baseID string) ([]Record, error) {
	return c.listAll(ctx, baseID, tableVolunteers, mentorFields, viewCommittedMentors)
}

// ListNonprofits drains the finalized nonprofit projects view. The view name
// varies per cycle ("Finalized Sum24 Nonprofit Projects", ...), so it is
// located in the base schema by prefix and suffix.
func (c *Client) ListNonprofits(ctx context.Context, baseID string) ([]Record, error) {
	schema, err := c.GetBaseSchema(ctx, baseID)
	if err != nil {
		return nil, err
	}
	view := schema.FinalizedNonprofitsView()
	if view == "" {
		return nil, fmt.Errorf("base %s: no finalized nonprofit projects view", baseID)
	}
	return c.listAll(ctx, baseID, tableNonprofits, nonprofitFields, view)
}

// ListMentorMenteePairings drains the 1:1 mentor-mentee pairings view.
func (c *Client) ListMentorMenteePairings(ctx context.Context, baseID string) ([]Pairing, error) {
	records, err := c.listAll(ctx, baseID, tableVolunteers,
		[]string{FieldEmail, FieldMenteeEmails}, viewMentorPairings)
	if err != nil {
		return nil, err
	}

	pairings := make([]Pairing, 0, len(records))
	for _, r := range records {
		email := StringField(r.Fields, FieldEmail)
		mentees := StringSliceField(r.Fields, FieldMenteeEmails)
		if email == "" || len(mentees) == 0 {
			continue
		}
		pairings = append(pairings, Pairing{MentorEmail: email, MenteeEmails: mentees})
	}
	return pairings, nil
}
