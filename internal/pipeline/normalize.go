package pipeline

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/developforgood/pantheon/internal/airtable"
	"github.com/developforgood/pantheon/internal/models"
)

// roleTeamMentor is the ProjectRole value marking a mentor as assigned to a
// nonprofit project team rather than a 1:1 mentee.
const roleTeamMentor = "Team Mentor"

// sourceVolunteer is a decoded volunteer record plus the org name lookups
// needed for linking.
type sourceVolunteer struct {
	create   models.CreateVolunteer
	orgNames []string
}

type sourceMentor struct {
	create     models.CreateMentor
	orgNames   []string
	teamMentor bool
}

// normalizeVolunteers decodes raw records into insert payloads. Records
// missing a name or email cannot be provisioned later and are dropped with a
// warning rather than failing the whole import.
func normalizeVolunteers(records []airtable.Record) []sourceVolunteer {
	out := make([]sourceVolunteer, 0, len(records))
	for _, r := range records {
		f := r.Fields
		first := airtable.StringField(f, "FirstName")
		last := airtable.StringField(f, "LastName")
		email := airtable.StringField(f, airtable.FieldEmail)
		if first == "" || last == "" || email == "" {
			log.WithField("record_id", r.ID).Warn("volunteer record missing name or email, dropping")
			continue
		}

		create := models.CreateVolunteer{
			FirstName:    first,
			LastName:     last,
			Email:        email,
			Phone:        airtable.StringField(f, "Phone"),
			Gender:       models.ParseGender(airtable.StringField(f, "Gender")),
			AgeRange:     models.ParseAgeRange(airtable.StringField(f, "AgeRange")),
			University:   airtable.StringSliceField(f, "University"),
			Lgbt:         models.ParseLgbt(airtable.StringField(f, "LGBT")),
			Country:      airtable.StringField(f, "Country"),
			USState:      airtable.StringField(f, "State"),
			StudentStage: models.ParseStudentStage(airtable.StringField(f, "StudentStage")),
			Majors:       splitCommaList(airtable.StringField(f, "Majors")),
			Minors:       splitCommaList(airtable.StringField(f, "Minors")),
		}
		for _, s := range airtable.StringSliceField(f, "Ethnicity") {
			create.Ethnicity = append(create.Ethnicity, models.ParseEthnicity(s))
		}
		for _, s := range airtable.StringSliceField(f, "FLI") {
			create.Fli = append(create.Fli, models.ParseFli(s))
		}
		for _, s := range airtable.StringSliceField(f, "HearAbout") {
			create.HearAbout = append(create.HearAbout, models.ParseHearAbout(s))
		}

		out = append(out, sourceVolunteer{
			create:   create,
			orgNames: airtable.StringSliceField(f, airtable.FieldOrgName),
		})
	}
	return out
}

func normalizeMentors(records []airtable.Record) []sourceMentor {
	out := make([]sourceMentor, 0, len(records))
	for _, r := range records {
		f := r.Fields
		first := airtable.StringField(f, "FirstName")
		last := airtable.StringField(f, "LastName")
		email := airtable.StringField(f, airtable.FieldEmail)
		if first == "" || last == "" || email == "" {
			log.WithField("record_id", r.ID).Warn("mentor record missing name or email, dropping")
			continue
		}

		create := models.CreateMentor{
			FirstName:       first,
			LastName:        last,
			Email:           email,
			Phone:           airtable.StringField(f, "Phone"),
			Company:         airtable.StringField(f, "Company"),
			JobTitle:        airtable.StringField(f, "JobTitle"),
			Country:         airtable.StringField(f, "Country"),
			USState:         airtable.StringField(f, "State"),
			YearsExperience: models.ParseYearsExperience(airtable.StringField(f, "YearsExperience")),
			ExperienceLevel: models.ParseExperienceLevel(airtable.StringField(f, "ExperienceLevel")),
			PriorMentor:     airtable.HasString(f, "PriorMentorship", "Yes, I've been a mentor"),
			PriorMentee:     airtable.HasString(f, "PriorMentorship", "Yes, I've been a mentee"),
			PriorStudent:    airtable.HasString(f, "PriorDFG", "Yes"),
			University:      airtable.StringSliceField(f, "University"),
		}
		for _, s := range airtable.StringSliceField(f, "HearAbout") {
			create.HearAbout = append(create.HearAbout, models.ParseHearAbout(s))
		}

		out = append(out, sourceMentor{
			create:     create,
			orgNames:   airtable.StringSliceField(f, airtable.FieldOrgName),
			teamMentor: airtable.HasString(f, airtable.FieldProjectRole, roleTeamMentor),
		})
	}
	return out
}

func normalizeNonprofits(records []airtable.Record) []models.CreateNonprofit {
	out := make([]models.CreateNonprofit, 0, len(records))
	for _, r := range records {
		f := r.Fields
		orgName := airtable.StringField(f, "OrgName")
		projectName := airtable.StringField(f, "ProjectName")
		if orgName == "" || projectName == "" {
			log.WithField("record_id", r.ID).Warn("nonprofit record missing org or project name, dropping")
			continue
		}

		create := models.CreateNonprofit{
			OrgName:                 orgName,
			ProjectName:             projectName,
			OrgWebsite:              airtable.StringField(f, "OrgWebsite"),
			RepresentativeFirstName: airtable.StringField(f, "FirstName"),
			RepresentativeLastName:  airtable.StringField(f, "LastName"),
			RepresentativeJobTitle:  airtable.StringField(f, "JobTitle"),
			Email:                   airtable.StringField(f, "NonprofitEmail"),
			EmailCC:                 airtable.StringField(f, "Cc"),
			Phone:                   airtable.StringField(f, "Phone"),
			CountryHQ:               airtable.StringField(f, "CountryHQ"),
			USStateHQ:               airtable.StringField(f, "StateHQ"),
			Address:                 airtable.StringField(f, "Address"),
			Size:                    models.ParseClientSize(airtable.StringField(f, "Size")),
		}
		for _, code := range airtable.StringSliceField(f, "ImpactCauses") {
			create.ImpactCauses = append(create.ImpactCauses, models.ParseImpactCause(code))
		}
		out = append(out, create)
	}
	return out
}

// splitCommaList breaks a free-text field like "Mathematics, Computer Science"
// into trimmed values. Majors and minors arrive this way rather than as
// multi-selects.
func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
