package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectCycle groups one import's worth of volunteers, mentors and
// nonprofits. Every other entity references its cycle.
type ProjectCycle struct {
	ID          uuid.UUID  `json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Archived    bool       `json:"archived"`
}

// CreateCycle is the data needed to open a new project cycle.
type CreateCycle struct {
	Name        string
	Description string
}

// Volunteer is a student volunteer imported from the tabular source.
type Volunteer struct {
	ID           uuid.UUID    `json:"id"`
	CycleID      uuid.UUID    `json:"projectCycleId"`
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone,omitempty"`
	Gender       Gender       `json:"gender"`
	Ethnicity    []Ethnicity  `json:"ethnicity"`
	AgeRange     AgeRange     `json:"ageRange"`
	University   []string     `json:"university"`
	Lgbt         Lgbt         `json:"lgbt"`
	Country      string       `json:"country"`
	USState      string       `json:"usState,omitempty"`
	Fli          []Fli        `json:"fli"`
	StudentStage StudentStage `json:"studentStage"`
	Majors       []string     `json:"majors"`
	Minors       []string     `json:"minors"`
	HearAbout    []HearAbout  `json:"hearAbout"`
}

// CreateVolunteer is the normalized insert payload for a volunteer.
type CreateVolunteer struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Gender       Gender
	Ethnicity    []Ethnicity
	AgeRange     AgeRange
	University   []string
	Lgbt         Lgbt
	Country      string
	USState      string
	Fli          []Fli
	StudentStage StudentStage
	Majors       []string
	Minors       []string
	HearAbout    []HearAbout
}

// Mentor is a committed mentor volunteer.
type Mentor struct {
	ID              uuid.UUID       `json:"id"`
	CycleID         uuid.UUID       `json:"projectCycleId"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	Company         string          `json:"company"`
	JobTitle        string          `json:"jobTitle"`
	Country         string          `json:"country"`
	USState         string          `json:"usState,omitempty"`
	YearsExperience YearsExperience `json:"yearsExperience"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel"`
	PriorMentor     bool            `json:"priorMentor"`
	PriorMentee     bool            `json:"priorMentee"`
	PriorStudent    bool            `json:"priorStudent"`
	University      []string        `json:"university"`
	HearAbout       []HearAbout     `json:"hearAbout"`
}

// CreateMentor is the normalized insert payload for a mentor.
type CreateMentor struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Company         string
	JobTitle        string
	Country         string
	USState         string
	YearsExperience YearsExperience
	ExperienceLevel ExperienceLevel
	PriorMentor     bool
	PriorMentee     bool
	PriorStudent    bool
	University      []string
	HearAbout       []HearAbout
}

// Nonprofit is a client organization with a finalized project in a cycle.
type Nonprofit struct {
	ID                      uuid.UUID     `json:"id"`
	CycleID                 uuid.UUID     `json:"projectCycleId"`
	RepresentativeFirstName string        `json:"representativeFirstName"`
	RepresentativeLastName  string        `json:"representativeLastName"`
	RepresentativeJobTitle  string        `json:"representativeJobTitle"`
	Email                   string        `json:"email"`
	EmailCC                 string        `json:"emailCc,omitempty"`
	Phone                   string        `json:"phone"`
	OrgName                 string        `json:"orgName"`
	ProjectName             string        `json:"projectName"`
	OrgWebsite              string        `json:"orgWebsite,omitempty"`
	CountryHQ               string        `json:"countryHq,omitempty"`
	USStateHQ               string        `json:"usStateHq,omitempty"`
	Address                 string        `json:"address"`
	Size                    ClientSize    `json:"size"`
	ImpactCauses            []ImpactCause `json:"impactCauses"`
}

// CreateNonprofit is the normalized insert payload for a nonprofit.
type CreateNonprofit struct {
	RepresentativeFirstName string
	RepresentativeLastName  string
	RepresentativeJobTitle  string
	Email                   string
	EmailCC                 string
	Phone                   string
	OrgName                 string
	ProjectName             string
	OrgWebsite              string
	CountryHQ               string
	USStateHQ               string
	Address                 string
	Size                    ClientSize
	ImpactCauses            []ImpactCause
}

// VolunteerDetails is the subset of volunteer data an export request carries.
type VolunteerDetails struct {
	VolunteerID uuid.UUID `json:"volunteerId"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
}

// ExportedVolunteer is one row of the exported-volunteers ledger: the record
// that a volunteer holds a provisioned workspace account.
type ExportedVolunteer struct {
	VolunteerID    uuid.UUID `json:"volunteerId"`
	JobID          uuid.UUID `json:"jobId"`
	WorkspaceEmail string    `json:"workspaceEmail"`
	OrgUnit        string    `json:"orgUnit"`
}

// CycleStats summarizes the entities a cycle owns.
type CycleStats struct {
	Volunteers int `json:"volunteers"`
	Mentors    int `json:"mentors"`
	Nonprofits int `json:"nonprofits"`
}
