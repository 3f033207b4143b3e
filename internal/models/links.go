package models

import "github.com/google/uuid"

// VolunteerNonprofitLink assigns a volunteer to a nonprofit's project.
type VolunteerNonprofitLink struct {
	VolunteerID uuid.UUID `json:"volunteerId"`
	NonprofitID uuid.UUID `json:"nonprofitId"`
}

// MentorNonprofitLink assigns a team mentor to a nonprofit's project.
type MentorNonprofitLink struct {
	MentorID    uuid.UUID `json:"mentorId"`
	NonprofitID uuid.UUID `json:"nonprofitId"`
}

// VolunteerMentorLink pairs a mentee volunteer with a 1:1 mentor.
type VolunteerMentorLink struct {
	VolunteerID uuid.UUID `json:"volunteerId"`
	MentorID    uuid.UUID `json:"mentorId"`
}
