package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Job is one row tracking an asynchronous pipeline run. Jobs are append-update
// only; they are never deleted, even when the cycle they reference is.
type Job struct {
	ID          uuid.UUID  `json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	CycleID     *uuid.UUID `json:"projectCycleId,omitempty"`
	Status      JobStatus  `json:"status"`
	Label       string     `json:"label"`
	Description string     `json:"description,omitempty"`
	Details     JobDetails `json:"details"`
}

// ExportedUser pairs a volunteer with the workspace email provisioned for
// them. Undo jobs carry these so operators can see exactly what is rolled
// back.
type ExportedUser struct {
	VolunteerID    uuid.UUID `json:"volunteerId"`
	WorkspaceEmail string    `json:"workspaceEmail"`
}

// JobDetails is the tagged `details` document stored on a job row. Exactly
// one of the variant field groups is populated, selected by JobType.
type JobDetails struct {
	JobType JobType
	Error   string

	// airtableImportBase
	BaseID string

	// airtableExportUsers
	ExportDestination ExportDestination

	// undoWorkspaceExport
	Volunteers []ExportedUser
}

type jobDetailsJSON struct {
	JobType           JobType           `json:"jobType"`
	Error             string            `json:"error,omitempty"`
	BaseID            string            `json:"baseId,omitempty"`
	ExportDestination ExportDestination `json:"exportDestination,omitempty"`
	Volunteers        []ExportedUser    `json:"volunteers,omitempty"`
}

// MarshalJSON flattens the variant fields into a single camelCase document.
func (d JobDetails) MarshalJSON() ([]byte, error) {
	return json.Marshal(jobDetailsJSON{
		JobType:           d.JobType,
		Error:             d.Error,
		BaseID:            d.BaseID,
		ExportDestination: d.ExportDestination,
		Volunteers:        d.Volunteers,
	})
}

func (d *JobDetails) UnmarshalJSON(data []byte) error {
	var raw jobDetailsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding job details: %w", err)
	}
	switch raw.JobType {
	case JobTypeImportBase, JobTypeExportUsers, JobTypeUndoExport:
	default:
		return fmt.Errorf("unknown job type %q", raw.JobType)
	}
	d.JobType = raw.JobType
	d.Error = raw.Error
	d.BaseID = raw.BaseID
	d.ExportDestination = raw.ExportDestination
	d.Volunteers = raw.Volunteers
	return nil
}

// CreateJob is the data needed to record a new job.
type CreateJob struct {
	Label       string
	Description string
	Details     JobDetails
}

// UpdateJobStatus moves a job to a new status. Error is recorded into the
// details document when the new status is JobError.
type UpdateJobStatus struct {
	Status JobStatus
	Error  string
}
