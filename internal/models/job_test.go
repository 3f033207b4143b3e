package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobDetailsJSON(t *testing.T) {
	d := JobDetails{JobType: JobTypeImportBase, BaseID: "appX7"}
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jobType":"airtableImportBase","baseId":"appX7"}`, string(data))

	vid := uuid.New()
	d = JobDetails{
		JobType:    JobTypeUndoExport,
		Error:      "deleting user: boom",
		Volunteers: []ExportedUser{{VolunteerID: vid, WorkspaceEmail: "ada@developforgood.org"}},
	}
	data, err = json.Marshal(d)
	require.NoError(t, err)

	var back JobDetails
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)
}

func TestJobDetailsRejectsUnknownType(t *testing.T) {
	var d JobDetails
	err := json.Unmarshal([]byte(`{"jobType":"mystery"}`), &d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery")
}

func TestJobStatusTerminal(t *testing.T) {
	assert.False(t, JobPending.Terminal())
	assert.True(t, JobComplete.Terminal())
	assert.True(t, JobError.Terminal())
	assert.True(t, JobCancelled.Terminal())
}
