package storage

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developforgood/pantheon/internal/models"
)

// testStore connects to the database named by PANTHEON_TEST_DATABASE_URL.
// Tests are skipped when it is unset so the suite runs without a database.
func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("PANTHEON_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PANTHEON_TEST_DATABASE_URL not set")
	}
	pool, err := Connect(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := NewStore(pool)
	require.NoError(t, store.ApplySchema(context.Background()))
	return store
}

func seedCycle(t *testing.T, store *Store) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id, err := store.CreateCycle(ctx, models.CreateCycle{Name: "Test Cycle " + uuid.NewString()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.DeleteCycle(ctx, id) })
	return id
}

func TestCycleLifecycle(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	id, err := store.CreateCycle(ctx, models.CreateCycle{Name: "Summer 2026", Description: "pilot"})
	require.NoError(t, err)

	cycle, err := store.FetchCycle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Summer 2026", cycle.Name)
	assert.Equal(t, "pilot", cycle.Description)
	assert.False(t, cycle.Archived)

	cycles, err := store.FetchCycles(ctx)
	require.NoError(t, err)
	found := false
	for _, c := range cycles {
		if c.ID == id {
			found = true
		}
	}
	assert.True(t, found)

	require.NoError(t, store.DeleteCycle(ctx, id))
	_, err = store.FetchCycle(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteCycle(ctx, id), ErrNotFound)
}

func TestBatchInsertAndLinks(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	cycleID := seedCycle(t, store)

	err := store.InTx(ctx, func(q Querier) error {
		nonprofits, err := q.BatchCreateNonprofits(ctx, cycleID, []models.CreateNonprofit{
			{OrgName: "Clean Rivers", ProjectName: "Website", Email: "info@cleanrivers.org",
				RepresentativeFirstName: "Pat", RepresentativeLastName: "Doe",
				Size: models.Size1to5},
		})
		if err != nil {
			return err
		}
		volunteers, err := q.BatchCreateVolunteers(ctx, cycleID, []models.CreateVolunteer{
			{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
				Gender: models.GenderWoman, AgeRange: models.Age18to24,
				Lgbt: models.LgbtNo, Country: "United States",
				StudentStage: models.StageJunior},
		})
		if err != nil {
			return err
		}
		mentors, err := q.BatchCreateMentors(ctx, cycleID, []models.CreateMentor{
			{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com",
				Country:         "United States",
				YearsExperience: models.YearsOver21,
				ExperienceLevel: models.LevelSeniorOrExec},
		})
		if err != nil {
			return err
		}

		vn := []models.VolunteerNonprofitLink{{
			VolunteerID: volunteers["ada@example.com"],
			NonprofitID: nonprofits["Clean Rivers"],
		}}
		if err := q.LinkVolunteersToNonprofits(ctx, cycleID, vn); err != nil {
			return err
		}
		// A repeated link inside the same import is a no-op.
		if err := q.LinkVolunteersToNonprofits(ctx, cycleID, vn); err != nil {
			return err
		}
		return q.LinkVolunteersToMentors(ctx, cycleID, []models.VolunteerMentorLink{{
			VolunteerID: volunteers["ada@example.com"],
			MentorID:    mentors["grace@example.com"],
		}})
	})
	require.NoError(t, err)

	stats, err := store.CycleStats(ctx, cycleID)
	require.NoError(t, err)
	assert.Equal(t, &models.CycleStats{Volunteers: 1, Mentors: 1, Nonprofits: 1}, stats)

	vols, err := store.FetchVolunteersByCycle(ctx, cycleID)
	require.NoError(t, err)
	require.Len(t, vols, 1)
	assert.Equal(t, models.GenderWoman, vols[0].Gender)
	assert.Equal(t, "ada@example.com", vols[0].Email)
}

func TestDuplicateVolunteerRollsBack(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	cycleID := seedCycle(t, store)

	base := models.CreateVolunteer{
		FirstName: "Ada", LastName: "Lovelace", Email: "dup@example.com",
		Gender: models.GenderWoman, AgeRange: models.Age18to24,
		Lgbt: models.LgbtNo, Country: "United States",
		StudentStage: models.StageJunior,
	}
	err := store.InTx(ctx, func(q Querier) error {
		_, err := q.BatchCreateVolunteers(ctx, cycleID, []models.CreateVolunteer{base, base})
		return err
	})
	require.ErrorIs(t, err, ErrConflict)

	stats, err := store.CycleStats(ctx, cycleID)
	require.NoError(t, err)
	assert.Zero(t, stats.Volunteers, "failed transaction must leave nothing behind")
}

func TestJobStatusTerminalGuard(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	id, err := store.CreateJob(ctx, nil, models.CreateJob{
		Label:   "Import Airtable Base",
		Details: models.JobDetails{JobType: models.JobTypeImportBase, BaseID: "appTest"},
	})
	require.NoError(t, err)

	job, err := store.FetchJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.JobPending, job.Status)
	assert.Equal(t, "appTest", job.Details.BaseID)

	require.NoError(t, store.UpdateJobStatus(ctx, id, models.UpdateJobStatus{
		Status: models.JobError, Error: "schema validation failed",
	}))
	job, err = store.FetchJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.JobError, job.Status)
	assert.Equal(t, "schema validation failed", job.Details.Error)

	err = store.UpdateJobStatus(ctx, id, models.UpdateJobStatus{Status: models.JobComplete})
	assert.ErrorIs(t, err, ErrJobTerminal)

	err = store.UpdateJobStatus(ctx, uuid.New(), models.UpdateJobStatus{Status: models.JobComplete})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobSurvivesCycleDeletion(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	cycleID, err := store.CreateCycle(ctx, models.CreateCycle{Name: "Doomed"})
	require.NoError(t, err)

	jobID, err := store.CreateJob(ctx, &cycleID, models.CreateJob{
		Label:   "Export Users",
		Details: models.JobDetails{JobType: models.JobTypeExportUsers, ExportDestination: models.DestinationGoogleWorkspace},
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteCycle(ctx, cycleID))

	job, err := store.FetchJob(ctx, jobID)
	require.NoError(t, err)
	assert.Nil(t, job.CycleID)
	assert.Equal(t, models.JobPending, job.Status)
}

func TestExportLedger(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	cycleID := seedCycle(t, store)

	volunteers, err := store.BatchCreateVolunteers(ctx, cycleID, []models.CreateVolunteer{
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
			Gender: models.GenderWoman, AgeRange: models.Age18to24,
			Lgbt: models.LgbtNo, Country: "United States",
			StudentStage: models.StageJunior},
	})
	require.NoError(t, err)
	volunteerID := volunteers["ada@example.com"]

	jobID, err := store.CreateJob(ctx, &cycleID, models.CreateJob{
		Label:   "Export Users",
		Details: models.JobDetails{JobType: models.JobTypeExportUsers, ExportDestination: models.DestinationGoogleWorkspace},
	})
	require.NoError(t, err)

	entry := models.ExportedVolunteer{
		VolunteerID:    volunteerID,
		JobID:          jobID,
		WorkspaceEmail: "adalovelace@developforgood.org",
		OrgUnit:        "/Programs/PantheonUsers",
	}
	require.NoError(t, store.InsertExportedVolunteers(ctx, []models.ExportedVolunteer{entry}))

	// One workspace account per volunteer.
	err = store.InsertExportedVolunteers(ctx, []models.ExportedVolunteer{entry})
	assert.ErrorIs(t, err, ErrConflict)

	ledger, err := store.FetchExportedVolunteers(ctx, cycleID)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, "adalovelace@developforgood.org", ledger[0].WorkspaceEmail)

	require.NoError(t, store.RemoveExportedVolunteers(ctx, []uuid.UUID{volunteerID}))
	ledger, err = store.FetchExportedVolunteers(ctx, cycleID)
	require.NoError(t, err)
	assert.Empty(t, ledger)

	// Removing again is fine.
	require.NoError(t, store.RemoveExportedVolunteers(ctx, []uuid.UUID{volunteerID}))
}
