package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/developforgood/pantheon/internal/models"
)

// FetchExportedVolunteers returns the ledger rows for a cycle's volunteers.
// A non-empty result means the cycle has live workspace accounts.
func (q Queries) FetchExportedVolunteers(ctx context.Context, cycleID uuid.UUID) ([]models.ExportedVolunteer, error) {
	rows, err := q.db.Query(ctx, `
		SELECT e.volunteer_id, e.job_id, e.workspace_email, e.org_unit
		FROM exported_volunteers e
		JOIN volunteers v ON v.id = e.volunteer_id
		WHERE v.project_cycle_id = $1
		ORDER BY e.created_at`,
		cycleID)
	if err != nil {
		return nil, fmt.Errorf("listing exported volunteers: %w", err)
	}
	defer rows.Close()

	var out []models.ExportedVolunteer
	for rows.Next() {
		var e models.ExportedVolunteer
		if err := rows.Scan(&e.VolunteerID, &e.JobID, &e.WorkspaceEmail, &e.OrgUnit); err != nil {
			return nil, fmt.Errorf("scanning exported volunteer: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertExportedVolunteers records provisioned accounts. A volunteer can hold
// at most one account, so a duplicate insert is a conflict, not an upsert.
func (q Queries) InsertExportedVolunteers(ctx context.Context, ledger []models.ExportedVolunteer) error {
	if len(ledger) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range ledger {
		batch.Queue(`
			INSERT INTO exported_volunteers (volunteer_id, job_id, workspace_email, org_unit)
			VALUES ($1, $2, $3, $4)`,
			e.VolunteerID, e.JobID, e.WorkspaceEmail, e.OrgUnit)
	}
	res := q.db.SendBatch(ctx, batch)
	defer res.Close()
	for _, e := range ledger {
		if _, err := res.Exec(); err != nil {
			return fmt.Errorf("recording export of volunteer %s: %w", e.VolunteerID, mapErr(err))
		}
	}
	return res.Close()
}

// RemoveExportedVolunteers drops ledger rows after an undo deletes the
// accounts. Missing rows are not an error.
func (q Queries) RemoveExportedVolunteers(ctx context.Context, volunteerIDs []uuid.UUID) error {
	if len(volunteerIDs) == 0 {
		return nil
	}
	_, err := q.db.Exec(ctx,
		`DELETE FROM exported_volunteers WHERE volunteer_id = ANY($1)`, volunteerIDs)
	if err != nil {
		return fmt.Errorf("removing exported volunteers: %w", err)
	}
	return nil
}
