package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/developforgood/pantheon/internal/models"
)

const cycleColumns = `id, created_at, updated_at, name, description, archived`

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCycle(row rowScanner, c *models.ProjectCycle) error {
	return row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.Name, &c.Description, &c.Archived)
}

// CreateCycle opens a new project cycle and returns its id.
func (q Queries) CreateCycle(ctx context.Context, data models.CreateCycle) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx,
		`INSERT INTO project_cycles (name, description) VALUES ($1, $2) RETURNING id`,
		data.Name, data.Description).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting cycle: %w", mapErr(err))
	}
	return id, nil
}

// FetchCycle returns one cycle or ErrNotFound.
func (q Queries) FetchCycle(ctx context.Context, id uuid.UUID) (*models.ProjectCycle, error) {
	var c models.ProjectCycle
	row := q.db.QueryRow(ctx,
		`SELECT `+cycleColumns+` FROM project_cycles WHERE id = $1`, id)
	if err := scanCycle(row, &c); err != nil {
		return nil, fmt.Errorf("fetching cycle %s: %w", id, mapErr(err))
	}
	return &c, nil
}

// FetchCycles lists every cycle, newest first.
func (q Queries) FetchCycles(ctx context.Context) ([]models.ProjectCycle, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+cycleColumns+` FROM project_cycles ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing cycles: %w", err)
	}
	defer rows.Close()

	var cycles []models.ProjectCycle
	for rows.Next() {
		var c models.ProjectCycle
		if err := scanCycle(rows, &c); err != nil {
			return nil, fmt.Errorf("scanning cycle: %w", err)
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

// DeleteCycle removes a cycle. Entities cascade; jobs keep running with a
// nulled cycle reference.
func (q Queries) DeleteCycle(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM project_cycles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting cycle %s: %w", id, mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CycleStats counts the entities a cycle owns.
func (q Queries) CycleStats(ctx context.Context, id uuid.UUID) (*models.CycleStats, error) {
	if _, err := q.FetchCycle(ctx, id); err != nil {
		return nil, err
	}
	var stats models.CycleStats
	err := q.db.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM volunteers WHERE project_cycle_id = $1),
			(SELECT count(*) FROM mentors WHERE project_cycle_id = $1),
			(SELECT count(*) FROM nonprofits WHERE project_cycle_id = $1)`,
		id).Scan(&stats.Volunteers, &stats.Mentors, &stats.Nonprofits)
	if err != nil {
		return nil, fmt.Errorf("counting cycle entities: %w", err)
	}
	return &stats, nil
}
