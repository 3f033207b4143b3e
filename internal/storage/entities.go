package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/developforgood/pantheon/internal/models"
)

// BatchCreateNonprofits inserts nonprofits for a cycle and returns org name →
// id for link resolution.
func (q Queries) BatchCreateNonprofits(ctx context.Context, cycleID uuid.UUID, data []models.CreateNonprofit) (map[string]uuid.UUID, error) {
	batch := &pgx.Batch{}
	for _, n := range data {
		batch.Queue(`
			INSERT INTO nonprofits (
				project_cycle_id, representative_first_name, representative_last_name,
				representative_job_title, email, email_cc, phone, org_name, project_name,
				org_website, country_hq, us_state_hq, address, size, impact_causes
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING id`,
			cycleID, n.RepresentativeFirstName, n.RepresentativeLastName,
			n.RepresentativeJobTitle, n.Email, n.EmailCC, n.Phone, n.OrgName, n.ProjectName,
			n.OrgWebsite, n.CountryHQ, n.USStateHQ, n.Address, string(n.Size),
			toStrings(n.ImpactCauses))
	}

	res := q.db.SendBatch(ctx, batch)
	defer res.Close()

	ids := make(map[string]uuid.UUID, len(data))
	for _, n := range data {
		var id uuid.UUID
		if err := res.QueryRow().Scan(&id); err != nil {
			return nil, fmt.Errorf("inserting nonprofit %q: %w", n.OrgName, mapErr(err))
		}
		ids[n.OrgName] = id
	}
	return ids, res.Close()
}

// BatchCreateVolunteers inserts volunteers for a cycle and returns email → id.
func (q Queries) BatchCreateVolunteers(ctx context.Context, cycleID uuid.UUID, data []models.CreateVolunteer) (map[string]uuid.UUID, error) {
	batch := &pgx.Batch{}
	for _, v := range data {
		batch.Queue(`
			INSERT INTO volunteers (
				project_cycle_id, first_name, last_name, email, phone, gender, ethnicity,
				age_range, university, lgbt, country, us_state, fli, student_stage,
				majors, minors, hear_about
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			RETURNING id`,
			cycleID, v.FirstName, v.LastName, v.Email, v.Phone, string(v.Gender),
			toStrings(v.Ethnicity), string(v.AgeRange), v.University, string(v.Lgbt),
			v.Country, v.USState, toStrings(v.Fli), string(v.StudentStage),
			v.Majors, v.Minors, toStrings(v.HearAbout))
	}

	res := q.db.SendBatch(ctx, batch)
	defer res.Close()

	ids := make(map[string]uuid.UUID, len(data))
	for _, v := range data {
		var id uuid.UUID
		if err := res.QueryRow().Scan(&id); err != nil {
			return nil, fmt.Errorf("inserting volunteer %q: %w", v.Email, mapErr(err))
		}
		ids[v.Email] = id
	}
	return ids, res.Close()
}

// BatchCreateMentors inserts mentors for a cycle and returns email → id.
func (q Queries) BatchCreateMentors(ctx context.Context, cycleID uuid.UUID, data []models.CreateMentor) (map[string]uuid.UUID, error) {
	batch := &pgx.Batch{}
	for _, m := range data {
		batch.Queue(`
			INSERT INTO mentors (
				project_cycle_id, first_name, last_name, email, phone, company, job_title,
				country, us_state, years_experience, experience_level, prior_mentor,
				prior_mentee, prior_student, university, hear_about
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING id`,
			cycleID, m.FirstName, m.LastName, m.Email, m.Phone, m.Company, m.JobTitle,
			m.Country, m.USState, string(m.YearsExperience), string(m.ExperienceLevel),
			m.PriorMentor, m.PriorMentee, m.PriorStudent, m.University,
			toStrings(m.HearAbout))
	}

	res := q.db.SendBatch(ctx, batch)
	defer res.Close()

	ids := make(map[string]uuid.UUID, len(data))
	for _, m := range data {
		var id uuid.UUID
		if err := res.QueryRow().Scan(&id); err != nil {
			return nil, fmt.Errorf("inserting mentor %q: %w", m.Email, mapErr(err))
		}
		ids[m.Email] = id
	}
	return ids, res.Close()
}

// FetchVolunteersByCycle lists a cycle's volunteers in insertion order.
func (q Queries) FetchVolunteersByCycle(ctx context.Context, cycleID uuid.UUID) ([]models.Volunteer, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, project_cycle_id, first_name, last_name, email, phone, gender,
		       ethnicity, age_range, university, lgbt, country, us_state, fli,
		       student_stage, majors, minors, hear_about
		FROM volunteers WHERE project_cycle_id = $1 ORDER BY created_at, id`,
		cycleID)
	if err != nil {
		return nil, fmt.Errorf("listing volunteers: %w", err)
	}
	defer rows.Close()

	var out []models.Volunteer
	for rows.Next() {
		var v models.Volunteer
		var gender, ageRange, lgbt, studentStage string
		var ethnicity, fli, hearAbout []string
		err := rows.Scan(&v.ID, &v.CycleID, &v.FirstName, &v.LastName, &v.Email,
			&v.Phone, &gender, &ethnicity, &ageRange, &v.University, &lgbt,
			&v.Country, &v.USState, &fli, &studentStage, &v.Majors, &v.Minors,
			&hearAbout)
		if err != nil {
			return nil, fmt.Errorf("scanning volunteer: %w", err)
		}
		v.Gender = models.Gender(gender)
		v.Ethnicity = fromStrings[models.Ethnicity](ethnicity)
		v.AgeRange = models.AgeRange(ageRange)
		v.Lgbt = models.Lgbt(lgbt)
		v.Fli = fromStrings[models.Fli](fli)
		v.StudentStage = models.StudentStage(studentStage)
		v.HearAbout = fromStrings[models.HearAbout](hearAbout)
		out = append(out, v)
	}
	return out, rows.Err()
}

// LinkVolunteersToNonprofits records project assignments. Duplicate links are
// ignored.
func (q Queries) LinkVolunteersToNonprofits(ctx context.Context, cycleID uuid.UUID, links []models.VolunteerNonprofitLink) error {
	batch := &pgx.Batch{}
	for _, l := range links {
		batch.Queue(`
			INSERT INTO volunteer_nonprofit_links (project_cycle_id, volunteer_id, nonprofit_id)
			VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			cycleID, l.VolunteerID, l.NonprofitID)
	}
	return q.sendLinkBatch(ctx, batch, "volunteer-nonprofit")
}

// LinkMentorsToNonprofits records team mentor assignments.
func (q Queries) LinkMentorsToNonprofits(ctx context.Context, cycleID uuid.UUID, links []models.MentorNonprofitLink) error {
	batch := &pgx.Batch{}
	for _, l := range links {
		batch.Queue(`
			INSERT INTO mentor_nonprofit_links (project_cycle_id, mentor_id, nonprofit_id)
			VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			cycleID, l.MentorID, l.NonprofitID)
	}
	return q.sendLinkBatch(ctx, batch, "mentor-nonprofit")
}

// LinkVolunteersToMentors records 1:1 mentor-mentee pairings.
func (q Queries) LinkVolunteersToMentors(ctx context.Context, cycleID uuid.UUID, links []models.VolunteerMentorLink) error {
	batch := &pgx.Batch{}
	for _, l := range links {
		batch.Queue(`
			INSERT INTO volunteer_mentor_links (project_cycle_id, volunteer_id, mentor_id)
			VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			cycleID, l.VolunteerID, l.MentorID)
	}
	return q.sendLinkBatch(ctx, batch, "volunteer-mentor")
}

func (q Queries) sendLinkBatch(ctx context.Context, batch *pgx.Batch, relation string) error {
	if batch.Len() == 0 {
		return nil
	}
	res := q.db.SendBatch(ctx, batch)
	defer res.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := res.Exec(); err != nil {
			return fmt.Errorf("linking %s: %w", relation, mapErr(err))
		}
	}
	return res.Close()
}
