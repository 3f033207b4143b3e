package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/developforgood/pantheon/internal/models"
)

// Memory is an in-memory Gateway for development runs without a database and
// for tests. It mirrors the Postgres store's semantics: unique keys, the
// terminal-status guard, cascade on cycle deletion. Transactions are not
// isolated; InTx just runs the function.
type Memory struct {
	mu         sync.Mutex
	cycles     map[uuid.UUID]models.ProjectCycle
	volunteers map[uuid.UUID]models.Volunteer
	mentorIDs  map[uuid.UUID]uuid.UUID // mentor id -> cycle id
	orgIDs     map[uuid.UUID]uuid.UUID // nonprofit id -> cycle id
	mentors    map[string]uuid.UUID    // cycle+email -> id, key built with natKey
	orgs       map[string]uuid.UUID
	jobs       map[uuid.UUID]*models.Job
	jobOrder   []uuid.UUID
	ledger     map[uuid.UUID]models.ExportedVolunteer
	links      map[string]struct{}
}

var _ Gateway = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		cycles:     make(map[uuid.UUID]models.ProjectCycle),
		volunteers: make(map[uuid.UUID]models.Volunteer),
		mentorIDs:  make(map[uuid.UUID]uuid.UUID),
		orgIDs:     make(map[uuid.UUID]uuid.UUID),
		mentors:    make(map[string]uuid.UUID),
		orgs:       make(map[string]uuid.UUID),
		jobs:       make(map[uuid.UUID]*models.Job),
		ledger:     make(map[uuid.UUID]models.ExportedVolunteer),
		links:      make(map[string]struct{}),
	}
}

func natKey(cycleID uuid.UUID, k string) string {
	return cycleID.String() + "/" + k
}

func (m *Memory) InTx(_ context.Context, fn func(q Querier) error) error {
	return fn(m)
}

func (m *Memory) CreateCycle(_ context.Context, data models.CreateCycle) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.cycles[id] = models.ProjectCycle{
		ID:          id,
		CreatedAt:   time.Now(),
		Name:        data.Name,
		Description: data.Description,
	}
	return id, nil
}

func (m *Memory) FetchCycle(_ context.Context, id uuid.UUID) (*models.ProjectCycle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cycles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *Memory) FetchCycles(context.Context) ([]models.ProjectCycle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ProjectCycle, 0, len(m.cycles))
	for _, c := range m.cycles {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) DeleteCycle(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cycles[id]; !ok {
		return ErrNotFound
	}
	delete(m.cycles, id)
	for vid, v := range m.volunteers {
		if v.CycleID == id {
			delete(m.volunteers, vid)
			delete(m.ledger, vid)
		}
	}
	for mid, cid := range m.mentorIDs {
		if cid == id {
			delete(m.mentorIDs, mid)
		}
	}
	for oid, cid := range m.orgIDs {
		if cid == id {
			delete(m.orgIDs, oid)
		}
	}
	for _, j := range m.jobs {
		if j.CycleID != nil && *j.CycleID == id {
			j.CycleID = nil
		}
	}
	return nil
}

func (m *Memory) CycleStats(_ context.Context, id uuid.UUID) (*models.CycleStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cycles[id]; !ok {
		return nil, ErrNotFound
	}
	var stats models.CycleStats
	for _, v := range m.volunteers {
		if v.CycleID == id {
			stats.Volunteers++
		}
	}
	for _, cid := range m.mentorIDs {
		if cid == id {
			stats.Mentors++
		}
	}
	for _, cid := range m.orgIDs {
		if cid == id {
			stats.Nonprofits++
		}
	}
	return &stats, nil
}

func (m *Memory) BatchCreateNonprofits(_ context.Context, cycleID uuid.UUID, data []models.CreateNonprofit) (map[string]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uuid.UUID, len(data))
	for _, n := range data {
		key := natKey(cycleID, n.OrgName)
		if _, dup := m.orgs[key]; dup {
			return nil, fmt.Errorf("%w: nonprofit %q", ErrConflict, n.OrgName)
		}
		id := uuid.New()
		m.orgs[key] = id
		m.orgIDs[id] = cycleID
		out[n.OrgName] = id
	}
	return out, nil
}

func (m *Memory) BatchCreateVolunteers(_ context.Context, cycleID uuid.UUID, data []models.CreateVolunteer) (map[string]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uuid.UUID, len(data))
	for _, v := range data {
		if _, dup := out[v.Email]; dup {
			return nil, fmt.Errorf("%w: volunteer %q", ErrConflict, v.Email)
		}
		id := uuid.New()
		m.volunteers[id] = models.Volunteer{
			ID:           id,
			CycleID:      cycleID,
			FirstName:    v.FirstName,
			LastName:     v.LastName,
			Email:        v.Email,
			Phone:        v.Phone,
			Gender:       v.Gender,
			Ethnicity:    v.Ethnicity,
			AgeRange:     v.AgeRange,
			University:   v.University,
			Lgbt:         v.Lgbt,
			Country:      v.Country,
			USState:      v.USState,
			Fli:          v.Fli,
			StudentStage: v.StudentStage,
			Majors:       v.Majors,
			Minors:       v.Minors,
			HearAbout:    v.HearAbout,
		}
		out[v.Email] = id
	}
	return out, nil
}

func (m *Memory) BatchCreateMentors(_ context.Context, cycleID uuid.UUID, data []models.CreateMentor) (map[string]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uuid.UUID, len(data))
	for _, mt := range data {
		key := natKey(cycleID, mt.Email)
		if _, dup := m.mentors[key]; dup {
			return nil, fmt.Errorf("%w: mentor %q", ErrConflict, mt.Email)
		}
		id := uuid.New()
		m.mentors[key] = id
		m.mentorIDs[id] = cycleID
		out[mt.Email] = id
	}
	return out, nil
}

func (m *Memory) FetchVolunteersByCycle(_ context.Context, cycleID uuid.UUID) ([]models.Volunteer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Volunteer
	for _, v := range m.volunteers {
		if v.CycleID == cycleID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *Memory) LinkVolunteersToNonprofits(_ context.Context, _ uuid.UUID, links []models.VolunteerNonprofitLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range links {
		m.links["vn/"+l.VolunteerID.String()+"/"+l.NonprofitID.String()] = struct{}{}
	}
	return nil
}

func (m *Memory) LinkMentorsToNonprofits(_ context.Context, _ uuid.UUID, links []models.MentorNonprofitLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range links {
		m.links["mn/"+l.MentorID.String()+"/"+l.NonprofitID.String()] = struct{}{}
	}
	return nil
}

func (m *Memory) LinkVolunteersToMentors(_ context.Context, _ uuid.UUID, links []models.VolunteerMentorLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range links {
		m.links["vm/"+l.VolunteerID.String()+"/"+l.MentorID.String()] = struct{}{}
	}
	return nil
}

func (m *Memory) CreateJob(_ context.Context, cycleID *uuid.UUID, data models.CreateJob) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.jobs[id] = &models.Job{
		ID:          id,
		CreatedAt:   time.Now(),
		CycleID:     cycleID,
		Status:      models.JobPending,
		Label:       data.Label,
		Description: data.Description,
		Details:     data.Details,
	}
	m.jobOrder = append(m.jobOrder, id)
	return id, nil
}

func (m *Memory) FetchJob(_ context.Context, id uuid.UUID) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *Memory) FetchJobs(context.Context) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Job, 0, len(m.jobOrder))
	for i := len(m.jobOrder) - 1; i >= 0; i-- {
		out = append(out, *m.jobs[m.jobOrder[i]])
	}
	return out, nil
}

func (m *Memory) UpdateJobStatus(_ context.Context, id uuid.UUID, data models.UpdateJobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if j.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrJobTerminal, id, j.Status)
	}
	j.Status = data.Status
	if data.Error != "" {
		j.Details.Error = data.Error
	}
	now := time.Now()
	j.UpdatedAt = &now
	return nil
}

func (m *Memory) SetJobCycle(_ context.Context, id, cycleID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.CycleID = &cycleID
	return nil
}

func (m *Memory) EditJob(_ context.Context, id uuid.UUID, label, description *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if label != nil {
		j.Label = *label
	}
	if description != nil {
		j.Description = *description
	}
	return nil
}

func (m *Memory) FetchExportedVolunteers(_ context.Context, cycleID uuid.UUID) ([]models.ExportedVolunteer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ExportedVolunteer
	for vid, e := range m.ledger {
		if v, ok := m.volunteers[vid]; ok && v.CycleID == cycleID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) InsertExportedVolunteers(_ context.Context, rows []models.ExportedVolunteer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range rows {
		if _, dup := m.ledger[e.VolunteerID]; dup {
			return fmt.Errorf("%w: volunteer %s already exported", ErrConflict, e.VolunteerID)
		}
		m.ledger[e.VolunteerID] = e
	}
	return nil
}

func (m *Memory) RemoveExportedVolunteers(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.ledger, id)
	}
	return nil
}
