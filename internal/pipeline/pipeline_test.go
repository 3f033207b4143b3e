package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/developforgood/pantheon/internal/airtable"
	"github.com/developforgood/pantheon/internal/mail"
	"github.com/developforgood/pantheon/internal/models"
	"github.com/developforgood/pantheon/internal/storage"
	"github.com/developforgood/pantheon/internal/workspace"
)

// memStore is an in-memory storage.Gateway for pipeline tests.
type memStore struct {
	mu         sync.Mutex
	cycles     map[uuid.UUID]models.ProjectCycle
	volunteers map[uuid.UUID]models.Volunteer
	mentors    map[string]uuid.UUID
	nonprofits map[string]uuid.UUID
	jobs       map[uuid.UUID]*models.Job
	ledger     map[uuid.UUID]models.ExportedVolunteer

	volunteerOrgLinks int
	mentorOrgLinks    int
	pairLinks         int

	failLedgerInsert bool
}

func newMemStore() *memStore {
	return &memStore{
		cycles:     make(map[uuid.UUID]models.ProjectCycle),
		volunteers: make(map[uuid.UUID]models.Volunteer),
		mentors:    make(map[string]uuid.UUID),
		nonprofits: make(map[string]uuid.UUID),
		jobs:       make(map[uuid.UUID]*models.Job),
		ledger:     make(map[uuid.UUID]models.ExportedVolunteer),
	}
}

func (m *memStore) InTx(_ context.Context, fn func(q storage.Querier) error) error {
	return fn(m)
}

func (m *memStore) CreateCycle(_ context.Context, data models.CreateCycle) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.cycles[id] = models.ProjectCycle{ID: id, Name: data.Name, Description: data.Description}
	return id, nil
}

func (m *memStore) FetchCycle(_ context.Context, id uuid.UUID) (*models.ProjectCycle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cycles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) FetchCycles(context.Context) ([]models.ProjectCycle, error) { return nil, nil }
func (m *memStore) DeleteCycle(context.Context, uuid.UUID) error { return nil }
func (m *memStore) CycleStats(context.Context, uuid.UUID) (*models.CycleStats, error) {
	return nil, nil
}

func (m *memStore) BatchCreateNonprofits(_ context.Context, _ uuid.UUID, data []models.CreateNonprofit) (map[string]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uuid.UUID, len(data))
	for _, n := range data {
		id := uuid.New()
		m.nonprofits[n.OrgName] = id
		out[n.OrgName] = id
	}
	return out, nil
}

func (m *memStore) BatchCreateVolunteers(_ context.Context, cycleID uuid.UUID, data []models.CreateVolunteer) (map[string]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uuid.UUID, len(data))
	for _, v := range data {
		if _, dup := out[v.Email]; dup {
			return nil, fmt.Errorf("%w: volunteer %s", storage.ErrConflict, v.Email)
		}
		id := uuid.New()
		m.volunteers[id] = models.Volunteer{
			ID: id, CycleID: cycleID,
			FirstName: v.FirstName, LastName: v.LastName, Email: v.Email,
		}
		out[v.Email] = id
	}
	return out, nil
}

func (m *memStore) BatchCreateMentors(_ context.Context, _ uuid.UUID, data []models.CreateMentor) (map[string]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uuid.UUID, len(data))
	for _, mt := range data {
		id := uuid.New()
		m.mentors[mt.Email] = id
		out[mt.Email] = id
	}
	return out, nil
}

func (m *memStore) FetchVolunteersByCycle(_ context.Context, cycleID uuid.UUID) ([]models.Volunteer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Volunteer
	for _, v := range m.volunteers {
		if v.CycleID == cycleID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memStore) LinkVolunteersToNonprofits(_ context.Context, _ uuid.UUID, links []models.VolunteerNonprofitLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volunteerOrgLinks += len(links)
	return nil
}

func (m *memStore) LinkMentorsToNonprofits(_ context.Context, _ uuid.UUID, links []models.MentorNonprofitLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mentorOrgLinks += len(links)
	return nil
}

func (m *memStore) LinkVolunteersToMentors(_ context.Context, _ uuid.UUID, links []models.VolunteerMentorLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairLinks += len(links)
	return nil
}

func (m *memStore) CreateJob(_ context.Context, cycleID *uuid.UUID, data models.CreateJob) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.jobs[id] = &models.Job{
		ID: id, CycleID: cycleID, Status: models.JobPending,
		Label: data.Label, Description: data.Description, Details: data.Details,
	}
	return id, nil
}

func (m *memStore) FetchJob(_ context.Context, id uuid.UUID) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memStore) FetchJobs(context.Context) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Job
	for _, j := range m.jobs {
		out = append(out, *j)
	}
	return out, nil
}

func (m *memStore) UpdateJobStatus(_ context.Context, id uuid.UUID, data models.UpdateJobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return storage.ErrNotFound
	}
	if j.Status.Terminal() {
		return fmt.Errorf("%w: %s", storage.ErrJobTerminal, j.Status)
	}
	j.Status = data.Status
	if data.Error != "" {
		j.Details.Error = data.Error
	}
	return nil
}

func (m *memStore) SetJobCycle(_ context.Context, id, cycleID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return storage.ErrNotFound
	}
	j.CycleID = &cycleID
	return nil
}

func (m *memStore) EditJob(context.Context, uuid.UUID, *string, *string) error { return nil }

func (m *memStore) FetchExportedVolunteers(_ context.Context, cycleID uuid.UUID) ([]models.ExportedVolunteer, error) {
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

func (m *memStore) InsertExportedVolunteers(_ context.Context, rows []models.ExportedVolunteer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLedgerInsert {
		return fmt.Errorf("ledger unavailable")
	}
	for _, e := range rows {
		if _, dup := m.ledger[e.VolunteerID]; dup {
			return fmt.Errorf("%w: volunteer %s", storage.ErrConflict, e.VolunteerID)
		}
		m.ledger[e.VolunteerID] = e
	}
	return nil
}

func (m *memStore) RemoveExportedVolunteers(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.ledger, id)
	}
	return nil
}

// fakeSource is a canned airtable.Gateway.
type fakeSource struct {
	schemaValid bool
	volunteers  []airtable.Record
	mentors     []airtable.Record
	nonprofits  []airtable.Record
	pairings    []airtable.Pairing
	err         error
}

func (f *fakeSource) ListVolunteers(context.Context, string) ([]airtable.Record, error) {
	return f.volunteers, f.err
}
func (f *fakeSource) ListMentors(context.Context, string) ([]airtable.Record, error) {
	return f.mentors, f.err
}
func (f *fakeSource) ListNonprofits(context.Context, string) ([]airtable.Record, error) {
	return f.nonprofits, f.err
}
func (f *fakeSource) ListMentorMenteePairings(context.Context, string) ([]airtable.Pairing, error) {
	return f.pairings, f.err
}
func (f *fakeSource) ValidateSchema(context.Context, string) (bool, error) {
	return f.schemaValid, nil
}

// fakeDirectory is a scriptable workspace.Gateway.
type fakeDirectory struct {
	mu       sync.Mutex
	attempts int
	created  []workspace.CreateUser
	deleted  []string

	// conflicts maps a primary email to how many times creating it should
	// return ErrConflict before succeeding.
	conflicts map[string]int
	createErr error
	// delay slows each create down, for timeout and cancellation tests.
	delay time.Duration
	// gate, when set, blocks create attempts from gateAfter (0-based)
	// onward until it closes.
	gate      chan struct{}
	gateAfter int
}

func (f *fakeDirectory) CreateUser(_ context.Context, _ string, u workspace.CreateUser) error {
	f.mu.Lock()
	attempt := f.attempts
	f.attempts++
	f.mu.Unlock()

	if f.gate != nil && attempt >= f.gateAfter {
		<-f.gate
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.createErr != nil {
		return f.createErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if left, ok := f.conflicts[u.PrimaryEmail]; ok && left > 0 {
		f.conflicts[u.PrimaryEmail] = left - 1
		return workspace.ErrConflict
	}
	f.created = append(f.created, u)
	return nil
}

func (f *fakeDirectory) DeleteUser(_ context.Context, _ string, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, email)
	return nil
}

func (f *fakeDirectory) createdEmails() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.created))
	for i, u := range f.created {
		out[i] = u.PrimaryEmail
	}
	return out
}

func (f *fakeDirectory) deletedEmails() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// fakeMailer records onboarding sends.
type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.OnboardingEmailParams
	err  error
}

func (f *fakeMailer) SendOnboardingEmail(_ context.Context, p mail.OnboardingEmailParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, p)
	return nil
}

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
