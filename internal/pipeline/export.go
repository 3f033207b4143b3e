package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/developforgood/pantheon/internal/jobs"
	"github.com/developforgood/pantheon/internal/mail"
	"github.com/developforgood/pantheon/internal/models"
	"github.com/developforgood/pantheon/internal/policy"
	"github.com/developforgood/pantheon/internal/storage"
	"github.com/developforgood/pantheon/internal/workspace"
)

// ErrAlreadyExported rejects an export request naming volunteers that already
// hold workspace accounts on the ledger.
var ErrAlreadyExported = errors.New("volunteers already exported")

// DefaultOrgUnit is the directory org unit provisioned accounts land in.
const DefaultOrgUnit = "/Programs/PantheonUsers"

const (
	defaultTimeout        = 20 * time.Minute
	defaultUndoDelay      = 5 * time.Second
	defaultMailDelay      = time.Minute
	defaultPasswordLength = 12
)

// ExporterConfig tunes the export pipeline. Zero values take defaults.
type ExporterConfig struct {
	// Principal is the directory admin the service account impersonates.
	Principal string
	// OrgUnit is the directory org unit for new accounts.
	OrgUnit string
	// Domain overrides the workspace email domain, "@..." included.
	Domain string
	// PasswordLength is the temporary password length when the request
	// does not choose one.
	PasswordLength int
	// Timeout bounds one export run.
	Timeout time.Duration
	// UndoDelay spaces out directory deletions during rollback.
	UndoDelay time.Duration
	// MailDelay is how far in the future onboarding emails are scheduled.
	MailDelay time.Duration
}

func (c ExporterConfig) withDefaults() ExporterConfig {
	if c.OrgUnit == "" {
		c.OrgUnit = DefaultOrgUnit
	}
	if c.PasswordLength == 0 {
		c.PasswordLength = defaultPasswordLength
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.UndoDelay == 0 {
		c.UndoDelay = defaultUndoDelay
	}
	if c.MailDelay == 0 {
		c.MailDelay = defaultMailDelay
	}
	return c
}

// ExportParams is one export run: the volunteers the caller chose, in the
// order they were requested, and the handle and password policies shaping
// their accounts.
type ExportParams struct {
	JobID          uuid.UUID
	CycleID        uuid.UUID
	Volunteers     []models.VolunteerDetails
	EmailPolicy    policy.EmailPolicy
	PasswordPolicy policy.PasswordPolicy
}

// Exporter provisions requested volunteers into the directory, records them
// on the ledger and schedules their onboarding emails.
type Exporter struct {
	directory workspace.Gateway
	mailer    mail.Gateway
	store     storage.Gateway
	registry  *jobs.Registry
	cfg       ExporterConfig
}

// NewExporter wires an export pipeline.
func NewExporter(directory workspace.Gateway, mailer mail.Gateway, store storage.Gateway, registry *jobs.Registry, cfg ExporterConfig) *Exporter {
	return &Exporter{
		directory: directory,
		mailer:    mailer,
		store:     store,
		registry:  registry,
		cfg:       cfg.withDefaults(),
	}
}

// Preflight checks the requested volunteers against the cycle's ledger.
// Called by the API before a job row is created, so a conflicting request
// fails fast with nothing to clean up.
//
// With skipOnConflict the volunteers already exported are dropped and the
// remainder comes back in request order; without it any overlap is an
// ErrAlreadyExported.
func (e *Exporter) Preflight(ctx context.Context, cycleID uuid.UUID, requested []models.VolunteerDetails, skipOnConflict bool) ([]models.VolunteerDetails, error) {
	ledger, err := e.store.FetchExportedVolunteers(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	exported := make(map[uuid.UUID]bool, len(ledger))
	for _, row := range ledger {
		exported[row.VolunteerID] = true
	}

	if !skipOnConflict {
		for _, v := range requested {
			if exported[v.VolunteerID] {
				return nil, fmt.Errorf("%w: %s %s", ErrAlreadyExported, v.FirstName, v.LastName)
			}
		}
		return requested, nil
	}

	kept := make([]models.VolunteerDetails, 0, len(requested))
	for _, v := range requested {
		if exported[v.VolunteerID] {
			continue
		}
		kept = append(kept, v)
	}
	if dropped := len(requested) - len(kept); dropped > 0 {
		log.WithFields(log.Fields{"cycle_id": cycleID, "dropped": dropped}).
			Info("skipping volunteers already exported")
	}
	return kept, nil
}

// provisioned is one account created during a run, with everything needed to
// mail or roll it back.
type provisioned struct {
	volunteer models.VolunteerDetails
	email     string
	password  string
}

type workerResult struct {
	created []provisioned
	err     error
}

// Run executes one export to completion and finishes the job. The run races
// three outcomes: the worker finishing, the job being cancelled, and the
// deadline expiring. Cancellation and timeout let the in-flight directory
// call complete, then roll back every account created so far.
func (e *Exporter) Run(ctx context.Context, params ExportParams, cancelled <-chan struct{}) {
	jobID, cycleID := params.JobID, params.CycleID
	logger := log.WithFields(log.Fields{"job_id": jobID, "cycle_id": cycleID})
	logger.Info("starting workspace export")

	if len(params.Volunteers) == 0 {
		logger.Info("no volunteers requested, nothing to provision")
		e.finish(ctx, jobID, models.JobComplete, nil)
		return
	}

	if params.EmailPolicy.Domain == "" {
		params.EmailPolicy.Domain = e.cfg.Domain
	}
	if params.PasswordPolicy.Length == 0 {
		params.PasswordPolicy.Length = e.cfg.PasswordLength
	}

	stop := make(chan struct{})
	done := make(chan workerResult, 1)
	go func() {
		done <- e.provisionAll(ctx, stop, params)
	}()

	timer := time.NewTimer(e.cfg.Timeout)
	defer timer.Stop()

	select {
	case <-cancelled:
		// The registry marked the job cancelled before signalling; only
		// the rollback is left.
		logger.Info("export cancelled, rolling back")
		close(stop)
		res := <-done
		e.undo(ctx, jobID, &cycleID, res.created)

	case <-timer.C:
		logger.Warn("export deadline expired, rolling back")
		close(stop)
		res := <-done
		e.undo(ctx, jobID, &cycleID, res.created)
		e.finish(ctx, jobID, models.JobError,
			fmt.Errorf("export timed out after %s", e.cfg.Timeout))

	case res := <-done:
		if res.err != nil {
			logger.WithError(res.err).Error("export failed, rolling back")
			e.undo(ctx, jobID, &cycleID, res.created)
			e.finish(ctx, jobID, models.JobError, res.err)
			return
		}
		e.complete(ctx, jobID, cycleID, res.created)
	}
}

// provisionAll creates one directory account per requested volunteer,
// stopping between users when stop closes. The first failure stops the loop;
// the partial result always comes back so the caller can roll it back.
func (e *Exporter) provisionAll(ctx context.Context, stop <-chan struct{}, params ExportParams) workerResult {
	var created []provisioned
	for _, v := range params.Volunteers {
		select {
		case <-stop:
			return workerResult{created: created, err: errors.New("stopped")}
		default:
		}

		p, err := e.provisionOne(ctx, v, params.EmailPolicy, params.PasswordPolicy)
		if err != nil {
			return workerResult{
				created: created,
				err:     fmt.Errorf("provisioning %s %s: %w", v.FirstName, v.LastName, err),
			}
		}
		created = append(created, p)
	}
	return workerResult{created: created}
}

func (e *Exporter) provisionOne(ctx context.Context, v models.VolunteerDetails, emailPolicy policy.EmailPolicy, passwordPolicy policy.PasswordPolicy) (provisioned, error) {
	email := policy.BuildEmail(v.FirstName, v.LastName, emailPolicy)
	password := policy.GeneratePassword(passwordPolicy.Length)

	err := e.directory.CreateUser(ctx, e.cfg.Principal, workspace.CreateUser{
		PrimaryEmail:              email,
		Name:                      workspace.Name{GivenName: v.FirstName, FamilyName: v.LastName},
		Password:                  password,
		ChangePasswordAtNextLogin: passwordPolicy.ChangePasswordAtNextLogin,
		RecoveryEmail:             v.Email,
		OrgUnitPath:               e.cfg.OrgUnit,
	})
	if err != nil {
		return provisioned{}, err
	}
	log.WithFields(log.Fields{"volunteer_id": v.VolunteerID, "workspace_email": email}).
		Info("provisioned workspace account")
	return provisioned{volunteer: v, email: email, password: password}, nil
}

// complete persists the ledger, then schedules onboarding emails. A mail
// failure leaves the accounts in place: the job errors, but the work is done
// and recorded.
func (e *Exporter) complete(ctx context.Context, jobID, cycleID uuid.UUID, created []provisioned) {
	ledger := make([]models.ExportedVolunteer, len(created))
	for i, p := range created {
		ledger[i] = models.ExportedVolunteer{
			VolunteerID:    p.volunteer.VolunteerID,
			JobID:          jobID,
			WorkspaceEmail: p.email,
			OrgUnit:        e.cfg.OrgUnit,
		}
	}
	if err := e.store.InsertExportedVolunteers(ctx, ledger); err != nil {
		log.WithError(err).Error("recording export ledger failed, rolling back")
		e.undo(ctx, jobID, &cycleID, created)
		e.finish(ctx, jobID, models.JobError, fmt.Errorf("recording ledger: %w", err))
		return
	}

	sendAt := time.Now().Add(e.cfg.MailDelay)
	var mailErrs error
	for _, p := range created {
		err := e.mailer.SendOnboardingEmail(ctx, mail.OnboardingEmailParams{
			FirstName:         p.volunteer.FirstName,
			LastName:          p.volunteer.LastName,
			Email:             p.volunteer.Email,
			WorkspaceEmail:    p.email,
			TemporaryPassword: p.password,
			SendAt:            sendAt,
		})
		if err != nil {
			mailErrs = multierror.Append(mailErrs,
				fmt.Errorf("mailing %s: %w", p.volunteer.Email, err))
		}
	}
	if mailErrs != nil {
		e.finish(ctx, jobID, models.JobError, mailErrs)
		return
	}

	log.WithFields(log.Fields{"job_id": jobID, "accounts": len(created)}).
		Info("workspace export complete")
	e.finish(ctx, jobID, models.JobComplete, nil)
}

// undo deletes the accounts a run created, under its own job so the rollback
// is visible in the job list. An account already gone counts as deleted.
func (e *Exporter) undo(ctx context.Context, parentJobID uuid.UUID, cycleID *uuid.UUID, created []provisioned) {
	if len(created) == 0 {
		return
	}

	users := make([]models.ExportedUser, len(created))
	for i, p := range created {
		users[i] = models.ExportedUser{VolunteerID: p.volunteer.VolunteerID, WorkspaceEmail: p.email}
	}
	undoJobID, _, err := e.registry.Create(ctx, cycleID, models.CreateJob{
		Label:       "Undo Partial Export @ " + time.Now().Format("15:04:05"),
		Description: fmt.Sprintf("Rolling back %d accounts from job %s", len(created), parentJobID),
		Details: models.JobDetails{
			JobType:    models.JobTypeUndoExport,
			Volunteers: users,
		},
	})
	if err != nil {
		log.WithError(err).Error("creating undo job")
		return
	}
	logger := log.WithFields(log.Fields{"job_id": undoJobID, "accounts": len(created)})
	logger.Info("starting export rollback")

	var errs error
	var removed []uuid.UUID
	for i, p := range created {
		if i > 0 {
			// The directory API lags its own writes; spacing out the
			// deletes avoids spurious 404s.
			if err := sleepCtx(ctx, e.cfg.UndoDelay); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("rollback interrupted: %w", err))
				break
			}
		}
		err := e.directory.DeleteUser(ctx, e.cfg.Principal, p.email)
		if err != nil && !errors.Is(err, workspace.ErrNotFound) {
			errs = multierror.Append(errs, fmt.Errorf("deleting %s: %w", p.email, err))
			continue
		}
		removed = append(removed, p.volunteer.VolunteerID)
	}

	if err := e.store.RemoveExportedVolunteers(ctx, removed); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("clearing ledger: %w", err))
	}

	if errs != nil {
		logger.WithError(errs).Error("export rollback incomplete")
		e.finish(ctx, undoJobID, models.JobError, errs)
		return
	}
	logger.Info("export rollback complete")
	e.finish(ctx, undoJobID, models.JobComplete, nil)
}

func (e *Exporter) finish(ctx context.Context, jobID uuid.UUID, status models.JobStatus, cause error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if err := e.registry.Finish(ctx, jobID, status, msg); err != nil {
		log.WithError(err).WithField("job_id", jobID).Error("recording job status")
	}
}

// sleepCtx waits out d, or less if ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
