// Package pipeline runs the long-lived import and export jobs end to end.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/developforgood/pantheon/internal/airtable"
	"github.com/developforgood/pantheon/internal/jobs"
	"github.com/developforgood/pantheon/internal/models"
	"github.com/developforgood/pantheon/internal/storage"
)

// Importer pulls one base out of the tabular source and materializes it as a
// project cycle. Imports are not cancellable: they finish or they fail, and a
// failure rolls the whole transaction back.
type Importer struct {
	source   airtable.Gateway
	store    storage.Gateway
	registry *jobs.Registry
}

// NewImporter wires an import pipeline.
func NewImporter(source airtable.Gateway, store storage.Gateway, registry *jobs.Registry) *Importer {
	return &Importer{source: source, store: store, registry: registry}
}

// Run executes one import to completion and finishes the job. It is meant to
// be launched on its own goroutine by the API layer.
func (im *Importer) Run(ctx context.Context, jobID uuid.UUID, baseID, cycleName, cycleDescription string) {
	logger := log.WithFields(log.Fields{"job_id": jobID, "base_id": baseID})
	logger.Info("starting base import")

	cycleID, err := im.importBase(ctx, jobID, baseID, cycleName, cycleDescription)
	if err != nil {
		logger.WithError(err).Error("base import failed")
		if ferr := im.registry.Finish(ctx, jobID, models.JobError, err.Error()); ferr != nil {
			logger.WithError(ferr).Error("recording import failure")
		}
		return
	}

	logger.WithField("cycle_id", cycleID).Info("base import complete")
	if err := im.registry.Finish(ctx, jobID, models.JobComplete, ""); err != nil {
		logger.WithError(err).Error("recording import completion")
	}
}

func (im *Importer) importBase(ctx context.Context, jobID uuid.UUID, baseID, cycleName, cycleDescription string) (uuid.UUID, error) {
	ok, err := im.source.ValidateSchema(ctx, baseID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("validating base schema: %w", err)
	}
	if !ok {
		return uuid.Nil, fmt.Errorf("base %s does not match the expected schema", baseID)
	}

	volunteerRecords, err := im.source.ListVolunteers(ctx, baseID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("fetching volunteers: %w", err)
	}
	mentorRecords, err := im.source.ListMentors(ctx, baseID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("fetching mentors: %w", err)
	}
	nonprofitRecords, err := im.source.ListNonprofits(ctx, baseID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("fetching nonprofits: %w", err)
	}
	pairings, err := im.source.ListMentorMenteePairings(ctx, baseID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("fetching mentor-mentee pairings: %w", err)
	}

	volunteers := normalizeVolunteers(volunteerRecords)
	mentors := normalizeMentors(mentorRecords)
	nonprofits := normalizeNonprofits(nonprofitRecords)

	log.WithFields(log.Fields{
		"volunteers": len(volunteers),
		"mentors":    len(mentors),
		"nonprofits": len(nonprofits),
		"pairings":   len(pairings),
	}).Info("normalized source records")

	var cycleID uuid.UUID
	err = im.store.InTx(ctx, func(q storage.Querier) error {
		var err error
		cycleID, err = q.CreateCycle(ctx, models.CreateCycle{
			Name:        cycleName,
			Description: cycleDescription,
		})
		if err != nil {
			return err
		}

		orgIDs, err := q.BatchCreateNonprofits(ctx, cycleID, nonprofits)
		if err != nil {
			return err
		}
		volunteerIDs, err := q.BatchCreateVolunteers(ctx, cycleID, volunteerCreates(volunteers))
		if err != nil {
			return err
		}
		mentorIDs, err := q.BatchCreateMentors(ctx, cycleID, mentorCreates(mentors))
		if err != nil {
			return err
		}

		if err := q.LinkVolunteersToNonprofits(ctx, cycleID, volunteerOrgLinks(volunteers, volunteerIDs, orgIDs)); err != nil {
			return err
		}
		if err := q.LinkMentorsToNonprofits(ctx, cycleID, mentorOrgLinks(mentors, mentorIDs, orgIDs)); err != nil {
			return err
		}
		return q.LinkVolunteersToMentors(ctx, cycleID, pairingLinks(pairings, volunteerIDs, mentorIDs))
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("persisting cycle: %w", err)
	}

	if err := im.registry.SetCycle(ctx, jobID, cycleID); err != nil {
		return uuid.Nil, fmt.Errorf("binding job to cycle: %w", err)
	}
	return cycleID, nil
}

// volunteerOrgLinks resolves each volunteer's org name lookups against the
// inserted nonprofits. References to orgs outside the finalized view are
// logged and skipped.
func volunteerOrgLinks(volunteers []sourceVolunteer, volunteerIDs, orgIDs map[string]uuid.UUID) []models.VolunteerNonprofitLink {
	var links []models.VolunteerNonprofitLink
	for _, v := range volunteers {
		vid, ok := volunteerIDs[v.create.Email]
		if !ok {
			continue
		}
		for _, org := range v.orgNames {
			oid, ok := orgIDs[org]
			if !ok {
				log.WithFields(log.Fields{"volunteer": v.create.Email, "org": org}).
					Warn("volunteer references unknown nonprofit, skipping link")
				continue
			}
			links = append(links, models.VolunteerNonprofitLink{VolunteerID: vid, NonprofitID: oid})
		}
	}
	return links
}

// mentorOrgLinks links only team mentors to their nonprofits. 1:1 mentors
// belong to mentees, not projects.
func mentorOrgLinks(mentors []sourceMentor, mentorIDs, orgIDs map[string]uuid.UUID) []models.MentorNonprofitLink {
	var links []models.MentorNonprofitLink
	for _, m := range mentors {
		if !m.teamMentor {
			continue
		}
		mid, ok := mentorIDs[m.create.Email]
		if !ok {
			continue
		}
		for _, org := range m.orgNames {
			oid, ok := orgIDs[org]
			if !ok {
				log.WithFields(log.Fields{"mentor": m.create.Email, "org": org}).
					Warn("mentor references unknown nonprofit, skipping link")
				continue
			}
			links = append(links, models.MentorNonprofitLink{MentorID: mid, NonprofitID: oid})
		}
	}
	return links
}

func pairingLinks(pairings []airtable.Pairing, volunteerIDs, mentorIDs map[string]uuid.UUID) []models.VolunteerMentorLink {
	var links []models.VolunteerMentorLink
	for _, p := range pairings {
		mid, ok := mentorIDs[p.MentorEmail]
		if !ok {
			log.WithField("mentor", p.MentorEmail).
				Warn("pairing references unknown mentor, skipping")
			continue
		}
		for _, mentee := range p.MenteeEmails {
			vid, ok := volunteerIDs[mentee]
			if !ok {
				log.WithFields(log.Fields{"mentor": p.MentorEmail, "mentee": mentee}).
					Warn("pairing references unknown mentee, skipping")
				continue
			}
			links = append(links, models.VolunteerMentorLink{VolunteerID: vid, MentorID: mid})
		}
	}
	return links
}

func volunteerCreates(volunteers []sourceVolunteer) []models.CreateVolunteer {
	out := make([]models.CreateVolunteer, len(volunteers))
	for i, v := range volunteers {
		out[i] = v.create
	}
	return out
}

func mentorCreates(mentors []sourceMentor) []models.CreateMentor {
	out := make([]models.CreateMentor, len(mentors))
	for i, m := range mentors {
		out[i] = m.create
	}
	return out
}
