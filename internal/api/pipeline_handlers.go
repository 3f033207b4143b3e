package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/developforgood/pantheon/internal/models"
	"github.com/developforgood/pantheon/internal/pipeline"
	"github.com/developforgood/pantheon/internal/policy"
	"github.com/developforgood/pantheon/internal/storage"
)

// ListBases returns the bases reachable with the configured token.
func (s *Server) ListBases(w http.ResponseWriter, r *http.Request) {
	bases, err := s.Bases.ListBases(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "listing bases: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, bases)
}

type importRequest struct {
	CycleName        string `json:"cycleName"`
	CycleDescription string `json:"cycleDescription"`
}

// RunImport validates the base schema, records an import job and starts the
// pipeline. A base that does not match the expected schema is rejected before
// any job exists.
func (s *Server) RunImport(w http.ResponseWriter, r *http.Request) {
	baseID := chi.URLParam(r, "baseID")

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.CycleName == "" {
		writeError(w, http.StatusBadRequest, "cycleName is required")
		return
	}

	ok, err := s.Source.ValidateSchema(r.Context(), baseID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "validating base: "+err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "base does not match the expected schema")
		return
	}

	jobID, _, err := s.Registry.Create(r.Context(), nil, models.CreateJob{
		Label:       "Import Airtable Base",
		Description: "Importing base " + baseID + " as cycle " + req.CycleName,
		Details: models.JobDetails{
			JobType: models.JobTypeImportBase,
			BaseID:  baseID,
		},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "creating job: "+err.Error())
		return
	}

	// The run outlives the request.
	go s.Importer.Run(context.Background(), jobID, baseID, req.CycleName, req.CycleDescription)

	writeJSON(w, http.StatusAccepted, map[string]string{"jobId": jobID.String()})
}

type exportRequest struct {
	AddUniqueNumericSuffix    bool                      `json:"addUniqueNumericSuffix"`
	ChangePasswordAtNextLogin bool                      `json:"changePasswordAtNextLogin"`
	GeneratedPasswordLength   int                       `json:"generatedPasswordLength"`
	Separator                 string                    `json:"separator"`
	SkipUsersOnConflict       bool                      `json:"skipUsersOnConflict"`
	UseFirstAndLastName       bool                      `json:"useFirstAndLastName"`
	Volunteers                []models.VolunteerDetails `json:"volunteers"`
}

// RunExport starts provisioning the requested volunteers. A request naming a
// volunteer who already holds an account is rejected before a job row is
// created, unless it opts into skipping them.
func (s *Server) RunExport(w http.ResponseWriter, r *http.Request) {
	cycleID, err := uuid.Parse(chi.URLParam(r, "cycleID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cycle id")
		return
	}

	if _, err := s.Store.FetchCycle(r.Context(), cycleID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "cycle not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	volunteers, err := s.Exporter.Preflight(r.Context(), cycleID, req.Volunteers, req.SkipUsersOnConflict)
	if err != nil {
		if errors.Is(err, pipeline.ErrAlreadyExported) {
			writeError(w, http.StatusBadRequest, "one or more volunteers have already been exported")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	jobID, cancelled, err := s.Registry.Create(r.Context(), &cycleID, models.CreateJob{
		Label:       "Export Users @ " + time.Now().Format("15:04:05"),
		Description: "Provisioning workspace accounts for cycle " + cycleID.String(),
		Details: models.JobDetails{
			JobType:           models.JobTypeExportUsers,
			ExportDestination: models.DestinationGoogleWorkspace,
		},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "creating job: "+err.Error())
		return
	}

	params := pipeline.ExportParams{
		JobID:      jobID,
		CycleID:    cycleID,
		Volunteers: volunteers,
		EmailPolicy: policy.EmailPolicy{
			UseFirstAndLastName:    req.UseFirstAndLastName,
			AddUniqueNumericSuffix: req.AddUniqueNumericSuffix,
			Separator:              req.Separator,
		},
		PasswordPolicy: policy.PasswordPolicy{
			ChangePasswordAtNextLogin: req.ChangePasswordAtNextLogin,
			Length:                    req.GeneratedPasswordLength,
		},
	}
	go s.Exporter.Run(context.Background(), params, cancelled)

	writeJSON(w, http.StatusAccepted, map[string]string{"jobId": jobID.String()})
}
