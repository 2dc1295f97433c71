package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/Dosada05/tournament-ops/middleware"
	"github.com/Dosada05/tournament-ops/models"
	"github.com/Dosada05/tournament-ops/services"
)

const maxRegistrationSize = 10 << 20 // 10MB

type TeamHandler struct {
	teamService      services.TeamService
	standingsService services.StandingsService
}

func NewTeamHandler(teamService services.TeamService, standingsService services.StandingsService) *TeamHandler {
	return &TeamHandler{
		teamService:      teamService,
		standingsService: standingsService,
	}
}

// manualStatsRequest accepts {"teams": [...]} as well as a bare array.
type manualStatsRequest struct {
	Teams []services.ManualStatsEntry `json:"teams"`
}

func (m *manualStatsRequest) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return decodeStrict(trimmed, &m.Teams)
	}
	type plain manualStatsRequest
	return decodeStrict(trimmed, (*plain)(m))
}

// decodeStrict keeps readJSON's unknown-field check inside custom unmarshallers.
func decodeStrict(data []byte, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// ListTeams отдаёт таблицу команд; администратор видит приватные поля и неподтверждённые команды.
func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.ListTeams(r.Context(), optionalQuery(r, "seasonId"), middleware.IsAdmin(r.Context()))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if teams == nil {
		teams = []*models.Team{}
	}

	if err := writeJSON(w, http.StatusOK, teams, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.GetTeam(r.Context(), id, middleware.IsAdmin(r.Context()))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, team, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RegisterTeam accepts either a JSON body or a multipart form with a "data"
// JSON field and an optional "document" file.
func (h *TeamHandler) RegisterTeam(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var input services.RegisterTeamInput
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
		h.register(w, r, input, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRegistrationSize)
	if err := r.ParseMultipartForm(maxRegistrationSize); err != nil {
		badRequestResponse(w, r, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	data := r.FormValue("data")
	if strings.TrimSpace(data) == "" {
		badRequestResponse(w, r, errors.New("form field 'data' is required"))
		return
	}
	var input services.RegisterTeamInput
	if err := json.Unmarshal([]byte(data), &input); err != nil {
		badRequestResponse(w, r, fmt.Errorf("form field 'data' contains invalid JSON: %w", err))
		return
	}

	file, header, err := r.FormFile("document")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		h.register(w, r, input, nil)
		return
	case err != nil:
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("document content type required"))
		return
	}

	h.register(w, r, input, &services.DocumentUpload{ContentType: contentType, Reader: file})
}

func (h *TeamHandler) register(w http.ResponseWriter, r *http.Request, input services.RegisterTeamInput, document *services.DocumentUpload) {
	team, err := h.teamService.RegisterTeam(r.Context(), input, document)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, team, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) VerifyTeam(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.VerifyTeam(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, team, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStats is the bulk manual override by team name. Values are stored as
// adjustments and the season standings are recomputed.
func (h *TeamHandler) UpdateStats(w http.ResponseWriter, r *http.Request) {
	var input manualStatsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.standingsService.ApplyManualStats(r.Context(), input.Teams)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
