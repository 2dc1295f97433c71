package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tournament-ops/models"
	"github.com/Dosada05/tournament-ops/services"
)

type SeasonHandler struct {
	seasonService    services.SeasonService
	standingsService services.StandingsService
}

func NewSeasonHandler(seasonService services.SeasonService, standingsService services.StandingsService) *SeasonHandler {
	return &SeasonHandler{
		seasonService:    seasonService,
		standingsService: standingsService,
	}
}

func (h *SeasonHandler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	var status *models.SeasonStatus
	if raw := optionalQuery(r, "status"); raw != nil {
		s := models.SeasonStatus(*raw)
		if s != models.SeasonStatusActive && s != models.SeasonStatusCompleted {
			badRequestResponse(w, r, errors.New("status must be 'active' or 'completed'"))
			return
		}
		status = &s
	}

	seasons, err := h.seasonService.ListSeasons(r.Context(), status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if seasons == nil {
		seasons = []models.Season{}
	}

	if err := writeJSON(w, http.StatusOK, seasons, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeasonHandler) GetSeason(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	season, err := h.seasonService.GetSeason(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, season, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeasonHandler) CreateSeason(w http.ResponseWriter, r *http.Request) {
	var input services.CreateSeasonInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	season, err := h.seasonService.CreateSeason(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, season, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeasonHandler) CompleteSeason(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	season, err := h.seasonService.CompleteSeason(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, season, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecomputeStandings rebuilds the season standings on demand and, unlike the
// automatic trigger, reports failures to the caller.
func (h *SeasonHandler) RecomputeStandings(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.standingsService.Recompute(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"seasonId": id, "recomputed": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
