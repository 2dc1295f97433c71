package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/Dosada05/tournament-ops/models"
	"github.com/Dosada05/tournament-ops/services"
	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
	httpSwagger "github.com/swaggo/http-swagger"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type idPath struct {
	ID string `path:"id"`
}

type listMatchesQuery struct {
	SeasonID string             `query:"seasonId"`
	Status   models.MatchStatus `query:"status" enum:"upcoming,live,completed"`
}

type listTeamsQuery struct {
	SeasonID string `query:"seasonId"`
}

type listSeasonsQuery struct {
	Status models.SeasonStatus `query:"status" enum:"active,completed"`
}

type updateMatchRequest struct {
	idPath
	services.UpdateMatchInput
}

type addTeamsPathRequest struct {
	idPath
	addTeamsRequest
}

type registerTeamForm struct {
	Data     string                `formData:"data" required:"true" description:"Registration as JSON: seasonId, teamName, roster, contactEmail, contactPhone."`
	Document *multipart.FileHeader `formData:"document" description:"Verification document (pdf, jpeg, png or webp)."`
}

type recomputeResponse struct {
	SeasonID   string `json:"seasonId"`
	Recomputed bool   `json:"recomputed"`
}

type operation struct {
	method      string
	path        string
	summary     string
	description string
	request     interface{}
	responses   map[int]interface{}
}

func operations() []operation {
	errOnly := ErrorResponse{}
	return []operation{
		{http.MethodGet, "/healthz", "Health check", "Reports database connectivity.", nil,
			map[int]interface{}{200: HealthResponse{}, 503: HealthResponse{}}},
		{http.MethodPost, "/auth/login", "Admin login", "Exchanges admin credentials for a Bearer token.", services.LoginInput{},
			map[int]interface{}{200: loginResponse{}, 400: errOnly, 401: errOnly}},
		{http.MethodGet, "/dashboard", "Operator dashboard", "Team and match counts, optionally for one season. Requires admin Bearer token.", listTeamsQuery{},
			map[int]interface{}{200: models.DashboardStats{}, 404: errOnly, 401: errOnly}},

		{http.MethodGet, "/seasons", "List seasons", "", listSeasonsQuery{},
			map[int]interface{}{200: []models.Season{}, 400: errOnly}},
		{http.MethodGet, "/seasons/{id}", "Get season", "", idPath{},
			map[int]interface{}{200: models.Season{}, 404: errOnly}},
		{http.MethodPost, "/seasons", "Create season", "Requires admin Bearer token.", services.CreateSeasonInput{},
			map[int]interface{}{201: models.Season{}, 400: errOnly, 401: errOnly}},
		{http.MethodPost, "/seasons/{id}/complete", "Complete season", "Closes the season for new matches and registrations. Requires admin Bearer token.", idPath{},
			map[int]interface{}{200: models.Season{}, 404: errOnly, 401: errOnly}},
		{http.MethodPost, "/seasons/{id}/recompute", "Recompute standings", "Rebuilds cumulative team stats from the season's matches. Requires admin Bearer token.", idPath{},
			map[int]interface{}{200: recomputeResponse{}, 404: errOnly, 401: errOnly}},

		{http.MethodGet, "/matches", "List matches", "Status is derived: a scheduled match whose start time has passed is live.", listMatchesQuery{},
			map[int]interface{}{200: []services.MatchView{}, 400: errOnly}},
		{http.MethodGet, "/matches/{id}", "Get match", "The room password is shown to public readers shortly before the start.", idPath{},
			map[int]interface{}{200: services.MatchView{}, 404: errOnly}},
		{http.MethodPost, "/matches/add", "Create match", "Requires admin Bearer token.", services.CreateMatchInput{},
			map[int]interface{}{201: services.MatchView{}, 400: errOnly, 401: errOnly}},
		{http.MethodPut, "/matches/{id}", "Update match", "Partial update of schedule fields and results. Completed matches are rejected. Requires admin Bearer token.", updateMatchRequest{},
			map[int]interface{}{200: services.MatchView{}, 400: errOnly, 404: errOnly, 401: errOnly}},
		{http.MethodPost, "/matches/{id}/teams", "Add teams to match", "Adds zero-score result entries for teams not yet in the match. Requires admin Bearer token.", addTeamsPathRequest{},
			map[int]interface{}{200: services.MatchView{}, 400: errOnly, 404: errOnly, 401: errOnly}},
		{http.MethodPost, "/matches/{id}/finish", "Finish match", "Ranks the results and freezes the match. Requires admin Bearer token.", idPath{},
			map[int]interface{}{200: services.MatchView{}, 400: errOnly, 404: errOnly, 401: errOnly}},
		{http.MethodDelete, "/matches/{id}", "Delete match", "Requires admin Bearer token.", idPath{},
			map[int]interface{}{204: nil, 404: errOnly, 401: errOnly}},

		{http.MethodGet, "/teams", "List teams", "Sorted by total points. Admin tokens unlock private fields and unverified teams.", listTeamsQuery{},
			map[int]interface{}{200: []models.Team{}, 401: errOnly}},
		{http.MethodGet, "/teams/{id}", "Get team", "", idPath{},
			map[int]interface{}{200: models.Team{}, 404: errOnly, 401: errOnly}},
		{http.MethodPost, "/teams/register", "Register team", "Multipart form with a JSON 'data' field and an optional 'document' file.", registerTeamForm{},
			map[int]interface{}{201: models.Team{}, 400: errOnly, 502: errOnly}},
		{http.MethodPut, "/teams/{id}/verify", "Verify team", "Requires admin Bearer token.", idPath{},
			map[int]interface{}{200: models.Team{}, 404: errOnly, 401: errOnly}},
		{http.MethodPut, "/teams/update", "Override team stats", "Sets cumulative stats by team name. Requires admin Bearer token.", manualStatsRequest{},
			map[int]interface{}{200: services.ManualStatsResult{}, 400: errOnly, 401: errOnly}},
	}
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Tournament Ops API"
	r.Spec.Info.Version = "1.0.0"
	r.Spec.Info.WithDescription("Seasons, team registration, match scoring and standings for mobile esports events.")

	for _, op := range operations() {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			continue
		}
		oc.SetSummary(op.summary)
		if op.description != "" {
			oc.SetDescription(op.description)
		}
		if op.request != nil {
			oc.AddReqStructure(op.request)
		}
		for status, body := range op.responses {
			oc.AddRespStructure(body, openapi.WithHTTPStatus(status))
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

func OpenAPIHandler() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// SwaggerUIHandler serves Swagger UI pointed at specURL.
func SwaggerUIHandler(specURL string) http.HandlerFunc {
	return httpSwagger.Handler(httpSwagger.URL(specURL))
}
