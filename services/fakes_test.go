package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/tournament-ops/models"
	"github.com/Dosada05/tournament-ops/repositories"
	"github.com/Dosada05/tournament-ops/standings"
	"github.com/Dosada05/tournament-ops/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memDB is an in-memory stand-in for the postgres schema. Repositories hand
// out copies so services only change state through explicit writes.
type memDB struct {
	mu      sync.Mutex
	seasons map[string]models.Season
	teams   map[string]models.Team
	matches map[string]models.Match
	admins  map[string]models.Admin

	bulkErr   error
	createErr error
	bulkCalls int
}

func newMemDB() *memDB {
	return &memDB{
		seasons: make(map[string]models.Season),
		teams:   make(map[string]models.Team),
		matches: make(map[string]models.Match),
		admins:  make(map[string]models.Admin),
	}
}

func (db *memDB) addSeason(status models.SeasonStatus) string {
	id := newID()
	db.seasons[id] = models.Season{ID: id, Name: "Season " + id[:4], Status: status}
	return id
}

func (db *memDB) addTeam(seasonID, name string, verified bool) string {
	id := newID()
	db.teams[id] = models.Team{
		ID:           id,
		SeasonID:     seasonID,
		TeamName:     name,
		Roster:       validRoster(),
		AlivePlayers: models.SquadSize,
		IsVerified:   verified,
	}
	return id
}

func (db *memDB) addMatch(seasonID string, number int, at time.Time, results ...models.MatchResult) string {
	id := newID()
	db.matches[id] = models.Match{
		ID:          id,
		SeasonID:    seasonID,
		MatchNumber: number,
		MapName:     "Erangel",
		DateTime:    at,
		Status:      models.MatchStatusUpcoming,
		Results:     models.MatchResults(results).Clone(),
	}
	return id
}

func (db *memDB) team(id string) models.Team {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.teams[id]
}

func (db *memDB) match(id string) models.Match {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.matches[id]
}

func validRoster() models.Roster {
	return models.Roster{
		Leader: models.RosterMember{Name: "Leader", GameID: "5100001"},
		Players: []models.RosterMember{
			{Name: "P1", GameID: "5100002"},
			{Name: "P2", GameID: "5100003"},
			{Name: "P3", GameID: "5100004"},
		},
	}
}

func cloneMatch(m models.Match) *models.Match {
	m.Results = m.Results.Clone()
	return &m
}

func cloneTeam(t models.Team) *models.Team {
	t.Roster.Players = slices.Clone(t.Roster.Players)
	return &t
}

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type memSeasons struct{ db *memDB }

func (r memSeasons) Create(ctx context.Context, s *models.Season) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s.CreatedAt = time.Now()
	r.db.seasons[s.ID] = *s
	return nil
}

func (r memSeasons) GetByID(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Season, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.seasons[id]
	if !ok {
		return nil, repositories.ErrSeasonNotFound
	}
	return &s, nil
}

func (r memSeasons) List(ctx context.Context, status *models.SeasonStatus) ([]models.Season, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Season, 0)
	for _, s := range r.db.seasons {
		if status == nil || s.Status == *status {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b models.Season) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (r memSeasons) UpdateStatus(ctx context.Context, id string, status models.SeasonStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.seasons[id]
	if !ok {
		return repositories.ErrSeasonNotFound
	}
	s.Status = status
	r.db.seasons[id] = s
	return nil
}

type memTeams struct{ db *memDB }

func (r memTeams) Create(ctx context.Context, t *models.Team) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.createErr != nil {
		return r.db.createErr
	}
	for _, existing := range r.db.teams {
		if existing.TeamName == t.TeamName {
			return repositories.ErrTeamNameConflict
		}
	}
	t.AlivePlayers = models.SquadSize
	r.db.teams[t.ID] = *cloneTeam(*t)
	return nil
}

func (r memTeams) GetByID(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Team, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return cloneTeam(t), nil
}

func (r memTeams) GetByName(ctx context.Context, name string) (*models.Team, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.teams {
		if t.TeamName == name {
			return cloneTeam(t), nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r memTeams) filter(keep func(models.Team) bool) []*models.Team {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*models.Team, 0)
	for _, t := range r.db.teams {
		if keep(t) {
			out = append(out, cloneTeam(t))
		}
	}
	standings.SortLeaderboard(out)
	return out
}

func (r memTeams) ListByIDs(ctx context.Context, exec repositories.SQLExecutor, ids []string) ([]*models.Team, error) {
	return r.filter(func(t models.Team) bool { return slices.Contains(ids, t.ID) }), nil
}

func (r memTeams) ListByNames(ctx context.Context, names []string) ([]*models.Team, error) {
	return r.filter(func(t models.Team) bool { return slices.Contains(names, t.TeamName) }), nil
}

func (r memTeams) ListBySeason(ctx context.Context, exec repositories.SQLExecutor, seasonID string) ([]*models.Team, error) {
	return r.filter(func(t models.Team) bool { return t.SeasonID == seasonID }), nil
}

func (r memTeams) List(ctx context.Context, f repositories.ListTeamsFilter) ([]*models.Team, error) {
	return r.filter(func(t models.Team) bool {
		if f.SeasonID != nil && t.SeasonID != *f.SeasonID {
			return false
		}
		return !f.VerifiedOnly || t.IsVerified
	}), nil
}

func (r memTeams) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	names := make(map[string]string)
	for _, id := range ids {
		if t, ok := r.db.teams[id]; ok {
			names[id] = t.TeamName
		}
	}
	return names, nil
}

func (r memTeams) SetVerified(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.IsVerified = true
	r.db.teams[id] = t
	return nil
}

type memMatches struct{ db *memDB }

func (r memMatches) Create(ctx context.Context, m *models.Match) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.seasons[m.SeasonID]; !ok {
		return repositories.ErrMatchSeasonInvalid
	}
	r.db.matches[m.ID] = *cloneMatch(*m)
	return nil
}

func (r memMatches) GetByID(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Match, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return cloneMatch(m), nil
}

func (r memMatches) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Match, error) {
	return r.GetByID(ctx, exec, id)
}

func (r memMatches) sorted(keep func(models.Match) bool) []*models.Match {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.db.matches {
		if keep(m) {
			out = append(out, cloneMatch(m))
		}
	}
	slices.SortFunc(out, func(a, b *models.Match) int {
		if c := a.DateTime.Compare(b.DateTime); c != 0 {
			return c
		}
		return a.MatchNumber - b.MatchNumber
	})
	return out
}

func (r memMatches) List(ctx context.Context, f repositories.ListMatchesFilter) ([]*models.Match, error) {
	return r.sorted(func(m models.Match) bool {
		if f.SeasonID != nil && m.SeasonID != *f.SeasonID {
			return false
		}
		return f.Status == nil || m.DisplayStatus(f.Now) == *f.Status
	}), nil
}

func (r memMatches) ListBySeason(ctx context.Context, exec repositories.SQLExecutor, seasonID string) ([]*models.Match, error) {
	return r.sorted(func(m models.Match) bool { return m.SeasonID == seasonID }), nil
}

func (r memMatches) Update(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.matches[m.ID]
	if !ok || stored.IsCompleted() {
		return repositories.ErrMatchCompleted
	}
	r.db.matches[m.ID] = *cloneMatch(*m)
	return nil
}

func (r memMatches) Complete(ctx context.Context, exec repositories.SQLExecutor, id string, results models.MatchResults) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.matches[id]
	if !ok || stored.IsCompleted() {
		return repositories.ErrMatchCompleted
	}
	stored.Status = models.MatchStatusCompleted
	stored.Results = results.Clone()
	r.db.matches[id] = stored
	return nil
}

func (r memMatches) Delete(ctx context.Context, exec repositories.SQLExecutor, id string) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.matches[id]
	if !ok {
		return "", repositories.ErrMatchNotFound
	}
	delete(r.db.matches, id)
	return m.SeasonID, nil
}

type memStandings struct{ db *memDB }

func (r memStandings) BulkUpdate(ctx context.Context, exec repositories.SQLExecutor, rows []models.TeamStanding) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.bulkCalls++
	if r.db.bulkErr != nil {
		return r.db.bulkErr
	}
	for _, s := range rows {
		t, ok := r.db.teams[s.TeamID]
		if !ok {
			continue
		}
		t.TotalKills = s.TotalKills
		t.PlacementPoints = s.PlacementPoints
		t.TotalPoints = t.TotalKills + t.PlacementPoints
		t.Wins = s.Wins
		t.AlivePlayers = s.AlivePlayers
		r.db.teams[s.TeamID] = t
	}
	return nil
}

func (r memStandings) SetAdjustments(ctx context.Context, exec repositories.SQLExecutor, adj map[string]models.StatAdjustment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, a := range adj {
		t, ok := r.db.teams[id]
		if !ok {
			continue
		}
		t.Adjustment = a
		r.db.teams[id] = t
	}
	return nil
}

type memAdmins struct{ db *memDB }

func (r memAdmins) Create(ctx context.Context, a *models.Admin) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.admins {
		if existing.Email == a.Email {
			return repositories.ErrAdminEmailConflict
		}
	}
	r.db.admins[a.ID] = *a
	return nil
}

func (r memAdmins) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.admins[id]
	if !ok {
		return nil, repositories.ErrAdminNotFound
	}
	return &a, nil
}

func (r memAdmins) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.admins {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, repositories.ErrAdminNotFound
}

// memDocuments records uploads and deletions.
type memDocuments struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	uploadErr error
}

func newMemDocuments() *memDocuments {
	return &memDocuments{objects: make(map[string][]byte)}
}

func (d *memDocuments) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if d.uploadErr != nil {
		return nil, d.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.objects[key] = data
	return &storage.UploadResult{Key: key}, nil
}

func (d *memDocuments) Delete(ctx context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.objects, key)
	d.deleted = append(d.deleted, key)
	return nil
}

func (d *memDocuments) PresignedURL(ctx context.Context, key string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.objects[key]; !ok {
		return "", errors.New("no such object")
	}
	return "https://r2.example/" + key + "?signature=test", nil
}

type recordingAnnouncer struct {
	calls int
	names map[string]string
	err   error
}

func (a *recordingAnnouncer) AnnounceMatchResults(ctx context.Context, m *models.Match, names map[string]string) error {
	a.calls++
	a.names = names
	return a.err
}

type recordingNotifier struct {
	sent []string
	err  error
}

func (n *recordingNotifier) SendTeamVerifiedEmail(ctx context.Context, team *models.Team) error {
	n.sent = append(n.sent, team.ID)
	return n.err
}

// fixture wires every service against one memDB.
type fixture struct {
	db        *memDB
	docs      *memDocuments
	now       time.Time
	standings *standingsService
	matches   *matchService
	teams     *teamService
	seasons   SeasonService
	announcer *recordingAnnouncer
	notifier  *recordingNotifier
}

func newFixture() *fixture {
	db := newMemDB()
	f := &fixture{
		db:        db,
		docs:      newMemDocuments(),
		now:       time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC),
		announcer: &recordingAnnouncer{},
		notifier:  &recordingNotifier{},
	}
	clock := func() time.Time { return f.now }
	logger := discardLogger()

	f.standings = NewStandingsService(memTeams{db}, memMatches{db}, memSeasons{db}, memStandings{db}, logger).(*standingsService)
	f.standings.now = clock

	f.matches = NewMatchService(fakeTx{}, memMatches{db}, memTeams{db}, memSeasons{db}, f.standings, f.announcer, 15*time.Minute, logger).(*matchService)
	f.matches.now = clock

	f.teams = NewTeamService(memTeams{db}, memSeasons{db}, f.docs, f.notifier, logger).(*teamService)
	f.seasons = NewSeasonService(memSeasons{db}, logger)
	return f
}
