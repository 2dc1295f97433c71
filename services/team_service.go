package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/Dosada05/tournament-ops/models"
	"github.com/Dosada05/tournament-ops/repositories"
	"github.com/Dosada05/tournament-ops/storage"
)

// TeamNotifier tells a team's contact that the registration was accepted.
type TeamNotifier interface {
	SendTeamVerifiedEmail(ctx context.Context, team *models.Team) error
}

type TeamService interface {
	RegisterTeam(ctx context.Context, input RegisterTeamInput, document *DocumentUpload) (*models.Team, error)
	VerifyTeam(ctx context.Context, id string) (*models.Team, error)
	GetTeam(ctx context.Context, id string, includePrivate bool) (*models.Team, error)
	ListTeams(ctx context.Context, seasonID *string, includePrivate bool) ([]*models.Team, error)
}

type RegisterTeamInput struct {
	SeasonID     string        `json:"seasonId"`
	TeamName     string        `json:"teamName"`
	Roster       models.Roster `json:"roster"`
	ContactEmail *string       `json:"contactEmail,omitempty"`
	ContactPhone *string       `json:"contactPhone,omitempty"`
}

// DocumentUpload is the optional verification document sent with a registration.
type DocumentUpload struct {
	ContentType string
	Reader      io.Reader
}

type teamService struct {
	teamRepo   repositories.TeamRepository
	seasonRepo repositories.SeasonRepository
	documents  storage.DocumentStore
	notifier   TeamNotifier
	logger     *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	seasonRepo repositories.SeasonRepository,
	documents storage.DocumentStore,
	notifier TeamNotifier,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		teamRepo:   teamRepo,
		seasonRepo: seasonRepo,
		documents:  documents,
		notifier:   notifier,
		logger:     logger,
	}
}

func validateRegistration(input *RegisterTeamInput) error {
	input.TeamName = strings.TrimSpace(input.TeamName)
	if input.TeamName == "" {
		return validationError("teamName is required")
	}
	if input.SeasonID == "" {
		return validationError("seasonId is required")
	}
	if err := input.Roster.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	input.ContactEmail = trimmedOrNil(input.ContactEmail)
	input.ContactPhone = trimmedOrNil(input.ContactPhone)
	if input.ContactEmail != nil {
		if _, err := mail.ParseAddress(*input.ContactEmail); err != nil {
			return validationError("contactEmail is not a valid address")
		}
	}
	return nil
}

func (s *teamService) RegisterTeam(ctx context.Context, input RegisterTeamInput, document *DocumentUpload) (*models.Team, error) {
	if err := validateRegistration(&input); err != nil {
		return nil, err
	}
	if _, err := activeSeason(ctx, s.seasonRepo, input.SeasonID); err != nil {
		return nil, err
	}

	if _, err := s.teamRepo.GetByName(ctx, input.TeamName); err == nil {
		return nil, ErrTeamNameConflict
	} else if !errors.Is(err, repositories.ErrTeamNotFound) {
		return nil, fmt.Errorf("failed to check team name: %w", err)
	}

	team := &models.Team{
		ID:           newID(),
		SeasonID:     input.SeasonID,
		TeamName:     input.TeamName,
		Roster:       input.Roster,
		ContactEmail: input.ContactEmail,
		ContactPhone: input.ContactPhone,
	}

	if document != nil {
		ext, err := storage.ExtensionForContentType(document.ContentType)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		key := storage.DocumentKey(team.SeasonID, team.ID, ext)
		if _, err := s.documents.Upload(ctx, key, document.ContentType, document.Reader); err != nil {
			s.logger.ErrorContext(ctx, "document upload failed", slog.String("team_name", team.TeamName), slog.Any("error", err))
			return nil, fmt.Errorf("%w: %w", ErrUpstreamStorage, err)
		}
		team.DocumentKey = &key
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		s.discardDocument(ctx, team.DocumentKey)
		switch {
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		case errors.Is(err, repositories.ErrTeamSeasonInvalid):
			return nil, validationError("season %s does not exist", team.SeasonID)
		default:
			return nil, fmt.Errorf("failed to create team: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "team registered",
		slog.String("team_id", team.ID),
		slog.String("season_id", team.SeasonID),
		slog.Bool("document", team.DocumentKey != nil))
	return team, nil
}

// discardDocument removes an uploaded object whose team row was never written.
func (s *teamService) discardDocument(ctx context.Context, key *string) {
	if key == nil {
		return
	}
	if err := s.documents.Delete(ctx, *key); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete orphaned document", slog.String("key", *key), slog.Any("error", err))
	}
}

// VerifyTeam is idempotent. The contact email only goes out on the first verification.
func (s *teamService) VerifyTeam(ctx context.Context, id string) (*models.Team, error) {
	team, err := s.getTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	if team.IsVerified {
		return s.withPrivateFields(ctx, team), nil
	}

	if err := s.teamRepo.SetVerified(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to verify team %s: %w", id, err)
	}
	team.IsVerified = true

	s.logger.InfoContext(ctx, "team verified", slog.String("team_id", id))

	if s.notifier != nil && team.ContactEmail != nil {
		if err := s.notifier.SendTeamVerifiedEmail(ctx, team); err != nil {
			s.logger.WarnContext(ctx, "failed to send verification email", slog.String("team_id", id), slog.Any("error", err))
		}
	}
	return s.withPrivateFields(ctx, team), nil
}

func (s *teamService) getTeam(ctx context.Context, id string) (*models.Team, error) {
	if err := checkID(id, ErrTeamNotFound); err != nil {
		return nil, err
	}
	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", id, err)
	}
	return team, nil
}

// GetTeam hides unverified teams from public readers.
func (s *teamService) GetTeam(ctx context.Context, id string, includePrivate bool) (*models.Team, error) {
	team, err := s.getTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	if !includePrivate {
		if !team.IsVerified {
			return nil, ErrTeamNotFound
		}
		team.StripPrivate()
		return team, nil
	}
	return s.withPrivateFields(ctx, team), nil
}

func (s *teamService) ListTeams(ctx context.Context, seasonID *string, includePrivate bool) ([]*models.Team, error) {
	if seasonID != nil && checkID(*seasonID, ErrSeasonNotFound) != nil {
		return []*models.Team{}, nil
	}

	teams, err := s.teamRepo.List(ctx, repositories.ListTeamsFilter{
		SeasonID:     seasonID,
		VerifiedOnly: !includePrivate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	for _, t := range teams {
		if includePrivate {
			s.withPrivateFields(ctx, t)
		} else {
			t.StripPrivate()
		}
	}
	return teams, nil
}

// withPrivateFields attaches a presigned document link for privileged readers.
func (s *teamService) withPrivateFields(ctx context.Context, team *models.Team) *models.Team {
	if team.DocumentKey == nil || s.documents == nil {
		return team
	}
	url, err := s.documents.PresignedURL(ctx, *team.DocumentKey)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to presign team document", slog.String("team_id", team.ID), slog.Any("error", err))
		return team
	}
	team.DocumentURL = &url
	return team
}
