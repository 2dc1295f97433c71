package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/tournament-ops/models"
	"github.com/Dosada05/tournament-ops/repositories"
	"github.com/Dosada05/tournament-ops/utils"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.Admin, error)
	// EnsureAdmin creates the operator account on first start. An existing
	// account with the same email is left as is.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	adminRepo repositories.AdminRepository
	logger    *slog.Logger
}

func NewAuthService(adminRepo repositories.AdminRepository, logger *slog.Logger) AuthService {
	return &authService{adminRepo: adminRepo, logger: logger}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Admin, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, validationError("email and password are required")
	}

	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find admin by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	admin.PasswordHash = ""
	return admin, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	if len(password) < minPasswordLength {
		return validationError("admin password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.adminRepo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrAdminNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.Admin{
		ID:           newID(),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repositories.ErrAdminEmailConflict) {
			return nil
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.InfoContext(ctx, "admin account created", slog.String("email", email))
	return nil
}
