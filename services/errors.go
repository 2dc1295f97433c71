package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed = errors.New("validation failed")
	ErrSeasonCompleted  = errors.New("season is completed")
	ErrTeamWrongSeason  = errors.New("team does not belong to the match season")

	// Completed matches are frozen. The message is shown to operators as is.
	ErrMatchCompleted = errors.New("Cannot update a completed match")

	// Ошибки конфликтов
	ErrTeamNameConflict = errors.New("team name is already in use")

	// Ошибки аутентификации и авторизации
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Внешние зависимости
	ErrUpstreamStorage = errors.New("document storage is unavailable")

	ErrSeasonNotFound = errors.New("season not found")
	ErrMatchNotFound  = errors.New("match not found")
	ErrTeamNotFound   = errors.New("team not found")
)
