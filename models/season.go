package models

import "time"

type SeasonStatus string

const (
	SeasonStatusActive    SeasonStatus = "active"
	SeasonStatusCompleted SeasonStatus = "completed"
)

// Season groups matches and team registrations of one tournament cycle.
type Season struct {
	ID        string       `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	Status    SeasonStatus `json:"status" db:"status"`
	StartDate *time.Time   `json:"startDate,omitempty" db:"start_date"`
	EndDate   *time.Time   `json:"endDate,omitempty" db:"end_date"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
}

func (s *Season) IsCompleted() bool {
	return s.Status == SeasonStatusCompleted
}
