package models

import "time"

type UserRole string

const (
	RoleAdmin UserRole = "admin"
)

// Admin is an operator account allowed to schedule and score matches.
type Admin struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
