package model

import "time"

// Admin is a managed administrator account. Records are created through the
// super-admin API and invited by email; admind does not store passwords.
type Admin struct {
	ID         int64     `json:"id" db:"id"`
	LastName   string    `json:"last_name" db:"last_name"`
	FirstName  string    `json:"first_name" db:"first_name"`
	MiddleName string    `json:"middle_name" db:"middle_name"`
	Email      string    `json:"email" db:"email"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
