package models

import "time"

// Invitation is created by an admin and mutated by the dispatch worker,
// which records the send outcome on the row (fire-and-poll: callers poll
// the record instead of waiting on the mail provider). A consumed
// invitation is terminal.
type Invitation struct {
	ID               string    `db:"id" json:"id"`
	Email            string    `db:"email" json:"email"`
	Role             Role      `db:"role" json:"role"`
	Department       string    `db:"department" json:"department"`
	Token            string    `db:"token" json:"-"`
	RegistrationLink string    `db:"registration_link" json:"registration_link"`
	Sent             bool      `db:"sent" json:"sent"`
	ErrorMessage     string    `db:"error_message" json:"error_message,omitempty"`
	Consumed         bool      `db:"consumed" json:"consumed"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
