package model

import "time"

// Participant is a workshop attendee.
// This is a pure domain model with no database-specific dependencies or tags;
// repositories map it to their own document/row shapes.
type Participant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Dietary   string    `json:"dietary"`
	Cultural  string    `json:"cultural"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ParticipantFields is the editable set of a participant; Update replaces all of it.
type ParticipantFields struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email"`
	Dietary  string `json:"dietary"`
	Cultural string `json:"cultural"`
	Notes    string `json:"notes"`
}
