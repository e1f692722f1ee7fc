package repository

import (
	"context"

	"foodmemories/internal/model"
)

// ParticipantRepository defines persistence operations for participants.
// No business logic here; validation and normalization belong to the service layer.
type ParticipantRepository interface {
	// Create stores a new participant. The store assigns ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, f model.ParticipantFields) (*model.Participant, error)

	// FindByID returns a participant or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Participant, error)

	// FindByIDs returns the participants that exist among ids, in no particular order.
	// Unknown or malformed ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]model.Participant, error)

	// List returns all participants, newest first.
	List(ctx context.Context) ([]model.Participant, error)

	// Update replaces the editable fields and bumps UpdatedAt. Returns ErrNotFound if absent.
	Update(ctx context.Context, id string, f model.ParticipantFields) (*model.Participant, error)

	// Delete removes a participant. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}
