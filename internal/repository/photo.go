package repository

import (
	"context"

	"foodmemories/internal/model"
)

// PhotoRepository defines persistence operations for photo metadata.
type PhotoRepository interface {
	// Create stores a new photo record. The store assigns ID, CreatedAt and UpdatedAt.
	// Participants on the input are ignored; ParticipantIDs is stored as given.
	Create(ctx context.Context, p *model.Photo) (*model.Photo, error)

	// FindByID returns a photo or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Photo, error)

	// List returns photos matching the filter, newest first.
	List(ctx context.Context, f model.PhotoFilter) ([]model.Photo, error)

	// Delete removes a photo record and returns what was removed, or ErrNotFound.
	Delete(ctx context.Context, id string) (*model.Photo, error)
}
