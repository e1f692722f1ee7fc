package service

import (
	"context"
	"errors"
	"strings"

	"foodmemories/internal/model"
	"foodmemories/internal/repository"
)

// ParticipantService defines the use cases for workshop participants.
type ParticipantService interface {
	// List returns all participants, newest first.
	List(ctx context.Context) ([]model.Participant, error)

	// Get returns a single participant by its ID.
	Get(ctx context.Context, id string) (*model.Participant, error)

	// Create validates and stores a new participant. Name is required.
	Create(ctx context.Context, in model.ParticipantFields) (*model.Participant, error)

	// Update replaces all editable fields of a participant.
	Update(ctx context.Context, id string, in model.ParticipantFields) (*model.Participant, error)

	// Delete removes a participant. Photos that reference it keep the stale id.
	Delete(ctx context.Context, id string) error
}

type participantService struct {
	repo     repository.ParticipantRepository
	validate *validation
}

// NewParticipantService constructs a new ParticipantService.
func NewParticipantService(repo repository.ParticipantRepository) ParticipantService {
	return &participantService{repo: repo, validate: newValidation()}
}

func (s *participantService) List(ctx context.Context) ([]model.Participant, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Participant{}
	}
	return items, nil
}

func (s *participantService) Get(ctx context.Context, id string) (*model.Participant, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, participantErr(err)
	}
	return p, nil
}

func (s *participantService) Create(ctx context.Context, in model.ParticipantFields) (*model.Participant, error) {
	in = normalizeParticipant(in)
	if err := s.validate.check(in); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, in)
}

func (s *participantService) Update(ctx context.Context, id string, in model.ParticipantFields) (*model.Participant, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	in = normalizeParticipant(in)
	if err := s.validate.check(in); err != nil {
		return nil, err
	}
	p, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, participantErr(err)
	}
	return p, nil
}

func (s *participantService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	return participantErr(s.repo.Delete(ctx, id))
}

// normalizeParticipant trims every field and lower-cases the email.
func normalizeParticipant(in model.ParticipantFields) model.ParticipantFields {
	return model.ParticipantFields{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Dietary:  strings.TrimSpace(in.Dietary),
		Cultural: strings.TrimSpace(in.Cultural),
		Notes:    strings.TrimSpace(in.Notes),
	}
}

func participantErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrParticipantNotFound
	}
	return err
}
