package mocks

import (
	"context"

	"foodmemories/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockParticipantService struct {
	mock.Mock
}

func (m *MockParticipantService) List(ctx context.Context) ([]model.Participant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Participant), args.Error(1)
}

func (m *MockParticipantService) Get(ctx context.Context, id string) (*model.Participant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Participant), args.Error(1)
}

func (m *MockParticipantService) Create(ctx context.Context, in model.ParticipantFields) (*model.Participant, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Participant), args.Error(1)
}

func (m *MockParticipantService) Update(ctx context.Context, id string, in model.ParticipantFields) (*model.Participant, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Participant), args.Error(1)
}

func (m *MockParticipantService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
