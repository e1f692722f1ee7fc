package mocks

import (
	"context"

	"foodmemories/internal/client"
	"foodmemories/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) ListParticipants(ctx context.Context) ([]model.Participant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Participant), args.Error(1)
}

func (m *MockAPI) CreateParticipant(ctx context.Context, f model.ParticipantFields) (*model.Participant, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Participant), args.Error(1)
}

func (m *MockAPI) UpdateParticipant(ctx context.Context, id string, f model.ParticipantFields) (*model.Participant, error) {
	args := m.Called(ctx, id, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Participant), args.Error(1)
}

func (m *MockAPI) DeleteParticipant(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAPI) ListPhotos(ctx context.Context, q client.PhotoQuery) ([]model.Photo, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Photo), args.Error(1)
}

func (m *MockAPI) CheckUpload(path string) (string, error) {
	args := m.Called(path)
	return args.String(0), args.Error(1)
}

func (m *MockAPI) UploadPhoto(ctx context.Context, u client.PhotoUpload) (*model.Photo, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Photo), args.Error(1)
}

func (m *MockAPI) DeletePhoto(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
