package mocks

import (
	"context"

	"foodmemories/internal/model"
	"foodmemories/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockPhotoService struct {
	mock.Mock
}

func (m *MockPhotoService) List(ctx context.Context, filter model.PhotoFilter) ([]model.Photo, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Photo), args.Error(1)
}

func (m *MockPhotoService) Get(ctx context.Context, id string) (*model.Photo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Photo), args.Error(1)
}

func (m *MockPhotoService) Upload(ctx context.Context, req service.UploadRequest) (*model.Photo, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Photo), args.Error(1)
}

func (m *MockPhotoService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
