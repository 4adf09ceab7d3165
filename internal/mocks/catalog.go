package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockCatalogService is a mock implementation of service.ICatalogService.
// Kind is fixed at construction rather than mocked.
type MockCatalogService struct {
	mock.Mock
	CatalogKind models.CatalogKind
}

func (m *MockCatalogService) Kind() models.CatalogKind {
	return m.CatalogKind
}

func (m *MockCatalogService) List(ctx context.Context, userID uuid.UUID, assignedOnly bool) ([]models.CatalogItem, error) {
	args := m.Called(ctx, userID, assignedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CatalogItem), args.Error(1)
}

func (m *MockCatalogService) Get(ctx context.Context, id uint) (*models.CatalogItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CatalogItem), args.Error(1)
}

func (m *MockCatalogService) Create(ctx context.Context, name string) (*models.CatalogItem, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CatalogItem), args.Error(1)
}

func (m *MockCatalogService) Rename(ctx context.Context, id uint, name string) (*models.CatalogItem, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CatalogItem), args.Error(1)
}

func (m *MockCatalogService) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
