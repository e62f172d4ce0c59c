package mocks

import (
	"context"

	"gamebook-server/shared/interfaces"
	"gamebook-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockGamelogRepository is a mock type for the GamelogRepository type
type MockGamelogRepository struct {
	mock.Mock
}

var _ interfaces.GamelogRepository = (*MockGamelogRepository)(nil)

func (_m *MockGamelogRepository) Append(ctx context.Context, q interfaces.DBTX, entry *models.GamelogEntry) error {
	ret := _m.Called(ctx, q, entry)
	return ret.Error(0)
}

func (_m *MockGamelogRepository) ListBySession(ctx context.Context, q interfaces.DBTX, sessionID uuid.UUID, limit int) ([]*models.GamelogEntry, error) {
	ret := _m.Called(ctx, q, sessionID, limit)
	var r0 []*models.GamelogEntry
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.GamelogEntry)
	}
	return r0, ret.Error(1)
}

// NewMockGamelogRepository creates a new instance of MockGamelogRepository.
// It also registers a testing interface on the mock.
func NewMockGamelogRepository(t interface {
	mock.TestingT
	Helper()
}) *MockGamelogRepository {
	m := &MockGamelogRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}
