package progress

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockExperienceSource is a mock implementation of ExperienceSource
type MockExperienceSource struct {
	mock.Mock
}

func (m *MockExperienceSource) CurrentExperience(ctx context.Context, playerName, skill string) (int64, error) {
	args := m.Called(ctx, playerName, skill)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExperienceSource) ExperienceAtOrBefore(ctx context.Context, playerName, skill string, at time.Time) (int64, bool, error) {
	args := m.Called(ctx, playerName, skill, at)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}
