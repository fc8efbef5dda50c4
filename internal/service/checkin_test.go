package service

import (
	"context"
	"testing"
	"time"

	"github.com/menticure/backend/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockCheckInStore is a mock implementation of CheckInStore
type MockCheckInStore struct {
	mock.Mock
}

func (m *MockCheckInStore) UpsertCheckIn(ctx context.Context, checkIn *model.DailyCheckIn) (bool, error) {
	args := m.Called(ctx, checkIn)
	return args.Bool(0), args.Error(1)
}

func (m *MockCheckInStore) GetStreak(ctx context.Context, userID string) (*model.UserStreak, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserStreak), args.Error(1)
}

func (m *MockCheckInStore) SaveStreak(ctx context.Context, streak *model.UserStreak) error {
	args := m.Called(ctx, streak)
	return args.Error(0)
}

func (m *MockCheckInStore) AwardBadge(ctx context.Context, badge *model.Badge) error {
	args := m.Called(ctx, badge)
	return args.Error(0)
}

func (m *MockCheckInStore) GetCheckIns(ctx context.Context, userID string, since time.Time) ([]model.DailyCheckIn, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DailyCheckIn), args.Error(1)
}

func TestCheckInService_FirstCheckInStartsStreak(t *testing.T) {
	store := new(MockCheckInStore)
	svc := NewCheckInService(store, zap.NewNop())
	ctx := context.Background()

	store.On("UpsertCheckIn", ctx, mock.Anything).Return(true, nil)
	store.On("GetStreak", ctx, "user-1").Return(nil, nil)
	store.On("SaveStreak", ctx, mock.Anything).Return(nil)

	result, err := svc.SubmitCheckIn(ctx, "user-1", time.Now(), model.CheckInOkay, nil)

	require.NoError(t, err)
	assert.False(t, result.AlreadyDone)
	assert.Equal(t, 1, result.Streak.CurrentStreak)
	assert.Equal(t, 1, result.Streak.LongestStreak)
	assert.Equal(t, 1, result.Streak.TotalCheckIns)
	assert.Empty(t, result.NewBadges)
	store.AssertExpectations(t)
}

func TestCheckInService_ConsecutiveDayExtendsStreak(t *testing.T) {
	store := new(MockCheckInStore)
	svc := NewCheckInService(store, zap.NewNop())
	ctx := context.Background()

	today := time.Now().Truncate(24 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)

	store.On("UpsertCheckIn", ctx, mock.Anything).Return(true, nil)
	store.On("GetStreak", ctx, "user-1").Return(&model.UserStreak{
		UserID:          "user-1",
		CurrentStreak:   4,
		LongestStreak:   6,
		TotalCheckIns:   10,
		LastCheckInDate: &yesterday,
	}, nil)
	store.On("SaveStreak", ctx, mock.Anything).Return(nil)

	result, err := svc.SubmitCheckIn(ctx, "user-1", today, model.CheckInGreat, nil)

	require.NoError(t, err)
	assert.Equal(t, 5, result.Streak.CurrentStreak)
	assert.Equal(t, 6, result.Streak.LongestStreak)
	assert.Equal(t, 11, result.Streak.TotalCheckIns)
}

func TestCheckInService_GapResetsStreak(t *testing.T) {
	store := new(MockCheckInStore)
	svc := NewCheckInService(store, zap.NewNop())
	ctx := context.Background()

	today := time.Now().Truncate(24 * time.Hour)
	threeDaysAgo := today.AddDate(0, 0, -3)

	store.On("UpsertCheckIn", ctx, mock.Anything).Return(true, nil)
	store.On("GetStreak", ctx, "user-1").Return(&model.UserStreak{
		UserID:          "user-1",
		CurrentStreak:   9,
		LongestStreak:   9,
		TotalCheckIns:   20,
		LastCheckInDate: &threeDaysAgo,
	}, nil)
	store.On("SaveStreak", ctx, mock.Anything).Return(nil)

	result, err := svc.SubmitCheckIn(ctx, "user-1", today, model.CheckInStruggling, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Streak.CurrentStreak)
	assert.Equal(t, 9, result.Streak.LongestStreak)
	assert.Equal(t, 21, result.Streak.TotalCheckIns)
}

func TestCheckInService_SameDayLeavesStreakUntouched(t *testing.T) {
	store := new(MockCheckInStore)
	svc := NewCheckInService(store, zap.NewNop())
	ctx := context.Background()

	existing := &model.UserStreak{
		UserID:        "user-1",
		CurrentStreak: 4,
		LongestStreak: 6,
		TotalCheckIns: 10,
	}

	// Upsert reports an update, not an insert.
	store.On("UpsertCheckIn", ctx, mock.Anything).Return(false, nil)
	store.On("GetStreak", ctx, "user-1").Return(existing, nil)

	result, err := svc.SubmitCheckIn(ctx, "user-1", time.Now(), model.CheckInGreat, nil)

	require.NoError(t, err)
	assert.True(t, result.AlreadyDone)
	assert.Equal(t, 4, result.Streak.CurrentStreak)
	store.AssertNotCalled(t, "SaveStreak", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "AwardBadge", mock.Anything, mock.Anything)
}

func TestCheckInService_AwardsBadgeAtMilestone(t *testing.T) {
	store := new(MockCheckInStore)
	svc := NewCheckInService(store, zap.NewNop())
	ctx := context.Background()

	today := time.Now().Truncate(24 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)

	store.On("UpsertCheckIn", ctx, mock.Anything).Return(true, nil)
	store.On("GetStreak", ctx, "user-1").Return(&model.UserStreak{
		UserID:          "user-1",
		CurrentStreak:   6,
		LongestStreak:   6,
		TotalCheckIns:   15,
		LastCheckInDate: &yesterday,
	}, nil)
	store.On("SaveStreak", ctx, mock.Anything).Return(nil)
	store.On("AwardBadge", ctx, mock.MatchedBy(func(badge *model.Badge) bool {
		return badge.BadgeName == "Week Warrior" && badge.BadgeType == "streak"
	})).Return(nil)

	result, err := svc.SubmitCheckIn(ctx, "user-1", today, model.CheckInGreat, nil)

	require.NoError(t, err)
	assert.Equal(t, 7, result.Streak.CurrentStreak)
	assert.Equal(t, []string{"Week Warrior"}, result.NewBadges)
	store.AssertExpectations(t)
}
