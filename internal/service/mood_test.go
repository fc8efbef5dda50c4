package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/menticure/backend/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockMoodStore struct {
	mock.Mock
}

func (m *MockMoodStore) Insert(ctx context.Context, rec *model.MoodRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockMoodStore) GetSince(ctx context.Context, userID string, since time.Time) ([]model.MoodRecord, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MoodRecord), args.Error(1)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestRecordMood(t *testing.T) {
	store := new(MockMoodStore)
	svc := NewMoodService(store, zap.NewNop())

	store.On("Insert", mock.Anything, mock.MatchedBy(func(rec *model.MoodRecord) bool {
		return rec.UserID == "user-1" && rec.Mood == model.MoodHappy && rec.ID != ""
	})).Return(nil)

	rec, err := svc.Record(context.Background(), "user-1", MoodEntry{
		Mood:         model.MoodHappy,
		SleepHours:   floatPtr(7.5),
		AnxietyLevel: intPtr(3),
	})

	require.NoError(t, err)
	assert.Equal(t, model.MoodHappy, rec.Mood)
	assert.NotEmpty(t, rec.ID)
	store.AssertExpectations(t)
}

func TestRecordMoodValidation(t *testing.T) {
	tests := []struct {
		name  string
		entry MoodEntry
	}{
		{"unknown mood level", MoodEntry{Mood: "ecstatic"}},
		{"anxiety above range", MoodEntry{Mood: model.MoodNeutral, AnxietyLevel: intPtr(11)}},
		{"anxiety below range", MoodEntry{Mood: model.MoodNeutral, AnxietyLevel: intPtr(0)}},
		{"stress above range", MoodEntry{Mood: model.MoodNeutral, StressLevel: intPtr(15)}},
		{"negative sleep hours", MoodEntry{Mood: model.MoodNeutral, SleepHours: floatPtr(-1)}},
		{"sleep hours above a day", MoodEntry{Mood: model.MoodNeutral, SleepHours: floatPtr(25)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockMoodStore)
			svc := NewMoodService(store, zap.NewNop())

			_, err := svc.Record(context.Background(), "user-1", tt.entry)

			assert.Error(t, err)
			store.AssertNotCalled(t, "Insert")
		})
	}
}

func TestMoodHistoryDefaultsWindow(t *testing.T) {
	store := new(MockMoodStore)
	svc := NewMoodService(store, zap.NewNop())

	store.On("GetSince", mock.Anything, "user-1", mock.MatchedBy(func(since time.Time) bool {
		expected := time.Now().AddDate(0, 0, -30)
		return since.Sub(expected).Abs() < time.Minute
	})).Return([]model.MoodRecord{{ID: "rec-1", UserID: "user-1", Mood: model.MoodHappy}}, nil)

	records, err := svc.History(context.Background(), "user-1", 0)

	require.NoError(t, err)
	require.Len(t, records, 1)
	store.AssertExpectations(t)
}

func TestMoodHistoryPropagatesError(t *testing.T) {
	store := new(MockMoodStore)
	svc := NewMoodService(store, zap.NewNop())

	store.On("GetSince", mock.Anything, "user-1", mock.Anything).
		Return(nil, errors.New("connection refused"))

	_, err := svc.History(context.Background(), "user-1", 7)

	assert.Error(t, err)
}
