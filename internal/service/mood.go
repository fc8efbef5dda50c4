package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/menticure/backend/pkg/model"
	"go.uber.org/zap"
)

// MoodStore is the persistence dependency of the mood service
type MoodStore interface {
	Insert(ctx context.Context, rec *model.MoodRecord) error
	GetSince(ctx context.Context, userID string, since time.Time) ([]model.MoodRecord, error)
}

var validMoods = map[model.MoodLevel]bool{
	model.MoodVerySad:   true,
	model.MoodSad:       true,
	model.MoodNeutral:   true,
	model.MoodHappy:     true,
	model.MoodVeryHappy: true,
}

// MoodEntry is a user-submitted mood check-in before persistence.
type MoodEntry struct {
	Mood         model.MoodLevel
	SleepHours   *float64
	AnxietyLevel *int
	StressLevel  *int
	Notes        *string
}

// MoodService records and lists explicit mood check-ins
type MoodService struct {
	store  MoodStore
	logger *zap.Logger
}

// NewMoodService creates a new MoodService
func NewMoodService(store MoodStore, logger *zap.Logger) *MoodService {
	return &MoodService{store: store, logger: logger}
}

// Record validates and persists one mood entry.
func (s *MoodService) Record(ctx context.Context, userID string, entry MoodEntry) (*model.MoodRecord, error) {
	if !validMoods[entry.Mood] {
		return nil, fmt.Errorf("invalid mood level: %q", entry.Mood)
	}
	if entry.AnxietyLevel != nil && (*entry.AnxietyLevel < 1 || *entry.AnxietyLevel > 10) {
		return nil, fmt.Errorf("anxiety level must be between 1 and 10")
	}
	if entry.StressLevel != nil && (*entry.StressLevel < 1 || *entry.StressLevel > 10) {
		return nil, fmt.Errorf("stress level must be between 1 and 10")
	}
	if entry.SleepHours != nil && (*entry.SleepHours < 0 || *entry.SleepHours > 24) {
		return nil, fmt.Errorf("sleep hours must be between 0 and 24")
	}

	rec := &model.MoodRecord{
		ID:           uuid.New().String(),
		UserID:       userID,
		Mood:         entry.Mood,
		SleepHours:   entry.SleepHours,
		AnxietyLevel: entry.AnxietyLevel,
		StressLevel:  entry.StressLevel,
		Notes:        entry.Notes,
		CreatedAt:    time.Now(),
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to record mood: %w", err)
	}

	s.logger.Info("mood recorded",
		zap.String("user_id", userID),
		zap.String("mood", string(entry.Mood)),
	)
	return rec, nil
}

// History lists the user's mood records in the window, newest first.
func (s *MoodService) History(ctx context.Context, userID string, days int) ([]model.MoodRecord, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	records, err := s.store.GetSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mood history: %w", err)
	}
	return records, nil
}
