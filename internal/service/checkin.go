package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/menticure/backend/pkg/model"
	"go.uber.org/zap"
)

// CheckInStore is the persistence dependency of the check-in service
type CheckInStore interface {
	UpsertCheckIn(ctx context.Context, checkIn *model.DailyCheckIn) (bool, error)
	GetStreak(ctx context.Context, userID string) (*model.UserStreak, error)
	SaveStreak(ctx context.Context, streak *model.UserStreak) error
	AwardBadge(ctx context.Context, badge *model.Badge) error
	GetCheckIns(ctx context.Context, userID string, since time.Time) ([]model.DailyCheckIn, error)
}

// streakBadges maps streak lengths to the badge earned at that length.
var streakBadges = map[int]string{
	3:  "3-Day Streak",
	7:  "Week Warrior",
	30: "Monthly Master",
}

// CheckInResult reports the outcome of a daily check-in submission.
type CheckInResult struct {
	CheckIn      *model.DailyCheckIn `json:"check_in"`
	Streak       *model.UserStreak   `json:"streak"`
	NewBadges    []string            `json:"new_badges"`
	AlreadyDone  bool                `json:"already_done"`
}

// CheckInService handles daily check-ins, streak tracking, and badges
type CheckInService struct {
	store  CheckInStore
	logger *zap.Logger
}

// NewCheckInService creates a new CheckInService
func NewCheckInService(store CheckInStore, logger *zap.Logger) *CheckInService {
	return &CheckInService{store: store, logger: logger}
}

// SubmitCheckIn records the user's check-in for the given day. Submitting
// twice on the same day updates the status/notes of the existing row but
// leaves streak counters untouched.
func (s *CheckInService) SubmitCheckIn(ctx context.Context, userID string, date time.Time, status model.CheckInStatus, notes *string) (*CheckInResult, error) {
	day := date.Truncate(24 * time.Hour)

	checkIn := &model.DailyCheckIn{
		ID:     uuid.New().String(),
		UserID: userID,
		Date:   day,
		Status: status,
		Notes:  notes,
	}

	inserted, err := s.store.UpsertCheckIn(ctx, checkIn)
	if err != nil {
		return nil, fmt.Errorf("failed to record check-in: %w", err)
	}

	if !inserted {
		streak, err := s.store.GetStreak(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch streak: %w", err)
		}
		return &CheckInResult{
			CheckIn:     checkIn,
			Streak:      streak,
			NewBadges:   []string{},
			AlreadyDone: true,
		}, nil
	}

	streak, err := s.advanceStreak(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	newBadges := s.awardBadges(ctx, userID, streak.CurrentStreak)

	return &CheckInResult{
		CheckIn:   checkIn,
		Streak:    streak,
		NewBadges: newBadges,
	}, nil
}

// advanceStreak updates the streak counters for a newly inserted check-in
// day: a check-in on the day after the last one extends the streak, a gap
// resets it to 1.
func (s *CheckInService) advanceStreak(ctx context.Context, userID string, day time.Time) (*model.UserStreak, error) {
	streak, err := s.store.GetStreak(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch streak: %w", err)
	}

	if streak == nil {
		streak = &model.UserStreak{
			ID:     uuid.New().String(),
			UserID: userID,
		}
	}

	if streak.LastCheckInDate != nil && day.Sub(streak.LastCheckInDate.Truncate(24*time.Hour)) == 24*time.Hour {
		streak.CurrentStreak++
	} else {
		streak.CurrentStreak = 1
	}
	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	streak.TotalCheckIns++
	streak.LastCheckInDate = &day

	if err := s.store.SaveStreak(ctx, streak); err != nil {
		return nil, fmt.Errorf("failed to save streak: %w", err)
	}

	return streak, nil
}

// awardBadges grants any badge earned at the given streak length. The
// repository ignores duplicates, so re-earning a badge is a no-op.
// Badge failures are logged, not surfaced: the check-in itself succeeded.
func (s *CheckInService) awardBadges(ctx context.Context, userID string, currentStreak int) []string {
	newBadges := []string{}
	name, ok := streakBadges[currentStreak]
	if !ok {
		return newBadges
	}

	badge := &model.Badge{
		ID:        uuid.New().String(),
		UserID:    userID,
		BadgeName: name,
		BadgeType: "streak",
		EarnedAt:  time.Now(),
	}
	if err := s.store.AwardBadge(ctx, badge); err != nil {
		s.logger.Warn("failed to award badge",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("badge", name),
		)
		return newBadges
	}

	newBadges = append(newBadges, name)
	return newBadges
}

// GetStreak returns the user's streak, zero-valued when none exists yet.
func (s *CheckInService) GetStreak(ctx context.Context, userID string) (*model.UserStreak, error) {
	streak, err := s.store.GetStreak(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch streak: %w", err)
	}
	if streak == nil {
		streak = &model.UserStreak{UserID: userID}
	}
	return streak, nil
}

// History lists the user's check-ins in the window.
func (s *CheckInService) History(ctx context.Context, userID string, days int) ([]model.DailyCheckIn, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	checkIns, err := s.store.GetCheckIns(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch check-ins: %w", err)
	}
	return checkIns, nil
}
