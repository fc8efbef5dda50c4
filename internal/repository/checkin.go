package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/menticure/backend/pkg/model"
	"go.uber.org/zap"
)

// CheckInRepository manages daily check-ins, streaks and badges
type CheckInRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewCheckInRepository creates a new CheckInRepository
func NewCheckInRepository(db *pgxpool.Pool, logger *zap.Logger) *CheckInRepository {
	return &CheckInRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertCheckIn writes the check-in for (user, date). The unique key on
// (user_id, date) makes repeat submissions for the same day an update, not
// a second row. Returns true when a new row was inserted.
func (r *CheckInRepository) UpsertCheckIn(ctx context.Context, checkIn *model.DailyCheckIn) (bool, error) {
	query := `
		INSERT INTO daily_checkins (id, user_id, date, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, date)
		DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes
		RETURNING (xmax = 0)
	`

	var inserted bool
	err := r.db.QueryRow(ctx, query,
		checkIn.ID,
		checkIn.UserID,
		checkIn.Date,
		checkIn.Status,
		checkIn.Notes,
	).Scan(&inserted)

	if err != nil {
		r.logger.Error("failed to upsert daily check-in",
			zap.Error(err),
			zap.String("user_id", checkIn.UserID),
			zap.Time("date", checkIn.Date),
		)
		return false, fmt.Errorf("failed to upsert daily check-in: %w", err)
	}

	return inserted, nil
}

// GetStreak retrieves the streak row for a user, or nil when none exists
func (r *CheckInRepository) GetStreak(ctx context.Context, userID string) (*model.UserStreak, error) {
	query := `
		SELECT id, user_id, current_streak, longest_streak, total_checkins, last_checkin_date, updated_at
		FROM user_streaks
		WHERE user_id = $1
	`

	var streak model.UserStreak
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&streak.ID,
		&streak.UserID,
		&streak.CurrentStreak,
		&streak.LongestStreak,
		&streak.TotalCheckIns,
		&streak.LastCheckInDate,
		&streak.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("failed to get streak", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}

	return &streak, nil
}

// SaveStreak upserts the streak row for a user
func (r *CheckInRepository) SaveStreak(ctx context.Context, streak *model.UserStreak) error {
	query := `
		INSERT INTO user_streaks (id, user_id, current_streak, longest_streak, total_checkins, last_checkin_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			total_checkins = EXCLUDED.total_checkins,
			last_checkin_date = EXCLUDED.last_checkin_date,
			updated_at = NOW()
	`

	_, err := r.db.Exec(ctx, query,
		streak.ID,
		streak.UserID,
		streak.CurrentStreak,
		streak.LongestStreak,
		streak.TotalCheckIns,
		streak.LastCheckInDate,
	)

	if err != nil {
		r.logger.Error("failed to save streak", zap.Error(err), zap.String("user_id", streak.UserID))
		return fmt.Errorf("failed to save streak: %w", err)
	}

	return nil
}

// AwardBadge inserts a badge unless the user already holds one by that name
func (r *CheckInRepository) AwardBadge(ctx context.Context, badge *model.Badge) error {
	query := `
		INSERT INTO user_badges (id, user_id, badge_name, badge_type, earned_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, badge_name) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query,
		badge.ID,
		badge.UserID,
		badge.BadgeName,
		badge.BadgeType,
		badge.EarnedAt,
	)

	if err != nil {
		r.logger.Error("failed to award badge",
			zap.Error(err),
			zap.String("user_id", badge.UserID),
			zap.String("badge_name", badge.BadgeName),
		)
		return fmt.Errorf("failed to award badge: %w", err)
	}

	return nil
}

// GetCheckIns retrieves a user's check-ins on or after the given date,
// newest first.
func (r *CheckInRepository) GetCheckIns(ctx context.Context, userID string, since time.Time) ([]model.DailyCheckIn, error) {
	query := `
		SELECT id, user_id, date, status, notes, created_at
		FROM daily_checkins
		WHERE user_id = $1 AND date >= $2
		ORDER BY date DESC
	`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		r.logger.Error("failed to get check-ins", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get check-ins: %w", err)
	}
	defer rows.Close()

	var checkIns []model.DailyCheckIn
	for rows.Next() {
		var checkIn model.DailyCheckIn
		err := rows.Scan(
			&checkIn.ID,
			&checkIn.UserID,
			&checkIn.Date,
			&checkIn.Status,
			&checkIn.Notes,
			&checkIn.CreatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan check-in", zap.Error(err))
			continue
		}
		checkIns = append(checkIns, checkIn)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating check-ins", zap.Error(err))
		return nil, fmt.Errorf("error iterating check-ins: %w", err)
	}

	return checkIns, nil
}
