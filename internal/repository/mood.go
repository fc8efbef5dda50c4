package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/menticure/backend/pkg/model"
	"go.uber.org/zap"
)

// MoodRepository manages explicit mood check-in records
type MoodRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewMoodRepository creates a new MoodRepository
func NewMoodRepository(db *pgxpool.Pool, logger *zap.Logger) *MoodRepository {
	return &MoodRepository{
		db:     db,
		logger: logger,
	}
}

// Insert saves a new mood record
func (r *MoodRepository) Insert(ctx context.Context, rec *model.MoodRecord) error {
	query := `
		INSERT INTO mood_tracker (id, user_id, mood, sleep_hours, anxiety_level, stress_level, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	_, err := r.db.Exec(ctx, query,
		rec.ID,
		rec.UserID,
		rec.Mood,
		rec.SleepHours,
		rec.AnxietyLevel,
		rec.StressLevel,
		rec.Notes,
	)

	if err != nil {
		r.logger.Error("failed to insert mood record",
			zap.Error(err),
			zap.String("user_id", rec.UserID),
		)
		return fmt.Errorf("failed to insert mood record: %w", err)
	}

	return nil
}

// GetSince retrieves a user's mood records created on or after the given
// time, newest first.
func (r *MoodRepository) GetSince(ctx context.Context, userID string, since time.Time) ([]model.MoodRecord, error) {
	query := `
		SELECT id, user_id, mood, sleep_hours, anxiety_level, stress_level, notes, created_at
		FROM mood_tracker
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		r.logger.Error("failed to get mood records", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get mood records: %w", err)
	}
	defer rows.Close()

	var records []model.MoodRecord
	for rows.Next() {
		var rec model.MoodRecord
		err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Mood,
			&rec.SleepHours,
			&rec.AnxietyLevel,
			&rec.StressLevel,
			&rec.Notes,
			&rec.CreatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan mood record", zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating mood records", zap.Error(err))
		return nil, fmt.Errorf("error iterating mood records: %w", err)
	}

	return records, nil
}
