package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/menticure/backend/pkg/model"
	"go.uber.org/zap"
)

// MentalStateRepository manages inferred mental-state snapshots
type MentalStateRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewMentalStateRepository creates a new MentalStateRepository
func NewMentalStateRepository(db *pgxpool.Pool, logger *zap.Logger) *MentalStateRepository {
	return &MentalStateRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts a new mental-state record. Records are never mutated
// after insert.
func (r *MentalStateRepository) Append(ctx context.Context, rec *model.MentalStateRecord) error {
	query := `
		INSERT INTO user_mental_states (
			id, user_id, session_id, mood, intensity,
			keywords, emotions, preferred_activities, coping_mechanisms, triggers,
			communication_style, recorded_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
	`

	_, err := r.db.Exec(ctx, query,
		rec.ID,
		rec.UserID,
		rec.SessionID,
		rec.Mood,
		rec.Intensity,
		rec.Keywords,
		rec.Emotions,
		rec.PreferredActivities,
		rec.CopingMechanisms,
		rec.Triggers,
		rec.CommunicationStyle,
		rec.RecordedAt,
	)

	if err != nil {
		r.logger.Error("failed to append mental state record",
			zap.Error(err),
			zap.String("user_id", rec.UserID),
		)
		return fmt.Errorf("failed to append mental state record: %w", err)
	}

	return nil
}

// GetSince retrieves a user's mental-state records recorded on or after
// the given time, ordered ascending by recorded_at.
func (r *MentalStateRepository) GetSince(ctx context.Context, userID string, since time.Time) ([]model.MentalStateRecord, error) {
	query := `
		SELECT
			id, user_id, session_id, mood, intensity,
			keywords, emotions, preferred_activities, coping_mechanisms, triggers,
			communication_style, recorded_at, created_at
		FROM user_mental_states
		WHERE user_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at ASC
	`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		r.logger.Error("failed to get mental state records", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get mental state records: %w", err)
	}
	defer rows.Close()

	var records []model.MentalStateRecord
	for rows.Next() {
		var rec model.MentalStateRecord
		err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.SessionID,
			&rec.Mood,
			&rec.Intensity,
			&rec.Keywords,
			&rec.Emotions,
			&rec.PreferredActivities,
			&rec.CopingMechanisms,
			&rec.Triggers,
			&rec.CommunicationStyle,
			&rec.RecordedAt,
			&rec.CreatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan mental state record", zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating mental state records", zap.Error(err))
		return nil, fmt.Errorf("error iterating mental state records: %w", err)
	}

	return records, nil
}
