package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/menticure/backend/pkg/model"
	"go.uber.org/zap"
)

// TherapyRepository manages therapist profiles and booked sessions
type TherapyRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewTherapyRepository creates a new TherapyRepository
func NewTherapyRepository(db *pgxpool.Pool, logger *zap.Logger) *TherapyRepository {
	return &TherapyRepository{
		db:     db,
		logger: logger,
	}
}

// ListTherapists retrieves all profiles with the therapist role
func (r *TherapyRepository) ListTherapists(ctx context.Context) ([]model.TherapistProfile, error) {
	query := `
		SELECT id, user_id, first_name, last_name, specialty, bio
		FROM profiles
		WHERE role = 'therapist'
		ORDER BY last_name ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("failed to list therapists", zap.Error(err))
		return nil, fmt.Errorf("failed to list therapists: %w", err)
	}
	defer rows.Close()

	var therapists []model.TherapistProfile
	for rows.Next() {
		var t model.TherapistProfile
		err := rows.Scan(&t.ID, &t.UserID, &t.FirstName, &t.LastName, &t.Specialty, &t.Bio)
		if err != nil {
			r.logger.Error("failed to scan therapist profile", zap.Error(err))
			continue
		}
		therapists = append(therapists, t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating therapist profiles", zap.Error(err))
		return nil, fmt.Errorf("error iterating therapist profiles: %w", err)
	}

	return therapists, nil
}

// CreateSession inserts a new therapy session booking
func (r *TherapyRepository) CreateSession(ctx context.Context, session *model.TherapySession) error {
	query := `
		INSERT INTO therapy_sessions (id, user_id, therapist_id, session_date, session_type, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`

	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.TherapistID,
		session.SessionDate,
		session.SessionType,
		session.Status,
		session.Notes,
	)

	if err != nil {
		r.logger.Error("failed to create therapy session",
			zap.Error(err),
			zap.String("user_id", session.UserID),
			zap.String("therapist_id", session.TherapistID),
		)
		return fmt.Errorf("failed to create therapy session: %w", err)
	}

	return nil
}

// GetSession retrieves a therapy session by ID
func (r *TherapyRepository) GetSession(ctx context.Context, sessionID string) (*model.TherapySession, error) {
	query := `
		SELECT id, user_id, therapist_id, session_date, session_type, status, notes, created_at, updated_at
		FROM therapy_sessions
		WHERE id = $1
	`

	var session model.TherapySession
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.TherapistID,
		&session.SessionDate,
		&session.SessionType,
		&session.Status,
		&session.Notes,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("therapy session not found: %s", sessionID)
		}
		r.logger.Error("failed to get therapy session", zap.Error(err), zap.String("session_id", sessionID))
		return nil, fmt.Errorf("failed to get therapy session: %w", err)
	}

	return &session, nil
}

// ListSessionsByUser retrieves a user's therapy sessions, soonest first
func (r *TherapyRepository) ListSessionsByUser(ctx context.Context, userID string) ([]model.TherapySession, error) {
	query := `
		SELECT id, user_id, therapist_id, session_date, session_type, status, notes, created_at, updated_at
		FROM therapy_sessions
		WHERE user_id = $1
		ORDER BY session_date ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to list therapy sessions", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to list therapy sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.TherapySession
	for rows.Next() {
		var session model.TherapySession
		err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.TherapistID,
			&session.SessionDate,
			&session.SessionType,
			&session.Status,
			&session.Notes,
			&session.CreatedAt,
			&session.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan therapy session", zap.Error(err))
			continue
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating therapy sessions", zap.Error(err))
		return nil, fmt.Errorf("error iterating therapy sessions: %w", err)
	}

	return sessions, nil
}

// UpdateSessionStatus updates the status of a therapy session
func (r *TherapyRepository) UpdateSessionStatus(ctx context.Context, sessionID string, status model.SessionStatus) error {
	query := `
		UPDATE therapy_sessions
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.Exec(ctx, query, status, sessionID)
	if err != nil {
		r.logger.Error("failed to update therapy session status", zap.Error(err), zap.String("session_id", sessionID))
		return fmt.Errorf("failed to update therapy session status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("therapy session not found: %s", sessionID)
	}

	return nil
}
