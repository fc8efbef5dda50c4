package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/menticure/backend/pkg/model"
	"go.uber.org/zap"
)

// ChatRepository manages chat sessions and their turns
type ChatRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *pgxpool.Pool, logger *zap.Logger) *ChatRepository {
	return &ChatRepository{
		db:     db,
		logger: logger,
	}
}

// CreateSession creates a new chat session
func (r *ChatRepository) CreateSession(ctx context.Context, session *model.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (id, user_id, message_count, session_start, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`

	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.MessageCount,
		session.SessionStart,
	)

	if err != nil {
		r.logger.Error("failed to create chat session", zap.Error(err), zap.String("session_id", session.ID))
		return fmt.Errorf("failed to create chat session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID
func (r *ChatRepository) GetSession(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	query := `
		SELECT id, user_id, message_count, emotional_summary, session_start, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1
	`

	var session model.ChatSession
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.MessageCount,
		&session.EmotionalSummary,
		&session.SessionStart,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("chat session not found: %s", sessionID)
		}
		r.logger.Error("failed to get chat session", zap.Error(err), zap.String("session_id", sessionID))
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}

	return &session, nil
}

// SaveTurn inserts a new chat turn
func (r *ChatRepository) SaveTurn(ctx context.Context, turn *model.ChatTurn) error {
	query := `
		INSERT INTO conversations (id, session_id, user_id, message, response, emotional_tone, message_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`

	_, err := r.db.Exec(ctx, query,
		turn.ID,
		turn.SessionID,
		turn.UserID,
		turn.Message,
		turn.Response,
		turn.EmotionalTone,
		turn.SequenceNumber,
	)

	if err != nil {
		r.logger.Error("failed to save chat turn",
			zap.Error(err),
			zap.String("session_id", turn.SessionID),
			zap.Int("sequence_number", turn.SequenceNumber),
		)
		return fmt.Errorf("failed to save chat turn: %w", err)
	}

	return nil
}

// GetRecentTurns retrieves the most recent limit turns for a session,
// newest first. Callers reverse for a chronological transcript.
func (r *ChatRepository) GetRecentTurns(ctx context.Context, sessionID string, limit int) ([]model.ChatTurn, error) {
	query := `
		SELECT id, session_id, user_id, message, response, emotional_tone, message_count, created_at
		FROM conversations
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		r.logger.Error("failed to get recent turns", zap.Error(err), zap.String("session_id", sessionID))
		return nil, fmt.Errorf("failed to get recent turns: %w", err)
	}
	defer rows.Close()

	return scanTurns(rows, r.logger)
}

// GetAllTurns retrieves every turn for a session in chronological order.
func (r *ChatRepository) GetAllTurns(ctx context.Context, sessionID string) ([]model.ChatTurn, error) {
	query := `
		SELECT id, session_id, user_id, message, response, emotional_tone, message_count, created_at
		FROM conversations
		WHERE session_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		r.logger.Error("failed to get session turns", zap.Error(err), zap.String("session_id", sessionID))
		return nil, fmt.Errorf("failed to get session turns: %w", err)
	}
	defer rows.Close()

	return scanTurns(rows, r.logger)
}

func scanTurns(rows pgx.Rows, logger *zap.Logger) ([]model.ChatTurn, error) {
	var turns []model.ChatTurn
	for rows.Next() {
		var turn model.ChatTurn
		err := rows.Scan(
			&turn.ID,
			&turn.SessionID,
			&turn.UserID,
			&turn.Message,
			&turn.Response,
			&turn.EmotionalTone,
			&turn.SequenceNumber,
			&turn.CreatedAt,
		)
		if err != nil {
			logger.Error("failed to scan chat turn", zap.Error(err))
			continue
		}
		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		logger.Error("error iterating chat turns", zap.Error(err))
		return nil, fmt.Errorf("error iterating chat turns: %w", err)
	}

	return turns, nil
}

// UpdateSessionCount updates the session's message count mirror
func (r *ChatRepository) UpdateSessionCount(ctx context.Context, sessionID string, messageCount int) error {
	query := `
		UPDATE chat_sessions
		SET message_count = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.Exec(ctx, query, messageCount, sessionID)
	if err != nil {
		r.logger.Error("failed to update session count", zap.Error(err), zap.String("session_id", sessionID))
		return fmt.Errorf("failed to update session count: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("chat session not found: %s", sessionID)
	}

	return nil
}

// SetEmotionalSummary stores the periodic session summary
func (r *ChatRepository) SetEmotionalSummary(ctx context.Context, sessionID, summary string) error {
	query := `
		UPDATE chat_sessions
		SET emotional_summary = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.Exec(ctx, query, summary, sessionID)
	if err != nil {
		r.logger.Error("failed to set emotional summary", zap.Error(err), zap.String("session_id", sessionID))
		return fmt.Errorf("failed to set emotional summary: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("chat session not found: %s", sessionID)
	}

	return nil
}
