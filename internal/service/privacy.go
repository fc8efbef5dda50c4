package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/menticure/backend/internal/audit"
	"github.com/menticure/backend/pkg/model"
	"go.uber.org/zap"
)

// PrivacyService handles data deletion and export requests
type PrivacyService struct {
	db          *pgxpool.Pool
	auditLogger *audit.Logger
	logger      *zap.Logger
}

// NewPrivacyService creates a new PrivacyService
func NewPrivacyService(db *pgxpool.Pool, auditLogger *audit.Logger, logger *zap.Logger) *PrivacyService {
	return &PrivacyService{
		db:          db,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// UserDataExport represents all user data for export
type UserDataExport struct {
	MoodRecords     []model.MoodRecord        `json:"mood_records"`
	MentalStates    []model.MentalStateRecord `json:"mental_states"`
	ChatSessions    []model.ChatSession       `json:"chat_sessions"`
	ChatTurns       []model.ChatTurn          `json:"chat_turns"`
	DailyCheckIns   []model.DailyCheckIn      `json:"daily_checkins"`
	Streak          *model.UserStreak         `json:"streak,omitempty"`
	Badges          []model.Badge             `json:"badges"`
	TherapySessions []model.TherapySession    `json:"therapy_sessions"`
	ExportedAt      time.Time                 `json:"exported_at"`
}

// userDataTables lists every table holding per-user rows, in deletion
// order (turns before their sessions).
var userDataTables = []string{
	"conversations",
	"chat_sessions",
	"user_mental_states",
	"mood_tracker",
	"daily_checkins",
	"user_streaks",
	"user_badges",
	"therapy_sessions",
}

// DeleteUserData removes every row the user owns in a single
// transaction. Audit logs are kept.
func (s *PrivacyService) DeleteUserData(ctx context.Context, userID, ipAddress, userAgent string) error {
	s.logger.Info("Starting user data deletion",
		zap.String("user_id", userID),
	)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range userDataTables {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE user_id = $1", userID); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if err := s.auditLogger.LogDelete(ctx, userID, audit.ResourceUserData, userID, ipAddress, userAgent); err != nil {
		s.logger.Error("Failed to log audit entry for user deletion", zap.Error(err))
	}

	s.logger.Info("User data deletion completed",
		zap.String("user_id", userID),
	)

	return nil
}

// ExportUserData exports all user data to JSON.
func (s *PrivacyService) ExportUserData(ctx context.Context, userID, ipAddress, userAgent string) ([]byte, error) {
	s.logger.Info("Starting user data export",
		zap.String("user_id", userID),
	)

	export := UserDataExport{
		MoodRecords:     []model.MoodRecord{},
		MentalStates:    []model.MentalStateRecord{},
		ChatSessions:    []model.ChatSession{},
		ChatTurns:       []model.ChatTurn{},
		DailyCheckIns:   []model.DailyCheckIn{},
		Badges:          []model.Badge{},
		TherapySessions: []model.TherapySession{},
		ExportedAt:      time.Now(),
	}

	if err := s.collectMoodRecords(ctx, userID, &export); err != nil {
		return nil, err
	}
	if err := s.collectMentalStates(ctx, userID, &export); err != nil {
		return nil, err
	}
	if err := s.collectChat(ctx, userID, &export); err != nil {
		return nil, err
	}
	if err := s.collectCheckIns(ctx, userID, &export); err != nil {
		return nil, err
	}
	if err := s.collectTherapySessions(ctx, userID, &export); err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	if err := s.auditLogger.LogExport(ctx, userID, audit.ResourceUserData, ipAddress, userAgent); err != nil {
		s.logger.Error("Failed to log audit entry for user export", zap.Error(err))
	}

	return data, nil
}

func (s *PrivacyService) collectMoodRecords(ctx context.Context, userID string, export *UserDataExport) error {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, mood, sleep_hours, anxiety_level, stress_level, notes, created_at
		FROM mood_tracker WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to get mood records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec model.MoodRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Mood, &rec.SleepHours,
			&rec.AnxietyLevel, &rec.StressLevel, &rec.Notes, &rec.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan mood record: %w", err)
		}
		export.MoodRecords = append(export.MoodRecords, rec)
	}
	return rows.Err()
}

func (s *PrivacyService) collectMentalStates(ctx context.Context, userID string, export *UserDataExport) error {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, session_id, mood, intensity, keywords, emotions,
		       preferred_activities, coping_mechanisms, triggers, communication_style,
		       recorded_at, created_at
		FROM user_mental_states WHERE user_id = $1
		ORDER BY recorded_at ASC
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to get mental states: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec model.MentalStateRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.SessionID, &rec.Mood, &rec.Intensity,
			&rec.Keywords, &rec.Emotions, &rec.PreferredActivities, &rec.CopingMechanisms,
			&rec.Triggers, &rec.CommunicationStyle, &rec.RecordedAt, &rec.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan mental state: %w", err)
		}
		export.MentalStates = append(export.MentalStates, rec)
	}
	return rows.Err()
}

func (s *PrivacyService) collectChat(ctx context.Context, userID string, export *UserDataExport) error {
	sessionRows, err := s.db.Query(ctx, `
		SELECT id, user_id, message_count, emotional_summary, session_start, created_at, updated_at
		FROM chat_sessions WHERE user_id = $1
		ORDER BY session_start ASC
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to get chat sessions: %w", err)
	}
	defer sessionRows.Close()

	for sessionRows.Next() {
		var session model.ChatSession
		if err := sessionRows.Scan(&session.ID, &session.UserID, &session.MessageCount,
			&session.EmotionalSummary, &session.SessionStart, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan chat session: %w", err)
		}
		export.ChatSessions = append(export.ChatSessions, session)
	}
	if err := sessionRows.Err(); err != nil {
		return err
	}

	turnRows, err := s.db.Query(ctx, `
		SELECT id, session_id, user_id, message, response, emotional_tone, message_count, created_at
		FROM conversations WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to get chat turns: %w", err)
	}
	defer turnRows.Close()

	for turnRows.Next() {
		var turn model.ChatTurn
		if err := turnRows.Scan(&turn.ID, &turn.SessionID, &turn.UserID, &turn.Message,
			&turn.Response, &turn.EmotionalTone, &turn.SequenceNumber, &turn.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan chat turn: %w", err)
		}
		export.ChatTurns = append(export.ChatTurns, turn)
	}
	return turnRows.Err()
}

func (s *PrivacyService) collectCheckIns(ctx context.Context, userID string, export *UserDataExport) error {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, date, status, notes, created_at
		FROM daily_checkins WHERE user_id = $1
		ORDER BY date ASC
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to get daily check-ins: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var checkIn model.DailyCheckIn
		if err := rows.Scan(&checkIn.ID, &checkIn.UserID, &checkIn.Date,
			&checkIn.Status, &checkIn.Notes, &checkIn.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan daily check-in: %w", err)
		}
		export.DailyCheckIns = append(export.DailyCheckIns, checkIn)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var streak model.UserStreak
	err = s.db.QueryRow(ctx, `
		SELECT id, user_id, current_streak, longest_streak, total_checkins, last_checkin_date, updated_at
		FROM user_streaks WHERE user_id = $1
	`, userID).Scan(&streak.ID, &streak.UserID, &streak.CurrentStreak, &streak.LongestStreak,
		&streak.TotalCheckIns, &streak.LastCheckInDate, &streak.UpdatedAt)
	switch {
	case err == nil:
		export.Streak = &streak
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("failed to get streak: %w", err)
	}

	badgeRows, err := s.db.Query(ctx, `
		SELECT id, user_id, badge_name, badge_type, earned_at
		FROM user_badges WHERE user_id = $1
		ORDER BY earned_at ASC
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to get badges: %w", err)
	}
	defer badgeRows.Close()

	for badgeRows.Next() {
		var badge model.Badge
		if err := badgeRows.Scan(&badge.ID, &badge.UserID, &badge.BadgeName,
			&badge.BadgeType, &badge.EarnedAt); err != nil {
			return fmt.Errorf("failed to scan badge: %w", err)
		}
		export.Badges = append(export.Badges, badge)
	}
	return badgeRows.Err()
}

func (s *PrivacyService) collectTherapySessions(ctx context.Context, userID string, export *UserDataExport) error {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, therapist_id, session_date, session_type, status, notes, created_at, updated_at
		FROM therapy_sessions WHERE user_id = $1
		ORDER BY session_date ASC
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to get therapy sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var session model.TherapySession
		if err := rows.Scan(&session.ID, &session.UserID, &session.TherapistID, &session.SessionDate,
			&session.SessionType, &session.Status, &session.Notes, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan therapy session: %w", err)
		}
		export.TherapySessions = append(export.TherapySessions, session)
	}
	return rows.Err()
}
