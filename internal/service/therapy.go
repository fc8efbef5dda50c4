package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/menticure/backend/pkg/model"
	"go.uber.org/zap"
)

// TherapyStore is the persistence dependency of the therapy service
type TherapyStore interface {
	ListTherapists(ctx context.Context) ([]model.TherapistProfile, error)
	CreateSession(ctx context.Context, session *model.TherapySession) error
	GetSession(ctx context.Context, sessionID string) (*model.TherapySession, error)
	ListSessionsByUser(ctx context.Context, userID string) ([]model.TherapySession, error)
	UpdateSessionStatus(ctx context.Context, sessionID string, status model.SessionStatus) error
}

// validTransitions enumerates the allowed status changes of a therapy
// session. Completed and cancelled are terminal.
var validTransitions = map[model.SessionStatus][]model.SessionStatus{
	model.SessionPending:   {model.SessionConfirmed, model.SessionCancelled},
	model.SessionConfirmed: {model.SessionCompleted, model.SessionCancelled},
}

// TherapyService handles therapist discovery and session booking
type TherapyService struct {
	store  TherapyStore
	logger *zap.Logger
}

// NewTherapyService creates a new TherapyService
func NewTherapyService(store TherapyStore, logger *zap.Logger) *TherapyService {
	return &TherapyService{store: store, logger: logger}
}

// ListTherapists returns all bookable therapists.
func (s *TherapyService) ListTherapists(ctx context.Context) ([]model.TherapistProfile, error) {
	therapists, err := s.store.ListTherapists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list therapists: %w", err)
	}
	return therapists, nil
}

// BookSession creates a pending session with the given therapist. The
// session date must be in the future.
func (s *TherapyService) BookSession(ctx context.Context, userID, therapistID string, sessionDate time.Time, sessionType string, notes *string) (*model.TherapySession, error) {
	if therapistID == "" {
		return nil, fmt.Errorf("therapist id is required")
	}
	if !sessionDate.After(time.Now()) {
		return nil, fmt.Errorf("session date must be in the future")
	}
	if sessionType == "" {
		sessionType = "individual"
	}

	session := &model.TherapySession{
		ID:          uuid.New().String(),
		UserID:      userID,
		TherapistID: therapistID,
		SessionDate: sessionDate,
		SessionType: sessionType,
		Status:      model.SessionPending,
		Notes:       notes,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to book session: %w", err)
	}

	s.logger.Info("therapy session booked",
		zap.String("user_id", userID),
		zap.String("therapist_id", therapistID),
		zap.Time("session_date", sessionDate),
	)
	return session, nil
}

// ListSessions returns the user's booked sessions, soonest first.
func (s *TherapyService) ListSessions(ctx context.Context, userID string) ([]model.TherapySession, error) {
	sessions, err := s.store.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// UpdateStatus moves a session through its lifecycle. Only the user who
// booked the session may change it, and only along a valid transition.
func (s *TherapyService) UpdateStatus(ctx context.Context, userID, sessionID string, status model.SessionStatus) (*model.TherapySession, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, fmt.Errorf("session does not belong to user")
	}

	allowed := false
	for _, next := range validTransitions[session.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("cannot move session from %s to %s", session.Status, status)
	}

	if err := s.store.UpdateSessionStatus(ctx, sessionID, status); err != nil {
		return nil, fmt.Errorf("failed to update session status: %w", err)
	}

	session.Status = status
	return session, nil
}
