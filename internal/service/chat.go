package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/menticure/backend/pkg/model"
	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"
)

// FallbackResponse is the user-safe reply attached to upstream failures.
const FallbackResponse = "I'm sorry, I'm having trouble responding right now. Please try again later or " +
	"consider reaching out to a mental health professional if you need immediate support."

const systemPersona = `You are MentiCure AI, a compassionate mental health support chatbot. Your role is to:

1. Provide emotional support and encouragement
2. Offer evidence-based coping strategies and techniques
3. Suggest mindfulness and breathing exercises
4. Help users identify patterns in their mood and emotions
5. Encourage professional help when appropriate
6. Be empathetic, non-judgmental, and supportive

IMPORTANT: You are NOT a replacement for professional therapy or medical advice. Always encourage users to seek professional help for serious mental health concerns.

Guidelines:
- Keep responses warm, supportive, and personalized (2-4 sentences)
- Offer practical, actionable advice
- Ask follow-up questions to better understand the user's situation
- Be encouraging about their mental health journey`

// recentTurnLimit bounds the transcript included in the model context.
const recentTurnLimit = 3

// summaryInterval is how often (in turns) a session summary is produced.
const summaryInterval = 5

// ChatStore is the persistence dependency of the chat turn processor
type ChatStore interface {
	CreateSession(ctx context.Context, session *model.ChatSession) error
	GetSession(ctx context.Context, sessionID string) (*model.ChatSession, error)
	SaveTurn(ctx context.Context, turn *model.ChatTurn) error
	GetRecentTurns(ctx context.Context, sessionID string, limit int) ([]model.ChatTurn, error)
	GetAllTurns(ctx context.Context, sessionID string) ([]model.ChatTurn, error)
	UpdateSessionCount(ctx context.Context, sessionID string, messageCount int) error
	SetEmotionalSummary(ctx context.Context, sessionID, summary string) error
}

// MentalStateWriter appends inferred snapshots after each turn
type MentalStateWriter interface {
	Append(ctx context.Context, rec *model.MentalStateRecord) error
}

// CompletionClient is the chat-completion dependency
type CompletionClient interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
}

// TurnRequest is one inbound chat message with its session bookkeeping
type TurnRequest struct {
	Message      string
	Context      string
	SessionID    string
	MessageCount int
}

// TurnResult is the reply plus bookkeeping for one processed turn
type TurnResult struct {
	Response      string
	IsCrisis      bool
	EmotionalTone model.EmotionalTone
	MessageCount  int
	SessionID     string
}

// ChatService processes chat turns against the hosted model
type ChatService struct {
	store      ChatStore
	states     MentalStateWriter
	aiClient   CompletionClient
	summarizer CompletionClient
	logger     *zap.Logger
}

// NewChatService creates a new ChatService. The summarizer may point at a
// cheaper model than the conversational client.
func NewChatService(store ChatStore, states MentalStateWriter, aiClient, summarizer CompletionClient, logger *zap.Logger) *ChatService {
	return &ChatService{
		store:      store,
		states:     states,
		aiClient:   aiClient,
		summarizer: summarizer,
		logger:     logger,
	}
}

// ProcessTurn handles one inbound message. The crisis gate runs first on
// every message; a match short-circuits with the fixed resources reply and
// neither calls the model nor persists anything. Otherwise the flow is
// classify, assemble context, call the model, then best-effort
// persistence whose failures never reach the caller.
func (s *ChatService) ProcessTurn(ctx context.Context, userID string, req TurnRequest) (*TurnResult, error) {
	if IsCrisisMessage(req.Message) {
		s.logger.Warn("crisis language detected, returning resources",
			zap.String("user_id", userID),
		)
		return &TurnResult{
			Response: CrisisResponse,
			IsCrisis: true,
		}, nil
	}

	tone := ClassifyTone(req.Message)

	transcript, err := s.assembleContext(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble conversation context: %w", err)
	}

	systemPrompt := s.buildSystemPrompt(tone, req.Context, transcript)

	reply, err := s.aiClient.Complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(req.Message),
	})
	if err != nil {
		s.logger.Error("model invocation failed",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("model invocation failed: %w", err)
	}

	newCount := req.MessageCount + 1
	sessionID := s.persistTurn(ctx, userID, req, reply, tone, newCount)

	return &TurnResult{
		Response:      reply,
		EmotionalTone: tone,
		MessageCount:  newCount,
		SessionID:     sessionID,
	}, nil
}

// assembleContext renders the most recent turns of the session as a flat
// transcript. Empty when there is no session or no prior turns.
func (s *ChatService) assembleContext(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}

	turns, err := s.store.GetRecentTurns(ctx, sessionID, recentTurnLimit)
	if err != nil {
		return "", err
	}

	// Fetched newest-first; reverse for chronological order.
	var b strings.Builder
	for i := len(turns) - 1; i >= 0; i-- {
		b.WriteString("User: " + turns[i].Message + "\n")
		b.WriteString("AI: " + turns[i].Response + "\n")
	}
	return b.String(), nil
}

func (s *ChatService) buildSystemPrompt(tone model.EmotionalTone, userContext, transcript string) string {
	var b strings.Builder
	b.WriteString(systemPersona)
	b.WriteString("\n\nDetected emotional tone of the latest message: " + string(tone))
	if userContext == "" {
		userContext = "No additional context provided"
	}
	b.WriteString("\nContext about user: " + userContext)
	if transcript != "" {
		b.WriteString("\n\nRecent conversation:\n" + transcript)
	}
	return b.String()
}

// persistTurn records the turn, session counters, the derived mental-state
// snapshot, and the periodic summary. Every failure here is logged and
// swallowed: the user-facing reply has already been produced. Returns the
// session ID the turn was recorded under (empty when session creation
// failed).
func (s *ChatService) persistTurn(ctx context.Context, userID string, req TurnRequest, reply string, tone model.EmotionalTone, newCount int) string {
	sessionID := req.SessionID
	if sessionID == "" {
		session := &model.ChatSession{
			ID:           uuid.New().String(),
			UserID:       userID,
			MessageCount: 0,
			SessionStart: time.Now(),
		}
		if err := s.store.CreateSession(ctx, session); err != nil {
			s.logger.Warn("failed to create chat session", zap.Error(err), zap.String("user_id", userID))
			return ""
		}
		sessionID = session.ID
	}

	turn := &model.ChatTurn{
		ID:             uuid.New().String(),
		SessionID:      sessionID,
		UserID:         userID,
		Message:        req.Message,
		Response:       reply,
		EmotionalTone:  tone,
		SequenceNumber: newCount,
	}
	if err := s.store.SaveTurn(ctx, turn); err != nil {
		s.logger.Warn("failed to save chat turn", zap.Error(err), zap.String("session_id", sessionID))
	}

	if err := s.store.UpdateSessionCount(ctx, sessionID, newCount); err != nil {
		s.logger.Warn("failed to update session count", zap.Error(err), zap.String("session_id", sessionID))
	}

	state := DeriveMentalState(req.Message, tone)
	state.ID = uuid.New().String()
	state.UserID = userID
	state.SessionID = &sessionID
	state.RecordedAt = time.Now()
	if err := s.states.Append(ctx, &state); err != nil {
		s.logger.Warn("failed to append mental state record", zap.Error(err), zap.String("session_id", sessionID))
	}

	if newCount >= summaryInterval && newCount%summaryInterval == 0 {
		s.summarizeSession(ctx, sessionID)
	}

	return sessionID
}

// summarizeSession asks the model for a short supportive summary of the
// whole session and stores it. Best-effort like the rest of persistence.
func (s *ChatService) summarizeSession(ctx context.Context, sessionID string) {
	turns, err := s.store.GetAllTurns(ctx, sessionID)
	if err != nil {
		s.logger.Warn("failed to fetch session transcript for summary", zap.Error(err), zap.String("session_id", sessionID))
		return
	}

	var b strings.Builder
	for _, turn := range turns {
		b.WriteString("User: " + turn.Message + "\n")
		b.WriteString("AI: " + turn.Response + "\n")
	}

	summary, err := s.summarizer.Complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("Summarize the emotional journey of this support conversation in 2-3 supportive sentences, addressed to the user."),
		openai.UserMessage(b.String()),
	})
	if err != nil {
		s.logger.Warn("failed to generate session summary", zap.Error(err), zap.String("session_id", sessionID))
		return
	}

	if err := s.store.SetEmotionalSummary(ctx, sessionID, summary); err != nil {
		s.logger.Warn("failed to store session summary", zap.Error(err), zap.String("session_id", sessionID))
		return
	}

	s.logger.Info("session summary stored",
		zap.String("session_id", sessionID),
		zap.Int("turns", len(turns)),
	)
}
