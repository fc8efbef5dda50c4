package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/menticure/backend/pkg/model"
	"go.uber.org/zap"
)

// TrendDirection describes the mood trajectory over the analysis window.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// MoodTrends carries the trend direction and its display confidence.
// Confidence is a linear heuristic scaling of the mood-score delta into
// 0-100, not a statistical confidence interval.
type MoodTrends struct {
	Direction  TrendDirection `json:"direction"`
	Confidence float64        `json:"confidence"`
}

// CommonPatterns are the frequency-ranked behavioral patterns across the
// analysis window.
type CommonPatterns struct {
	PreferredActivities []string `json:"preferred_activities"`
	EffectiveCoping     []string `json:"effective_coping"`
	FrequentTriggers    []string `json:"frequent_triggers"`
	CommunicationPrefs  string   `json:"communication_prefs"`
}

// MentalStateAnalysis is the full trend summary for a lookback window.
type MentalStateAnalysis struct {
	OverallMood     string         `json:"overall_mood"`
	MoodTrends      MoodTrends     `json:"mood_trends"`
	CommonPatterns  CommonPatterns `json:"common_patterns"`
	Recommendations []string       `json:"recommendations"`
	Insights        []string       `json:"insights"`
}

// CheckInNudge is the one-line banner shape derived from a 7-day analysis.
type CheckInNudge struct {
	Suggestion      string         `json:"suggestion"`
	MoodTrend       TrendDirection `json:"mood_trend"`
	PreferredCoping *string        `json:"preferred_coping"`
	OverallState    string         `json:"overall_state"`
}

const fallbackSuggestion = "Take a moment to reflect on how you're feeling today"

// MentalStateReader is the data-access dependency of the analyzer
type MentalStateReader interface {
	GetSince(ctx context.Context, userID string, since time.Time) ([]model.MentalStateRecord, error)
}

// NudgeCache caches computed nudges; a miss is (nil, nil)
type NudgeCache interface {
	Get(ctx context.Context, userID string) (*CheckInNudge, error)
	Set(ctx context.Context, userID string, nudge *CheckInNudge) error
}

// InsightsService computes mood trend summaries from mental-state history
type InsightsService struct {
	repo   MentalStateReader
	cache  NudgeCache
	logger *zap.Logger
}

// NewInsightsService creates a new InsightsService. cache may be nil.
func NewInsightsService(repo MentalStateReader, cache NudgeCache, logger *zap.Logger) *InsightsService {
	return &InsightsService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Analyze computes the trend summary over the last days days. Zero records
// in the window is not an error: a fixed neutral result is returned.
// Fetch failures propagate to the caller.
func (s *InsightsService) Analyze(ctx context.Context, userID string, days int) (*MentalStateAnalysis, error) {
	if days <= 0 {
		days = 30
	}

	since := time.Now().AddDate(0, 0, -days)
	records, err := s.repo.GetSince(ctx, userID, since)
	if err != nil {
		s.logger.Error("failed to fetch mental state history",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.Int("days", days),
		)
		return nil, fmt.Errorf("failed to fetch mental state history: %w", err)
	}

	analysis := analyzeRecords(records, days)

	s.logger.Info("mental state analysis computed",
		zap.String("user_id", userID),
		zap.Int("days", days),
		zap.Int("record_count", len(records)),
		zap.String("direction", string(analysis.MoodTrends.Direction)),
	)

	return analysis, nil
}

// CheckInNudge derives the banner nudge from a 7-day analysis. Any failure
// degrades to the generic neutral nudge; this path never errors.
func (s *InsightsService) CheckInNudge(ctx context.Context, userID string) *CheckInNudge {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, userID); err != nil {
			s.logger.Warn("nudge cache read failed", zap.Error(err), zap.String("user_id", userID))
		} else if cached != nil {
			return cached
		}
	}

	analysis, err := s.Analyze(ctx, userID, 7)
	if err != nil {
		s.logger.Warn("falling back to neutral nudge", zap.Error(err), zap.String("user_id", userID))
		return &CheckInNudge{
			Suggestion:      fallbackSuggestion,
			MoodTrend:       TrendStable,
			PreferredCoping: nil,
			OverallState:    "neutral",
		}
	}

	nudge := &CheckInNudge{
		Suggestion:   fallbackSuggestion,
		MoodTrend:    analysis.MoodTrends.Direction,
		OverallState: analysis.OverallMood,
	}
	if len(analysis.Recommendations) > 0 {
		nudge.Suggestion = analysis.Recommendations[0]
	}
	if len(analysis.CommonPatterns.EffectiveCoping) > 0 {
		coping := analysis.CommonPatterns.EffectiveCoping[0]
		nudge.PreferredCoping = &coping
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, nudge); err != nil {
			s.logger.Warn("nudge cache write failed", zap.Error(err), zap.String("user_id", userID))
		}
	}

	return nudge
}

// moodScores maps free-form mood tags to a numeric scale. Unrecognized
// tags score as neutral.
var moodScores = map[string]float64{
	"very_happy": 5,
	"positive":   4,
	"neutral":    3,
	"negative":   2,
	"anxious":    2,
	"depressed":  1,
}

func moodScore(tag string) float64 {
	if score, ok := moodScores[tag]; ok {
		return score
	}
	return 3
}

// analyzeRecords is the pure core of the analyzer. records must already be
// ordered ascending by recorded_at.
func analyzeRecords(records []model.MentalStateRecord, days int) *MentalStateAnalysis {
	if len(records) == 0 {
		return &MentalStateAnalysis{
			OverallMood: "neutral",
			MoodTrends:  MoodTrends{Direction: TrendStable, Confidence: 0},
			CommonPatterns: CommonPatterns{
				PreferredActivities: []string{},
				EffectiveCoping:     []string{},
				FrequentTriggers:    []string{},
				CommunicationPrefs:  string(model.StyleSupportive),
			},
			Recommendations: []string{"Start chatting with the AI to build your mental health profile"},
			Insights:        []string{"No data available yet. Continue using the app to get personalized insights."},
		}
	}

	scores := make([]float64, len(records))
	for i, rec := range records {
		scores[i] = moodScore(rec.Mood)
	}

	// Last seven entries are "recent"; with fewer than seven total the
	// older window is empty and the trend is necessarily stable.
	split := len(scores) - 7
	if split < 0 {
		split = 0
	}
	recent := scores[split:]
	older := scores[:split]

	recentAvg := mean(recent)
	olderAvg := recentAvg
	if len(older) > 0 {
		olderAvg = mean(older)
	}

	moodChange := recentAvg - olderAvg
	direction := TrendStable
	if moodChange > 0.3 {
		direction = TrendImproving
	} else if moodChange < -0.3 {
		direction = TrendDeclining
	}

	confidence := abs(moodChange) * 20
	if confidence > 100 {
		confidence = 100
	}

	var allActivities, allCoping, allTriggers []string
	for _, rec := range records {
		allActivities = append(allActivities, rec.PreferredActivities...)
		allCoping = append(allCoping, rec.CopingMechanisms...)
		allTriggers = append(allTriggers, rec.Triggers...)
	}

	activities := topByFrequency(allActivities, 3)
	coping := topByFrequency(allCoping, 3)
	triggers := topByFrequency(allTriggers, 3)

	var styles []string
	for _, rec := range records {
		if rec.CommunicationStyle != "" {
			styles = append(styles, string(rec.CommunicationStyle))
		}
	}
	communicationPrefs := string(model.StyleSupportive)
	if top := topByFrequency(styles, 1); len(top) > 0 {
		communicationPrefs = top[0]
	}

	var overallMood string
	switch {
	case recentAvg >= 4:
		overallMood = "positive"
	case recentAvg >= 3:
		overallMood = "neutral"
	case recentAvg >= 2:
		overallMood = "struggling"
	default:
		overallMood = "needs support"
	}

	var recommendations []string
	if direction == TrendDeclining {
		recommendations = append(recommendations, "Consider scheduling a check-in with a mental health professional")
		if len(coping) > 0 {
			recommendations = append(recommendations, "Try your usual coping strategies: "+strings.Join(coping, ", "))
		}
	}
	if len(activities) > 0 {
		recommendations = append(recommendations, "Engage in activities you enjoy: "+strings.Join(activities, ", "))
	}
	if len(triggers) > 0 {
		recommendations = append(recommendations, "Be mindful of your triggers: "+strings.Join(triggers, ", "))
	}
	recommendations = append(recommendations, "Continue regular check-ins to track your progress")

	var insights []string
	if direction == TrendImproving {
		insights = append(insights, "Your mood has been trending upward - great progress!")
	} else if direction == TrendDeclining {
		insights = append(insights, "Your mood has been trending downward. This is normal - consider extra self-care.")
	}
	if len(coping) > 0 {
		insights = append(insights, "You respond well to: "+strings.Join(coping, ", "))
	}
	if len(records) >= 10 {
		insights = append(insights, fmt.Sprintf("You've been consistent with tracking for %d days - this helps build self-awareness", days))
	}

	return &MentalStateAnalysis{
		OverallMood: overallMood,
		MoodTrends:  MoodTrends{Direction: direction, Confidence: confidence},
		CommonPatterns: CommonPatterns{
			PreferredActivities: activities,
			EffectiveCoping:     coping,
			FrequentTriggers:    triggers,
			CommunicationPrefs:  communicationPrefs,
		},
		Recommendations: recommendations,
		Insights:        insights,
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// topByFrequency returns the limit most frequent items, ties broken by
// first-encountered order.
func topByFrequency(items []string, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, item := range items {
		if counts[item] == 0 {
			order = append(order, item)
		}
		counts[item]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	if order == nil {
		order = []string{}
	}
	return order
}
