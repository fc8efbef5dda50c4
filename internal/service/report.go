package service

import (
	"context"
	"fmt"
	"time"

	"github.com/menticure/backend/pkg/model"
	"go.uber.org/zap"
)

// ReportData contains all data needed for wellness report generation
type ReportData struct {
	DateRange     string
	MoodRecords   []model.MoodRecord
	DailyCheckIns []model.DailyCheckIn
	Streak        *model.UserStreak
	Analysis      *MentalStateAnalysis
}

// ReportRenderer turns assembled report data into a downloadable document
type ReportRenderer interface {
	Generate(data *ReportData) ([]byte, error)
}

// ReportService assembles and renders per-user wellness reports
type ReportService struct {
	moods    MoodStore
	checkIns CheckInStore
	insights *InsightsService
	renderer ReportRenderer
	logger   *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(moods MoodStore, checkIns CheckInStore, insights *InsightsService, renderer ReportRenderer, logger *zap.Logger) *ReportService {
	return &ReportService{
		moods:    moods,
		checkIns: checkIns,
		insights: insights,
		renderer: renderer,
		logger:   logger,
	}
}

// GenerateReport builds a wellness report PDF covering the lookback
// window. The emotional-insights section is omitted rather than failing
// the whole report when the analysis cannot be produced.
func (s *ReportService) GenerateReport(ctx context.Context, userID string, days int) ([]byte, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	s.logger.Info("generating wellness report",
		zap.String("user_id", userID),
		zap.Int("days", days),
	)

	moods, err := s.moods.GetSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get mood records for report: %w", err)
	}

	checkIns, err := s.checkIns.GetCheckIns(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get check-ins for report: %w", err)
	}

	streak, err := s.checkIns.GetStreak(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get streak for report: %w", err)
	}

	analysis, err := s.insights.Analyze(ctx, userID, days)
	if err != nil {
		s.logger.Warn("omitting emotional insights from report",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		analysis = nil
	}

	data := &ReportData{
		DateRange:     fmt.Sprintf("%s to %s", since.Format("2006-01-02"), time.Now().Format("2006-01-02")),
		MoodRecords:   moods,
		DailyCheckIns: checkIns,
		Streak:        streak,
		Analysis:      analysis,
	}

	return s.renderer.Generate(data)
}
