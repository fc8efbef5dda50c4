package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/menticure/backend/internal/service"
	"github.com/menticure/backend/pkg/model"
	"go.uber.org/zap"
)

// WellnessReportGenerator renders per-user wellness reports
type WellnessReportGenerator struct {
	logger *zap.Logger
}

// NewWellnessReportGenerator creates a new WellnessReportGenerator
func NewWellnessReportGenerator(logger *zap.Logger) *WellnessReportGenerator {
	return &WellnessReportGenerator{
		logger: logger,
	}
}

// Generate creates a PDF wellness report from the provided data
func (g *WellnessReportGenerator) Generate(data *service.ReportData) ([]byte, error) {
	g.logger.Info("generating wellness report",
		zap.String("date_range", data.DateRange),
		zap.Int("mood_records", len(data.MoodRecords)),
	)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	g.addTitle(pdf, "Wellness Report", data.DateRange)
	g.addMoodTimeline(pdf, data.MoodRecords)
	g.addCheckInStreak(pdf, data.DailyCheckIns, data.Streak)
	g.addEmotionalInsights(pdf, data.Analysis)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("wellness report generated successfully",
		zap.Int("size_bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

// addTitle adds the report title and header information
func (g *WellnessReportGenerator) addTitle(pdf *gofpdf.Fpdf, title, dateRange string) {
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Period: %s", dateRange), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(10)
}

// addSectionHeader adds a section header
func (g *WellnessReportGenerator) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
}

var moodLabels = map[model.MoodLevel]string{
	model.MoodVerySad:   "Very Sad",
	model.MoodSad:       "Sad",
	model.MoodNeutral:   "Neutral",
	model.MoodHappy:     "Happy",
	model.MoodVeryHappy: "Very Happy",
}

// addMoodTimeline adds the mood check-in timeline section
func (g *WellnessReportGenerator) addMoodTimeline(pdf *gofpdf.Fpdf, records []model.MoodRecord) {
	g.addSectionHeader(pdf, "Mood Timeline")

	if len(records) == 0 {
		pdf.CellFormat(0, 8, "No moods recorded during this period.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, rec := range records {
		dateStr := rec.CreatedAt.Format("2006-01-02")
		line := fmt.Sprintf("%s  %s", dateStr, moodLabels[rec.Mood])
		if rec.SleepHours != nil {
			line += fmt.Sprintf("  (sleep: %.1fh)", *rec.SleepHours)
		}
		if rec.AnxietyLevel != nil {
			line += fmt.Sprintf("  (anxiety: %d/10)", *rec.AnxietyLevel)
		}
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
		if rec.Notes != nil && *rec.Notes != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.CellFormat(0, 5, "  "+*rec.Notes, "", 1, "L", false, 0, "")
			pdf.SetFont("Arial", "", 10)
		}
	}
	pdf.Ln(5)
}

// addCheckInStreak adds the daily check-in section
func (g *WellnessReportGenerator) addCheckInStreak(pdf *gofpdf.Fpdf, checkIns []model.DailyCheckIn, streak *model.UserStreak) {
	g.addSectionHeader(pdf, "Daily Check-Ins")

	if streak != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Current streak: %d days", streak.CurrentStreak), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("Longest streak: %d days", streak.LongestStreak), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("Total check-ins: %d", streak.TotalCheckIns), "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}

	if len(checkIns) == 0 {
		pdf.CellFormat(0, 8, "No daily check-ins recorded during this period.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, checkIn := range checkIns {
		line := fmt.Sprintf("%s  %s", checkIn.Date.Format("2006-01-02"), checkIn.Status)
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

// addEmotionalInsights adds the trend analysis section
func (g *WellnessReportGenerator) addEmotionalInsights(pdf *gofpdf.Fpdf, analysis *service.MentalStateAnalysis) {
	g.addSectionHeader(pdf, "Emotional Insights")

	if analysis == nil {
		pdf.CellFormat(0, 8, "No emotional data available for this period.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	pdf.CellFormat(0, 6, fmt.Sprintf("Overall mood: %s", analysis.OverallMood), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Trend: %s (confidence %.0f%%)", analysis.MoodTrends.Direction, analysis.MoodTrends.Confidence), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	if len(analysis.CommonPatterns.PreferredActivities) > 0 {
		pdf.CellFormat(0, 6, "Preferred activities: "+strings.Join(analysis.CommonPatterns.PreferredActivities, ", "), "", 1, "L", false, 0, "")
	}
	if len(analysis.CommonPatterns.EffectiveCoping) > 0 {
		pdf.CellFormat(0, 6, "Effective coping: "+strings.Join(analysis.CommonPatterns.EffectiveCoping, ", "), "", 1, "L", false, 0, "")
	}
	if len(analysis.CommonPatterns.FrequentTriggers) > 0 {
		pdf.CellFormat(0, 6, "Frequent triggers: "+strings.Join(analysis.CommonPatterns.FrequentTriggers, ", "), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	if len(analysis.Recommendations) > 0 {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Recommendations", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, rec := range analysis.Recommendations {
			pdf.MultiCell(0, 5, "  - "+rec, "", "L", false)
		}
		pdf.Ln(2)
	}

	if len(analysis.Insights) > 0 {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Insights", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, insight := range analysis.Insights {
			pdf.MultiCell(0, 5, "  - "+insight, "", "L", false)
		}
	}
	pdf.Ln(5)
}
