package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/menticure/backend/pkg/model"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// setupTestDB creates a PostgreSQL testcontainer and returns the connection pool
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("menticure_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connString, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)

	runMigrations(t, pool)

	cleanup := func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return pool, cleanup
}

// runMigrations runs the database migrations
func runMigrations(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			message_count INT NOT NULL DEFAULT 0,
			emotional_summary TEXT,
			session_start TIMESTAMP NOT NULL DEFAULT NOW(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id UUID PRIMARY KEY,
			session_id UUID NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			message TEXT NOT NULL,
			response TEXT NOT NULL,
			emotional_tone VARCHAR(50) NOT NULL,
			message_count INT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS user_mental_states (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			session_id UUID,
			mood VARCHAR(50) NOT NULL,
			intensity INT NOT NULL,
			keywords TEXT[],
			emotions TEXT[],
			preferred_activities TEXT[],
			coping_mechanisms TEXT[],
			triggers TEXT[],
			communication_style VARCHAR(50) NOT NULL,
			recorded_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS daily_checkins (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			date DATE NOT NULL,
			status VARCHAR(50) NOT NULL,
			notes TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, date)
		)`,
		`CREATE TABLE IF NOT EXISTS user_streaks (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL UNIQUE,
			current_streak INT NOT NULL DEFAULT 0,
			longest_streak INT NOT NULL DEFAULT 0,
			total_checkins INT NOT NULL DEFAULT 0,
			last_checkin_date TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS user_badges (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			badge_name VARCHAR(100) NOT NULL,
			badge_type VARCHAR(50) NOT NULL,
			earned_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, badge_name)
		)`,
	}

	for _, migration := range migrations {
		_, err := pool.Exec(ctx, migration)
		require.NoError(t, err)
	}
}

// Property: upserting a check-in for the same (user, day) twice yields one
// row, reports inserted only the first time, and keeps the latest status.
func TestProperty_CheckInUpsertOneRowPerDay(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger, _ := zap.NewDevelopment()
	repo := NewCheckInRepository(pool, logger)

	statuses := []model.CheckInStatus{model.CheckInGreat, model.CheckInOkay, model.CheckInStruggling}

	properties := gopter.NewProperties(nil)

	properties.Property("second submission for the same day updates in place", prop.ForAll(
		func(dayOffset, firstIdx, secondIdx int) bool {
			ctx := context.Background()
			userID := uuid.New().String()
			day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, dayOffset)

			first := &model.DailyCheckIn{
				ID:     uuid.New().String(),
				UserID: userID,
				Date:   day,
				Status: statuses[firstIdx],
			}
			inserted, err := repo.UpsertCheckIn(ctx, first)
			if err != nil || !inserted {
				t.Logf("first upsert: inserted=%v err=%v", inserted, err)
				return false
			}

			second := &model.DailyCheckIn{
				ID:     uuid.New().String(),
				UserID: userID,
				Date:   day,
				Status: statuses[secondIdx],
			}
			inserted, err = repo.UpsertCheckIn(ctx, second)
			if err != nil || inserted {
				t.Logf("second upsert: inserted=%v err=%v", inserted, err)
				return false
			}

			checkIns, err := repo.GetCheckIns(ctx, userID, day.AddDate(0, 0, -1))
			if err != nil {
				t.Logf("failed to fetch check-ins: %v", err)
				return false
			}

			return len(checkIns) == 1 &&
				checkIns[0].ID == first.ID &&
				checkIns[0].Status == statuses[secondIdx]
		},
		gen.IntRange(0, 365),
		gen.IntRange(0, 2),
		gen.IntRange(0, 2),
	))

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50
	properties.TestingRun(t, params)
}

// Property: mental-state history comes back complete and ascending by
// recorded_at, with the array columns intact.
func TestProperty_MentalStateHistoryAscending(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger, _ := zap.NewDevelopment()
	repo := NewMentalStateRepository(pool, logger)

	moods := []string{"positive", "negative", "neutral", "anxious", "depressed"}

	properties := gopter.NewProperties(nil)

	properties.Property("records round-trip in chronological order", prop.ForAll(
		func(n int, moodIdx int) bool {
			ctx := context.Background()
			userID := uuid.New().String()
			base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

			for i := 0; i < n; i++ {
				rec := &model.MentalStateRecord{
					ID:                  uuid.New().String(),
					UserID:              userID,
					Mood:                moods[(moodIdx+i)%len(moods)],
					Intensity:           3 + i%7,
					Keywords:            []string{"stressed"},
					Emotions:            []string{"stressed"},
					PreferredActivities: []string{"walking"},
					CopingMechanisms:    []string{"meditation"},
					Triggers:            []string{"work"},
					CommunicationStyle:  model.StyleSupportive,
					RecordedAt:          base.Add(time.Duration(i) * time.Minute),
				}
				if err := repo.Append(ctx, rec); err != nil {
					t.Logf("failed to append record: %v", err)
					return false
				}
			}

			records, err := repo.GetSince(ctx, userID, base.AddDate(0, 0, -1))
			if err != nil {
				t.Logf("failed to fetch records: %v", err)
				return false
			}
			if len(records) != n {
				t.Logf("expected %d records, got %d", n, len(records))
				return false
			}

			for i := 1; i < len(records); i++ {
				if records[i].RecordedAt.Before(records[i-1].RecordedAt) {
					t.Logf("records out of order at index %d", i)
					return false
				}
			}
			for _, rec := range records {
				if len(rec.CopingMechanisms) != 1 || rec.CopingMechanisms[0] != "meditation" {
					t.Logf("array column did not round-trip: %v", rec.CopingMechanisms)
					return false
				}
			}

			return true
		},
		gen.IntRange(1, 15),
		gen.IntRange(0, 4),
	))

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 30
	properties.TestingRun(t, params)
}

// Property: the recent-turn window returns at most limit turns, newest
// first, always the tail of the conversation.
func TestProperty_RecentTurnsAreTheNewest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger, _ := zap.NewDevelopment()
	repo := NewChatRepository(pool, logger)

	properties := gopter.NewProperties(nil)

	properties.Property("recent turns are the conversation tail", prop.ForAll(
		func(n, limit int) bool {
			ctx := context.Background()
			userID := uuid.New().String()

			session := &model.ChatSession{
				ID:           uuid.New().String(),
				UserID:       userID,
				SessionStart: time.Now(),
			}
			if err := repo.CreateSession(ctx, session); err != nil {
				t.Logf("failed to create session: %v", err)
				return false
			}

			for i := 1; i <= n; i++ {
				turn := &model.ChatTurn{
					ID:             uuid.New().String(),
					SessionID:      session.ID,
					UserID:         userID,
					Message:        fmt.Sprintf("message %d", i),
					Response:       fmt.Sprintf("response %d", i),
					EmotionalTone:  model.ToneNeutral,
					SequenceNumber: i,
				}
				if err := repo.SaveTurn(ctx, turn); err != nil {
					t.Logf("failed to save turn: %v", err)
					return false
				}
			}

			turns, err := repo.GetRecentTurns(ctx, session.ID, limit)
			if err != nil {
				t.Logf("failed to fetch recent turns: %v", err)
				return false
			}

			want := limit
			if n < limit {
				want = n
			}
			if len(turns) != want {
				t.Logf("expected %d turns, got %d", want, len(turns))
				return false
			}

			for i, turn := range turns {
				if turn.SequenceNumber != n-i {
					t.Logf("turn %d has sequence %d, want %d", i, turn.SequenceNumber, n-i)
					return false
				}
			}

			return true
		},
		gen.IntRange(1, 10),
		gen.IntRange(1, 5),
	))

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 30
	properties.TestingRun(t, params)
}

// Property: the streak upsert keeps exactly one row per user and always
// reflects the latest counters.
func TestProperty_StreakUpsertKeepsLatestCounters(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger, _ := zap.NewDevelopment()
	repo := NewCheckInRepository(pool, logger)

	properties := gopter.NewProperties(nil)

	properties.Property("repeated saves converge on the last write", prop.ForAll(
		func(first, second int) bool {
			ctx := context.Background()
			userID := uuid.New().String()
			day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

			streak := &model.UserStreak{
				ID:              uuid.New().String(),
				UserID:          userID,
				CurrentStreak:   first,
				LongestStreak:   first,
				TotalCheckIns:   first,
				LastCheckInDate: &day,
			}
			if err := repo.SaveStreak(ctx, streak); err != nil {
				t.Logf("failed to save streak: %v", err)
				return false
			}

			streak.CurrentStreak = second
			streak.TotalCheckIns = first + 1
			if err := repo.SaveStreak(ctx, streak); err != nil {
				t.Logf("failed to re-save streak: %v", err)
				return false
			}

			stored, err := repo.GetStreak(ctx, userID)
			if err != nil || stored == nil {
				t.Logf("failed to fetch streak: %v", err)
				return false
			}

			return stored.CurrentStreak == second &&
				stored.TotalCheckIns == first+1
		},
		gen.IntRange(1, 100),
		gen.IntRange(1, 100),
	))

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50
	properties.TestingRun(t, params)
}

// AwardBadge must tolerate re-earning: the unique key on
// (user_id, badge_name) turns duplicates into no-ops.
func TestAwardBadgeIgnoresDuplicates(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger, _ := zap.NewDevelopment()
	repo := NewCheckInRepository(pool, logger)

	ctx := context.Background()
	userID := uuid.New().String()

	for i := 0; i < 3; i++ {
		badge := &model.Badge{
			ID:        uuid.New().String(),
			UserID:    userID,
			BadgeName: "3-Day Streak",
			BadgeType: "streak",
			EarnedAt:  time.Now(),
		}
		require.NoError(t, repo.AwardBadge(ctx, badge))
	}

	var count int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_badges WHERE user_id = $1`, userID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
