package integration_tests

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/menticure/backend/internal/handler"
	"github.com/menticure/backend/internal/middleware"
	"github.com/menticure/backend/internal/repository"
	"github.com/menticure/backend/internal/service"
	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const testJWTSecret = "integration-test-secret"

// setupTestDB creates a PostgreSQL testcontainer and returns the
// connection pool.
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

// runMigrations creates the schema used by the repositories.
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
		`CREATE TABLE IF NOT EXISTS mood_tracker (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			mood VARCHAR(50) NOT NULL,
			sleep_hours DOUBLE PRECISION,
			anxiety_level INT,
			stress_level INT,
			notes TEXT,
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
		`CREATE TABLE IF NOT EXISTS profiles (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL UNIQUE,
			first_name VARCHAR(100),
			last_name VARCHAR(100),
			specialty VARCHAR(100),
			bio TEXT,
			role VARCHAR(50) NOT NULL DEFAULT 'user'
		)`,
		`CREATE TABLE IF NOT EXISTS therapy_sessions (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			therapist_id UUID NOT NULL,
			session_date TIMESTAMP NOT NULL,
			session_type VARCHAR(50) NOT NULL,
			status VARCHAR(50) NOT NULL,
			notes TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id BIGSERIAL PRIMARY KEY,
			user_id UUID NOT NULL,
			operation_type VARCHAR(50) NOT NULL,
			resource_type VARCHAR(50) NOT NULL,
			resource_id VARCHAR(100),
			timestamp TIMESTAMP NOT NULL DEFAULT NOW(),
			ip_address VARCHAR(100),
			user_agent TEXT,
			additional_data JSONB
		)`,
	}

	for _, migration := range migrations {
		_, err := pool.Exec(ctx, migration)
		require.NoError(t, err, "migration failed")
	}
}

// scriptedCompletionClient returns canned replies in order, cycling on
// exhaustion. Stands in for the hosted model.
type scriptedCompletionClient struct {
	replies []string
	calls   int
}

func (c *scriptedCompletionClient) Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	reply := c.replies[c.calls%len(c.replies)]
	c.calls++
	return reply, nil
}

// testApp bundles the router and the layers the tests poke at directly.
type testApp struct {
	router          *gin.Engine
	chatRepo        *repository.ChatRepository
	mentalStateRepo *repository.MentalStateRepository
	checkInRepo     *repository.CheckInRepository
	aiClient        *scriptedCompletionClient
}

// newTestApp wires repositories, services, and handlers against the test
// database with a scripted model client, mirroring the production wiring.
func newTestApp(t *testing.T, pool *pgxpool.Pool) *testApp {
	logger := zap.NewNop()

	aiClient := &scriptedCompletionClient{replies: []string{"That sounds hard. I'm here with you."}}

	moodRepo := repository.NewMoodRepository(pool, logger)
	mentalStateRepo := repository.NewMentalStateRepository(pool, logger)
	chatRepo := repository.NewChatRepository(pool, logger)
	checkInRepo := repository.NewCheckInRepository(pool, logger)

	chatService := service.NewChatService(chatRepo, mentalStateRepo, aiClient, aiClient, logger)
	insightsService := service.NewInsightsService(mentalStateRepo, nil, logger)
	moodService := service.NewMoodService(moodRepo, logger)
	checkInService := service.NewCheckInService(checkInRepo, logger)

	chatHandler := handler.NewChatHandler(chatService, logger)
	insightsHandler := handler.NewInsightsHandler(insightsService, logger)
	moodHandler := handler.NewMoodHandler(moodService, logger)
	checkInHandler := handler.NewCheckInHandler(checkInService, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(testJWTSecret))
	{
		v1.POST("/chat", chatHandler.PostChat)
		v1.GET("/insights", insightsHandler.GetInsights)
		v1.GET("/insights/nudge", insightsHandler.GetNudge)
		v1.POST("/mood", moodHandler.PostMood)
		v1.GET("/mood", moodHandler.GetMood)
		v1.POST("/checkin", checkInHandler.PostCheckIn)
		v1.GET("/checkin/streak", checkInHandler.GetStreak)
	}

	return &testApp{
		router:          router,
		chatRepo:        chatRepo,
		mentalStateRepo: mentalStateRepo,
		checkInRepo:     checkInRepo,
		aiClient:        aiClient,
	}
}

// authToken mints a bearer token for the given user.
func authToken(t *testing.T, userID string) string {
	token, err := middleware.GenerateToken(testJWTSecret, userID)
	require.NoError(t, err)
	return "Bearer " + token
}
