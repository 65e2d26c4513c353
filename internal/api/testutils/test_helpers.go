package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rongwang/railway-server/internal/api"
	"github.com/rongwang/railway-server/internal/auth"
	"github.com/rongwang/railway-server/internal/config"
	"github.com/rongwang/railway-server/internal/models"
	"github.com/rongwang/railway-server/internal/repository"
	"github.com/rongwang/railway-server/internal/service"
	"github.com/stretchr/testify/require"
)

const (
	TestUserEmail    = "testuser@example.com"
	TestUserPassword = "testpassword"
)

// TestContext holds all dependencies for tests
type TestContext struct {
	Router      *gin.Engine
	Repository  *repository.PostgresRepository
	Service     service.Service
	Tokens      *auth.TokenManager
	DB          *sqlx.DB
	TestUserID  int64
	TestUserJWT string
}

// SetupTestContext connects to the test database and wires the full stack.
// The test is skipped when PostgreSQL is not reachable.
func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()

	cfg := config.LoadConfig()
	if cfg.Database.TestDBName != "" {
		cfg.Database.DBName = cfg.Database.TestDBName
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "test-secret-key"
	}

	db, err := config.SetupDatabase(cfg)
	if err != nil {
		t.Skipf("skipping integration test, database unavailable: %v", err)
	}

	repo := repository.NewPostgresRepository(db)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	svc := service.NewDefaultService(repo, tokens, nil, nil, nil, nil)

	require.NoError(t, api.RegisterValidators())
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api.NewHandler(svc, tokens, nil, nil, nil).SetupRoutes(router)

	cleanupTestDatabase(t, db)
	userID, token := createTestUser(t, repo, tokens)

	return &TestContext{
		Router:      router,
		Repository:  repo,
		Service:     svc,
		Tokens:      tokens,
		DB:          db,
		TestUserID:  userID,
		TestUserJWT: token,
	}
}

// CleanupTestContext cleans up test resources
func CleanupTestContext(t *TestContext) {
	if t.DB != nil {
		cleanupTestDatabase(nil, t.DB)
		t.DB.Close()
	}
}

// cleanupTestDatabase empties every table and resets id sequences
func cleanupTestDatabase(t *testing.T, db *sqlx.DB) {
	_, err := db.Exec(`TRUNCATE transactions, tickets, train_stops, trains, stations, users RESTART IDENTITY CASCADE`)
	if t != nil && err != nil {
		t.Logf("Warning: Failed to clean database: %v", err)
	}
}

func createTestUser(t *testing.T, repo repository.Repository, tokens *auth.TokenManager) (int64, string) {
	hashedPassword, err := auth.HashPassword(TestUserPassword)
	require.NoError(t, err)

	user := &models.User{Email: TestUserEmail, PasswordHash: hashedPassword}
	require.NoError(t, repo.CreateUser(context.Background(), user), "Failed to create test user")

	token, _, err := tokens.IssueToken(user.ID)
	require.NoError(t, err, "Failed to generate JWT token")

	return user.ID, token
}

// SeedStation inserts a station and returns its id
func (tc *TestContext) SeedStation(t *testing.T, name string) int64 {
	station := &models.Station{Name: name, Location: name + " district"}
	require.NoError(t, tc.Repository.CreateStation(context.Background(), station))
	return station.ID
}

// SeedTrain inserts a train calling at the given stations. Each stop departs
// five minutes after it arrives, starting from the given clock times.
func (tc *TestContext) SeedTrain(t *testing.T, name string, stations []int64, arrivals []string) int64 {
	require.Equal(t, len(stations), len(arrivals))

	stops := make([]models.TrainStop, len(stations))
	for i := range stations {
		arr, err := time.Parse(api.ClockLayout, arrivals[i])
		require.NoError(t, err)
		stops[i] = models.TrainStop{
			StationID:     stations[i],
			ArrivalTime:   arrivals[i],
			DepartureTime: arr.Add(5 * time.Minute).Format(api.ClockLayout),
		}
	}

	train := &models.Train{Name: name}
	require.NoError(t, tc.Repository.CreateTrain(context.Background(), train, stops))
	return train.ID
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}
