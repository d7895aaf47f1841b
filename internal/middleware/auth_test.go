package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"proconnect/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRequired(t *testing.T) {
	secret := "test-secret-key-12345678901234567890123456789012"
	tokens := auth.NewTokenManager(secret, time.Hour)
	expired := auth.NewTokenManager(secret, time.Hour).WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	})
	otherSecret := auth.NewTokenManager("another-secret-key-123456789012345678901234", time.Hour)

	app := fiber.New()
	app.Get("/test", AuthRequired(tokens), func(c *fiber.Ctx) error {
		userID, _ := UserID(c)
		ctxUserID, _ := c.UserContext().Value(UserIDKey).(string)
		return c.JSON(fiber.Map{"userID": userID, "ctxUserID": ctxUserID})
	})

	issue := func(m *auth.TokenManager, userID string) string {
		s, _, err := m.Issue(userID)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedCode   string
		expectedUserID string
	}{
		{
			name:           "Happy Path",
			authHeader:     "Bearer " + issue(tokens, "u-123"),
			expectedStatus: http.StatusOK,
			expectedUserID: "u-123",
		},
		{
			name:           "Missing Header",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:           "Invalid Format",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:           "Malformed Token",
			authHeader:     "Bearer malformed.token.here",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "AUTH_ERROR",
		},
		{
			name:           "Expired Token",
			authHeader:     "Bearer " + issue(expired, "u-123"),
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "AUTH_ERROR",
		},
		{
			name:           "Wrong Secret",
			authHeader:     "Bearer " + issue(otherSecret, "u-123"),
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "AUTH_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedUserID, body["userID"])
				assert.Equal(t, tt.expectedUserID, body["ctxUserID"])
				return
			}
			assert.Equal(t, tt.expectedCode, body["code"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret-key-12345678901234567890123456789012", time.Hour)
	good, _, err := tokens.Issue("u-9")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/profile", OptionalAuth(tokens), func(c *fiber.Ctx) error {
		userID, ok := UserID(c)
		return c.JSON(fiber.Map{"userID": userID, "authenticated": ok})
	})

	tests := []struct {
		name          string
		authHeader    string
		authenticated bool
	}{
		{name: "Anonymous"},
		{name: "Valid Token", authHeader: "Bearer " + good, authenticated: true},
		{name: "Invalid Token Is Ignored", authHeader: "Bearer nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var body struct {
				UserID        string `json:"userID"`
				Authenticated bool   `json:"authenticated"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.authenticated, body.Authenticated)
			if tt.authenticated {
				assert.Equal(t, "u-9", body.UserID)
			}
		})
	}
}

func TestLoggerAddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "production")

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, "u-1")
	logger.InfoContext(ctx, "hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "u-1", line["user_id"])
}

func TestMetricsMiddlewareSkipsScrapePath(t *testing.T) {
	app := fiber.New()
	app.Use(MetricsMiddleware(InitMetrics("proconnect-test")))
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}
