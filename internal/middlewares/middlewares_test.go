package middlewares

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	idempotencymocks "github.com/joshuarp/taskguard-api/internal/mock/shared/idempotency"
	jwtmocks "github.com/joshuarp/taskguard-api/internal/mock/shared/jwt"
	sharedidempotency "github.com/joshuarp/taskguard-api/internal/shared/idempotency"
	sharedjwt "github.com/joshuarp/taskguard-api/internal/shared/jwt"
	sharedratelimit "github.com/joshuarp/taskguard-api/internal/shared/ratelimit"
	"github.com/joshuarp/taskguard-api/internal/shared/uid"
)

func doRequest(app *fiber.App, method, path string, body []byte, headers map[string]string) (*http.Response, map[string]interface{}, []byte, error) {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if len(body) > 0 {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req)
	if err != nil {
		return nil, nil, nil, err
	}
	defer resp.Body.Close()
	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, nil, err
	}

	parsed := map[string]interface{}{}
	_ = json.Unmarshal(rawBody, &parsed)

	return resp, parsed, rawBody, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type HTTPJWTMiddlewareSuite struct {
	suite.Suite

	tokenManager *jwtmocks.TokenManager
	app          *fiber.App
}

func (s *HTTPJWTMiddlewareSuite) SetupTest() {
	s.tokenManager = jwtmocks.NewTokenManager(s.T())
	s.app = fiber.New()
	s.app.Use(NewHTTPJWTMiddleware(s.tokenManager))
	s.app.Get("/secure", func(c fiber.Ctx) error {
		claims, _ := c.Locals(LocalJWTClaims).(*sharedjwt.Claims)
		fromContext, _ := sharedjwt.GetClaims(c.Context())
		return c.JSON(fiber.Map{
			"user_id":      c.Locals(LocalUserID),
			"subject":      claims.Subject,
			"context_user": fromContext.Subject,
		})
	})
	s.app.Post("/admin", RequireScope("resilience:admin"), func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
}

func (s *HTTPJWTMiddlewareSuite) TestNewHTTPJWTMiddleware_TableDriven() {
	verifyErr := errors.New("invalid")

	tests := []struct {
		name      string
		method    string
		path      string
		headers   map[string]string
		setupMock func()
		assertion func(*http.Response, map[string]interface{})
	}{
		{
			name:    "missing authorization header",
			method:  http.MethodGet,
			path:    "/secure",
			headers: map[string]string{},
			assertion: func(resp *http.Response, payload map[string]interface{}) {
				require.NotNil(s.T(), resp)
				assert.Equal(s.T(), fiber.StatusUnauthorized, resp.StatusCode)
				assert.Equal(s.T(), "missing or invalid authorization header", payload["error"])
			},
		},
		{
			name:   "wrong scheme",
			method: http.MethodGet,
			path:   "/secure",
			headers: map[string]string{
				fiber.HeaderAuthorization: "Basic dXNlcjpwYXNz",
			},
			assertion: func(resp *http.Response, payload map[string]interface{}) {
				require.NotNil(s.T(), resp)
				assert.Equal(s.T(), fiber.StatusUnauthorized, resp.StatusCode)
				assert.Equal(s.T(), "missing or invalid authorization header", payload["error"])
			},
		},
		{
			name:   "invalid token",
			method: http.MethodGet,
			path:   "/secure",
			headers: map[string]string{
				fiber.HeaderAuthorization: "Bearer token-123",
			},
			setupMock: func() {
				s.tokenManager.EXPECT().Verify(mock.Anything, "token-123").Return(nil, verifyErr)
			},
			assertion: func(resp *http.Response, payload map[string]interface{}) {
				require.NotNil(s.T(), resp)
				assert.Equal(s.T(), fiber.StatusUnauthorized, resp.StatusCode)
				assert.Equal(s.T(), "invalid token", payload["error"])
			},
		},
		{
			name:   "valid token",
			method: http.MethodGet,
			path:   "/secure",
			headers: map[string]string{
				fiber.HeaderAuthorization: "Bearer token-123",
			},
			setupMock: func() {
				s.tokenManager.EXPECT().Verify(mock.Anything, "token-123").Return(&sharedjwt.Claims{Subject: "svc-billing"}, nil)
			},
			assertion: func(resp *http.Response, payload map[string]interface{}) {
				require.NotNil(s.T(), resp)
				assert.Equal(s.T(), fiber.StatusOK, resp.StatusCode)
				assert.Equal(s.T(), "svc-billing", payload["user_id"])
				assert.Equal(s.T(), "svc-billing", payload["subject"])
				assert.Equal(s.T(), "svc-billing", payload["context_user"])
			},
		},
		{
			name:   "scope missing",
			method: http.MethodPost,
			path:   "/admin",
			headers: map[string]string{
				fiber.HeaderAuthorization: "Bearer token-123",
			},
			setupMock: func() {
				s.tokenManager.EXPECT().Verify(mock.Anything, "token-123").
					Return(&sharedjwt.Claims{Subject: "svc-billing", Scopes: []string{"tasks:write"}}, nil)
			},
			assertion: func(resp *http.Response, payload map[string]interface{}) {
				require.NotNil(s.T(), resp)
				assert.Equal(s.T(), fiber.StatusForbidden, resp.StatusCode)
				assert.Equal(s.T(), "insufficient scope", payload["error"])
				assert.Equal(s.T(), "resilience:admin", payload["required_scope"])
			},
		},
		{
			name:   "scope granted",
			method: http.MethodPost,
			path:   "/admin",
			headers: map[string]string{
				fiber.HeaderAuthorization: "Bearer token-123",
			},
			setupMock: func() {
				s.tokenManager.EXPECT().Verify(mock.Anything, "token-123").
					Return(&sharedjwt.Claims{Subject: "ops", Scopes: []string{"tasks:write", "resilience:admin"}}, nil)
			},
			assertion: func(resp *http.Response, payload map[string]interface{}) {
				require.NotNil(s.T(), resp)
				assert.Equal(s.T(), fiber.StatusOK, resp.StatusCode)
				assert.Equal(s.T(), true, payload["ok"])
			},
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.SetupTest()
			if tc.setupMock != nil {
				tc.setupMock()
			}

			resp, payload, _, err := doRequest(s.app, tc.method, tc.path, nil, tc.headers)
			require.NoError(s.T(), err)
			tc.assertion(resp, payload)
		})
	}
}

func (s *HTTPJWTMiddlewareSuite) TestRequireScopeWithoutPrincipal() {
	app := fiber.New()
	app.Get("/admin", RequireScope("resilience:admin"), func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, payload, _, err := doRequest(app, http.MethodGet, "/admin", nil, nil)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(s.T(), "missing authenticated principal", payload["error"])
}

func TestHTTPJWTMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(HTTPJWTMiddlewareSuite))
}

type HTTPIdempotencyMiddlewareSuite struct {
	suite.Suite

	store   *idempotencymocks.Store
	service *sharedidempotency.Service
	app     *fiber.App
	calls   int
	status  int
}

func (s *HTTPIdempotencyMiddlewareSuite) SetupTest() {
	s.store = idempotencymocks.NewStore(s.T())
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s.service = sharedidempotency.NewService(s.store, sharedidempotency.DefaultSettings(), newTestLogger(),
		sharedidempotency.WithClock(func() time.Time { return now }),
		sharedidempotency.WithIDGenerator(uid.GeneratorFunc(func(context.Context) (string, error) { return "entry-1", nil })),
	)
	s.calls = 0
	s.status = fiber.StatusAccepted

	s.app = fiber.New()
	s.app.Use(NewHTTPIdempotencyMiddleware(s.service, newTestLogger()))
	handler := func(c fiber.Ctx) error {
		s.calls++
		return c.Status(s.status).JSON(fiber.Map{"task_id": "42"})
	}
	s.app.Post("/api/v1/tasks", handler)
	s.app.Get("/api/v1/tasks", handler)
}

func (s *HTTPIdempotencyMiddlewareSuite) scope(lookup sharedidempotency.Lookup) bool {
	return lookup.Key == "submit-1" &&
		lookup.CacheType == sharedidempotency.CacheTypeRequest &&
		lookup.Scope == "POST /api/v1/tasks"
}

func (s *HTTPIdempotencyMiddlewareSuite) TestNewHTTPIdempotencyMiddleware_TableDriven() {
	body := []byte(`{"task_name":"send_email"}`)

	tests := []struct {
		name      string
		method    string
		headers   map[string]string
		status    int
		setupMock func()
		wantCalls int
		assertion func(*http.Response, map[string]interface{})
	}{
		{
			name:      "no key passes through",
			method:    http.MethodPost,
			wantCalls: 1,
			assertion: func(resp *http.Response, _ map[string]interface{}) {
				assert.Equal(s.T(), fiber.StatusAccepted, resp.StatusCode)
				assert.Empty(s.T(), resp.Header.Get(IdempotencyReplayedHeader))
			},
		},
		{
			name:      "unsupported method passes through",
			method:    http.MethodGet,
			headers:   map[string]string{IdempotencyKeyHeader: "submit-1"},
			wantCalls: 1,
			assertion: func(resp *http.Response, _ map[string]interface{}) {
				assert.Equal(s.T(), fiber.StatusAccepted, resp.StatusCode)
			},
		},
		{
			name:      "malformed key passes through",
			method:    http.MethodPost,
			headers:   map[string]string{IdempotencyKeyHeader: "not a key!"},
			wantCalls: 1,
			assertion: func(resp *http.Response, _ map[string]interface{}) {
				assert.Equal(s.T(), fiber.StatusAccepted, resp.StatusCode)
			},
		},
		{
			name:    "miss runs handler and caches response",
			method:  http.MethodPost,
			headers: map[string]string{IdempotencyKeyHeader: "submit-1"},
			setupMock: func() {
				s.store.EXPECT().Find(mock.Anything, mock.MatchedBy(s.scope)).Return(nil, nil).Once()
				s.store.EXPECT().Upsert(mock.Anything, mock.MatchedBy(func(entry sharedidempotency.Entry) bool {
					return entry.ID == "entry-1" &&
						entry.StatusCode == fiber.StatusAccepted &&
						strings.HasPrefix(entry.ContentType, fiber.MIMEApplicationJSON) &&
						string(entry.ResultPayload) == `{"task_id":"42"}`
				})).Return(nil).Once()
			},
			wantCalls: 1,
			assertion: func(resp *http.Response, payload map[string]interface{}) {
				assert.Equal(s.T(), fiber.StatusAccepted, resp.StatusCode)
				assert.Equal(s.T(), "42", payload["task_id"])
				assert.Equal(s.T(), "false", resp.Header.Get(IdempotencyReplayedHeader))
				assert.Equal(s.T(), "submit-1", resp.Header.Get(IdempotencyKeyHeader))
			},
		},
		{
			name:    "error responses are not cached",
			method:  http.MethodPost,
			headers: map[string]string{IdempotencyKeyHeader: "submit-1"},
			status:  fiber.StatusUnprocessableEntity,
			setupMock: func() {
				s.store.EXPECT().Find(mock.Anything, mock.MatchedBy(s.scope)).Return(nil, nil).Once()
			},
			wantCalls: 1,
			assertion: func(resp *http.Response, _ map[string]interface{}) {
				assert.Equal(s.T(), fiber.StatusUnprocessableEntity, resp.StatusCode)
			},
		},
		{
			name:    "key reused with different content",
			method:  http.MethodPost,
			headers: map[string]string{IdempotencyKeyHeader: "submit-1"},
			setupMock: func() {
				s.store.EXPECT().Find(mock.Anything, mock.MatchedBy(s.scope)).
					Return(&sharedidempotency.Entry{ContentHash: "other"}, nil).Once()
			},
			assertion: func(resp *http.Response, payload map[string]interface{}) {
				assert.Equal(s.T(), fiber.StatusConflict, resp.StatusCode)
				assert.Equal(s.T(), "IDEMPOTENCY_CONFLICT", payload["code"])
				assert.Contains(s.T(), payload["error"], "submit-1")
			},
		},
		{
			name:    "cache outage does not block request",
			method:  http.MethodPost,
			headers: map[string]string{IdempotencyKeyHeader: "submit-1"},
			setupMock: func() {
				s.store.EXPECT().Find(mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()
				s.store.EXPECT().Upsert(mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
			},
			wantCalls: 1,
			assertion: func(resp *http.Response, _ map[string]interface{}) {
				assert.Equal(s.T(), fiber.StatusAccepted, resp.StatusCode)
			},
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.SetupTest()
			if tc.status != 0 {
				s.status = tc.status
			}
			if tc.setupMock != nil {
				tc.setupMock()
			}

			resp, payload, _, err := doRequest(s.app, tc.method, "/api/v1/tasks", body, tc.headers)
			require.NoError(s.T(), err)
			require.NotNil(s.T(), resp)
			assert.Equal(s.T(), tc.wantCalls, s.calls)
			tc.assertion(resp, payload)
		})
	}
}

func (s *HTTPIdempotencyMiddlewareSuite) TestReplaysSecondRequest() {
	body := []byte(`{"task_name":"send_email"}`)
	headers := map[string]string{IdempotencyKeyHeader: "submit-1"}

	var stored sharedidempotency.Entry
	s.store.EXPECT().Find(mock.Anything, mock.MatchedBy(s.scope)).Return(nil, nil).Once()
	s.store.EXPECT().Upsert(mock.Anything, mock.Anything).
		Run(func(_ context.Context, entry sharedidempotency.Entry) { stored = entry }).
		Return(nil).Once()

	first, _, firstRaw, err := doRequest(s.app, http.MethodPost, "/api/v1/tasks", body, headers)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), fiber.StatusAccepted, first.StatusCode)

	s.store.EXPECT().Find(mock.Anything, mock.MatchedBy(s.scope)).
		RunAndReturn(func(context.Context, sharedidempotency.Lookup) (*sharedidempotency.Entry, error) {
			return &stored, nil
		}).Once()

	second, _, secondRaw, err := doRequest(s.app, http.MethodPost, "/api/v1/tasks", body, headers)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), fiber.StatusAccepted, second.StatusCode)
	assert.Equal(s.T(), "true", second.Header.Get(IdempotencyReplayedHeader))
	assert.Equal(s.T(), "submit-1", second.Header.Get(IdempotencyKeyHeader))
	assert.JSONEq(s.T(), string(firstRaw), string(secondRaw))
	assert.Equal(s.T(), 1, s.calls)
}

func (s *HTTPIdempotencyMiddlewareSuite) TestCallersDoNotShareKeys() {
	tokenManager := jwtmocks.NewTokenManager(s.T())
	tokenManager.EXPECT().Verify(mock.Anything, "token-alice").Return(&sharedjwt.Claims{Subject: "alice"}, nil)
	tokenManager.EXPECT().Verify(mock.Anything, "token-bob").Return(&sharedjwt.Claims{Subject: "bob"}, nil)

	entries := map[string]sharedidempotency.Entry{}
	s.store.EXPECT().Find(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, lookup sharedidempotency.Lookup) (*sharedidempotency.Entry, error) {
			entry, ok := entries[lookup.Key+"|"+lookup.Scope]
			if !ok {
				return nil, nil
			}
			return &entry, nil
		}).Times(3)
	s.store.EXPECT().Upsert(mock.Anything, mock.Anything).
		Run(func(_ context.Context, entry sharedidempotency.Entry) {
			entries[entry.IdempotencyKey+"|"+entry.Scope] = entry
		}).
		Return(nil).Times(2)

	calls := 0
	app := fiber.New()
	app.Use(NewHTTPJWTMiddleware(tokenManager))
	app.Use(NewHTTPIdempotencyMiddleware(s.service, newTestLogger()))
	app.Post("/api/v1/tasks", func(c fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"submitted_by": UserIDFromContext(c)})
	})

	body := []byte(`{"task_name":"send_email"}`)
	send := func(token string) (*http.Response, map[string]interface{}) {
		resp, payload, _, err := doRequest(app, http.MethodPost, "/api/v1/tasks", body, map[string]string{
			fiber.HeaderAuthorization: "Bearer " + token,
			IdempotencyKeyHeader:      "submit-1",
		})
		require.NoError(s.T(), err)
		return resp, payload
	}

	resp, payload := send("token-alice")
	assert.Equal(s.T(), fiber.StatusAccepted, resp.StatusCode)
	assert.Equal(s.T(), "alice", payload["submitted_by"])

	resp, payload = send("token-bob")
	assert.Equal(s.T(), fiber.StatusAccepted, resp.StatusCode)
	assert.Equal(s.T(), "bob", payload["submitted_by"])
	assert.Equal(s.T(), "false", resp.Header.Get(IdempotencyReplayedHeader))

	resp, payload = send("token-alice")
	assert.Equal(s.T(), "true", resp.Header.Get(IdempotencyReplayedHeader))
	assert.Equal(s.T(), "alice", payload["submitted_by"])
	assert.Equal(s.T(), 2, calls)
}

func TestHTTPIdempotencyMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(HTTPIdempotencyMiddlewareSuite))
}

type stubRateLimiter struct {
	result  sharedratelimit.Result
	err     error
	lastKey string
}

func (s *stubRateLimiter) Allow(_ context.Context, key string) (sharedratelimit.Result, error) {
	s.lastKey = key
	return s.result, s.err
}

func TestHTTPRateLimitMiddleware_TableDriven(t *testing.T) {
	tests := []struct {
		name          string
		limiter       *stubRateLimiter
		userID        string
		expectedCode  int
		expectedError string
		assertHeaders bool
		expectedKey   string
	}{
		{
			name:          "allows request and sets headers",
			limiter:       &stubRateLimiter{result: sharedratelimit.Result{Allowed: true, Limit: 20, Remaining: 19, ResetAt: time.Unix(200, 0)}},
			userID:        "svc-billing",
			expectedCode:  fiber.StatusOK,
			assertHeaders: true,
			expectedKey:   "tasks:user:svc-billing",
		},
		{
			name:          "rejects when limit exceeded",
			limiter:       &stubRateLimiter{result: sharedratelimit.Result{Allowed: false, Limit: 20, Remaining: 0, RetryAfter: 5 * time.Second, ResetAt: time.Unix(250, 0)}},
			userID:        "svc-billing",
			expectedCode:  fiber.StatusTooManyRequests,
			expectedError: "rate limit exceeded",
			expectedKey:   "tasks:user:svc-billing",
		},
		{
			name:         "falls back to client ip",
			limiter:      &stubRateLimiter{result: sharedratelimit.Result{Allowed: true, Limit: 20, Remaining: 19}},
			expectedCode: fiber.StatusOK,
			expectedKey:  "tasks:ip:",
		},
		{
			name:         "allows request when limiter fails",
			limiter:      &stubRateLimiter{err: errors.New("boom")},
			userID:       "svc-billing",
			expectedCode: fiber.StatusOK,
			expectedKey:  "tasks:user:svc-billing",
		},
		{
			name:         "passes through when limiter is nil",
			limiter:      nil,
			expectedCode: fiber.StatusOK,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(func(c fiber.Ctx) error {
				if tc.userID != "" {
					c.Locals(LocalUserID, tc.userID)
				}
				return c.Next()
			})

			var limiter sharedratelimit.Limiter
			if tc.limiter != nil {
				limiter = tc.limiter
			}

			app.Use(NewHTTPRateLimitMiddleware(RateLimitConfig{
				Limiter:   limiter,
				KeyPrefix: "tasks",
				Logger:    newTestLogger(),
			}))

			app.Get("/limited", func(c fiber.Ctx) error {
				return c.JSON(fiber.Map{"ok": true})
			})

			resp, payload, _, err := doRequest(app, http.MethodGet, "/limited", nil, nil)
			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tc.expectedCode, resp.StatusCode)

			if tc.expectedError != "" {
				assert.Equal(t, tc.expectedError, payload["error"])
				assert.Equal(t, "5", resp.Header.Get(fiber.HeaderRetryAfter))
				assert.EqualValues(t, 5, payload["retry_after"])
			}

			if tc.assertHeaders {
				assert.Equal(t, "20", resp.Header.Get("X-RateLimit-Limit"))
				assert.Equal(t, "19", resp.Header.Get("X-RateLimit-Remaining"))
			}

			if tc.limiter != nil {
				assert.True(t, strings.HasPrefix(tc.limiter.lastKey, tc.expectedKey), tc.limiter.lastKey)
			}
		})
	}
}

func TestHTTPRequestIDAndRecovery(t *testing.T) {
	app := fiber.New()
	app.Use(NewHTTPRequestIDMiddleware())
	app.Use(NewHTTPRecoveryMiddleware(newTestLogger()))
	app.Use(NewHTTPRequestResponseLogMiddleware(newTestLogger()))
	app.Get("/panic", func(c fiber.Ctx) error {
		panic("boom")
	})
	app.Get("/ok", func(c fiber.Ctx) error {
		return c.SendString(ChainIDFromContext(c))
	})

	resp, _, raw, err := doRequest(app, http.MethodGet, "/ok", nil, map[string]string{ChainIDHeader: "req-1"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-1", string(raw))
	assert.Equal(t, "req-1", resp.Header.Get(ChainIDHeader))

	resp, _, _, err = doRequest(app, http.MethodGet, "/panic", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
