package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blog/internal/auth"
	"blog/internal/config"
	"blog/internal/entity"
	"blog/internal/metrics"
	"blog/internal/model"
	"blog/internal/ratelimit"
	"blog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-password"
)

type testServer struct {
	t       *testing.T
	repo    model.Repository
	auth    *service.AuthService
	metrics *metrics.Metrics
	handler *HTTPHandler
	router  *gin.Engine
}

func newTestServer(t *testing.T, limiter ratelimit.Limiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{DBType: model.DBTypeSQLite, DBPath: model.SQLiteInMemory}
	repo, err := model.NewRepositoryFactory().CreateRepository(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	require.NoError(t, model.SeedDefaultRoles(context.Background(), repo))

	tokens, err := auth.NewManager("api-test-secret", "blog-test", 30*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	m := metrics.NewMetrics()
	authSvc := service.NewAuthService(repo, auth.NewHasher(bcrypt.MinCost), tokens)
	authSvc.SetMetrics(m)
	require.NoError(t, authSvc.EnsureAdmin(context.Background(), adminEmail, adminPassword))

	h := NewHTTPHandler(cfg, repo, authSvc, Options{Metrics: m, Limiter: limiter})
	return &testServer{t: t, repo: repo, auth: authSvc, metrics: m, handler: h, router: h.Router()}
}

func (s *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(email, password string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/register", gin.H{"email": email, "password": password}, "")
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
}

func (s *testServer) login(email, password string) entity.TokenPairResponse {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": email, "password": password}, "")
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var pair entity.TokenPairResponse
	decode(s.t, w, &pair)
	return pair
}

func (s *testServer) adminToken() string {
	s.t.Helper()
	return s.login(adminEmail, adminPassword).AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var apiErr APIError
	decode(t, w, &apiErr)
	return apiErr.Code
}
