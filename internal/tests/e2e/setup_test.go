package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/larkes/communities-api/internal/app"
	"github.com/larkes/communities-api/internal/config"
	httpx "github.com/larkes/communities-api/internal/http"
)

const (
	testAdminSecret = "e2e-bootstrap-secret"
	testOTPCode     = "123456"
	testPhone       = "+15557654321"
)

// TestSuite runs the whole application against a file-backed SQLite store and miniredis
type TestSuite struct {
	Server    *httptest.Server
	Container *app.Container
	Redis     *miniredis.Miniredis
	Client    *http.Client
}

func newTestConfig(t *testing.T, redisAddr string) *config.Config {
	t.Helper()

	cfg, err := config.FromFile(config.Defaults())
	require.NoError(t, err)

	cfg.DBDriver = "sqlite"
	cfg.DSN = filepath.Join(t.TempDir(), "e2e.db")
	cfg.RedisAddr = redisAddr
	cfg.JWTSecret = "e2e-signing-secret-with-enough-bytes"
	cfg.AdminSignupToken = testAdminSecret
	cfg.OTP_FixedCode = testOTPCode
	cfg.OTP_MaxAttempts = 3
	cfg.BcryptCost = bcrypt.MinCost
	cfg.CasbinModelPath = filepath.Join("..", "..", "..", "config", "rbac_model.conf")
	require.NoError(t, cfg.Validate())
	return cfg
}

// SetupTestSuite starts a server; mutate adjusts the config before the container is built
func SetupTestSuite(t *testing.T, mutate func(*config.Config)) *TestSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	cfg := newTestConfig(t, mr.Addr())
	if mutate != nil {
		mutate(cfg)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	container, err := app.NewContainer(context.Background(), cfg, logger, prometheus.NewRegistry())
	require.NoError(t, err)

	server := httptest.NewServer(httpx.BuildRouter(*container.Router()))
	t.Cleanup(func() {
		server.Close()
		_ = container.Close()
	})

	return &TestSuite{
		Server:    server,
		Container: container,
		Redis:     mr,
		Client:    server.Client(),
	}
}

// Do sends a JSON request; token may be empty
func (s *TestSuite) Do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.Server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	} else if len(raw) > 0 {
		out["raw"] = string(raw)
	}
	return resp, out
}

// Token performs a login-style call and returns the access token
func (s *TestSuite) Token(t *testing.T, path string, body interface{}) string {
	t.Helper()
	resp, out := s.Do(t, http.MethodPost, path, "", body)
	require.Equal(t, http.StatusOK, resp.StatusCode, "%s: %v", path, out)
	require.Equal(t, "bearer", out["token_type"])
	require.Equal(t, s.Container.Config.AccessTTL.Seconds(), out["expires_in"])
	token, _ := out["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

// StudentToken runs the phone OTP flow for phone
func (s *TestSuite) StudentToken(t *testing.T, phone string) string {
	t.Helper()
	resp, _ := s.Do(t, http.MethodPost, "/auth/otp/request", "", map[string]string{"phone": phone})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	return s.Token(t, "/auth/otp/verify", map[string]string{"phone": phone, "code": testOTPCode})
}

func (s *TestSuite) CompanyToken(t *testing.T, email, name string) string {
	t.Helper()
	return s.Token(t, "/auth/company/signup", map[string]string{"email": email, "password": "company-pass", "name": name})
}

func (s *TestSuite) AdminToken(t *testing.T, email string) string {
	t.Helper()
	return s.Token(t, "/auth/admin/signup", map[string]string{
		"email": email, "password": "admin-password", "signup_token": testAdminSecret,
	})
}
