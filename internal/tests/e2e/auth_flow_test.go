package e2e

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larkes/communities-api/internal/config"
)

func TestStudentOTPFlow(t *testing.T) {
	s := SetupTestSuite(t, nil)

	token := s.StudentToken(t, testPhone)

	resp, me := s.Do(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "student", me["role"])
	assert.Equal(t, testPhone, me["phone"])
	assert.Equal(t, false, me["has_password"])

	// The code was consumed by the first verification
	resp, out := s.Do(t, http.MethodPost, "/auth/otp/verify", "", map[string]string{"phone": testPhone, "code": testOTPCode})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid or expired code", out["error"])

	// A second login reuses the same account
	again := s.StudentToken(t, testPhone)
	_, me2 := s.Do(t, http.MethodGet, "/users/me", again, nil)
	assert.Equal(t, me["id"], me2["id"])
}

func TestOTPRequestDoesNotLeakAccounts(t *testing.T) {
	s := SetupTestSuite(t, nil)
	s.StudentToken(t, testPhone)

	known, _ := s.Do(t, http.MethodPost, "/auth/otp/request", "", map[string]string{"phone": testPhone})
	unknown, _ := s.Do(t, http.MethodPost, "/auth/otp/request", "", map[string]string{"phone": "+15550000000"})
	assert.Equal(t, http.StatusNoContent, known.StatusCode)
	assert.Equal(t, known.StatusCode, unknown.StatusCode)

	malformed, _ := s.Do(t, http.MethodPost, "/auth/otp/request", "", map[string]string{"phone": "12345"})
	assert.Equal(t, http.StatusBadRequest, malformed.StatusCode)
}

func TestOTPAttemptLimit(t *testing.T) {
	s := SetupTestSuite(t, nil)

	resp, _ := s.Do(t, http.MethodPost, "/auth/otp/request", "", map[string]string{"phone": testPhone})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	for i := 0; i < 3; i++ {
		resp, _ := s.Do(t, http.MethodPost, "/auth/otp/verify", "", map[string]string{"phone": testPhone, "code": "000000"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}

	// The right code no longer works once the limit is reached
	resp, _ = s.Do(t, http.MethodPost, "/auth/otp/verify", "", map[string]string{"phone": testPhone, "code": testOTPCode})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// A fresh code resets the counter
	s.StudentToken(t, testPhone)
}

func TestCompanyFlow(t *testing.T) {
	s := SetupTestSuite(t, nil)

	token := s.CompanyToken(t, "Owner@Acme.io", "Acme")

	resp, company := s.Do(t, http.MethodGet, "/companies/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Acme", company["name"])

	resp, updated := s.Do(t, http.MethodPatch, "/companies/me", token, map[string]string{"description": "Tools for students"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Acme", updated["name"])
	assert.Equal(t, "Tools for students", updated["description"])

	// Login matches the normalized email and resolves the same company
	login := s.Token(t, "/auth/company/login", map[string]string{"email": "owner@acme.io", "password": "company-pass"})
	_, again := s.Do(t, http.MethodGet, "/companies/me", login, nil)
	assert.Equal(t, company["id"], again["id"])

	resp, out := s.Do(t, http.MethodPost, "/auth/company/signup", "", map[string]string{
		"email": "owner@acme.io", "password": "another-pass", "name": "Acme 2",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "email already registered", out["error"])
}

func TestInvalidCredentialsAreUniform(t *testing.T) {
	s := SetupTestSuite(t, nil)
	s.CompanyToken(t, "owner@acme.io", "Acme")
	s.AdminToken(t, "root@acme.io")

	cases := []struct {
		name string
		path string
		body map[string]string
	}{
		{name: "wrong password", path: "/auth/company/login", body: map[string]string{"email": "owner@acme.io", "password": "nope-nope"}},
		{name: "unknown email", path: "/auth/company/login", body: map[string]string{"email": "ghost@acme.io", "password": "company-pass"}},
		{name: "admin on company login", path: "/auth/company/login", body: map[string]string{"email": "root@acme.io", "password": "admin-password"}},
		{name: "company on admin login", path: "/auth/admin/login", body: map[string]string{"email": "owner@acme.io", "password": "company-pass"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, out := s.Do(t, http.MethodPost, tc.path, "", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "invalid credentials", out["error"])
		})
	}
}

func TestAdminSignupGate(t *testing.T) {
	s := SetupTestSuite(t, nil)

	resp, _ := s.Do(t, http.MethodPost, "/auth/admin/signup", "", map[string]string{
		"email": "new@acme.io", "password": "admin-password", "signup_token": "guess",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	token := s.AdminToken(t, "new@acme.io")
	_, me := s.Do(t, http.MethodGet, "/users/me", token, nil)
	assert.Equal(t, "admin", me["role"])

	s.Token(t, "/auth/admin/login", map[string]string{"email": "new@acme.io", "password": "admin-password"})
}

func TestAdminSignupDisabledWithoutSecret(t *testing.T) {
	s := SetupTestSuite(t, func(cfg *config.Config) { cfg.AdminSignupToken = "" })

	for _, token := range []string{"", testAdminSecret} {
		resp, _ := s.Do(t, http.MethodPost, "/auth/admin/signup", "", map[string]string{
			"email": "root@acme.io", "password": "admin-password", "signup_token": token,
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}
}
