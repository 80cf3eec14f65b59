package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fin100x/server/internal/auth"
	apihttp "github.com/fin100x/server/internal/http"
	"github.com/fin100x/server/internal/http/handlers"
	"github.com/fin100x/server/internal/model"
	"github.com/fin100x/server/internal/repo"
)

var otpCodePattern = regexp.MustCompile(`\d{6}`)

type stubSender struct {
	lastCode string
}

func (s *stubSender) Send(_ context.Context, _, body string) error {
	s.lastCode = otpCodePattern.FindString(body)
	return nil
}

type env struct {
	server *httptest.Server
	sender *stubSender
	admin  model.Admin
}

func newEnv(t *testing.T) *env {
	t.Helper()

	sender := &stubSender{}
	users := repo.NewMemoryUserRepo()
	otps := repo.NewMemoryOTPRepo()
	sessions := repo.NewMemorySessionRepo()
	admins := repo.NewMemoryAdminRepo()
	adminTokens := repo.NewMemoryAdminTokenRepo()
	blacklist := repo.NewMemoryBlacklistRepo()

	hash, err := auth.HashSecret("admin-pass")
	require.NoError(t, err)
	admin := model.Admin{ID: uuid.New(), Email: "ops@fin100x.ai", PasswordHash: hash, Name: "Ops", Role: "admin"}
	admins.Put(admin)

	codec := auth.NewTokenCodec("access-secret", "refresh-secret", time.Hour, 30*24*time.Hour)
	otpService := auth.NewOTPService(otps, sender)
	authService := auth.NewService(otpService, codec, users, sessions)
	adminService := auth.NewAdminService(codec, admins, adminTokens, blacklist)

	router := apihttp.NewRouter(apihttp.Deps{
		Codec:     codec,
		Sessions:  sessions,
		Blacklist: blacklist,
		Auth:      handlers.NewAuthHandler(authService),
		AdminAuth: handlers.NewAdminAuthHandler(adminService),
		User:      handlers.NewUserHandler(users, nil),
		Financial: handlers.NewFinancialHandler(nil),
		Advisor:   handlers.NewAdvisorHandler(nil, nil, nil),
		Banner:    handlers.NewBannerHandler(nil, nil),
		Glossary:  handlers.NewGlossaryHandler(nil),
		Quiz:      handlers.NewQuizHandler(nil),
		Meeting:   handlers.NewMeetingHandler(nil, nil),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &env{server: server, sender: sender, admin: admin}
}

func (e *env) post(t *testing.T, path string, payload any, bearer string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var fields map[string]json.RawMessage
	_ = json.NewDecoder(resp.Body).Decode(&fields)
	return resp, fields
}

func (e *env) get(t *testing.T, path, bearer string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var fields map[string]json.RawMessage
	_ = json.NewDecoder(resp.Body).Decode(&fields)
	return resp, fields
}

func str(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

const phone = "+919876543210"

func requestOTPBody() map[string]any {
	return map[string]any{
		"phone":   phone,
		"consent": map[string]bool{"acceptedTnC": true, "acceptedPrivacy": true},
	}
}

// login runs request+verify and returns the token pair fields.
func (e *env) login(t *testing.T) (accessToken, refreshToken string) {
	t.Helper()
	resp, fields := e.post(t, "/auth/otp/request", requestOTPBody(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	requestID := str(t, fields["requestId"])

	resp, fields = e.post(t, "/auth/otp/verify", map[string]any{
		"phone": phone, "otp": e.sender.lastCode, "requestId": requestID,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		TokenType    string `json:"tokenType"`
	}
	require.NoError(t, json.Unmarshal(fields["tokens"], &tokens))
	require.Equal(t, "Bearer", tokens.TokenType)
	return tokens.AccessToken, tokens.RefreshToken
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	resp, fields := e.get(t, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", string(fields["ok"]))
}

func TestOTPRequestValidation(t *testing.T) {
	e := newEnv(t)

	resp, fields := e.post(t, "/auth/otp/request", map[string]any{
		"phone":   "12345",
		"consent": map[string]bool{"acceptedTnC": true, "acceptedPrivacy": true},
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_PHONE", str(t, fields["code"]))

	resp, fields = e.post(t, "/auth/otp/request", map[string]any{
		"phone":   phone,
		"consent": map[string]bool{"acceptedTnC": true},
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "CONSENT_MISSING", str(t, fields["code"]))
}

func TestVerifyWrongCode(t *testing.T) {
	e := newEnv(t)

	resp, fields := e.post(t, "/auth/otp/request", requestOTPBody(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	requestID := str(t, fields["requestId"])

	wrong := "000000"
	if e.sender.lastCode == wrong {
		wrong = "000001"
	}
	resp, fields = e.post(t, "/auth/otp/verify", map[string]any{
		"phone": phone, "otp": wrong, "requestId": requestID,
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "OTP_INVALID", str(t, fields["code"]))
}

func TestEndToEndUserFlow(t *testing.T) {
	e := newEnv(t)
	access, refresh := e.login(t)

	// Guarded endpoint works with the fresh token.
	resp, fields := e.get(t, "/api/v1/user/me", access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, phone, str(t, fields["phone"]))

	// Refresh rotates; the old refresh token is dead.
	resp, fields = e.post(t, "/auth/token/refresh", map[string]string{"refreshToken": refresh}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rotated := str(t, fields["refreshToken"])
	require.NotEqual(t, refresh, rotated)

	resp, fields = e.post(t, "/auth/token/refresh", map[string]string{"refreshToken": refresh}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_REFRESH", str(t, fields["code"]))

	// Logout, then the unexpired access token reads SESSION_REVOKED.
	resp, _ = e.post(t, "/auth/logout", nil, access)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, fields = e.get(t, "/api/v1/user/me", access)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "SESSION_REVOKED", str(t, fields["code"]))

	resp, fields = e.post(t, "/auth/token/refresh", map[string]string{"refreshToken": rotated}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_REFRESH", str(t, fields["code"]))
}

func TestSecondLoginSupersedesFirst(t *testing.T) {
	e := newEnv(t)

	access1, refresh1 := e.login(t)
	access2, _ := e.login(t)

	// The earlier refresh token is superseded.
	resp, _ := e.post(t, "/auth/token/refresh", map[string]string{"refreshToken": refresh1}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The earlier access token's session no longer exists.
	resp, fields := e.get(t, "/api/v1/user/me", access1)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "SESSION_REVOKED", str(t, fields["code"]))

	resp, _ = e.get(t, "/api/v1/user/me", access2)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGuardedEndpointWithoutToken(t *testing.T) {
	e := newEnv(t)

	resp, fields := e.get(t, "/api/v1/user/me", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "NO_AUTH", str(t, fields["code"]))
}

func TestAdminFlow(t *testing.T) {
	e := newEnv(t)

	// Bad password.
	resp, fields := e.post(t, "/admin-auth/login", map[string]string{
		"email": "ops@fin100x.ai", "password": "wrong",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", str(t, fields["error"]))

	// Login.
	resp, fields = e.post(t, "/admin-auth/login", map[string]string{
		"email": "ops@fin100x.ai", "password": "admin-pass",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	access := str(t, fields["accessToken"])
	refresh := str(t, fields["refreshToken"])

	// Refresh rotates and consumes.
	resp, fields = e.post(t, "/admin-auth/refresh", map[string]string{"token": refresh}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	newAccess := str(t, fields["accessToken"])
	newRefresh := str(t, fields["refreshToken"])

	resp, _ = e.post(t, "/admin-auth/refresh", map[string]string{"token": refresh}, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Logout blacklists the access token and deletes the refresh record.
	resp, fields = e.post(t, "/admin-auth/logout", map[string]string{
		"refreshToken": newRefresh, "accessToken": newAccess,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged out successfully", str(t, fields["message"]))

	resp, _ = e.post(t, "/admin-auth/logout", map[string]string{
		"refreshToken": newRefresh, "accessToken": newAccess,
	}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminLogoutRequiresBothTokens(t *testing.T) {
	e := newEnv(t)

	resp, _ := e.post(t, "/admin-auth/logout", map[string]string{"refreshToken": "only-one"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProfilePatch(t *testing.T) {
	e := newEnv(t)
	access, _ := e.login(t)

	req, err := http.NewRequest(http.MethodPatch, e.server.URL+"/api/v1/user/profile",
		bytes.NewReader([]byte(`{"firstName":"Ravi","email":"ravi@example.com"}`)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+access)

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user model.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	require.NotNil(t, user.FirstName)
	assert.Equal(t, "Ravi", *user.FirstName)
	require.NotNil(t, user.Email)
	assert.Equal(t, "ravi@example.com", *user.Email)
	assert.Equal(t, phone, user.Phone)
}
