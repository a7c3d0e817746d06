package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jobfind/jobfind/internal/common"
	"github.com/jobfind/jobfind/internal/logging"
	"github.com/jobfind/jobfind/internal/server/auth"
	"github.com/jobfind/jobfind/internal/server/config"
	"github.com/jobfind/jobfind/internal/server/models"
	"github.com/jobfind/jobfind/internal/server/repositories/repomanager"
	"github.com/jobfind/jobfind/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const refreshTTL = time.Hour

type testServer struct {
	handler  http.Handler
	sessions *services.SessionService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	codec, err := auth.NewTokenCodec([]byte("http-test-secret"))
	require.NoError(t, err)
	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	rm := repomanager.NewMemoryRepositoryManager()
	cfg := &config.Config{AccessTokenTTL: time.Minute, RefreshTokenTTL: refreshTTL}
	sessions := services.NewSessionService(nil, rm, codec, hasher, cfg, logging.Nop{})

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "jobfind_test_total", Help: "test"}))

	h := NewHandler(Options{
		Sessions:     sessions,
		Users:        services.NewUserService(nil, rm, hasher, logging.Nop{}),
		Companies:    services.NewCompanyService(nil, rm, logging.Nop{}),
		Tokens:       codec,
		RefreshTTL:   refreshTTL,
		CookieSecure: true,
		Gatherer:     reg,
		CORSOrigins:  []string{"https://app.example"},
	})
	return &testServer{handler: h.Routes(), sessions: sessions}
}

func (s *testServer) do(t *testing.T, method, path string, body any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func withBearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withRefreshCookie(token string) func(*http.Request) {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: common.RefreshTokenCookieName, Value: token})
	}
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == common.RefreshTokenCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", common.RefreshTokenCookieName)
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (s *testServer) registerAndLogin(t *testing.T, email, password string) sessionResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", map[string]any{"email": email, "password": password, "name": "Ann"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", loginRequest{Username: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[sessionResponse](t, rec)
}

func TestLogin_SetsRefreshCookie(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin(t, "a@x.com", "pw1")

	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", loginRequest{Username: "a@x.com", Password: "pw1"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[sessionResponse](t, rec)
	assert.NotEmpty(t, body.AccessToken)
	assert.Equal(t, "a@x.com", body.User.Email)
	assert.Equal(t, common.RoleUser, body.User.Role)
	assert.NotContains(t, rec.Body.String(), "password")

	c := refreshCookie(t, rec)
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, int(refreshTTL.Seconds()), c.MaxAge)
	assert.NotContains(t, rec.Body.String(), c.Value)
}

func TestLogin_FailuresLookTheSame(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin(t, "a@x.com", "pw1")

	wrong := s.do(t, http.MethodPost, "/api/v1/auth/login", loginRequest{Username: "a@x.com", Password: "bad"})
	unknown := s.do(t, http.MethodPost, "/api/v1/auth/login", loginRequest{Username: "ghost@x.com", Password: "bad"})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.Empty(t, wrong.Result().Cookies())
}

func TestLogin_BadRequest(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{not json"))
	raw := httptest.NewRecorder()
	s.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestRefresh_RotationOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin(t, "a@x.com", "pw1")

	login := s.do(t, http.MethodPost, "/api/v1/auth/login", loginRequest{Username: "a@x.com", Password: "pw1"})
	r1 := refreshCookie(t, login).Value

	rec := s.do(t, http.MethodGet, "/api/v1/auth/refresh", nil, withRefreshCookie(r1))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	r2 := refreshCookie(t, rec).Value
	assert.NotEqual(t, r1, r2)
	assert.NotEmpty(t, decode[sessionResponse](t, rec).AccessToken)

	rec = s.do(t, http.MethodGet, "/api/v1/auth/refresh", nil, withRefreshCookie(r1))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "revoked_token", decode[errorResponse](t, rec).Error.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/auth/refresh", nil, withRefreshCookie(r2))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefresh_Errors(t *testing.T) {
	s := newTestServer(t)
	session := s.registerAndLogin(t, "a@x.com", "pw1")

	rec := s.do(t, http.MethodGet, "/api/v1/auth/refresh", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_token", decode[errorResponse](t, rec).Error.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/auth/refresh", nil, withRefreshCookie(session.AccessToken))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", decode[errorResponse](t, rec).Error.Code)
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin(t, "a@x.com", "pw1")
	login := s.do(t, http.MethodPost, "/api/v1/auth/login", loginRequest{Username: "a@x.com", Password: "pw1"})
	access := decode[sessionResponse](t, login).AccessToken
	refresh := refreshCookie(t, login).Value

	rec := s.do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/logout", nil, withBearer(access))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "HttpOnly")

	rec = s.do(t, http.MethodPost, "/api/v1/auth/logout", nil, withBearer(access))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/auth/refresh", nil, withRefreshCookie(refresh))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "revoked_token", decode[errorResponse](t, rec).Error.Code)
}

func TestRegister_Duplicate(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin(t, "a@x.com", "pw1")

	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", map[string]any{"email": "a@x.com", "password": "pw2"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/register", map[string]any{"email": "b@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccount(t *testing.T) {
	s := newTestServer(t)
	session := s.registerAndLogin(t, "a@x.com", "pw1")

	rec := s.do(t, http.MethodGet, "/api/v1/auth/account", nil, withBearer(session.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[accountResponse](t, rec)
	assert.Equal(t, "a@x.com", got.User.Email)
	assert.Empty(t, got.User.Role)

	rec = s.do(t, http.MethodGet, "/api/v1/auth/account", nil, withBearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsers_AccessRules(t *testing.T) {
	s := newTestServer(t)
	user := s.registerAndLogin(t, "a@x.com", "pw1")

	rec := s.do(t, http.MethodPost, "/api/v1/users", map[string]any{"email": "b@x.com", "password": "pw"}, withBearer(user.AccessToken))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/users/999", map[string]any{"name": "x"}, withBearer(user.AccessToken))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/users/abc", map[string]any{"name": "x"}, withBearer(user.AccessToken))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/users", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsers_SelfUpdateAndList(t *testing.T) {
	s := newTestServer(t)
	session := s.registerAndLogin(t, "a@x.com", "pw1")
	path := "/api/v1/users/" + jsonNumber(session.User.ID)

	rec := s.do(t, http.MethodPut, path, map[string]any{"name": "Anna", "age": 31}, withBearer(session.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[models.UserDetails](t, rec)
	assert.Equal(t, "Anna", got.Name)
	assert.Equal(t, 31, got.Age)

	rec = s.do(t, http.MethodGet, "/api/v1/users?page=1&size=10", nil, withBearer(session.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[models.Page[models.UserDetails]](t, rec)
	assert.Equal(t, models.Meta{Page: 1, PageSize: 10, Pages: 1, Total: 1}, page.Meta)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	rec = s.do(t, http.MethodGet, "/api/v1/users?name=zed", nil, withBearer(session.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), decode[models.Page[models.UserDetails]](t, rec).Meta.Total)

	rec = s.do(t, http.MethodGet, "/api/v1/users?email=A@X&page=9223372036854775807", nil, withBearer(session.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page = decode[models.Page[models.UserDetails]](t, rec)
	assert.Equal(t, int64(1), page.Meta.Total)
	assert.Empty(t, page.Result)
}

func TestUsers_AdminCRUD(t *testing.T) {
	s := newTestServer(t)

	_, err := s.sessions.Register(t.Context(), services.RegisterRequest{Email: "root@x.com", Password: "pw", Role: common.RoleAdmin})
	require.NoError(t, err)
	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", loginRequest{Username: "root@x.com", Password: "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	admin := decode[sessionResponse](t, rec)

	rec = s.do(t, http.MethodPost, "/api/v1/users", map[string]any{"email": "b@x.com", "password": "pw", "role": "ADMIN"}, withBearer(admin.AccessToken))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.UserDetails](t, rec)
	assert.Equal(t, common.RoleAdmin, created.Role)

	path := "/api/v1/users/" + jsonNumber(created.ID)
	rec = s.do(t, http.MethodGet, path, nil, withBearer(admin.AccessToken))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, path, nil, withBearer(admin.AccessToken))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, path, nil, withBearer(admin.AccessToken))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompanies(t *testing.T) {
	s := newTestServer(t)
	session := s.registerAndLogin(t, "a@x.com", "pw1")

	rec := s.do(t, http.MethodPost, "/api/v1/companies", map[string]any{"name": "Acme"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/companies", map[string]any{"name": "Acme"}, withBearer(session.AccessToken))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decode[models.Company](t, rec)

	path := "/api/v1/companies/" + jsonNumber(c.ID)
	rec = s.do(t, http.MethodPut, path, map[string]any{"name": ""}, withBearer(session.AccessToken))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, path, map[string]any{"name": "Acme Ltd"}, withBearer(session.AccessToken))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme Ltd", decode[models.Company](t, rec).Name)

	rec = s.do(t, http.MethodGet, "/api/v1/companies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[models.Page[models.Company]](t, rec).Meta.Total)

	rec = s.do(t, http.MethodDelete, path, nil, withBearer(session.AccessToken))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, path, nil, withBearer(session.AccessToken))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jobfind_test_total")
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/v1/auth/login", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)
	preflight := func(origin string) func(*http.Request) {
		return func(r *http.Request) {
			r.Header.Set("Origin", origin)
			r.Header.Set("Access-Control-Request-Method", http.MethodPost)
		}
	}

	rec := s.do(t, http.MethodOptions, "/api/v1/auth/login", nil, preflight("https://app.example"))
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = s.do(t, http.MethodOptions, "/api/v1/auth/login", nil, preflight("https://evil.example"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
