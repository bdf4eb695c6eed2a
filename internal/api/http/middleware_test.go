package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	api "sigap-backend/internal/api/http"
	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// stubUserRepo satisfies repository.UserRepository with a fixed user set;
// only the lookups the middleware performs are implemented.
type stubUserRepo struct {
	users map[int64]*domain.User
}

func (s *stubUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("user not found")
}

func (s *stubUserRepo) Create(context.Context, *domain.User) error { return nil }
func (s *stubUserRepo) GetByUsername(context.Context, string) (*domain.User, error) {
	return nil, apperr.NotFound("user not found")
}
func (s *stubUserRepo) GetByImmatricule(context.Context, string) (*domain.User, error) {
	return nil, apperr.NotFound("user not found")
}
func (s *stubUserRepo) List(context.Context) ([]domain.User, error)          { return nil, nil }
func (s *stubUserRepo) Update(context.Context, *domain.User) error           { return nil }
func (s *stubUserRepo) UpdatePassword(context.Context, int64, string, bool) error {
	return nil
}
func (s *stubUserRepo) UpdatePhoto(context.Context, int64, string) (string, error) {
	return "", nil
}
func (s *stubUserRepo) SetActive(context.Context, int64, bool) error { return nil }
func (s *stubUserRepo) Delete(context.Context, int64) error          { return nil }
func (s *stubUserRepo) ListActiveByRole(context.Context, domain.Role, *int64) ([]domain.User, error) {
	return nil, nil
}

func echoUser(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		user := api.UserFromContext(r.Context())
		require.NotNil(t, user)
		w.WriteHeader(http.StatusOK)
	}
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	tokens := security.NewTokenManager(testSecret, time.Hour)
	mw := api.NewAuthMiddleware(tokens, &stubUserRepo{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	mw.Authenticate(echoUser(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	tokens := security.NewTokenManager(testSecret, time.Hour)
	mw := api.NewAuthMiddleware(tokens, &stubUserRepo{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	mw.Authenticate(echoUser(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateLoadsFreshUser(t *testing.T) {
	tokens := security.NewTokenManager(testSecret, time.Hour)
	user := &domain.User{ID: 7, Username: "rakoto", Role: domain.RoleAgent, IsActive: true}
	mw := api.NewAuthMiddleware(tokens, &stubUserRepo{users: map[int64]*domain.User{7: user}})

	token, err := tokens.Generate(user)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	mw.Authenticate(echoUser(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticateBlocksDeactivatedAccountBeforeTokenExpiry(t *testing.T) {
	tokens := security.NewTokenManager(testSecret, time.Hour)
	user := &domain.User{ID: 7, Username: "rakoto", Role: domain.RoleAgent, IsActive: true}
	repo := &stubUserRepo{users: map[int64]*domain.User{7: user}}
	mw := api.NewAuthMiddleware(tokens, repo)

	token, err := tokens.Generate(user)
	require.NoError(t, err)
	// Deactivated after the token was issued; the token is still
	// cryptographically valid.
	user.IsActive = false

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	mw.Authenticate(echoUser(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthenticateRejectsDeletedAccount(t *testing.T) {
	tokens := security.NewTokenManager(testSecret, time.Hour)
	user := &domain.User{ID: 7, Username: "rakoto", IsActive: true}
	mw := api.NewAuthMiddleware(tokens, &stubUserRepo{})

	token, err := tokens.Generate(user)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	mw.Authenticate(echoUser(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRolesRefusesWrongRole(t *testing.T) {
	handler := api.RequireRoles(domain.RoleAdmin)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	agent := &domain.User{ID: 7, Role: domain.RoleAgent, IsActive: true}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req = req.WithContext(contextWithUser(req.Context(), agent))
	handler(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesAllowsAnyListedRole(t *testing.T) {
	handler := api.RequireRoles(domain.RoleSecretary, domain.RoleAdmin)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, role := range []domain.Role{domain.RoleSecretary, domain.RoleAdmin} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/submissions/pending", nil)
		req = req.WithContext(contextWithUser(req.Context(), &domain.User{ID: 1, Role: role, IsActive: true}))
		handler(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "role %s", role)
	}
}

func TestRequireRolesWithoutAuthentication(t *testing.T) {
	handler := api.RequireRoles(domain.RoleAdmin)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// contextWithUser plants an authenticated user the way the middleware does,
// by running a request through Authenticate against a stub repo.
func contextWithUser(ctx context.Context, user *domain.User) context.Context {
	tokens := security.NewTokenManager(testSecret, time.Hour)
	mw := api.NewAuthMiddleware(tokens, &stubUserRepo{users: map[int64]*domain.User{user.ID: user}})
	token, _ := tokens.Generate(user)

	var captured context.Context
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+token)
	mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Context()
	})).ServeHTTP(rec, req)
	return captured
}
