package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ekinaktas/klik/handlers"
	"github.com/ekinaktas/klik/models"
	"github.com/ekinaktas/klik/pkg"
	"github.com/ekinaktas/klik/pkg/credential"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSessions, tek bir geçerli token tanıyan SessionService stub'ı.
type fakeSessions struct {
	validToken string
	snapshot   *models.UserSnapshot
}

func (f *fakeSessions) ResolveUser(_ context.Context, tokenStr string) (*models.UserSnapshot, error) {
	if tokenStr != f.validToken {
		return nil, fmt.Errorf("%w: invalid session", pkg.ErrUnauthorized)
	}
	return f.snapshot, nil
}

func (f *fakeSessions) CreateSession(context.Context, string) (*models.Session, error) {
	return nil, nil
}
func (f *fakeSessions) ResolveSession(context.Context, string) (*models.Session, error) {
	return nil, nil
}
func (f *fakeSessions) GetSnapshot(context.Context, string) (*models.UserSnapshot, error) {
	return nil, nil
}
func (f *fakeSessions) RefreshSession(context.Context, string) (*models.Session, error) {
	return nil, nil
}
func (f *fakeSessions) InvalidateSession(context.Context, string) error      { return nil }
func (f *fakeSessions) InvalidateUserSessions(context.Context, string) error { return nil }
func (f *fakeSessions) InvalidateUserSnapshot(context.Context, string)       {}

func newTestAuthMiddleware() (*AuthMiddleware, string) {
	token := "tok-valid"
	sessions := &fakeSessions{
		validToken: token,
		snapshot:   &models.UserSnapshot{ID: "u1", Username: "alice"},
	}
	return NewAuthMiddleware(sessions), token
}

func TestAuthMiddleware_BearerHeader(t *testing.T) {
	mw, token := newTestAuthMiddleware()

	var gotUser *models.UserSnapshot
	var gotToken string
	handler := mw.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = handlers.CurrentUser(r)
		gotToken, _ = handlers.SessionToken(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotUser)
	assert.Equal(t, "alice", gotUser.Username)
	assert.Equal(t, token, gotToken)
}

func TestAuthMiddleware_Cookie(t *testing.T) {
	mw, token := newTestAuthMiddleware()

	handler := mw.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.AddCookie(&http.Cookie{Name: credential.CookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_MissingCredential(t *testing.T) {
	mw, _ := newTestAuthMiddleware()

	called := false
	handler := mw.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called, "401'de next çağrılmamalı")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	mw, _ := newTestAuthMiddleware()

	handler := mw.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("geçersiz token ile next çağrılmamalı")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer tok-bogus")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
