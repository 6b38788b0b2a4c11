package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/kotche/notekeeper/internal/auth"
	"github.com/kotche/notekeeper/internal/model"
	"github.com/kotche/notekeeper/internal/repository/inmem"
	notesSvc "github.com/kotche/notekeeper/internal/service/notes"
	usersSvc "github.com/kotche/notekeeper/internal/service/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

type testEnv struct {
	handler http.Handler
	users   *usersSvc.DefaultService
	notes   *inmem.NoteRepository
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	noteRepo := inmem.NewNoteRepository()
	users := usersSvc.NewDefaultService(inmem.NewUserRepository(), hasher, auth.NewIssuer("test-secret", time.Hour))
	notes := notesSvc.NewDefaultService(noteRepo)

	srv, err := New(notes, users, Options{})
	require.NoError(t, err)

	return &testEnv{
		handler: srv.Handler(),
		users:   users,
		notes:   noteRepo,
	}
}

// register creates a user and returns a bearer token for it.
func (e *testEnv) register(t *testing.T, username string, isAdmin bool) (model.UserID, string) {
	t.Helper()
	ctx := context.Background()
	user, err := e.users.Register(ctx, username, username+"@test.com", username, isAdmin)
	require.NoError(t, err)
	token, err := e.users.Login(ctx, username, username)
	require.NoError(t, err)
	return user.ID, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func noteBody(title, body string) gin.H {
	return gin.H{"title": title, "body": body}
}

func decodeNote(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Detail
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "test", false)

	form := url.Values{"username": {"test"}, "password": {"test"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "bearer", out.TokenType)
	assert.NotEmpty(t, out.AccessToken)

	rec = env.do(t, http.MethodGet, "/api/notes", out.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "test", false)

	for _, in := range []loginRequest{
		{Username: "test", Password: "wrong"},
		{Username: "nobody", Password: "test"},
	} {
		rec := env.do(t, http.MethodPost, "/api/auth/login", "", in)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, detailBadCredentials, decodeDetail(t, rec))
	}

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "test"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "password: field required", decodeDetail(t, rec))
}

func TestNotes_RequireToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/notes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	rec = env.do(t, http.MethodGet, "/api/notes", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, detailUnauthenticated, decodeDetail(t, rec))
}

func TestNotes_CRUD(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.register(t, "test", false)

	rec := env.do(t, http.MethodPost, "/api/notes", token, noteBody("t", "b"))
	require.Equal(t, http.StatusOK, rec.Code)
	created := decodeNote(t, rec)
	assert.Equal(t, "t", created["title"])
	assert.Equal(t, "b", created["body"])
	assert.EqualValues(t, userID, created["user_id"])
	assert.NotContains(t, created, "is_deleted")
	path := fmt.Sprintf("/api/notes/%v", created["id"])

	rec = env.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decodeNote(t, rec))

	rec = env.do(t, http.MethodPut, path, token, noteBody("t2", "b"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t2", decodeNote(t, rec)["title"])

	rec = env.do(t, http.MethodGet, "/api/notes", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	rec = env.do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":"ok"}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, detailNoteNotFound, decodeDetail(t, rec))

	rec = env.do(t, http.MethodGet, "/api/notes", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeList(t, rec))
}

func TestNotes_EmptyBody(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "test", false)

	rec := env.do(t, http.MethodPost, "/api/notes", token, noteBody("t", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", decodeNote(t, rec)["body"])
}

func TestNotes_ForeignNoteIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.register(t, "owner", false)
	_, otherToken := env.register(t, "other", false)

	rec := env.do(t, http.MethodPost, "/api/notes", ownerToken, noteBody("t", "b"))
	require.Equal(t, http.StatusOK, rec.Code)
	path := fmt.Sprintf("/api/notes/%v", decodeNote(t, rec)["id"])

	missing := env.do(t, http.MethodGet, "/api/notes/999", otherToken, nil)
	require.Equal(t, http.StatusNotFound, missing.Code)

	for _, tc := range []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPut, noteBody("x", "y")},
		{http.MethodDelete, nil},
	} {
		rec := env.do(t, tc.method, path, otherToken, tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.method)
		assert.Equal(t, missing.Body.String(), rec.Body.String(), tc.method)
	}

	rec = env.do(t, http.MethodGet, path, ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t", decodeNote(t, rec)["title"])
}

func TestNotes_RestoreByUserIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "test", false)

	rec := env.do(t, http.MethodPost, "/api/notes", token, noteBody("t", "b"))
	require.Equal(t, http.StatusOK, rec.Code)
	path := fmt.Sprintf("/api/notes/%v", decodeNote(t, rec)["id"])
	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, path, token, nil).Code)

	rec = env.do(t, http.MethodPost, path+"/restore", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, detailForbidden, decodeDetail(t, rec))

	// Forbidden wins over not-found for non-admins.
	rec = env.do(t, http.MethodPost, "/api/notes/999/restore", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNotes_AdminRestore(t *testing.T) {
	env := newTestEnv(t)
	_, userToken := env.register(t, "test", false)
	_, adminToken := env.register(t, "root", true)

	rec := env.do(t, http.MethodPost, "/api/notes", userToken, noteBody("t", "b"))
	require.Equal(t, http.StatusOK, rec.Code)
	path := fmt.Sprintf("/api/notes/%v", decodeNote(t, rec)["id"])
	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, path, userToken, nil).Code)

	rec = env.do(t, http.MethodGet, path, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, path+"/restore", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t", decodeNote(t, rec)["title"])

	rec = env.do(t, http.MethodGet, path, userToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/notes/999/restore", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotes_AdminListFilter(t *testing.T) {
	env := newTestEnv(t)
	firstID, firstToken := env.register(t, "first", false)
	secondID, secondToken := env.register(t, "second", false)
	_, adminToken := env.register(t, "root", true)

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/notes", firstToken, noteBody("a", "")).Code)
	}
	rec := env.do(t, http.MethodPost, "/api/notes", secondToken, noteBody("b", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	deletedPath := fmt.Sprintf("/api/notes/%v", decodeNote(t, rec)["id"])
	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, deletedPath, secondToken, nil).Code)

	rec = env.do(t, http.MethodGet, "/api/notes", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 3)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/notes?note_user_id=%d", firstID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 2)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/notes?note_user_id=%d", secondID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	// Ignored for regular users.
	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/notes?note_user_id=%d", firstID), secondToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeList(t, rec))
}

func TestNotes_Validation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "test", false)

	rec := env.do(t, http.MethodPost, "/api/notes", token, noteBody(strings.Repeat("x", model.MaxTitleLength+1), ""))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "title: ensure this value has at most 256 characters", decodeDetail(t, rec))

	rec = env.do(t, http.MethodPost, "/api/notes", token, noteBody("", "b"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "title: field required", decodeDetail(t, rec))

	rec = env.do(t, http.MethodPost, "/api/notes", token, gin.H{"title": "t"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "body: field required", decodeDetail(t, rec))

	rec = env.do(t, http.MethodPost, "/api/notes", token, gin.H{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "title: field required; body: field required", decodeDetail(t, rec))
	assert.NotContains(t, rec.Body.String(), "noteRequest")

	req := httptest.NewRequest(http.MethodPost, "/api/notes", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, detailMalformedBody, decodeDetail(t, rec))

	rec = env.do(t, http.MethodGet, "/api/notes/abc", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/notes?note_user_id=abc", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	assert.Zero(t, env.notes.Writes())
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(headerRequestID))

	rec = env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}
