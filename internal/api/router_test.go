package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videoflow/videoflow-be/internal/auth"
	"github.com/videoflow/videoflow-be/internal/database"
	"github.com/videoflow/videoflow-be/internal/models"
	"github.com/videoflow/videoflow-be/internal/services"
)

type testEnv struct {
	router *chi.Mux
	auth   *auth.Manager
	videos *services.VideoService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	authManager := auth.NewManager("test-secret", time.Hour)
	userService := services.NewUserService(db)
	videoService := services.NewVideoService(db)

	return &testEnv{
		router: NewRouter(authManager, userService, videoService, "http://localhost:3000"),
		auth:   authManager,
		videos: videoService,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) registerAlice(t *testing.T) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "a@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestRegisterThenCreateVideo(t *testing.T) {
	env := newTestEnv(t)

	token := env.registerAlice(t)

	claims, err := env.auth.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, int64(1), claims.UserID)

	rec := env.do(t, http.MethodPost, "/api/videos", token, map[string]interface{}{
		"title":    "Cats",
		"genre":    "Doc",
		"duration": 30,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var video models.Video
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &video))
	assert.Equal(t, int64(1), video.ID)
	assert.Equal(t, "Cats", video.Title)
	assert.Equal(t, int64(0), video.Views)
	assert.Equal(t, int64(0), video.Likes)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "",
		"email":    "not-an-email",
		"password": "abc",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Errors []services.FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Errors, 3)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.registerAlice(t)

	rec := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "bob",
		"email":    "a@x.com",
		"password": "hunter22",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.registerAlice(t)

	rec := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "alice", body.User.Username)
}

func TestLogin_FailureShapeIsIdentical(t *testing.T) {
	env := newTestEnv(t)
	env.registerAlice(t)

	wrongPassword := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "wrong-password",
	})
	unknownEmail := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "nobody@x.com",
		"password": "secret1",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/videos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/videos", "not-a-real-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestVideoLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAlice(t)

	rec := env.do(t, http.MethodPost, "/api/videos", token, map[string]interface{}{
		"title":       "Cats",
		"description": "A documentary about cats",
		"genre":       "Documentary",
		"tags":        []string{"animals"},
		"duration":    30,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Partial update leaves unspecified fields untouched.
	rec = env.do(t, http.MethodPut, "/api/videos/1", token, map[string]string{"title": "Big Cats"})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Video
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Big Cats", updated.Title)
	assert.Equal(t, "A documentary about cats", updated.Description)
	assert.Equal(t, []string{"animals"}, updated.Tags)
	assert.Equal(t, int64(30), updated.Duration)

	rec = env.do(t, http.MethodDelete, "/api/videos/1", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())

	// Deleting the same id twice fails the second time.
	rec = env.do(t, http.MethodDelete, "/api/videos/1", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateVideo_NotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAlice(t)

	rec := env.do(t, http.MethodPut, "/api/videos/42", token, map[string]string{"title": "X"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVideoRoutes_BadID(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAlice(t)

	rec := env.do(t, http.MethodPut, "/api/videos/abc", token, map[string]string{"title": "X"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/videos/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListVideos_Pagination(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAlice(t)

	for i := 1; i <= 12; i++ {
		duration := int64(i)
		_, err := env.videos.Create(services.VideoInput{
			Title:    fmt.Sprintf("Video %d", i),
			Genre:    "Misc",
			Duration: &duration,
		})
		require.NoError(t, err)
	}

	rec := env.do(t, http.MethodGet, "/api/videos?page=2&limit=5", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.VideoListResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 12, result.Total)
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 5, result.Limit)
	assert.Equal(t, 3, result.TotalPages)
	require.Len(t, result.Data, 5)
	for i, video := range result.Data {
		assert.Equal(t, int64(6+i), video.ID)
	}
}

func TestListVideos_BadPagination(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAlice(t)

	rec := env.do(t, http.MethodGet, "/api/videos?page=0&limit=x", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Errors []services.FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Errors, 2)
}

func TestListVideos_SearchIgnoresPagination(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAlice(t)

	for _, title := range []string{"Big Cats", "Street Cats", "Cooking Basics"} {
		duration := int64(10)
		_, err := env.videos.Create(services.VideoInput{
			Title:    title,
			Genre:    "Misc",
			Duration: &duration,
		})
		require.NoError(t, err)
	}

	rec := env.do(t, http.MethodGet, "/api/videos?search=cats&page=3&limit=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.VideoListResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 1, result.TotalPages)
	assert.Len(t, result.Data, 2)
}

func TestCreateVideo_Validation(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAlice(t)

	rec := env.do(t, http.MethodPost, "/api/videos", token, map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Errors []services.FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Errors, 3)
}
