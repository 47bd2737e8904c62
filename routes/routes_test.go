package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/mkingstonsqr/tile-notes/config"
	"github.com/mkingstonsqr/tile-notes/models"
	"github.com/mkingstonsqr/tile-notes/services"
	"github.com/mkingstonsqr/tile-notes/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	svc    *services.Services
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conf := config.Config{
		Environment:            "test",
		DBDriver:               "sqlite",
		DBPath:                 ":memory:",
		JWTSecret:              "test-secret",
		StoragePublicURL:       "http://localhost/files",
		EnrichSettleDelayMS:    10,
		EnrichMinContentLength: 20,
		EnrichSummaryBudget:    150,
	}
	db, err := config.OpenDB(conf)
	require.NoError(t, err)
	require.NoError(t, config.MigrateDB(db))
	fsys, err := mem.NewFS()
	require.NoError(t, err)
	ai, err := services.NewAIClient(conf)
	require.NoError(t, err)

	svc := services.New(conf, store.NewGormStore(db), nil, ai, fsys)
	t.Cleanup(func() {
		svc.Shutdown()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	r := gin.New()
	RegisterRoutes(r, svc)
	return &testServer{t: t, router: r, svc: svc}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) signUp(email string) models.AuthResponse {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/signup", gin.H{"email": email, "password": "password123"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[models.AuthResponse](s.t, w)
	s.token = resp.Token
	return resp
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/notes", nil).Code)

	resp := s.signUp("grace@example.com")
	assert.Equal(t, "grace@example.com", resp.User.Email)

	s.token = ""
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/v1/auth/signup", gin.H{"email": "grace@example.com", "password": "password123"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/auth/signup", gin.H{"email": "bad", "password": "x"}).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/v1/auth/signin", gin.H{"email": "grace@example.com", "password": "wrong-password"}).Code)

	w := s.do(http.MethodPost, "/api/v1/auth/signin", gin.H{"email": "grace@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	s.token = decode[models.AuthResponse](t, w).Token

	w = s.do(http.MethodGet, "/api/v1/user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "grace@example.com")

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/user", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/user", nil).Code)
}

func TestNoteLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.signUp("notes@example.com")

	w := s.do(http.MethodPost, "/api/v1/notes", gin.H{"content": "hi"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[models.Note](t, w)
	assert.Equal(t, "Untitled Note", *first.Title)

	w = s.do(http.MethodPost, "/api/v1/notes", gin.H{"content": "pinned", "is_pinned": true, "position_x": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	pinned := decode[models.Note](t, w)

	w = s.do(http.MethodGet, "/api/v1/notes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct{ Notes []models.Note }](t, w)
	require.Len(t, list.Notes, 2)
	assert.Equal(t, pinned.ID, list.Notes[0].ID)

	w = s.do(http.MethodPost, "/api/v1/notes/reorder", gin.H{"dragged_id": first.ID, "target_id": pinned.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodGet, "/api/v1/notes/"+first.ID, nil)
	assert.Equal(t, 1, decode[models.Note](t, w).PositionX)

	w = s.do(http.MethodPatch, "/api/v1/notes/"+first.ID, gin.H{"title": "Renamed", "ai_tags": []string{"sneaky"}})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[models.Note](t, w)
	assert.Equal(t, "Renamed", *updated.Title)
	assert.Empty(t, updated.AITags)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, "/api/v1/notes/"+first.ID, gin.H{}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/notes?type=video", nil).Code)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/notes/"+first.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/notes/"+first.ID, nil).Code)
}

func TestNotesAreIsolatedPerUser(t *testing.T) {
	s := newTestServer(t)
	s.signUp("alice@example.com")
	w := s.do(http.MethodPost, "/api/v1/notes", gin.H{"content": "private"})
	require.Equal(t, http.StatusCreated, w.Code)
	note := decode[models.Note](t, w)

	s.signUp("bob@example.com")
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/notes/"+note.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/v1/notes/"+note.ID, nil).Code)
	w = s.do(http.MethodGet, "/api/v1/notes", nil)
	assert.Empty(t, decode[struct{ Notes []models.Note }](t, w).Notes)
}

func TestManualEnrichCreatesTasks(t *testing.T) {
	s := newTestServer(t)
	s.signUp("tasks@example.com")

	w := s.do(http.MethodPut, "/api/v1/settings", gin.H{"auto_enrich": false})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/notes", gin.H{"content": "Trip prep: **pack the tent** and **buy gas**", "tags": []string{"trip"}})
	require.Equal(t, http.StatusCreated, w.Code)
	note := decode[models.Note](t, w)

	w = s.do(http.MethodPost, "/api/v1/notes/"+note.ID+"/enrich", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	enriched := decode[models.Note](t, w)
	assert.NotNil(t, enriched.AIProcessedAt)

	w = s.do(http.MethodGet, "/api/v1/tasks?note_id="+note.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decode[struct{ Tasks []models.Task }](t, w).Tasks
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.False(t, task.IsCompleted)
		assert.Equal(t, note.ID, *task.NoteID)
	}

	w = s.do(http.MethodPatch, "/api/v1/tasks/"+tasks[0].ID, gin.H{"is_completed": true})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/v1/tasks?completed=false", nil)
	assert.Len(t, decode[struct{ Tasks []models.Task }](t, w).Tasks, 1)

	w = s.do(http.MethodGet, "/api/v1/tags", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tags := decode[struct{ Tags []models.TagCount }](t, w).Tags
	assert.Contains(t, tags, models.TagCount{Name: "trip", Count: 1})
}

func TestTaskEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.signUp("todo@example.com")

	w := s.do(http.MethodPost, "/api/v1/tasks", gin.H{"title": "renew passport", "due_date": "2026-05-04", "priority": "high"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	task := decode[models.Task](t, w)
	assert.Equal(t, models.PriorityHigh, task.Priority)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/tasks", gin.H{"title": "x", "priority": "asap"}).Code)

	w = s.do(http.MethodGet, "/api/v1/calendar?year=2026&month=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	month := decode[models.CalendarMonth](t, w)
	require.Len(t, month.Days, 1)
	assert.Equal(t, "2026-05-04", month.Days[0].Date)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/calendar?month=13", nil).Code)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/tasks/"+task.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/v1/tasks/"+task.ID, nil).Code)
}

func TestSettingsEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.signUp("settings@example.com")

	w := s.do(http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	settings := decode[models.UserSettings](t, w)
	assert.Equal(t, models.CadenceDaily, settings.NotificationCadence)
	assert.True(t, settings.AutoEnrich)

	w = s.do(http.MethodPut, "/api/v1/settings", gin.H{"notification_cadence": "weekly", "default_color": "#e0f2fe"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/notes", gin.H{})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "#e0f2fe", decode[models.Note](t, w).Color)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/api/v1/settings", gin.H{"notification_cadence": "hourly"}).Code)
}

func TestAttachmentUploadAndPublicRead(t *testing.T) {
	s := newTestServer(t)
	s.signUp("files@example.com")

	w := s.do(http.MethodPost, "/api/v1/notes", gin.H{"note_type": "image"})
	require.Equal(t, http.StatusCreated, w.Code)
	note := decode[models.Note](t, w)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "receipt.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("total: 42"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/notes/%s/attachments", note.ID), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	attachment := decode[models.Attachment](t, rec)
	assert.True(t, strings.HasPrefix(attachment.PublicURL, "http://localhost/files/"))

	s.token = ""
	w = s.do(http.MethodGet, "/files/"+attachment.StoragePath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "total: 42", w.Body.String())
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/files/nobody/missing.txt", nil).Code)
}

func TestAutoEnrichmentAfterSettleDelay(t *testing.T) {
	s := newTestServer(t)
	s.signUp("auto@example.com")

	w := s.do(http.MethodPost, "/api/v1/notes", gin.H{"content": "Garden plan: **plant tomatoes** before the frost ends."})
	require.Equal(t, http.StatusCreated, w.Code)
	note := decode[models.Note](t, w)

	require.Eventually(t, func() bool {
		w := s.do(http.MethodGet, "/api/v1/notes/"+note.ID, nil)
		return decode[models.Note](t, w).AIProcessedAt != nil
	}, 2*time.Second, 20*time.Millisecond)
}
