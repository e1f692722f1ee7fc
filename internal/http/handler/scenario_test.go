package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"foodmemories/internal/http/middleware"
	"foodmemories/internal/logging"
	"foodmemories/internal/model"
	"foodmemories/internal/repository"
	"foodmemories/internal/service"
	"foodmemories/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory document store for route-level scenarios.
type memStore struct {
	mu           sync.Mutex
	seq          int
	participants map[string]model.Participant
	photos       map[string]model.Photo
}

func newMemStore() *memStore {
	return &memStore{participants: map[string]model.Participant{}, photos: map[string]model.Photo{}}
}

func (m *memStore) nextID() string {
	m.seq++
	return fmt.Sprintf("%024d", m.seq)
}

func (m *memStore) Ping(context.Context) error { return nil }

type memParticipants struct{ *memStore }

func (r memParticipants) Create(_ context.Context, f model.ParticipantFields) (*model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	p := model.Participant{ID: r.nextID(), Name: f.Name, Email: f.Email, Dietary: f.Dietary, Cultural: f.Cultural, Notes: f.Notes, CreatedAt: now, UpdatedAt: now}
	r.participants[p.ID] = p
	return &p, nil
}

func (r memParticipants) FindByID(_ context.Context, id string) (*model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r memParticipants) FindByIDs(_ context.Context, ids []string) ([]model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Participant
	for _, id := range ids {
		if p, ok := r.participants[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memParticipants) List(context.Context) ([]model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memParticipants) Update(_ context.Context, id string, f model.ParticipantFields) (*model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Name, p.Email, p.Dietary, p.Cultural, p.Notes = f.Name, f.Email, f.Dietary, f.Cultural, f.Notes
	p.UpdatedAt = time.Now().UTC()
	r.participants[id] = p
	return &p, nil
}

func (r memParticipants) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.participants[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.participants, id)
	return nil
}

type memPhotos struct{ *memStore }

func (r memPhotos) Create(_ context.Context, p *model.Photo) (*model.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := *p
	out.ID = r.nextID()
	out.CreatedAt = time.Now().UTC()
	out.UpdatedAt = out.CreatedAt
	out.Participants = nil
	r.photos[out.ID] = out
	return &out, nil
}

func (r memPhotos) FindByID(_ context.Context, id string) (*model.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.photos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r memPhotos) List(_ context.Context, f model.PhotoFilter) ([]model.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Photo
	for _, p := range r.photos {
		if f.Day != nil && p.Day != *f.Day {
			continue
		}
		if f.ModuleID != "" && p.ModuleID != f.ModuleID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memPhotos) Delete(_ context.Context, id string) (*model.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.photos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.photos, id)
	return &p, nil
}

var tinyJPEG = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01, 0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0xFF, 0xD9}

func newScenarioApp(t *testing.T) *fiber.App {
	t.Helper()
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	mem := newMemStore()
	participants := memParticipants{mem}
	photos := memPhotos{mem}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.Discard())})
	app.Use(middleware.RequestID())
	RegisterRoutes(app, Dependencies{
		DB:           mem,
		Started:      time.Now(),
		Participants: service.NewParticipantService(participants),
		Photos:       service.NewPhotoService(store, photos, participants, service.PhotoOptions{MaxBytes: 1 << 20}),
		Store:        store,
		Logger:       logging.Discard(),
	})
	return app
}

func TestScenario_ParticipantPhotoLifecycle(t *testing.T) {
	app := newScenarioApp(t)

	// Create a participant.
	req := httptest.NewRequest(http.MethodPost, "/api/participants", strings.NewReader(`{"name":"Ada Lovelace"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var ada model.Participant
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ada))
	require.NotEmpty(t, ada.ID)

	// Upload a photo tagged with her.
	body, ct := multipartBody(t,
		map[string][]string{"day": {"1"}, "phaseIndex": {"0"}, "participantIds": {ada.ID}},
		formFile{field: "photo", name: "soup.jpg", contentType: "image/jpeg", data: tinyJPEG},
	)
	req = httptest.NewRequest(http.MethodPost, "/api/photos", body)
	req.Header.Set("Content-Type", ct)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var photo struct {
		ID             string              `json:"id"`
		StoragePath    string              `json:"storagePath"`
		ParticipantIDs []model.Participant `json:"participantIds"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&photo))
	assert.Regexp(t, `^day-1/phase-1/\d+-soup\.jpg$`, photo.StoragePath)
	require.Len(t, photo.ParticipantIDs, 1)
	assert.Equal(t, "Ada Lovelace", photo.ParticipantIDs[0].Name)
	assert.Equal(t, ada.ID, photo.ParticipantIDs[0].ID)

	// The file is served statically.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/uploads/"+photo.StoragePath, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var served bytes.Buffer
	_, _ = served.ReadFrom(resp.Body)
	assert.Equal(t, tinyJPEG, served.Bytes())

	// Listing by day includes it.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/photos?day=1", nil))
	require.NoError(t, err)
	var listed []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed, 1)
	assert.Equal(t, photo.ID, listed[0]["id"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/photos?day=2", nil))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	assert.Empty(t, listed)

	// Delete, then the file is gone from the static server.
	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/photos/"+photo.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/uploads/"+photo.StoragePath, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/photos/"+photo.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScenario_DeletedParticipantDropsFromPhotos(t *testing.T) {
	app := newScenarioApp(t)

	var ids []string
	for _, name := range []string{"Ada", "Grace"} {
		req := httptest.NewRequest(http.MethodPost, "/api/participants", strings.NewReader(`{"name":"`+name+`"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		var p model.Participant
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
		ids = append(ids, p.ID)
	}

	body, ct := multipartBody(t,
		map[string][]string{"day": {"2"}, "phaseIndex": {"1"}, "moduleId": {"2-3"}, "participantIds": {ids[1] + "," + ids[0] + ",unknown"}},
		formFile{field: "photo", name: "table.jpg", contentType: "image/jpeg", data: tinyJPEG},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/photos", body)
	req.Header.Set("Content-Type", ct)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Photo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.Len(t, created.Participants, 2)
	assert.Equal(t, "Grace", created.Participants[0].Name)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/participants/"+ids[1], nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/photos/"+created.ID, nil))
	require.NoError(t, err)
	var fetched model.Photo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fetched))
	require.Len(t, fetched.Participants, 1)
	assert.Equal(t, "Ada", fetched.Participants[0].Name)
}

func TestScenario_UploadRejectedWritesNothing(t *testing.T) {
	app := newScenarioApp(t)

	body, ct := multipartBody(t,
		map[string][]string{"day": {"1"}, "phaseIndex": {"0"}},
		formFile{field: "photo", name: "notes.txt", contentType: "text/plain", data: []byte("not an image")},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/photos", body)
	req.Header.Set("Content-Type", ct)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody := decodeError(t, resp.Body)
	assert.Equal(t, "Only image uploads are allowed", errBody.Message)
	assert.NotEmpty(t, errBody.RequestID)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/uploads/day-1/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScenario_Health(t *testing.T) {
	app := newScenarioApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "uptime")
}
