package facilitator

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"foodmemories/internal/client"
	"foodmemories/internal/facilitator/mocks"
	"foodmemories/internal/model"
	"foodmemories/internal/workshop"
)

type manualTicker struct{ ch chan time.Time }

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               {}

type manualClock struct {
	mu   sync.Mutex
	last *manualTicker
}

func (c *manualClock) ticker() workshop.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = &manualTicker{ch: make(chan time.Time)}
	return c.last
}

func (c *manualClock) fire() {
	c.mu.Lock()
	t := c.last
	c.mu.Unlock()
	t.ch <- time.Now()
}

func newSession(t *testing.T, api *mocks.MockAPI) (*Session, *manualClock) {
	t.Helper()
	clock := &manualClock{}
	cl, err := workshop.LoadChecklist(workshop.FileStore{Dir: t.TempDir()})
	require.NoError(t, err)
	s := NewSession(api, cl, nil, workshop.WithTicker(clock.ticker))
	t.Cleanup(s.Close)
	return s, clock
}

func TestRefreshAll(t *testing.T) {
	api := new(mocks.MockAPI)
	api.On("ListParticipants", mock.Anything).Return([]model.Participant{{ID: "p1", Name: "Ana"}}, nil)
	api.On("ListPhotos", mock.Anything, client.PhotoQuery{}).Return([]model.Photo{
		{ID: "a", Day: 1, ModuleID: "1-1"},
		{ID: "b", Day: 1, ModuleID: "1-2"},
		{ID: "c", Day: 2, ModuleID: "1-1"},
	}, nil)
	s, _ := newSession(t, api)

	require.NoError(t, s.RefreshAll(context.Background()))

	assert.Len(t, s.Participants(), 1)
	assert.Len(t, s.Photos(), 3)
	current := s.CurrentPhotos()
	require.Len(t, current, 1)
	assert.Equal(t, "a", current[0].ID)
	assert.False(t, s.Loading(PanelParticipants))
	api.AssertExpectations(t)
}

func TestRefresh_ErrorIsPerPanel(t *testing.T) {
	api := new(mocks.MockAPI)
	api.On("ListParticipants", mock.Anything).Return([]model.Participant{{ID: "p1"}}, nil)
	api.On("ListPhotos", mock.Anything, mock.Anything).Return(nil, &client.APIError{Status: 500, Message: "Failed to load photos"})
	s, _ := newSession(t, api)

	err := s.RefreshAll(context.Background())
	assert.EqualError(t, err, "Failed to load photos")
	assert.Equal(t, "Failed to load photos", s.Error(PanelPhotos))
	assert.Empty(t, s.Error(PanelParticipants))
	assert.Len(t, s.Participants(), 1)

	s.DismissError(PanelPhotos)
	assert.Empty(t, s.Error(PanelPhotos))
}

func TestRefresh_SupersededLoadDoesNotCommit(t *testing.T) {
	api := new(mocks.MockAPI)
	started := make(chan struct{})
	release := make(chan struct{})
	api.On("ListParticipants", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]model.Participant{{ID: "stale"}}, nil).Once()
	api.On("ListParticipants", mock.Anything).Return([]model.Participant{{ID: "fresh"}}, nil).Once()
	s, _ := newSession(t, api)

	errCh := make(chan error, 1)
	go func() { errCh <- s.RefreshParticipants(context.Background()) }()
	<-started

	require.NoError(t, s.RefreshParticipants(context.Background()))
	close(release)

	assert.ErrorIs(t, <-errCh, context.Canceled)
	require.Len(t, s.Participants(), 1)
	assert.Equal(t, "fresh", s.Participants()[0].ID)
	assert.Empty(t, s.Error(PanelParticipants))
}

func TestRefresh_CancelledContextDoesNotCommit(t *testing.T) {
	api := new(mocks.MockAPI)
	ctx, cancel := context.WithCancel(context.Background())
	api.On("ListPhotos", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, errors.New("request aborted"))
	s, _ := newSession(t, api)

	err := s.RefreshPhotos(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.Error(PanelPhotos))
	assert.Nil(t, s.Photos())
}

func TestSaveAndDeleteParticipant(t *testing.T) {
	api := new(mocks.MockAPI)
	ctx := context.Background()
	fields := model.ParticipantFields{Name: "Ana"}
	api.On("CreateParticipant", ctx, fields).Return(&model.Participant{ID: "p1", Name: "Ana"}, nil)
	api.On("UpdateParticipant", ctx, "p1", model.ParticipantFields{Name: "Ana Lee"}).Return(&model.Participant{ID: "p1", Name: "Ana Lee"}, nil)
	api.On("UpdateParticipant", ctx, "p9", mock.Anything).Return(nil, &client.APIError{Status: 404, Message: "Participant not found"})
	api.On("DeleteParticipant", ctx, "p1").Return(nil)
	s, _ := newSession(t, api)

	_, err := s.SaveParticipant(ctx, "", fields)
	require.NoError(t, err)
	_, err = s.SaveParticipant(ctx, "p1", model.ParticipantFields{Name: "Ana Lee"})
	require.NoError(t, err)
	require.Len(t, s.Participants(), 1)
	assert.Equal(t, "Ana Lee", s.Participants()[0].Name)

	_, err = s.SaveParticipant(ctx, "p9", model.ParticipantFields{Name: "Ghost"})
	assert.Error(t, err)
	assert.Equal(t, "Participant not found", s.Error(PanelParticipants))

	require.NoError(t, s.DeleteParticipant(ctx, "p1"))
	assert.Empty(t, s.Participants())
	assert.Empty(t, s.Error(PanelParticipants))
}

func TestUploadPhotos(t *testing.T) {
	api := new(mocks.MockAPI)
	ctx := context.Background()
	api.On("CheckUpload", mock.Anything).Return("image/jpeg", nil)
	api.On("UploadPhoto", ctx, mock.MatchedBy(func(u client.PhotoUpload) bool { return u.Path == "a.jpg" })).
		Return(&model.Photo{ID: "new-a", Day: 2, ModuleID: "2-2"}, nil)
	api.On("UploadPhoto", ctx, mock.MatchedBy(func(u client.PhotoUpload) bool { return u.Path == "b.jpg" })).
		Return(&model.Photo{ID: "new-b", Day: 2, ModuleID: "2-2"}, nil)
	api.On("ListPhotos", mock.Anything, mock.Anything).Return([]model.Photo{{ID: "old"}}, nil)
	s, _ := newSession(t, api)
	require.NoError(t, s.RefreshPhotos(ctx))
	require.NoError(t, s.Navigator().SelectDay(2))
	require.NoError(t, s.Navigator().SelectPhase(1))

	uploaded, err := s.UploadPhotos(ctx, []string{"a.jpg", "b.jpg"}, UploadOptions{ParticipantIDs: []string{"p1"}, Caption: "stirring"})
	require.NoError(t, err)
	assert.Len(t, uploaded, 2)

	var ids []string
	for _, p := range s.Photos() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"new-a", "new-b", "old"}, ids)

	api.AssertCalled(t, "UploadPhoto", ctx, client.PhotoUpload{
		Day: 2, PhaseIndex: 1, ModuleID: "2-2", ParticipantIDs: []string{"p1"}, Caption: "stirring", Path: "a.jpg",
	})
	assert.Len(t, s.CurrentPhotos(), 2)
}

func TestUploadPhotos_PrecheckRejectsBatch(t *testing.T) {
	api := new(mocks.MockAPI)
	api.On("CheckUpload", "ok.jpg").Return("image/jpeg", nil)
	api.On("CheckUpload", "notes.txt").Return("", &client.CheckError{Message: `"notes.txt" is not an image. Please choose image files only.`})
	s, _ := newSession(t, api)

	_, err := s.UploadPhotos(context.Background(), []string{"ok.jpg", "notes.txt"}, UploadOptions{})
	assert.Error(t, err)
	assert.Contains(t, s.Error(PanelUpload), "is not an image")
	api.AssertNotCalled(t, "UploadPhoto", mock.Anything, mock.Anything)
}

func TestUploadPhotos_PartialFailureKeepsUploaded(t *testing.T) {
	api := new(mocks.MockAPI)
	api.On("CheckUpload", mock.Anything).Return("image/png", nil)
	api.On("UploadPhoto", mock.Anything, mock.MatchedBy(func(u client.PhotoUpload) bool { return u.Path == "1.png" })).
		Return(&model.Photo{ID: "one"}, nil)
	api.On("UploadPhoto", mock.Anything, mock.MatchedBy(func(u client.PhotoUpload) bool { return u.Path == "2.png" })).
		Return(nil, &client.APIError{Status: 500, Message: "Failed to upload photo"})
	s, _ := newSession(t, api)

	uploaded, err := s.UploadPhotos(context.Background(), []string{"1.png", "2.png", "3.png"}, UploadOptions{})
	assert.EqualError(t, err, "Failed to upload photo")
	assert.Len(t, uploaded, 1)
	assert.Len(t, s.Photos(), 1)
	assert.Equal(t, "Failed to upload photo", s.Error(PanelUpload))
	api.AssertNumberOfCalls(t, "UploadPhoto", 2)
}

func TestDeletePhoto(t *testing.T) {
	api := new(mocks.MockAPI)
	api.On("ListPhotos", mock.Anything, mock.Anything).Return([]model.Photo{{ID: "a"}, {ID: "b"}}, nil)
	api.On("DeletePhoto", mock.Anything, "a").Return(nil)
	api.On("DeletePhoto", mock.Anything, "zz").Return(&client.APIError{Status: 404, Message: "Photo not found"})
	s, _ := newSession(t, api)
	require.NoError(t, s.RefreshPhotos(context.Background()))

	require.NoError(t, s.DeletePhoto(context.Background(), "a"))
	require.Len(t, s.Photos(), 1)
	assert.Equal(t, "b", s.Photos()[0].ID)

	assert.Error(t, s.DeletePhoto(context.Background(), "zz"))
	assert.Equal(t, "Photo not found", s.Error(PanelPhotos))
}

func TestExportParticipants(t *testing.T) {
	api := new(mocks.MockAPI)
	api.On("ListParticipants", mock.Anything).Return([]model.Participant{{ID: "p1", Name: "Ana", Dietary: "vegetarian"}}, nil)
	s, _ := newSession(t, api)
	out := filepath.Join(t.TempDir(), "participants.json")

	_, err := s.ExportParticipants(out)
	assert.ErrorIs(t, err, ErrNothingToExport)

	require.NoError(t, s.RefreshParticipants(context.Background()))
	n, err := s.ExportParticipants(out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "vegetarian", got[0]["dietary"])
}

func TestTimerAlert(t *testing.T) {
	s, clock := newSession(t, new(mocks.MockAPI))

	s.Timer().StartCountdown(0)
	clock.fire()

	select {
	case msg := <-s.Alerts():
		assert.Equal(t, "Time is up for My Madeleine: A Proustian Memory Activation", msg)
	case <-time.After(time.Second):
		t.Fatal("no alert")
	}
}

func TestStartModuleTimer(t *testing.T) {
	s, _ := newSession(t, new(mocks.MockAPI))
	require.True(t, s.Navigator().Next())

	s.StartModuleTimer(0)
	assert.Equal(t, "45:00", s.Timer().Display())

	s.StartModuleTimer(10)
	assert.Equal(t, "10:00", s.Timer().Display())
}

func TestSaveParticipant_CreatedGoesFirst(t *testing.T) {
	api := new(mocks.MockAPI)
	ctx := context.Background()
	api.On("ListParticipants", mock.Anything).Return([]model.Participant{{ID: "p2", Name: "Budi"}, {ID: "p1", Name: "Ana"}}, nil)
	api.On("CreateParticipant", ctx, model.ParticipantFields{Name: "Citra"}).Return(&model.Participant{ID: "p3", Name: "Citra"}, nil)
	api.On("UpdateParticipant", ctx, "p1", model.ParticipantFields{Name: "Ana Lee"}).Return(&model.Participant{ID: "p1", Name: "Ana Lee"}, nil)
	s, _ := newSession(t, api)
	require.NoError(t, s.RefreshParticipants(ctx))

	_, err := s.SaveParticipant(ctx, "", model.ParticipantFields{Name: "Citra"})
	require.NoError(t, err)
	_, err = s.SaveParticipant(ctx, "p1", model.ParticipantFields{Name: "Ana Lee"})
	require.NoError(t, err)

	var got []string
	for _, p := range s.Participants() {
		got = append(got, p.ID+":"+p.Name)
	}
	assert.Equal(t, []string{"p3:Citra", "p2:Budi", "p1:Ana Lee"}, got)
}
