// Package facilitator drives a workshop from the facilitator's seat: it keeps the
// navigator, timer and checklist together with the participants and photos
// fetched from the API.
package facilitator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"foodmemories/internal/client"
	"foodmemories/internal/logging"
	"foodmemories/internal/model"
	"foodmemories/internal/workshop"
)

// API is the subset of the REST client the session needs.
type API interface {
	ListParticipants(ctx context.Context) ([]model.Participant, error)
	CreateParticipant(ctx context.Context, f model.ParticipantFields) (*model.Participant, error)
	UpdateParticipant(ctx context.Context, id string, f model.ParticipantFields) (*model.Participant, error)
	DeleteParticipant(ctx context.Context, id string) error
	ListPhotos(ctx context.Context, q client.PhotoQuery) ([]model.Photo, error)
	CheckUpload(path string) (string, error)
	UploadPhoto(ctx context.Context, u client.PhotoUpload) (*model.Photo, error)
	DeletePhoto(ctx context.Context, id string) error
}

// Panel names a group of state with its own error slot.
type Panel string

const (
	PanelParticipants Panel = "participants"
	PanelPhotos       Panel = "photos"
	PanelUpload       Panel = "upload"
)

var Panels = []Panel{PanelParticipants, PanelPhotos, PanelUpload}

type load struct {
	gen    uint64
	cancel context.CancelFunc
}

type Session struct {
	api       API
	log       *slog.Logger
	content   *workshop.Content
	nav       *workshop.Navigator
	timer     *workshop.Timer
	checklist *workshop.Checklist
	alerts    chan string

	mu           sync.Mutex
	participants []model.Participant
	photos       []model.Photo
	errs         map[Panel]string
	loads        map[Panel]load
	gen          uint64
}

// NewSession builds a session over the default workshop content.
func NewSession(api API, checklist *workshop.Checklist, log *slog.Logger, timerOpts ...workshop.TimerOption) *Session {
	if log == nil {
		log = logging.Discard()
	}
	s := &Session{
		api:       api,
		log:       log,
		content:   workshop.DefaultContent(),
		checklist: checklist,
		alerts:    make(chan string, 4),
		errs:      map[Panel]string{},
		loads:     map[Panel]load{},
	}
	opts := append([]workshop.TimerOption{workshop.WithOnDone(s.timerDone)}, timerOpts...)
	s.timer = workshop.NewTimer(opts...)
	s.nav = workshop.NewNavigator(s.content, s.timer)
	return s
}

func (s *Session) Content() *workshop.Content     { return s.content }
func (s *Session) Navigator() *workshop.Navigator { return s.nav }
func (s *Session) Timer() *workshop.Timer         { return s.timer }
func (s *Session) Checklist() *workshop.Checklist { return s.checklist }

// Alerts delivers timer notifications.
func (s *Session) Alerts() <-chan string { return s.alerts }

func (s *Session) timerDone() {
	select {
	case s.alerts <- "Time is up for " + s.nav.Current().Title:
	default:
	}
}

// StartModuleTimer starts a countdown; minutes <= 0 uses the current module's duration.
func (s *Session) StartModuleTimer(minutes int) {
	if minutes <= 0 {
		minutes = s.nav.Current().Minutes()
	}
	s.timer.StartCountdown(minutes)
}

// Error returns the message shown on a panel, if any.
func (s *Session) Error(p Panel) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs[p]
}

// DismissError clears a panel's error.
func (s *Session) DismissError(p Panel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.errs, p)
}

func (s *Session) setError(p Panel, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[p] = err.Error()
}

func (s *Session) Participants() []model.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Participant(nil), s.participants...)
}

func (s *Session) Photos() []model.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Photo(nil), s.photos...)
}

// CurrentPhotos lists the loaded photos taken at the current day and module.
func (s *Session) CurrentPhotos() []model.Photo {
	pos := s.nav.Position()
	id := s.nav.Current().ID
	var out []model.Photo
	for _, p := range s.Photos() {
		if p.Day == pos.Day && p.ModuleID == id {
			out = append(out, p)
		}
	}
	return out
}

// beginLoad supersedes any in-flight load of the panel and clears its error.
func (s *Session) beginLoad(parent context.Context, p Panel) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.loads[p]; ok {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.gen++
	s.loads[p] = load{gen: s.gen, cancel: cancel}
	delete(s.errs, p)
	return ctx, s.gen
}

// finishLoad commits the result under the lock if the load is still the live one.
func (s *Session) finishLoad(ctx context.Context, p Panel, gen uint64, err error, commit func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.loads[p]; ok && l.gen == gen {
		l.cancel()
		delete(s.loads, p)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		s.errs[p] = err.Error()
		s.log.Warn("facilitator_load_failed", "panel", string(p), logging.Err(err))
		return err
	}
	commit()
	return nil
}

// Loading reports whether a fetch for the panel is in flight.
func (s *Session) Loading(p Panel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.loads[p]
	return ok
}

// RefreshParticipants fetches the participant list. A superseded or cancelled fetch changes nothing.
func (s *Session) RefreshParticipants(ctx context.Context) error {
	ctx, gen := s.beginLoad(ctx, PanelParticipants)
	items, err := s.api.ListParticipants(ctx)
	return s.finishLoad(ctx, PanelParticipants, gen, err, func() {
		s.participants = items
	})
}

// RefreshPhotos fetches every photo.
func (s *Session) RefreshPhotos(ctx context.Context) error {
	ctx, gen := s.beginLoad(ctx, PanelPhotos)
	items, err := s.api.ListPhotos(ctx, client.PhotoQuery{})
	return s.finishLoad(ctx, PanelPhotos, gen, err, func() {
		s.photos = items
	})
}

// RefreshAll loads both lists concurrently. Each list keeps its own error.
func (s *Session) RefreshAll(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return s.RefreshParticipants(ctx) })
	g.Go(func() error { return s.RefreshPhotos(ctx) })
	return g.Wait()
}

// Close cancels every in-flight load.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p, l := range s.loads {
		l.cancel()
		delete(s.loads, p)
	}
	s.timer.Reset()
}

// SaveParticipant creates a participant when id is empty and updates it otherwise.
// A created participant goes to the front of the list; an updated one keeps its place.
func (s *Session) SaveParticipant(ctx context.Context, id string, f model.ParticipantFields) (*model.Participant, error) {
	var (
		p   *model.Participant
		err error
	)
	if id == "" {
		p, err = s.api.CreateParticipant(ctx, f)
	} else {
		p, err = s.api.UpdateParticipant(ctx, id, f)
	}
	if err != nil {
		s.setError(PanelParticipants, err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.errs, PanelParticipants)
	for i := range s.participants {
		if s.participants[i].ID == p.ID {
			s.participants[i] = *p
			return p, nil
		}
	}
	// the list is newest-first
	s.participants = append([]model.Participant{*p}, s.participants...)
	return p, nil
}

func (s *Session) DeleteParticipant(ctx context.Context, id string) error {
	if err := s.api.DeleteParticipant(ctx, id); err != nil {
		s.setError(PanelParticipants, err)
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.errs, PanelParticipants)
	kept := s.participants[:0]
	for _, p := range s.participants {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.participants = kept
	return nil
}

// UploadOptions are attached to every file of one upload.
type UploadOptions struct {
	ParticipantIDs []string
	Caption        string
	Notes          string
}

// UploadPhotos checks every file first, then uploads them one by one at the
// current position. Photos uploaded before a failure are kept.
func (s *Session) UploadPhotos(ctx context.Context, paths []string, opts UploadOptions) ([]model.Photo, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	for _, p := range paths {
		if _, err := s.api.CheckUpload(p); err != nil {
			s.setError(PanelUpload, err)
			return nil, err
		}
	}
	s.DismissError(PanelUpload)

	pos := s.nav.Position()
	moduleID := s.nav.Current().ID
	var uploaded []model.Photo
	var err error
	for _, p := range paths {
		var ph *model.Photo
		ph, err = s.api.UploadPhoto(ctx, client.PhotoUpload{
			Day:            pos.Day,
			PhaseIndex:     pos.Phase,
			ModuleID:       moduleID,
			ParticipantIDs: opts.ParticipantIDs,
			Caption:        opts.Caption,
			Notes:          opts.Notes,
			Path:           p,
		})
		if err != nil {
			s.log.Warn("facilitator_upload_failed", "file", p, logging.Err(err))
			break
		}
		uploaded = append(uploaded, *ph)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(uploaded) > 0 {
		s.photos = append(append([]model.Photo(nil), uploaded...), s.photos...)
	}
	if err != nil {
		s.errs[PanelUpload] = err.Error()
	}
	return uploaded, err
}

func (s *Session) DeletePhoto(ctx context.Context, id string) error {
	if err := s.api.DeletePhoto(ctx, id); err != nil {
		s.setError(PanelPhotos, err)
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.errs, PanelPhotos)
	kept := s.photos[:0]
	for _, p := range s.photos {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.photos = kept
	return nil
}

// ErrNothingToExport is returned when no participants are loaded.
var ErrNothingToExport = errors.New("no participants to export")

// ExportParticipants writes the loaded participants as indented JSON.
func (s *Session) ExportParticipants(path string) (int, error) {
	items := s.Participants()
	if len(items) == 0 {
		return 0, ErrNothingToExport
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return 0, fmt.Errorf("export participants: %w", err)
	}
	return len(items), nil
}
