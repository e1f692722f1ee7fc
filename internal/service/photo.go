package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"foodmemories/internal/logging"
	"foodmemories/internal/model"
	"foodmemories/internal/repository"
	"foodmemories/internal/storage"
)

// UploadFile is one file part of a multipart upload.
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	// Open returns a fresh reader over the file content. It may be called more than once.
	Open func() (io.ReadCloser, error)
}

// UploadRequest carries the raw form values of a photo upload. Day and PhaseIndex
// are kept as strings so that missing and malformed values can be told apart.
type UploadRequest struct {
	Day            string
	PhaseIndex     string
	ModuleID       string
	Caption        string
	Notes          string
	ParticipantIDs []string
	Files          []UploadFile
}

// PhotoOptions configures a PhotoService.
type PhotoOptions struct {
	// MaxBytes caps the size of a stored photo. Zero means no limit.
	MaxBytes int64
	// PublicBaseURL, when set, fills Photo.URL as <base>/uploads/<storagePath>.
	PublicBaseURL string
	Logger        *slog.Logger
	Metrics       *PhotoMetrics
}

// PhotoService defines the use cases for workshop photos.
type PhotoService interface {
	// List returns photos matching the filter, newest first, with participants expanded.
	List(ctx context.Context, filter model.PhotoFilter) ([]model.Photo, error)

	// Get returns a single photo with participants expanded.
	Get(ctx context.Context, id string) (*model.Photo, error)

	// Upload validates the request, writes the file under its workshop directory and stores the record.
	// Nothing is written when validation fails. If the record cannot be stored the file is removed again.
	Upload(ctx context.Context, req UploadRequest) (*model.Photo, error)

	// Delete removes the record and then the file. A file that is already gone is not an error.
	Delete(ctx context.Context, id string) error
}

type photoService struct {
	store        storage.Storage
	resolver     *storage.Resolver
	photos       repository.PhotoRepository
	participants repository.ParticipantRepository
	opts         PhotoOptions
	log          *slog.Logger
	now          func() time.Time
}

// NewPhotoService constructs a new PhotoService.
func NewPhotoService(store storage.Storage, photos repository.PhotoRepository, participants repository.ParticipantRepository, opts PhotoOptions) PhotoService {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &photoService{
		store:        store,
		resolver:     storage.NewResolver(store),
		photos:       photos,
		participants: participants,
		opts:         opts,
		log:          log,
		now:          time.Now,
	}
}

func (s *photoService) List(ctx context.Context, filter model.PhotoFilter) ([]model.Photo, error) {
	items, err := s.photos.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Photo{}
	}
	if err := s.expand(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *photoService) Get(ctx context.Context, id string) (*model.Photo, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	p, err := s.photos.FindByID(ctx, id)
	if err != nil {
		return nil, photoErr(err)
	}
	items := []model.Photo{*p}
	if err := s.expand(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *photoService) Upload(ctx context.Context, req UploadRequest) (*model.Photo, error) {
	loc, file, mimeType, err := s.validateUpload(req)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			s.opts.Metrics.rejected("invalid")
		}
		return nil, err
	}

	attached, err := s.resolveParticipants(ctx, ParseParticipantIDs(req.ParticipantIDs))
	if err != nil {
		return nil, fmt.Errorf("resolve participants: %w", err)
	}

	dir, err := s.resolver.Resolve(ctx, loc)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			return nil, invalid("Invalid moduleId value")
		}
		return nil, err
	}

	filename := fmt.Sprintf("%d-%s", s.now().UnixMilli(), withExtension(SanitizeFilename(file.Filename), mimeType))
	key := dir + "/" + filename

	r, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer r.Close()

	info, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        file.Size,
		MaxBytes:    s.opts.MaxBytes,
		ContentType: mimeType,
		Metadata: map[string]string{
			"original-filename": file.Filename,
		},
	})
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			s.opts.Metrics.rejected("too_large")
			return nil, ErrFileTooLarge
		}
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	ids := make([]string, len(attached))
	for i, p := range attached {
		ids[i] = p.ID
	}
	stored, err := s.photos.Create(ctx, &model.Photo{
		Filename:       filename,
		OriginalName:   file.Filename,
		StoragePath:    key,
		MimeType:       mimeType,
		Size:           info.Size,
		Day:            loc.Day,
		PhaseIndex:     loc.PhaseIndex,
		ModuleID:       strings.TrimSpace(req.ModuleID),
		ParticipantIDs: ids,
		Caption:        strings.TrimSpace(req.Caption),
		Notes:          strings.TrimSpace(req.Notes),
	})
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Error("photo_rollback_failed", slog.String("storage_path", key), logging.Err(delErr))
		}
		s.opts.Metrics.rejected("error")
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	stored.Participants = attached
	s.opts.Metrics.uploaded(info.Size)
	s.decorate(stored)
	return stored, nil
}

func (s *photoService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	removed, err := s.photos.Delete(ctx, id)
	if err != nil {
		return photoErr(err)
	}
	s.opts.Metrics.deleted()

	if err := s.store.Delete(ctx, removed.StoragePath); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		s.log.Warn("photo_file_delete_failed",
			slog.String("photo_id", removed.ID),
			slog.String("storage_path", removed.StoragePath),
			logging.Err(err),
		)
	}
	return nil
}

// validateUpload checks the request in a fixed order and returns the first problem found.
func (s *photoService) validateUpload(req UploadRequest) (model.PhotoLocation, UploadFile, string, error) {
	var loc model.PhotoLocation

	rawDay := strings.TrimSpace(req.Day)
	if rawDay == "" {
		return loc, UploadFile{}, "", invalid("Missing day field.")
	}
	rawPhase := strings.TrimSpace(req.PhaseIndex)
	if rawPhase == "" {
		return loc, UploadFile{}, "", invalid("Missing phaseIndex field.")
	}

	switch len(req.Files) {
	case 0:
		return loc, UploadFile{}, "", invalid("No photo uploaded")
	case 1:
	default:
		return loc, UploadFile{}, "", invalid("Only one photo may be uploaded per request")
	}
	file := req.Files[0]

	mimeType, err := detectMIME(file)
	if err != nil {
		return loc, UploadFile{}, "", err
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return loc, UploadFile{}, "", invalid("Only image uploads are allowed")
	}
	if s.opts.MaxBytes > 0 && file.Size > s.opts.MaxBytes {
		return loc, UploadFile{}, "", ErrFileTooLarge
	}

	day, err := strconv.Atoi(rawDay)
	if err != nil {
		return loc, UploadFile{}, "", invalid("Invalid day value")
	}
	phase, err := strconv.Atoi(rawPhase)
	if err != nil {
		return loc, UploadFile{}, "", invalid("Invalid phaseIndex value")
	}
	if day < 1 || day > 2 {
		return loc, UploadFile{}, "", invalid("day must be 1 or 2")
	}
	if phase < 0 {
		return loc, UploadFile{}, "", invalid("phaseIndex must be 0 or greater")
	}

	loc = model.PhotoLocation{Day: day, PhaseIndex: phase, ModuleID: strings.TrimSpace(req.ModuleID)}
	return loc, file, mimeType, nil
}

// detectMIME uses the declared content type and sniffs the content only when
// the client sent none or a generic one.
func detectMIME(file UploadFile) (string, error) {
	declared := strings.ToLower(strings.TrimSpace(strings.SplitN(file.ContentType, ";", 2)[0]))
	if declared != "" && declared != "application/octet-stream" {
		return declared, nil
	}
	if file.Open == nil {
		return declared, nil
	}
	r, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer r.Close()
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	return strings.SplitN(mt.String(), ";", 2)[0], nil
}

// resolveParticipants returns the existing participants among ids, in the order given.
func (s *photoService) resolveParticipants(ctx context.Context, ids []string) ([]model.Participant, error) {
	if len(ids) == 0 {
		return []model.Participant{}, nil
	}
	found, err := s.participants.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return orderByIDs(ids, found), nil
}

// expand fills Participants on every photo from its stored ids with a single lookup.
// References to deleted participants are dropped.
func (s *photoService) expand(ctx context.Context, photos []model.Photo) error {
	var ids []string
	seen := map[string]bool{}
	for _, p := range photos {
		for _, id := range p.ParticipantIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	var found []model.Participant
	if len(ids) > 0 {
		var err error
		found, err = s.participants.FindByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("expand participants: %w", err)
		}
	}

	for i := range photos {
		photos[i].Participants = orderByIDs(photos[i].ParticipantIDs, found)
		s.decorate(&photos[i])
	}
	return nil
}

func (s *photoService) decorate(p *model.Photo) {
	if s.opts.PublicBaseURL != "" {
		p.URL = s.opts.PublicBaseURL + "/uploads/" + p.StoragePath
	}
}

// orderByIDs matches ids case-insensitively; both id formats are hex.
func orderByIDs(ids []string, found []model.Participant) []model.Participant {
	byID := make(map[string]model.Participant, len(found))
	for _, p := range found {
		byID[strings.ToLower(p.ID)] = p
	}
	out := make([]model.Participant, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[strings.ToLower(id)]; ok {
			out = append(out, p)
		}
	}
	return out
}

// ParseParticipantIDs flattens repeated and comma-separated values into a
// trimmed, lower-cased, de-duplicated list that keeps first-seen order.
func ParseParticipantIDs(values []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			id = strings.ToLower(strings.TrimSpace(id))
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// SanitizeFilename keeps the base name of a client-supplied filename and
// replaces whitespace runs with a hyphen.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	name = whitespaceRun.ReplaceAllString(name, "-")
	if name == "" || name == "." || name == "/" || name == ".." {
		return "photo"
	}
	return name
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func withExtension(name, mimeType string) string {
	if path.Ext(name) != "" {
		return name
	}
	if mt := mimetype.Lookup(mimeType); mt != nil && mt.Extension() != "" {
		return name + mt.Extension()
	}
	return name
}

func photoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPhotoNotFound
	}
	return err
}
