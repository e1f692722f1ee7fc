// Package client talks to the Food Memories REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"foodmemories/internal/model"
)

// DefaultMaxUploadBytes mirrors the server's default per-file limit.
const DefaultMaxUploadBytes int64 = 10 * 1024 * 1024

// APIError is a non-2xx response. Message is the server's message when it sent one.
type APIError struct {
	Status    int
	Message   string
	Code      string
	RequestID string
}

func (e *APIError) Error() string { return e.Message }

// ErrEmptyUpload is returned when the server accepts an upload but sends no photo back.
var ErrEmptyUpload = errors.New("Photo upload response was empty")

// CheckError is a client-side rejection of a file before any request is made.
type CheckError struct {
	Message string
}

func (e *CheckError) Error() string { return e.Message }

type Client struct {
	baseURL  string
	http     *http.Client
	maxBytes int64
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithMaxUploadBytes sets the size used by CheckUpload.
func WithMaxUploadBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   60 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxBytes: DefaultMaxUploadBytes,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) ListParticipants(ctx context.Context) ([]model.Participant, error) {
	var out []model.Participant
	err := c.do(ctx, http.MethodGet, "/api/participants", nil, "", &out, "Failed to load participants")
	return out, err
}

func (c *Client) CreateParticipant(ctx context.Context, f model.ParticipantFields) (*model.Participant, error) {
	var out model.Participant
	if err := c.sendJSON(ctx, http.MethodPost, "/api/participants", f, &out, "Failed to save participant"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateParticipant(ctx context.Context, id string, f model.ParticipantFields) (*model.Participant, error) {
	var out model.Participant
	if err := c.sendJSON(ctx, http.MethodPut, "/api/participants/"+url.PathEscape(id), f, &out, "Failed to save participant"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteParticipant(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/participants/"+url.PathEscape(id), nil, "", nil, "Failed to delete participant")
}

// PhotoQuery filters ListPhotos. Zero values do not filter.
type PhotoQuery struct {
	Day      int
	ModuleID string
}

func (c *Client) ListPhotos(ctx context.Context, q PhotoQuery) ([]model.Photo, error) {
	v := url.Values{}
	if q.Day > 0 {
		v.Set("day", strconv.Itoa(q.Day))
	}
	if q.ModuleID != "" {
		v.Set("moduleId", q.ModuleID)
	}
	p := "/api/photos"
	if len(v) > 0 {
		p += "?" + v.Encode()
	}
	var out []model.Photo
	err := c.do(ctx, http.MethodGet, p, nil, "", &out, "Failed to load photos")
	return out, err
}

func (c *Client) DeletePhoto(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/photos/"+url.PathEscape(id), nil, "", nil, "Failed to delete photo")
}

// PhotoUpload describes one file to attach to a workshop location.
type PhotoUpload struct {
	Day            int
	PhaseIndex     int
	ModuleID       string
	ParticipantIDs []string
	Caption        string
	Notes          string
	Path           string
}

// CheckUpload applies the size and image checks the server would apply, and returns the sniffed MIME type.
func (c *Client) CheckUpload(path string) (string, error) {
	name := filepath.Base(path)
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", &CheckError{Message: fmt.Sprintf("%q is a directory. Please choose image files only.", name)}
	}
	if fi.Size() > c.maxBytes {
		mb := (c.maxBytes + 512*1024) / (1024 * 1024)
		return "", &CheckError{Message: fmt.Sprintf("%q exceeds the %dMB limit. Please choose a smaller file.", name, mb)}
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", &CheckError{Message: fmt.Sprintf("%q is not an image. Please choose image files only.", name)}
	}
	return mt.String(), nil
}

// UploadPhoto checks the file locally and posts it as multipart/form-data.
func (c *Client) UploadPhoto(ctx context.Context, u PhotoUpload) (*model.Photo, error) {
	mimeType, err := c.CheckUpload(u.Path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(u.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := [][2]string{
		{"day", strconv.Itoa(u.Day)},
		{"phaseIndex", strconv.Itoa(u.PhaseIndex)},
	}
	if u.ModuleID != "" {
		fields = append(fields, [2]string{"moduleId", u.ModuleID})
	}
	fields = append(fields, [2]string{"participantIds", strings.Join(u.ParticipantIDs, ",")})
	if u.Caption != "" {
		fields = append(fields, [2]string{"caption", u.Caption})
	}
	if u.Notes != "" {
		fields = append(fields, [2]string{"notes", u.Notes})
	}
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, filepath.Base(u.Path)))
	h.Set("Content-Type", mimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var out *model.Photo
	if err := c.do(ctx, http.MethodPost, "/api/photos", &body, w.FormDataContentType(), &out, "Failed to upload photo"); err != nil {
		return nil, err
	}
	if out == nil || out.ID == "" {
		return nil, ErrEmptyUpload
	}
	return out, nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any, fallback string) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, bytes.NewReader(b), "application/json", out, fallback)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any, fallback string) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp, fallback)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	return nil
}

func decodeError(resp *http.Response, fallback string) error {
	var payload struct {
		Message   string `json:"message"`
		Code      string `json:"code"`
		RequestID string `json:"request_id"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&payload)
	e := &APIError{Status: resp.StatusCode, Message: payload.Message, Code: payload.Code, RequestID: payload.RequestID}
	if e.Message == "" {
		e.Message = fallback
	}
	return e
}
