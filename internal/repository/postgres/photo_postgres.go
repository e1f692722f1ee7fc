package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"foodmemories/internal/model"
	"foodmemories/internal/repository"
)

const photoColumns = `p.id, p.filename, p.original_name, p.storage_path, p.mime_type, p.size,
		p.day, p.phase_index, p.module_id, p.caption, p.notes, p.created_at, p.updated_at`

// participant references are folded into one comma separated column so a photo stays one row.
const photoSelect = `
		SELECT ` + photoColumns + `,
		COALESCE((
			SELECT string_agg(pp.participant_id::text, ',' ORDER BY pp.position)
			FROM photo_participants pp
			WHERE pp.photo_id = p.id
		), '') AS participant_ids
		FROM photos p`

// PhotoPostgres is a PostgreSQL implementation of repository.PhotoRepository.
type PhotoPostgres struct {
	db  *sql.DB
	now func() time.Time
}

// NewPhotoPostgres creates a new PhotoPostgres repository.
func NewPhotoPostgres(db *sql.DB) *PhotoPostgres {
	return &PhotoPostgres{db: db, now: time.Now}
}

var _ repository.PhotoRepository = (*PhotoPostgres)(nil)

// Create inserts the photo row and its participant references in one transaction.
func (r *PhotoPostgres) Create(ctx context.Context, p *model.Photo) (*model.Photo, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const qPhoto = `
		INSERT INTO photos (id, filename, original_name, storage_path, mime_type, size,
			day, phase_index, module_id, caption, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING id, filename, original_name, storage_path, mime_type, size,
			day, phase_index, module_id, caption, notes, created_at, updated_at`
	now := r.now().UTC()
	row := tx.QueryRowContext(ctx, qPhoto,
		uuid.NewString(),
		p.Filename,
		p.OriginalName,
		p.StoragePath,
		p.MimeType,
		p.Size,
		p.Day,
		p.PhaseIndex,
		p.ModuleID,
		p.Caption,
		p.Notes,
		now,
	)
	var out model.Photo
	if err := row.Scan(
		&out.ID,
		&out.Filename,
		&out.OriginalName,
		&out.StoragePath,
		&out.MimeType,
		&out.Size,
		&out.Day,
		&out.PhaseIndex,
		&out.ModuleID,
		&out.Caption,
		&out.Notes,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		return nil, err
	}

	const qRef = `INSERT INTO photo_participants (photo_id, participant_id, position) VALUES ($1, $2, $3)`
	out.ParticipantIDs = make([]string, 0, len(p.ParticipantIDs))
	for i, pid := range validIDs(p.ParticipantIDs) {
		if _, err := tx.ExecContext(ctx, qRef, out.ID, pid, i); err != nil {
			return nil, fmt.Errorf("insert participant reference: %w", err)
		}
		out.ParticipantIDs = append(out.ParticipantIDs, pid)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &out, nil
}

// FindByID fetches a single photo by its ID.
func (r *PhotoPostgres) FindByID(ctx context.Context, id string) (*model.Photo, error) {
	if !isUUID(id) {
		return nil, repository.ErrNotFound
	}
	p, err := scanPhoto(r.db.QueryRowContext(ctx, photoSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return p, err
}

// List returns photos matching the filter, newest first.
func (r *PhotoPostgres) List(ctx context.Context, f model.PhotoFilter) ([]model.Photo, error) {
	var (
		conds []string
		args  []any
	)
	if f.Day != nil {
		args = append(args, *f.Day)
		conds = append(conds, fmt.Sprintf("p.day = $%d", len(args)))
	}
	if f.ModuleID != "" {
		args = append(args, f.ModuleID)
		conds = append(conds, fmt.Sprintf("p.module_id = $%d", len(args)))
	}
	q := photoSelect
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY p.created_at DESC, p.id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Photo, 0)
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a photo row; its participant references go with it (ON DELETE CASCADE).
func (r *PhotoPostgres) Delete(ctx context.Context, id string) (*model.Photo, error) {
	if !isUUID(id) {
		return nil, repository.ErrNotFound
	}
	const q = `
		DELETE FROM photos p WHERE p.id = $1
		RETURNING ` + photoColumns
	var out model.Photo
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&out.ID,
		&out.Filename,
		&out.OriginalName,
		&out.StoragePath,
		&out.MimeType,
		&out.Size,
		&out.Day,
		&out.PhaseIndex,
		&out.ModuleID,
		&out.Caption,
		&out.Notes,
		&out.CreatedAt,
		&out.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func scanPhoto(row rowScanner) (*model.Photo, error) {
	var (
		p   model.Photo
		ids string
	)
	if err := row.Scan(
		&p.ID,
		&p.Filename,
		&p.OriginalName,
		&p.StoragePath,
		&p.MimeType,
		&p.Size,
		&p.Day,
		&p.PhaseIndex,
		&p.ModuleID,
		&p.Caption,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
		&ids,
	); err != nil {
		return nil, err
	}
	p.ParticipantIDs = splitIDs(ids)
	return &p, nil
}

func splitIDs(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
