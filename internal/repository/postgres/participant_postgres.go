package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"foodmemories/internal/model"
	"foodmemories/internal/repository"
)

const participantColumns = `id, name, email, dietary, cultural, notes, created_at, updated_at`

// ParticipantPostgres is a PostgreSQL implementation of repository.ParticipantRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ParticipantPostgres struct {
	db  *sql.DB
	now func() time.Time
}

// NewParticipantPostgres creates a new ParticipantPostgres repository.
func NewParticipantPostgres(db *sql.DB) *ParticipantPostgres {
	return &ParticipantPostgres{db: db, now: time.Now}
}

var _ repository.ParticipantRepository = (*ParticipantPostgres)(nil)

// Create inserts a new participant row and returns the stored record.
func (r *ParticipantPostgres) Create(ctx context.Context, f model.ParticipantFields) (*model.Participant, error) {
	const q = `
		INSERT INTO participants (id, name, email, dietary, cultural, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING ` + participantColumns
	now := r.now().UTC()
	row := r.db.QueryRowContext(ctx, q,
		uuid.NewString(),
		f.Name,
		f.Email,
		f.Dietary,
		f.Cultural,
		f.Notes,
		now,
	)
	return scanParticipant(row)
}

// FindByID fetches a single participant by its ID.
func (r *ParticipantPostgres) FindByID(ctx context.Context, id string) (*model.Participant, error) {
	if !isUUID(id) {
		return nil, repository.ErrNotFound
	}
	const q = `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`
	p, err := scanParticipant(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return p, err
}

// FindByIDs returns the participants that exist among ids.
func (r *ParticipantPostgres) FindByIDs(ctx context.Context, ids []string) ([]model.Participant, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return []model.Participant{}, nil
	}
	q := `SELECT ` + participantColumns + ` FROM participants WHERE id IN (` + placeholders(1, len(ids)) + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.query(ctx, q, args...)
}

// List returns all participants, newest first.
func (r *ParticipantPostgres) List(ctx context.Context) ([]model.Participant, error) {
	const q = `SELECT ` + participantColumns + ` FROM participants ORDER BY created_at DESC, id DESC`
	return r.query(ctx, q)
}

// Update replaces the editable fields of a participant.
func (r *ParticipantPostgres) Update(ctx context.Context, id string, f model.ParticipantFields) (*model.Participant, error) {
	if !isUUID(id) {
		return nil, repository.ErrNotFound
	}
	const q = `
		UPDATE participants
		SET name = $2, email = $3, dietary = $4, cultural = $5, notes = $6, updated_at = $7
		WHERE id = $1
		RETURNING ` + participantColumns
	row := r.db.QueryRowContext(ctx, q, id, f.Name, f.Email, f.Dietary, f.Cultural, f.Notes, r.now().UTC())
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return p, err
}

// Delete removes a participant by ID. Photos keep their (now dangling) references.
func (r *ParticipantPostgres) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return repository.ErrNotFound
	}
	const q = `DELETE FROM participants WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ParticipantPostgres) query(ctx context.Context, q string, args ...any) ([]model.Participant, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
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

func scanParticipant(row rowScanner) (*model.Participant, error) {
	var p model.Participant
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Dietary,
		&p.Cultural,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
