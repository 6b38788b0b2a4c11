package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/Masterminds/squirrel"
	"github.com/kotche/notekeeper/infrastructure/tracing"
	"github.com/kotche/notekeeper/internal/model"
	"github.com/kotche/notekeeper/internal/service/access"
)

var noteColumns = []string{"id", "title", "body", "user_id", "is_deleted"}

type DefaultRepository struct {
	db *sql.DB
}

func NewDefaultRepository(pg *sql.DB) *DefaultRepository {
	return &DefaultRepository{pg}
}

func (d *DefaultRepository) CreateNote(ctx context.Context, note model.Note) (model.NoteID, error) {
	ctx, span := tracing.StartSpan(ctx, "CreateNote_repo")
	defer span.End()

	query := `
		INSERT INTO notes (title, body, user_id, is_deleted)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var noteID model.NoteID
	err := d.db.QueryRowContext(ctx, query, note.Title, note.Body, note.OwnerID, note.IsDeleted).Scan(&noteID)
	if err != nil {
		return 0, fmt.Errorf("failed to create note for user '%d': %w", note.OwnerID, err)
	}

	return noteID, nil
}

func (d *DefaultRepository) GetNote(ctx context.Context, noteID model.NoteID, scope access.Scope) (*model.Note, error) {
	ctx, span := tracing.StartSpan(ctx, "GetNote_repo")
	defer span.End()

	queryBuilder := squirrel.
		Select(noteColumns...).
		From("notes").
		Where(squirrel.Eq{"id": noteID})

	if where := scope.Where(); len(where) > 0 {
		queryBuilder = queryBuilder.Where(where)
	}

	query, args, err := queryBuilder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	note := &model.Note{}
	err = d.db.QueryRowContext(ctx, query, args...).Scan(&note.ID, &note.Title, &note.Body, &note.OwnerID, &note.IsDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note '%d': %w", noteID, err)
	}
	return note, nil
}

func (d *DefaultRepository) ListNotes(ctx context.Context, scope access.Scope) ([]model.Note, error) {
	ctx, span := tracing.StartSpan(ctx, "ListNotes_repo")
	defer span.End()

	queryBuilder := squirrel.
		Select(noteColumns...).
		From("notes")

	if where := scope.Where(); len(where) > 0 {
		queryBuilder = queryBuilder.Where(where)
	}

	queryBuilder = queryBuilder.OrderBy("id").
		PlaceholderFormat(squirrel.Dollar)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	notes := make([]model.Note, 0)
	for rows.Next() {
		var note model.Note
		if err = rows.Scan(&note.ID, &note.Title, &note.Body, &note.OwnerID, &note.IsDeleted); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	return notes, nil
}

func (d *DefaultRepository) UpdateNoteFields(ctx context.Context, noteID model.NoteID, fields map[string]interface{}) error {
	ctx, span := tracing.StartSpan(ctx, "UpdateNoteFields_repo")
	defer span.End()

	if len(fields) == 0 {
		return nil
	}

	query, args, err := squirrel.
		Update("notes").
		SetMap(fields).
		Where(squirrel.Eq{"id": noteID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update note %d: %w", noteID, err)
	}
	return requireAffected(res, noteID)
}

func (d *DefaultRepository) SetNoteDeleted(ctx context.Context, noteID model.NoteID, deleted bool) error {
	ctx, span := tracing.StartSpan(ctx, "SetNoteDeleted_repo")
	defer span.End()

	query := `UPDATE notes SET is_deleted = $1 WHERE id = $2`

	res, err := d.db.ExecContext(ctx, query, deleted, noteID)
	if err != nil {
		return fmt.Errorf("failed to set deleted=%t on note %d: %w", deleted, noteID, err)
	}
	return requireAffected(res, noteID)
}

func requireAffected(res sql.Result, noteID model.NoteID) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows for note %d: %w", noteID, err)
	}
	if affected == 0 {
		return model.ErrNoteNotFound
	}
	return nil
}
