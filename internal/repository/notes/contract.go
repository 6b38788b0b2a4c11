package notes

import (
	"context"
	"github.com/kotche/notekeeper/internal/model"
	"github.com/kotche/notekeeper/internal/service/access"
)

type (
	Repository interface {
		CreateNote(ctx context.Context, note model.Note) (model.NoteID, error)
		GetNote(ctx context.Context, noteID model.NoteID, scope access.Scope) (*model.Note, error)
		ListNotes(ctx context.Context, scope access.Scope) ([]model.Note, error)
		UpdateNoteFields(ctx context.Context, noteID model.NoteID, fields map[string]interface{}) error
		SetNoteDeleted(ctx context.Context, noteID model.NoteID, deleted bool) error
	}
)

// Column names accepted by UpdateNoteFields.
const (
	ColumnTitle = "title"
	ColumnBody  = "body"
)
