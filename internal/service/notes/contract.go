package notes

import (
	"context"
	"github.com/kotche/notekeeper/internal/model"
)

type (
	Service interface {
		List(ctx context.Context, actor model.Actor, ownerFilter *model.UserID) ([]model.Note, error)
		Get(ctx context.Context, actor model.Actor, noteID model.NoteID) (*model.Note, error)
		Create(ctx context.Context, actor model.Actor, title, body string) (*model.Note, error)
		Update(ctx context.Context, actor model.Actor, noteID model.NoteID, title, body string) (*model.Note, error)
		Delete(ctx context.Context, actor model.Actor, noteID model.NoteID) error
		Restore(ctx context.Context, actor model.Actor, noteID model.NoteID) (*model.Note, error)
	}

	// EventPublisher receives lifecycle events after they have been persisted.
	EventPublisher interface {
		Publish(ctx context.Context, event model.NoteEvent) error
	}
)
