package notes

import (
	"context"
	"errors"
	"github.com/kotche/notekeeper/infrastructure/logger"
	"github.com/kotche/notekeeper/infrastructure/tracing"
	"github.com/kotche/notekeeper/internal/metrics"
	"github.com/kotche/notekeeper/internal/model"
	"github.com/kotche/notekeeper/internal/repository/notes"
	"github.com/kotche/notekeeper/internal/service/access"
	"time"
)

type DefaultService struct {
	repo   notes.Repository
	events EventPublisher
	now    func() time.Time
}

type Option func(*DefaultService)

func WithEventPublisher(p EventPublisher) Option {
	return func(s *DefaultService) { s.events = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *DefaultService) { s.now = now }
}

func NewDefaultService(repo notes.Repository, opts ...Option) *DefaultService {
	s := &DefaultService{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (d *DefaultService) List(ctx context.Context, actor model.Actor, ownerFilter *model.UserID) ([]model.Note, error) {
	ctx, span := tracing.StartSpan(ctx, "List_service")
	defer span.End()

	list, err := d.repo.ListNotes(ctx, access.ListingScope(actor, ownerFilter))
	observe("list", err)
	return list, err
}

func (d *DefaultService) Get(ctx context.Context, actor model.Actor, noteID model.NoteID) (*model.Note, error) {
	ctx, span := tracing.StartSpan(ctx, "Get_service")
	defer span.End()

	note, err := d.lookup(ctx, actor, noteID)
	observe("get", err)
	return note, err
}

func (d *DefaultService) Create(ctx context.Context, actor model.Actor, title, body string) (*model.Note, error) {
	ctx, span := tracing.StartSpan(ctx, "Create_service")
	defer span.End()

	note := model.Note{
		Title:   title,
		Body:    body,
		OwnerID: actor.ID,
	}

	noteID, err := d.repo.CreateNote(ctx, note)
	observe("create", err)
	if err != nil {
		return nil, err
	}
	note.ID = noteID

	d.publish(ctx, model.EventNoteCreated, actor, note)
	return &note, nil
}

func (d *DefaultService) Update(ctx context.Context, actor model.Actor, noteID model.NoteID, title, body string) (*model.Note, error) {
	ctx, span := tracing.StartSpan(ctx, "Update_service")
	defer span.End()

	note, err := d.update(ctx, actor, noteID, title, body)
	observe("update", err)
	return note, err
}

func (d *DefaultService) update(ctx context.Context, actor model.Actor, noteID model.NoteID, title, body string) (*model.Note, error) {
	note, err := d.lookup(ctx, actor, noteID)
	if err != nil {
		return nil, err
	}
	if !access.CanMutate(actor, *note, access.OperationUpdate) {
		return nil, model.ErrNoteNotFound
	}

	fields := make(map[string]interface{}, 2)
	if note.Title != title {
		fields[notes.ColumnTitle] = title
	}
	if note.Body != body {
		fields[notes.ColumnBody] = body
	}
	if len(fields) == 0 {
		return note, nil
	}

	if err = d.repo.UpdateNoteFields(ctx, noteID, fields); err != nil {
		return nil, err
	}

	refreshed, err := d.repo.GetNote(ctx, noteID, access.Scope{})
	if err != nil {
		return nil, err
	}

	d.publish(ctx, model.EventNoteUpdated, actor, *refreshed)
	return refreshed, nil
}

func (d *DefaultService) Delete(ctx context.Context, actor model.Actor, noteID model.NoteID) error {
	ctx, span := tracing.StartSpan(ctx, "Delete_service")
	defer span.End()

	err := d.delete(ctx, actor, noteID)
	observe("delete", err)
	return err
}

func (d *DefaultService) delete(ctx context.Context, actor model.Actor, noteID model.NoteID) error {
	note, err := d.lookup(ctx, actor, noteID)
	if err != nil {
		return err
	}
	if !access.CanMutate(actor, *note, access.OperationDelete) {
		return model.ErrNoteNotFound
	}
	if note.IsDeleted {
		return nil
	}

	if err = d.repo.SetNoteDeleted(ctx, noteID, true); err != nil {
		return err
	}
	note.IsDeleted = true

	d.publish(ctx, model.EventNoteDeleted, actor, *note)
	return nil
}

// Restore checks the actor's capability before looking the note up, so a
// non-admin gets ErrForbidden even for ids that do not exist.
func (d *DefaultService) Restore(ctx context.Context, actor model.Actor, noteID model.NoteID) (*model.Note, error) {
	ctx, span := tracing.StartSpan(ctx, "Restore_service")
	defer span.End()

	note, err := d.restore(ctx, actor, noteID)
	observe("restore", err)
	return note, err
}

func (d *DefaultService) restore(ctx context.Context, actor model.Actor, noteID model.NoteID) (*model.Note, error) {
	if !access.CanRestore(actor) {
		return nil, model.ErrForbidden
	}

	note, err := d.repo.GetNote(ctx, noteID, access.Scope{})
	if err != nil {
		return nil, err
	}
	if !note.IsDeleted {
		return note, nil
	}

	if err = d.repo.SetNoteDeleted(ctx, noteID, false); err != nil {
		return nil, err
	}
	note.IsDeleted = false

	d.publish(ctx, model.EventNoteRestored, actor, *note)
	return note, nil
}

func (d *DefaultService) lookup(ctx context.Context, actor model.Actor, noteID model.NoteID) (*model.Note, error) {
	return d.repo.GetNote(ctx, noteID, access.LookupScope(actor))
}

func (d *DefaultService) publish(ctx context.Context, eventType model.EventType, actor model.Actor, note model.Note) {
	if d.events == nil {
		return
	}

	event := model.NoteEvent{
		Type:       eventType,
		NoteID:     note.ID,
		OwnerID:    note.OwnerID,
		ActorID:    actor.ID,
		Title:      note.Title,
		OccurredAt: d.now().UTC(),
	}
	if err := d.events.Publish(ctx, event); err != nil {
		logger.From(ctx).WithError(err).Warnf("failed to publish %s for note %d", eventType, note.ID)
	}
}

func observe(operation string, err error) {
	switch {
	case err == nil:
		metrics.ObserveOperation(operation, metrics.ResultOK)
	case errors.Is(err, model.ErrNoteNotFound):
		metrics.ObserveOperation(operation, metrics.ResultNotFound)
	case errors.Is(err, model.ErrForbidden):
		metrics.ObserveOperation(operation, metrics.ResultForbidden)
	default:
		metrics.ObserveOperation(operation, metrics.ResultError)
	}
}
