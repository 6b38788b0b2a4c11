// Package inmem holds map-backed stores that satisfy the note and user
// repository contracts. They apply the same access.Scope rule as the SQL
// repositories and are used wherever a database is not wanted.
package inmem

import (
	"context"
	"fmt"
	"github.com/kotche/notekeeper/internal/model"
	notes_repo "github.com/kotche/notekeeper/internal/repository/notes"
	"github.com/kotche/notekeeper/internal/service/access"
	"sort"
	"sync"
)

type NoteRepository struct {
	mu     sync.RWMutex
	lastID model.NoteID
	notes  map[model.NoteID]model.Note
	writes int
}

func NewNoteRepository() *NoteRepository {
	return &NoteRepository{notes: make(map[model.NoteID]model.Note)}
}

func (r *NoteRepository) CreateNote(_ context.Context, note model.Note) (model.NoteID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	note.ID = r.lastID
	r.notes[note.ID] = note
	r.writes++
	return note.ID, nil
}

func (r *NoteRepository) GetNote(_ context.Context, noteID model.NoteID, scope access.Scope) (*model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, ok := r.notes[noteID]
	if !ok || !scope.Allows(note) {
		return nil, model.ErrNoteNotFound
	}
	return &note, nil
}

func (r *NoteRepository) ListNotes(_ context.Context, scope access.Scope) ([]model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := make([]model.Note, 0, len(r.notes))
	for _, note := range r.notes {
		if scope.Allows(note) {
			notes = append(notes, note)
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })
	return notes, nil
}

func (r *NoteRepository) UpdateNoteFields(_ context.Context, noteID model.NoteID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.notes[noteID]
	if !ok {
		return model.ErrNoteNotFound
	}
	for column, value := range fields {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("column %q: unexpected value type %T", column, value)
		}
		switch column {
		case notes_repo.ColumnTitle:
			note.Title = s
		case notes_repo.ColumnBody:
			note.Body = s
		default:
			return fmt.Errorf("unknown note column %q", column)
		}
	}
	r.notes[noteID] = note
	r.writes++
	return nil
}

func (r *NoteRepository) SetNoteDeleted(_ context.Context, noteID model.NoteID, deleted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.notes[noteID]
	if !ok {
		return model.ErrNoteNotFound
	}
	note.IsDeleted = deleted
	r.notes[noteID] = note
	r.writes++
	return nil
}

// Put stores a note as-is, keeping its id. Used to seed fixtures.
func (r *NoteRepository) Put(note model.Note) model.Note {
	r.mu.Lock()
	defer r.mu.Unlock()

	if note.ID == 0 {
		r.lastID++
		note.ID = r.lastID
	} else if note.ID > r.lastID {
		r.lastID = note.ID
	}
	r.notes[note.ID] = note
	return note
}

// Raw returns the stored note without any visibility filter.
func (r *NoteRepository) Raw(noteID model.NoteID) (model.Note, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, ok := r.notes[noteID]
	return note, ok
}

// Writes counts mutating calls that reached the store.
func (r *NoteRepository) Writes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writes
}

type UserRepository struct {
	mu     sync.RWMutex
	lastID model.UserID
	users  map[model.UserID]model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[model.UserID]model.User)}
}

func (r *UserRepository) CreateUser(_ context.Context, user model.User) (model.UserID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return 0, fmt.Errorf("failed to create user '%s': email %q already taken", user.Username, user.Email)
		}
	}
	r.lastID++
	user.ID = r.lastID
	r.users[user.ID] = user
	return user.ID, nil
}

func (r *UserRepository) GetUser(_ context.Context, userID model.UserID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return &user, nil
}

func (r *UserRepository) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *model.User
	for _, user := range r.users {
		if user.Username != username {
			continue
		}
		if found == nil || user.ID < found.ID {
			u := user
			found = &u
		}
	}
	if found == nil {
		return nil, model.ErrUserNotFound
	}
	return found, nil
}
