package model

import "time"

type EventType string

const (
	EventNoteCreated  EventType = "note.created"
	EventNoteUpdated  EventType = "note.updated"
	EventNoteDeleted  EventType = "note.deleted"
	EventNoteRestored EventType = "note.restored"
)

// NoteEvent is published after a lifecycle operation has been persisted.
type NoteEvent struct {
	Type       EventType `json:"type"`
	NoteID     NoteID    `json:"note_id"`
	OwnerID    UserID    `json:"owner_id"`
	ActorID    UserID    `json:"actor_id"`
	Title      string    `json:"title"`
	OccurredAt time.Time `json:"occurred_at"`
}
