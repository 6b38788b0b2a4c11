// Package access decides what an actor may see and change.
//
// Ownership checks hide foreign and deleted notes behind "not found", while
// restore is an admin capability that is refused outright. Callers must keep
// that asymmetry: a non-admin must not be able to tell a foreign note from a
// missing one, but is told plainly that restore is not theirs to call.
package access

import (
	"github.com/Masterminds/squirrel"
	"github.com/kotche/notekeeper/internal/model"
)

type Operation string

const (
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Scope is a visibility predicate over notes.
// A zero OwnerID matches every owner.
type Scope struct {
	OwnerID    model.UserID
	ActiveOnly bool
}

// ListingScope returns the predicate for listing notes. The owner filter is
// honoured for admins only and is silently ignored for everyone else.
func ListingScope(actor model.Actor, ownerFilter *model.UserID) Scope {
	if !actor.IsAdmin() {
		return ownScope(actor)
	}
	var scope Scope
	if ownerFilter != nil {
		scope.OwnerID = *ownerFilter
	}
	return scope
}

// LookupScope returns the predicate applied when fetching a single note by id
// for view, update or delete.
func LookupScope(actor model.Actor) Scope {
	if actor.IsAdmin() {
		return Scope{}
	}
	return ownScope(actor)
}

func ownScope(actor model.Actor) Scope {
	return Scope{OwnerID: actor.ID, ActiveOnly: true}
}

// Allows reports whether the note satisfies the predicate.
func (s Scope) Allows(note model.Note) bool {
	if s.OwnerID != 0 && note.OwnerID != s.OwnerID {
		return false
	}
	if s.ActiveOnly && note.IsDeleted {
		return false
	}
	return true
}

// Where renders the predicate for the notes table. An empty Eq means no restriction.
func (s Scope) Where() squirrel.Eq {
	eq := squirrel.Eq{}
	if s.OwnerID != 0 {
		eq["user_id"] = s.OwnerID
	}
	if s.ActiveOnly {
		eq["is_deleted"] = false
	}
	return eq
}

func CanView(actor model.Actor, note model.Note) bool {
	return LookupScope(actor).Allows(note)
}

// CanMutate uses the same rule as CanView for both update and delete. Deleting
// an already deleted note is only reachable by admins and is harmless.
func CanMutate(actor model.Actor, note model.Note, _ Operation) bool {
	return CanView(actor, note)
}

func CanRestore(actor model.Actor) bool {
	return actor.IsAdmin()
}
