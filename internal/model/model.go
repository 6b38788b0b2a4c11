package model

import "errors"

type (
	UserID int64
	NoteID int64

	// Capability is the actor's privilege tag. There is no role hierarchy.
	Capability int
)

const (
	CapabilityStandard Capability = iota
	CapabilityAdmin
)

const (
	MaxTitleLength = 256
	MaxBodyLength  = 65536
)

var (
	ErrNoteNotFound       = errors.New("note not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrInvalidCredentials = errors.New("incorrect username or password")
)

type (
	User struct {
		ID           UserID
		Username     string
		Email        string
		PasswordHash string
		IsAdmin      bool
	}

	Note struct {
		ID        NoteID
		Title     string
		Body      string
		OwnerID   UserID
		IsDeleted bool
	}

	// Actor is the authenticated identity performing an operation.
	Actor struct {
		ID         UserID
		Capability Capability
	}
)

func (u User) Actor() Actor {
	capability := CapabilityStandard
	if u.IsAdmin {
		capability = CapabilityAdmin
	}
	return Actor{ID: u.ID, Capability: capability}
}

func (a Actor) IsAdmin() bool {
	return a.Capability == CapabilityAdmin
}
