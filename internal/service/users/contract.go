package users

import (
	"context"
	"github.com/kotche/notekeeper/internal/model"
)

type (
	Service interface {
		Register(ctx context.Context, username, email, password string, isAdmin bool) (*model.User, error)
		Login(ctx context.Context, username, password string) (string, error)
		Authenticate(ctx context.Context, token string) (model.Actor, error)
	}
)
