package users

import (
	"context"
	"github.com/kotche/notekeeper/internal/model"
)

type (
	Repository interface {
		CreateUser(ctx context.Context, user model.User) (model.UserID, error)
		GetUser(ctx context.Context, userID model.UserID) (*model.User, error)
		GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	}
)
