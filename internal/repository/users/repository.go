package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/Masterminds/squirrel"
	"github.com/kotche/notekeeper/infrastructure/tracing"
	"github.com/kotche/notekeeper/internal/model"
)

type DefaultRepository struct {
	db *sql.DB
}

func NewDefaultRepository(pg *sql.DB) *DefaultRepository {
	return &DefaultRepository{pg}
}

func (d *DefaultRepository) CreateUser(ctx context.Context, user model.User) (model.UserID, error) {
	query := `
		INSERT INTO users (username, email, password_hash, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var userID model.UserID
	err := d.db.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.IsAdmin).Scan(&userID)
	if err != nil {
		return 0, fmt.Errorf("failed to create user '%s': %w", user.Username, err)
	}
	return userID, nil
}

func (d *DefaultRepository) GetUser(ctx context.Context, userID model.UserID) (*model.User, error) {
	ctx, span := tracing.StartSpan(ctx, "GetUser_repo")
	defer span.End()

	return d.getBy(ctx, squirrel.Eq{"id": userID})
}

func (d *DefaultRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return d.getBy(ctx, squirrel.Eq{"username": username})
}

func (d *DefaultRepository) getBy(ctx context.Context, where squirrel.Eq) (*model.User, error) {
	query, args, err := squirrel.
		Select("id", "username", "email", "password_hash", "is_admin").
		From("users").
		Where(where).
		OrderBy("id").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	user := &model.User{}
	err = d.db.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
