package users

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/kotche/notekeeper/internal/auth"
	"github.com/kotche/notekeeper/internal/model"
	"github.com/kotche/notekeeper/internal/repository/users"
	"strings"
)

var validate = validator.New()

type DefaultService struct {
	repo   users.Repository
	hasher *auth.Hasher
	issuer *auth.Issuer
}

func NewDefaultService(repo users.Repository, hasher *auth.Hasher, issuer *auth.Issuer) *DefaultService {
	return &DefaultService{repo: repo, hasher: hasher, issuer: issuer}
}

func (d *DefaultService) Register(ctx context.Context, username, email, password string, isAdmin bool) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("username, email and password are required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return nil, fmt.Errorf("invalid email %q", email)
	}

	hash, err := d.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}
	user.ID, err = d.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DefaultService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := d.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return "", model.ErrInvalidCredentials
		}
		return "", err
	}

	ok, err := d.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", model.ErrInvalidCredentials
	}

	return d.issuer.Issue(*user)
}

// Authenticate resolves the token to a current user record, so a revoked admin
// flag takes effect on the next request.
func (d *DefaultService) Authenticate(ctx context.Context, token string) (model.Actor, error) {
	subject, err := d.issuer.Parse(token)
	if err != nil {
		return model.Actor{}, err
	}

	user, err := d.repo.GetUser(ctx, subject.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.Actor{}, model.ErrUnauthenticated
		}
		return model.Actor{}, err
	}
	if user.Username != subject.Username {
		return model.Actor{}, model.ErrUnauthenticated
	}

	return user.Actor(), nil
}
