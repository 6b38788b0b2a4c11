package auth

import (
	"fmt"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/kotche/notekeeper/internal/model"
	"strconv"
	"time"
)

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Subject is the identity carried by an access token.
type Subject struct {
	UserID   model.UserID
	Username string
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) Issue(user model.User) (string, error) {
	now := i.now()
	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(int64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (i *Issuer) Parse(tokenStr string) (Subject, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return Subject{}, fmt.Errorf("%w: %v", model.ErrUnauthenticated, err)
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return Subject{}, fmt.Errorf("%w: invalid token", model.ErrUnauthenticated)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Subject{}, fmt.Errorf("%w: bad subject %q", model.ErrUnauthenticated, claims.Subject)
	}
	if claims.Username == "" {
		return Subject{}, fmt.Errorf("%w: missing username", model.ErrUnauthenticated)
	}

	return Subject{UserID: model.UserID(id), Username: claims.Username}, nil
}
