package auth

import (
	"github.com/kotche/notekeeper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"testing"
	"time"
)

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)

	token, err := issuer.Issue(model.User{ID: 7, Username: "test"})
	require.NoError(t, err)

	subject, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, Subject{UserID: 7, Username: "test"}, subject)
}

func TestIssuer_RejectsForeignSignature(t *testing.T) {
	token, err := NewIssuer("other", time.Hour).Issue(model.User{ID: 7, Username: "test"})
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Hour).Parse(token)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	issuer := NewIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := issuer.Issue(model.User{ID: 7, Username: "test"})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestIssuer_RejectsGarbage(t *testing.T) {
	_, err := NewIssuer("secret", time.Hour).Parse("eyJpZCI6IDEsICJ1c2VybmFtZSI6ICJ0ZXN0In0=")
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestHasher(t *testing.T) {
	h, err := NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("test")
	require.NoError(t, err)
	assert.NotEqual(t, "test", hash)

	ok, err := h.Verify(hash, "test")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Verify("not-a-hash", "test")
	assert.Error(t, err)
}

func TestNewHasher_RejectsCost(t *testing.T) {
	_, err := NewHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}
