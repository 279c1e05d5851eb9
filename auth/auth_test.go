package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"noteboard/domain"
	"noteboard/errors"
)

func TestToken_Roundtrip(t *testing.T) {
	req := require.New(t)
	authenticator := NewAuthenticator([]byte("test_signing_key"), time.Hour)
	addr := domain.Address{0xAA}

	signed, err := authenticator.GenerateToken(addr)
	req.NoError(err)

	resolved, err := authenticator.ValidateToken(signed)
	req.NoError(err)
	req.Equal(addr, resolved)
}

func TestToken_WrongKey(t *testing.T) {
	req := require.New(t)
	issuer := NewAuthenticator([]byte("key_one"), time.Hour)
	verifier := NewAuthenticator([]byte("key_two"), time.Hour)

	signed, err := issuer.GenerateToken(domain.Address{0xAA})
	req.NoError(err)

	_, err = verifier.ValidateToken(signed)
	req.ErrorIs(err, errors.ErrInvalidToken)
}

func TestToken_Expired(t *testing.T) {
	req := require.New(t)
	authenticator := NewAuthenticator([]byte("test_signing_key"), -time.Minute)

	signed, err := authenticator.GenerateToken(domain.Address{0xAA})
	req.NoError(err)

	_, err = authenticator.ValidateToken(signed)
	req.ErrorIs(err, errors.ErrInvalidToken)
}

func TestToken_Garbage(t *testing.T) {
	authenticator := NewAuthenticator([]byte("test_signing_key"), time.Hour)
	_, err := authenticator.ValidateToken("not.a.token")
	require.ErrorIs(t, err, errors.ErrInvalidToken)
}
