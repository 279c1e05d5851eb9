package token

import (
	"crypto/ed25519"
	"crypto/rand"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"noteboard/domain"
	"noteboard/errors"
)

var (
	board = domain.Address{0xB0}
	carol = domain.Address{0xCC}
)

func newAccount(t *testing.T) (domain.Address, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return domain.AddressFromPublicKey(pub), priv
}

func TestTransferFrom(t *testing.T) {
	req := require.New(t)
	ledger := NewMemory()
	ledger.Mint(carol, big.NewInt(100))

	t.Run("Fails without allowance", func(t *testing.T) {
		err := ledger.TransferFrom(board, carol, board, big.NewInt(10))
		req.ErrorIs(err, errors.ErrInsufficientAllowance)
	})

	t.Run("Consumes allowance and moves the balance", func(t *testing.T) {
		ledger.Approve(carol, board, big.NewInt(10))
		req.NoError(ledger.TransferFrom(board, carol, board, big.NewInt(10)))

		balance, err := ledger.BalanceOf(board)
		req.NoError(err)
		req.Zero(balance.Cmp(big.NewInt(10)))
		granted, err := ledger.Allowance(carol, board)
		req.NoError(err)
		req.Zero(granted.Sign())
	})

	t.Run("Fails when the balance is short even with allowance", func(t *testing.T) {
		ledger.Approve(carol, board, big.NewInt(1000))
		err := ledger.TransferFrom(board, carol, board, big.NewInt(1000))
		req.ErrorIs(err, errors.ErrInsufficientBalance)

		// Nothing moved, allowance untouched.
		granted, gerr := ledger.Allowance(carol, board)
		req.NoError(gerr)
		req.Zero(granted.Cmp(big.NewInt(1000)))
	})
}

func TestTransfer(t *testing.T) {
	req := require.New(t)
	ledger := NewMemory()
	ledger.Mint(board, big.NewInt(30))

	req.NoError(ledger.Transfer(board, carol, big.NewInt(30)))
	req.ErrorIs(ledger.Transfer(board, carol, big.NewInt(1)), errors.ErrInsufficientBalance)

	balance, err := ledger.BalanceOf(carol)
	req.NoError(err)
	req.Zero(balance.Cmp(big.NewInt(30)))
}

func TestPermit(t *testing.T) {
	req := require.New(t)
	amount := big.NewInt(10)
	deadline := time.Now().Add(time.Hour)

	t.Run("Valid signature grants the allowance and bumps the nonce", func(t *testing.T) {
		ledger := NewMemory()
		owner, priv := newAccount(t)

		sig := SignPermit(priv, board, amount, deadline, ledger.Nonce(owner))
		req.NoError(ledger.Permit(owner, board, amount, deadline, sig))

		granted, err := ledger.Allowance(owner, board)
		req.NoError(err)
		req.Zero(granted.Cmp(amount))
		req.Equal(uint64(1), ledger.Nonce(owner))
	})

	t.Run("A signature is usable exactly once", func(t *testing.T) {
		ledger := NewMemory()
		owner, priv := newAccount(t)

		sig := SignPermit(priv, board, amount, deadline, 0)
		req.NoError(ledger.Permit(owner, board, amount, deadline, sig))
		req.ErrorIs(ledger.Permit(owner, board, amount, deadline, sig), errors.ErrBadSignature)
	})

	t.Run("Expired deadline", func(t *testing.T) {
		ledger := NewMemory().WithClock(func() time.Time { return deadline.Add(time.Second) })
		owner, priv := newAccount(t)

		sig := SignPermit(priv, board, amount, deadline, 0)
		req.ErrorIs(ledger.Permit(owner, board, amount, deadline, sig), errors.ErrPermitExpired)
	})

	t.Run("Key of another account is rejected", func(t *testing.T) {
		ledger := NewMemory()
		owner, _ := newAccount(t)
		_, mallory := newAccount(t)

		sig := SignPermit(mallory, board, amount, deadline, 0)
		req.ErrorIs(ledger.Permit(owner, board, amount, deadline, sig), errors.ErrBadSignature)
	})

	t.Run("Tampered parameters are rejected", func(t *testing.T) {
		ledger := NewMemory()
		owner, priv := newAccount(t)

		sig := SignPermit(priv, board, amount, deadline, 0)
		req.ErrorIs(ledger.Permit(owner, board, big.NewInt(11), deadline, sig), errors.ErrBadSignature)
	})

	t.Run("Truncated blob is rejected", func(t *testing.T) {
		ledger := NewMemory()
		owner, priv := newAccount(t)

		sig := SignPermit(priv, board, amount, deadline, 0)
		req.ErrorIs(ledger.Permit(owner, board, amount, deadline, sig[:40]), errors.ErrBadSignature)
	})
}
