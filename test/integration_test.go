package test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"noteboard/domain"
	"noteboard/errors"
	"noteboard/repositories"
	"noteboard/services"
	"noteboard/sink"
	"noteboard/token"
)

var (
	boardAddr = domain.Address{0xB0}
	ownerAddr = domain.Address{0x01}
)

func openDB(t *testing.T, dir string) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newBoard(t *testing.T, db *badger.DB, ledger *token.Memory, feed *sink.Feed, initialFee *big.Int) *services.BoardService {
	t.Helper()
	log := slog.Default()
	registry := sink.NewRegistry(log, sink.NewLogSink(log))
	if feed != nil {
		registry.Register(feed)
	}
	board, err := services.NewBoardService(
		log, ledger,
		repositories.NewNoteRepository(db, log),
		repositories.NewStateRepository(db),
		registry,
		boardAddr, ownerAddr, initialFee,
	)
	require.NoError(t, err)
	return board
}

// Full pre-approved lifecycle over the real token and the real store: fees
// accumulate in custody, ids stay dense, the owner withdraws.
func TestBoard_PreApprovedLifecycle(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	fee := big.NewInt(10)

	ledger := token.NewMemory()
	feed := sink.NewFeed()
	board := newBoard(t, openDB(t, t.TempDir()), ledger, feed, fee)

	alice := domain.Address{0xAA}
	ledger.Mint(alice, big.NewInt(100))

	// Allowance below the fee: rejected, nothing stored, nothing moved.
	ledger.Approve(alice, boardAddr, big.NewInt(5))
	_, err := board.StoreNote(ctx, alice, "first try")
	req.ErrorIs(err, errors.ErrInsufficientAllowance)
	count, err := board.Count()
	req.NoError(err)
	req.Zero(count)
	custody, err := board.BalanceOf(boardAddr)
	req.NoError(err)
	req.Zero(custody.Sign())

	// Exactly the fee: the same call now succeeds.
	ledger.Approve(alice, boardAddr, big.NewInt(10))
	id, err := board.StoreNote(ctx, alice, "first try")
	req.NoError(err)
	req.Equal(uint64(0), id)

	// Custody grew by exactly one fee, the store by exactly one note.
	custody, err = board.BalanceOf(boardAddr)
	req.NoError(err)
	req.Zero(custody.Cmp(fee))
	count, err = board.Count()
	req.NoError(err)
	req.Equal(uint64(1), count)

	// More appends keep ids dense.
	ledger.Approve(alice, boardAddr, big.NewInt(30))
	for want := uint64(1); want <= 3; want++ {
		id, err = board.StoreNote(ctx, alice, "more")
		req.NoError(err)
		req.Equal(want, id)
	}
	last, err := board.LastID()
	req.NoError(err)
	req.Equal(uint64(3), last)
	req.Equal(4, feed.Len())

	// Owner drains custody to bob.
	bob := domain.Address{0xBB}
	req.NoError(board.Withdraw(ctx, ownerAddr, bob, big.NewInt(40)))
	balance, err := board.BalanceOf(bob)
	req.NoError(err)
	req.Zero(balance.Cmp(big.NewInt(40)))
}

// The permit variant and the pre-approved variant share one id sequence.
func TestBoard_PermitLifecycle(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	fee := big.NewInt(10)

	ledger := token.NewMemory()
	board := newBoard(t, openDB(t, t.TempDir()), ledger, nil, fee)

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	req.NoError(err)
	dave := domain.AddressFromPublicKey(pub)
	ledger.Mint(dave, big.NewInt(100))

	deadline := time.Now().Add(time.Hour)
	sig := token.SignPermit(priv, boardAddr, fee, deadline, ledger.Nonce(dave))

	id, err := board.PermitAndStoreNote(ctx, dave, "signed, sealed", deadline, sig)
	req.NoError(err)
	req.Equal(uint64(0), id)

	// Replaying the same signature fails and stores nothing.
	_, err = board.PermitAndStoreNote(ctx, dave, "replayed", deadline, sig)
	req.ErrorIs(err, errors.ErrBadSignature)
	count, err := board.Count()
	req.NoError(err)
	req.Equal(uint64(1), count)

	// A fresh signature interleaves with the pre-approved variant on the
	// same dense sequence.
	ledger.Approve(dave, boardAddr, fee)
	id, err = board.StoreNote(ctx, dave, "plain")
	req.NoError(err)
	req.Equal(uint64(1), id)

	sig = token.SignPermit(priv, boardAddr, fee, deadline, ledger.Nonce(dave))
	id, err = board.PermitAndStoreNote(ctx, dave, "signed again", deadline, sig)
	req.NoError(err)
	req.Equal(uint64(2), id)
}

// Free-board scenario: a zero initial fee stores without touching balances.
func TestBoard_FreeAppends(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	ledger := token.NewMemory()
	board := newBoard(t, openDB(t, t.TempDir()), ledger, nil, big.NewInt(0))

	alice := domain.Address{0xAA}
	id, err := board.StoreNote(ctx, alice, "hi")
	req.NoError(err)
	req.Equal(uint64(0), id)

	custody, err := board.BalanceOf(boardAddr)
	req.NoError(err)
	req.Zero(custody.Sign())

	_, err = board.StoreNote(ctx, alice, "")
	req.ErrorIs(err, errors.ErrEmptyMessage)

	count, err := board.Count()
	req.NoError(err)
	req.Equal(uint64(1), count)
}

// Owner, fee and notes survive a restart on the same database.
func TestBoard_RestartResumesState(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	ledger := token.NewMemory()
	db := openDB(t, dir)
	board := newBoard(t, db, ledger, nil, nil)

	req.NoError(board.SetFee(ctx, ownerAddr, big.NewInt(3)))
	alice := domain.Address{0xAA}
	ledger.Mint(alice, big.NewInt(10))
	ledger.Approve(alice, boardAddr, big.NewInt(3))
	_, err := board.StoreNote(ctx, alice, "before restart")
	req.NoError(err)
	req.NoError(db.Close())

	// Second boot with different constructor arguments: persisted state wins.
	reopened := newBoard(t, openDB(t, dir), ledger, nil, big.NewInt(999))
	req.Zero(reopened.Fee().Cmp(big.NewInt(3)))
	req.Equal(ownerAddr, reopened.Owner())

	note, err := reopened.Note(0)
	req.NoError(err)
	req.Equal("before restart", note.Content)

	ledger.Approve(alice, boardAddr, big.NewInt(3))
	id, err := reopened.StoreNote(ctx, alice, "after restart")
	req.NoError(err)
	req.Equal(uint64(1), id)
}
