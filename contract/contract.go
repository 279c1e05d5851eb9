//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"math/big"
	"time"

	"noteboard/domain"
	"noteboard/domain/event"
)

// TokenClient is the board's window onto the external fungible token.
// The board never assumes anything about the implementation beyond these
// operations and their failure semantics.
type TokenClient interface {
	// BalanceOf returns the token balance of addr.
	BalanceOf(addr domain.Address) (*big.Int, error)
	// Allowance returns what owner has granted spender.
	Allowance(owner, spender domain.Address) (*big.Int, error)
	// TransferFrom moves amount from `from` to `to`, consuming allowance
	// granted by `from` to the caller identity `spender`.
	TransferFrom(spender, from, to domain.Address, amount *big.Int) error
	// Transfer moves amount from `from`'s own balance to `to`.
	Transfer(from, to domain.Address, amount *big.Int) error
	// Permit grants spender an allowance of amount from owner, authorized by
	// an off-channel ed25519 signature over (owner, spender, amount,
	// deadline, nonce). Implementations without this capability must return
	// an "unsupported" error; the board does not probe support up front.
	Permit(owner, spender domain.Address, amount *big.Int, deadline time.Time, sig []byte) error
}

// NoteRepository is an append-only store of notes. Ids are dense, 0-based
// and assigned atomically with the write.
type NoteRepository interface {
	Append(sender domain.Address, content string, at time.Time) (uint64, error)
	Get(id uint64) (domain.Note, error)
	Count() (uint64, error)
	LastID() (uint64, error)
}

// StateRepository persists mutable board state (owner, fee) across restarts.
type StateRepository interface {
	LoadState() (owner domain.Address, fee *big.Int, found bool, err error)
	SaveOwner(owner domain.Address) error
	SaveFee(fee *big.Int) error
}

// EventSink consumes board notifications after the underlying state change
// has been committed. Sink failures never undo the change.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}
