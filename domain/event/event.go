package event

import (
	"math/big"
	"time"

	"noteboard/domain"
)

// Event is a notification describing a committed board state change.
// Events are emitted after the change is durable and never on failure.
type Event interface {
	Kind() string
}

// NoteStored is emitted once per successful append.
type NoteStored struct {
	ID      uint64
	Sender  domain.Address
	Content string
	At      time.Time
	Fee     *big.Int // fee actually collected, may be zero
}

func (NoteStored) Kind() string { return "note_stored" }

// FeeChanged is emitted when the owner replaces the fee.
type FeeChanged struct {
	OldFee *big.Int
	NewFee *big.Int
}

func (FeeChanged) Kind() string { return "fee_changed" }

// OwnershipTransferred is emitted when the owner hands the board over.
type OwnershipTransferred struct {
	OldOwner domain.Address
	NewOwner domain.Address
}

func (OwnershipTransferred) Kind() string { return "ownership_transferred" }

// Withdrawal is emitted when the owner moves custodial funds out.
type Withdrawal struct {
	To     domain.Address
	Amount *big.Int
}

func (Withdrawal) Kind() string { return "withdrawal" }
