// Package domain contains core concepts of the note board.
// Notes are immutable once stored; their position in the board is their
// permanent identifier.
package domain

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

// AddressLength is the byte length of a board identity.
const AddressLength = 20

// Address identifies an account on the board and in the token ledger.
type Address [AddressLength]byte

// ZeroAddress is the null identity. Withdrawals to it are rejected.
var ZeroAddress Address

// DefaultFee is the price of one note when the board is initialized with a
// zero fee: 10 tokens of 18 decimals, in minor units. It does not fit in
// int64, hence big.Int arithmetic throughout.
var DefaultFee = new(big.Int).Mul(big.NewInt(10), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

// AddressFromPublicKey derives an address from an ed25519 public key:
// the last 20 bytes of the SHA3-256 digest of the key.
func AddressFromPublicKey(pub ed25519.PublicKey) Address {
	digest := sha3.Sum256(pub)
	var a Address
	copy(a[:], digest[len(digest)-AddressLength:])
	return a
}

// ParseAddress decodes a "0x"-prefixed 40-digit hex string.
func ParseAddress(s string) (Address, error) {
	var a Address
	if !strings.HasPrefix(s, "0x") {
		return a, fmt.Errorf("address %q: missing 0x prefix", s)
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return a, fmt.Errorf("address %q: %w", s, err)
	}
	if len(raw) != AddressLength {
		return a, fmt.Errorf("address %q: want %d bytes, got %d", s, AddressLength, len(raw))
	}
	copy(a[:], raw)
	return a, nil
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero reports whether a is the null identity.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Note is an immutable record on the board. ID is dense and 0-based:
// the first note stored is note 0, the next note 1, with no gaps.
type Note struct {
	ID      uint64
	Sender  Address
	Content string
	At      time.Time
}
