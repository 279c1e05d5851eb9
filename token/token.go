// Package token provides a reference in-memory fungible token satisfying
// contract.TokenClient. The board itself never depends on this concrete
// implementation; it is what the daemon and the tests inject.
package token

import (
	"crypto/ed25519"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"
	"time"

	"golang.org/x/crypto/sha3"

	"noteboard/domain"
	"noteboard/errors"
)

// Memory is a mutex-guarded token ledger: balances, allowances and permit
// nonces. All amounts are minor units.
type Memory struct {
	mu         sync.Mutex
	balances   map[domain.Address]*big.Int
	allowances map[domain.Address]map[domain.Address]*big.Int
	nonces     map[domain.Address]uint64
	now        func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		balances:   make(map[domain.Address]*big.Int),
		allowances: make(map[domain.Address]map[domain.Address]*big.Int),
		nonces:     make(map[domain.Address]uint64),
		now:        time.Now,
	}
}

// WithClock replaces the deadline clock. Test helper.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

// Mint credits amount to addr. Test and bootstrap helper, not part of
// contract.TokenClient.
func (m *Memory) Mint(addr domain.Address, amount *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credit(addr, amount)
}

// Approve grants spender an allowance from owner, replacing any prior value.
// The separate-transaction path; Permit is the single-call alternative.
func (m *Memory) Approve(owner, spender domain.Address, amount *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setAllowance(owner, spender, amount)
}

func (m *Memory) BalanceOf(addr domain.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.balance(addr)), nil
}

func (m *Memory) Allowance(owner, spender domain.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.allowance(owner, spender)), nil
}

// TransferFrom moves amount from `from` to `to`, consuming the allowance
// `from` granted to `spender`. Fails without any state change when either
// the allowance or the balance is short.
func (m *Memory) TransferFrom(spender, from, to domain.Address, amount *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	granted := m.allowance(from, spender)
	if granted.Cmp(amount) < 0 {
		return fmt.Errorf("%w: granted %s, need %s", errors.ErrInsufficientAllowance, granted, amount)
	}
	if err := m.move(from, to, amount); err != nil {
		return err
	}
	m.setAllowance(from, spender, new(big.Int).Sub(granted, amount))
	return nil
}

// Transfer moves amount from `from`'s own balance to `to`.
func (m *Memory) Transfer(from, to domain.Address, amount *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.move(from, to, amount)
}

// Permit grants spender an allowance of amount from owner, authorized by a
// signature blob produced with SignPermit. The blob is the signer's ed25519
// public key followed by the signature; the key must hash to the owner
// address. A valid permit consumes the owner's current nonce, so each
// signature is usable exactly once.
func (m *Memory) Permit(owner, spender domain.Address, amount *big.Int, deadline time.Time, sig []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.now().After(deadline) {
		return errors.ErrPermitExpired
	}
	if len(sig) != ed25519.PublicKeySize+ed25519.SignatureSize {
		return fmt.Errorf("%w: blob is %d bytes", errors.ErrBadSignature, len(sig))
	}
	pub := ed25519.PublicKey(sig[:ed25519.PublicKeySize])
	if domain.AddressFromPublicKey(pub) != owner {
		return fmt.Errorf("%w: key does not belong to %s", errors.ErrBadSignature, owner)
	}
	digest := permitDigest(owner, spender, amount, deadline, m.nonces[owner])
	if !ed25519.Verify(pub, digest, sig[ed25519.PublicKeySize:]) {
		return errors.ErrBadSignature
	}

	m.nonces[owner]++
	m.setAllowance(owner, spender, new(big.Int).Set(amount))
	return nil
}

// Nonce returns the next permit nonce expected for owner.
func (m *Memory) Nonce(owner domain.Address) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nonces[owner]
}

// SignPermit produces the signature blob Permit expects, for the given
// private key and permit parameters.
func SignPermit(priv ed25519.PrivateKey, spender domain.Address, amount *big.Int, deadline time.Time, nonce uint64) []byte {
	pub := priv.Public().(ed25519.PublicKey)
	owner := domain.AddressFromPublicKey(pub)
	digest := permitDigest(owner, spender, amount, deadline, nonce)
	blob := make([]byte, 0, ed25519.PublicKeySize+ed25519.SignatureSize)
	blob = append(blob, pub...)
	return append(blob, ed25519.Sign(priv, digest)...)
}

// permitDigest binds every permit parameter plus the owner nonce into one
// SHA3-256 digest. Length-prefixing the amount keeps the encoding unambiguous.
func permitDigest(owner, spender domain.Address, amount *big.Int, deadline time.Time, nonce uint64) []byte {
	h := sha3.New256()
	h.Write(owner[:])
	h.Write(spender[:])
	raw := amount.Bytes()
	var scratch [8]byte
	binary.BigEndian.PutUint64(scratch[:], uint64(len(raw)))
	h.Write(scratch[:])
	h.Write(raw)
	binary.BigEndian.PutUint64(scratch[:], uint64(deadline.Unix()))
	h.Write(scratch[:])
	binary.BigEndian.PutUint64(scratch[:], nonce)
	h.Write(scratch[:])
	return h.Sum(nil)
}

func (m *Memory) balance(addr domain.Address) *big.Int {
	if b, ok := m.balances[addr]; ok {
		return b
	}
	return big.NewInt(0)
}

func (m *Memory) allowance(owner, spender domain.Address) *big.Int {
	if granted, ok := m.allowances[owner][spender]; ok {
		return granted
	}
	return big.NewInt(0)
}

func (m *Memory) setAllowance(owner, spender domain.Address, amount *big.Int) {
	if m.allowances[owner] == nil {
		m.allowances[owner] = make(map[domain.Address]*big.Int)
	}
	m.allowances[owner][spender] = amount
}

func (m *Memory) credit(addr domain.Address, amount *big.Int) {
	m.balances[addr] = new(big.Int).Add(m.balance(addr), amount)
}

func (m *Memory) move(from, to domain.Address, amount *big.Int) error {
	balance := m.balance(from)
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: have %s, need %s", errors.ErrInsufficientBalance, balance, amount)
	}
	m.balances[from] = new(big.Int).Sub(balance, amount)
	m.credit(to, amount)
	return nil
}
