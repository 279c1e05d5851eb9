package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"noteboard/contract"
	"noteboard/domain"
	"noteboard/domain/event"
	"noteboard/errors"
	"noteboard/sink"
)

type IBoardService interface {
	StoreNote(ctx context.Context, sender domain.Address, content string) (uint64, error)
	PermitAndStoreNote(ctx context.Context, sender domain.Address, content string, deadline time.Time, sig []byte) (uint64, error)
	SetFee(ctx context.Context, caller domain.Address, newFee *big.Int) error
	Withdraw(ctx context.Context, caller, to domain.Address, amount *big.Int) error
	TransferOwnership(ctx context.Context, caller, newOwner domain.Address) error

	Fee() *big.Int
	Owner() domain.Address
	Address() domain.Address
	Count() (uint64, error)
	Note(id uint64) (domain.Note, error)
	LastID() (uint64, error)
	BalanceOf(addr domain.Address) (*big.Int, error)
	AllowanceOf(addr domain.Address) (*big.Int, error)
}

// BoardService is the fee-gated append-only note board.
//
// Every mutating operation follows the same shape: take the shared entry
// guard, validate inputs, interact with the external token, then mutate local
// state and publish the notification. Local state changes only after the
// token interaction has fully succeeded, so a token failure leaves no trace.
type BoardService struct {
	log    *slog.Logger
	guard  entryGuard
	token  contract.TokenClient
	notes  contract.NoteRepository
	state  contract.StateRepository
	events *sink.Registry

	// addr is the board's own identity in the token ledger; collected fees
	// accumulate on it until the owner withdraws.
	addr domain.Address

	mu    sync.RWMutex
	owner domain.Address
	fee   *big.Int
}

// NewBoardService wires the board. A nil initialFee selects DefaultFee; an
// explicit zero fee makes appends free. Owner and fee persisted by an earlier
// run take precedence over the constructor arguments.
func NewBoardService(
	log *slog.Logger,
	token contract.TokenClient,
	notes contract.NoteRepository,
	state contract.StateRepository,
	events *sink.Registry,
	addr, owner domain.Address,
	initialFee *big.Int,
) (*BoardService, error) {
	if addr.IsZero() || owner.IsZero() {
		return nil, errors.ErrZeroAddress
	}

	fee := initialFee
	if fee == nil {
		fee = domain.DefaultFee
	}

	persistedOwner, persistedFee, found, err := state.LoadState()
	if err != nil {
		return nil, fmt.Errorf("loading board state: %w", err)
	}
	if found {
		owner, fee = persistedOwner, persistedFee
	} else {
		if err = state.SaveOwner(owner); err != nil {
			return nil, fmt.Errorf("persisting owner: %w", err)
		}
		if err = state.SaveFee(fee); err != nil {
			return nil, fmt.Errorf("persisting fee: %w", err)
		}
	}

	log.Info("Board ready",
		"address", addr.String(),
		"owner", owner.String(),
		"fee", fee.String(),
		"resumed", found,
	)
	return &BoardService{
		log:    log,
		token:  token,
		notes:  notes,
		state:  state,
		events: events,
		addr:   addr,
		owner:  owner,
		fee:    new(big.Int).Set(fee),
	}, nil
}

// StoreNote appends one note paid for out of the caller's pre-approved
// allowance. Returns the id of the stored note.
func (s *BoardService) StoreNote(ctx context.Context, sender domain.Address, content string) (uint64, error) {
	if err := s.guard.enter(); err != nil {
		return 0, err
	}
	defer s.guard.exit()

	if content == "" {
		return 0, errors.ErrEmptyMessage
	}
	fee := s.Fee()

	if fee.Sign() > 0 {
		// Explicit pre-check for a clearer error than the raw pull would give.
		granted, err := s.token.Allowance(sender, s.addr)
		if err != nil {
			return 0, err
		}
		if granted.Cmp(fee) < 0 {
			return 0, fmt.Errorf("%w: granted %s, fee %s", errors.ErrInsufficientAllowance, granted, fee)
		}
	}

	return s.collectAndAppend(ctx, sender, content, fee)
}

// PermitAndStoreNote appends one note, granting the fee allowance and paying
// in a single call via the token's signature-based approval. The signature
// must cover exactly the current fee.
func (s *BoardService) PermitAndStoreNote(ctx context.Context, sender domain.Address, content string, deadline time.Time, sig []byte) (uint64, error) {
	if err := s.guard.enter(); err != nil {
		return 0, err
	}
	defer s.guard.exit()

	if content == "" {
		return 0, errors.ErrEmptyMessage
	}
	fee := s.Fee()

	// Any permit failure (expired, bad signature, capability missing on the
	// underlying token) aborts here, before anything changed.
	if err := s.token.Permit(sender, s.addr, fee, deadline, sig); err != nil {
		return 0, err
	}

	return s.collectAndAppend(ctx, sender, content, fee)
}

// collectAndAppend runs the shared tail of both append variants: pull the
// fee into board custody, persist the note, publish the notification.
func (s *BoardService) collectAndAppend(ctx context.Context, sender domain.Address, content string, fee *big.Int) (uint64, error) {
	if fee.Sign() > 0 {
		if err := s.token.TransferFrom(s.addr, sender, s.addr, fee); err != nil {
			return 0, err
		}
	}

	at := time.Now().UTC()
	id, err := s.notes.Append(sender, content, at)
	if err != nil {
		// The fee is already in custody; hand it back so the failed append
		// leaves the caller's balance untouched.
		if fee.Sign() > 0 {
			if refundErr := s.token.Transfer(s.addr, sender, fee); refundErr != nil {
				s.log.Error("Refund after failed append also failed",
					"sender", sender.String(), "fee", fee.String(), "error", refundErr)
			}
		}
		return 0, err
	}

	s.events.Publish(ctx, event.NoteStored{
		ID:      id,
		Sender:  sender,
		Content: content,
		At:      at,
		Fee:     fee,
	})
	return id, nil
}

// SetFee replaces the append fee. Owner-only; zero is legal and makes
// appends free.
func (s *BoardService) SetFee(ctx context.Context, caller domain.Address, newFee *big.Int) error {
	if err := s.guard.enter(); err != nil {
		return err
	}
	defer s.guard.exit()

	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if newFee == nil {
		return fmt.Errorf("nil fee")
	}

	if err := s.state.SaveFee(newFee); err != nil {
		return fmt.Errorf("persisting fee: %w", err)
	}

	s.mu.Lock()
	oldFee := s.fee
	s.fee = new(big.Int).Set(newFee)
	s.mu.Unlock()

	s.events.Publish(ctx, event.FeeChanged{OldFee: oldFee, NewFee: new(big.Int).Set(newFee)})
	return nil
}

// Withdraw moves amount from board custody to `to`. Owner-only. Shortfalls
// are the token's to signal and propagate unchanged.
func (s *BoardService) Withdraw(ctx context.Context, caller, to domain.Address, amount *big.Int) error {
	if err := s.guard.enter(); err != nil {
		return err
	}
	defer s.guard.exit()

	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if to.IsZero() {
		return errors.ErrZeroAddress
	}

	if err := s.token.Transfer(s.addr, to, amount); err != nil {
		return err
	}

	s.events.Publish(ctx, event.Withdrawal{To: to, Amount: new(big.Int).Set(amount)})
	return nil
}

// TransferOwnership hands the board to a new owner. Owner-only; the board
// always has exactly one owner, so the zero address is rejected.
func (s *BoardService) TransferOwnership(ctx context.Context, caller, newOwner domain.Address) error {
	if err := s.guard.enter(); err != nil {
		return err
	}
	defer s.guard.exit()

	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return errors.ErrZeroAddress
	}

	if err := s.state.SaveOwner(newOwner); err != nil {
		return fmt.Errorf("persisting owner: %w", err)
	}

	s.mu.Lock()
	oldOwner := s.owner
	s.owner = newOwner
	s.mu.Unlock()

	s.events.Publish(ctx, event.OwnershipTransferred{OldOwner: oldOwner, NewOwner: newOwner})
	return nil
}

// Fee returns a copy of the current fee.
func (s *BoardService) Fee() *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return new(big.Int).Set(s.fee)
}

func (s *BoardService) Owner() domain.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

// Address returns the board's custodial identity in the token ledger.
func (s *BoardService) Address() domain.Address {
	return s.addr
}

func (s *BoardService) Count() (uint64, error) {
	return s.notes.Count()
}

func (s *BoardService) Note(id uint64) (domain.Note, error) {
	return s.notes.Get(id)
}

func (s *BoardService) LastID() (uint64, error) {
	return s.notes.LastID()
}

// BalanceOf passes a balance query through to the token.
func (s *BoardService) BalanceOf(addr domain.Address) (*big.Int, error) {
	return s.token.BalanceOf(addr)
}

// AllowanceOf returns what addr has granted the board.
func (s *BoardService) AllowanceOf(addr domain.Address) (*big.Int, error) {
	return s.token.Allowance(addr, s.addr)
}

func (s *BoardService) requireOwner(caller domain.Address) error {
	if caller != s.Owner() {
		return fmt.Errorf("%w: %s", errors.ErrUnauthorized, caller)
	}
	return nil
}
