package services

import (
	"sync/atomic"

	"noteboard/errors"
)

// entryGuard is the shared reentrancy lock over every mutating board
// operation. It is deliberately board-wide rather than per-operation: while
// one operation is mid-flight (typically inside the external token call), a
// nested call into any other mutating operation must fail, not queue.
//
// enter never blocks. A rejected entry leaves the guard exactly as it found
// it, so the in-flight operation still releases normally.
type entryGuard struct {
	entered atomic.Bool
}

func (g *entryGuard) enter() error {
	if !g.entered.CompareAndSwap(false, true) {
		return errors.ErrReentrant
	}
	return nil
}

func (g *entryGuard) exit() {
	g.entered.Store(false)
}
