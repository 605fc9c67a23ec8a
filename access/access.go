/*
Package access guards destructive operations behind a stored PIN.

PURPOSE:
  A single shared secret, loaded from the KV store under ledger.KeyPIN
  and defaulting to DefaultPIN. It is a confirmation step against
  accidental data loss, not authentication.

OPERATIONS:
  Verify          exact string comparison
  Change          requires the current PIN, new PIN at least MinLength long
  ChangeConfirmed Change plus a matching confirmation entry
  ClearAll        Verify, then wipe the ledger

SEE ALSO:
  - ledger/store.go: KeyPIN
  - api/handlers.go: /api/access and /api/admin/clear
*/
package access

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/warp/sales-ledger/ledger"
	"go.uber.org/zap"
)

const (
	DefaultPIN = "1234"
	MinLength  = 4
)

var (
	// ErrWrongSecret is returned when the supplied PIN does not match.
	ErrWrongSecret = errors.New("incorrect PIN")

	// ErrTooShort is returned when a new PIN is shorter than MinLength.
	ErrTooShort = fmt.Errorf("PIN must be at least %d characters", MinLength)

	// ErrConfirmationMismatch is returned when the new PIN and its
	// confirmation differ.
	ErrConfirmationMismatch = errors.New("new PIN and confirmation do not match")
)

// Wiper is anything that can erase all of its data. *ledger.Ledger is one.
type Wiper interface {
	ClearAll(ctx context.Context) error
}

// Guard holds the current PIN.
type Guard struct {
	mu     sync.RWMutex
	kv     ledger.KV
	pin    string
	logger *zap.Logger
}

type Option func(*Guard)

func WithLogger(logger *zap.Logger) Option {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New loads the stored PIN, falling back to DefaultPIN.
func New(ctx context.Context, kv ledger.KV, opts ...Option) (*Guard, error) {
	g := &Guard{kv: kv, pin: DefaultPIN, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}

	v, ok, err := kv.Load(ctx, ledger.KeyPIN)
	if err != nil {
		return nil, fmt.Errorf("load PIN: %w", err)
	}
	if ok && len(v) > 0 {
		g.pin = string(v)
	}
	return g, nil
}

// Verify reports whether candidate equals the stored PIN.
func (g *Guard) Verify(candidate string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return candidate == g.pin
}

// Change replaces the PIN. The stored PIN is untouched on rejection.
func (g *Guard) Change(ctx context.Context, current, next string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if current != g.pin {
		g.logger.Warn("PIN change rejected: wrong current PIN")
		return ErrWrongSecret
	}
	if len(next) < MinLength {
		g.logger.Warn("PIN change rejected: too short", zap.Int("length", len(next)))
		return ErrTooShort
	}

	g.pin = next
	g.logger.Info("PIN changed")

	if err := g.kv.Save(ctx, ledger.KeyPIN, []byte(next)); err != nil {
		g.logger.Error("failed to persist PIN", zap.Error(err))
		return fmt.Errorf("%w: %w", ledger.ErrNotPersisted, err)
	}
	return nil
}

// ChangeConfirmed is Change with a confirmation entry that must equal next.
// The current PIN and length checks run first.
func (g *Guard) ChangeConfirmed(ctx context.Context, current, next, confirm string) error {
	if !g.Verify(current) {
		return ErrWrongSecret
	}
	if len(next) < MinLength {
		return ErrTooShort
	}
	if next != confirm {
		return ErrConfirmationMismatch
	}
	return g.Change(ctx, current, next)
}

// ClearAll wipes w when candidate matches the PIN.
func (g *Guard) ClearAll(ctx context.Context, candidate string, w Wiper) error {
	if !g.Verify(candidate) {
		g.logger.Warn("clear rejected: wrong PIN")
		return ErrWrongSecret
	}
	return w.ClearAll(ctx)
}
