package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ledger is the only sanctioned way lifecycle engines mutate a worker's
// point balance. Every mutation appends a history entry so the balance
// always reconciles against the history sum. Balances are not clamped and
// may go negative.
type Ledger struct {
	users UserStore
}

func NewLedger(users UserStore) *Ledger {
	return &Ledger{users: users}
}

// Apply records an unconditional adjustment, e.g. a manual municipal
// correction.
func (l *Ledger) Apply(ctx context.Context, workerID primitive.ObjectID, delta int, reason string) error {
	applied, err := l.users.ApplyPoints(ctx, workerID, "", delta, reason)
	if err != nil {
		return err
	}
	if !applied {
		return NotFoundf("worker not found")
	}
	return nil
}

// ApplyOnce records an adjustment keyed by an idempotency event id. Repeat
// calls with the same event are no-ops; the first return value reports
// whether this call applied the entry.
func (l *Ledger) ApplyOnce(ctx context.Context, event string, workerID primitive.ObjectID, delta int, reason string) (bool, error) {
	if event == "" {
		return false, Validationf("ledger event id is required")
	}
	return l.users.ApplyPoints(ctx, workerID, event, delta, reason)
}
