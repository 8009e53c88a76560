// Package ledger records lateness and warning violations and promotes
// repeat offenders onto the blacklist.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/volunteerd/internal/store"
	"github.com/fyrsmithlabs/volunteerd/internal/volunteer"
)

// PromotionThreshold is the combined violation count at which a volunteer is
// automatically blacklisted.
const PromotionThreshold = 3

// Outcome reports the result of recording a violation.
type Outcome struct {
	Volunteer volunteer.Volunteer
	Promoted  bool
}

// Ledger applies violation and blacklist operations on top of a Store.
//
// The read-increment-evaluate-write sequence for one volunteer id runs under
// a per-id lock, so concurrent recordings against the same volunteer never
// lose counts or double-insert the blacklist row.
type Ledger struct {
	store  store.Store
	logger *zap.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New creates a ledger over the given store.
func New(st store.Store, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		store:  st,
		logger: logger,
		locks:  make(map[int64]*sync.Mutex),
	}
}

// lockVolunteer serializes ledger operations per volunteer id. Locks are
// retained for the process lifetime; the map is bounded by the number of
// distinct volunteers ever touched.
func (l *Ledger) lockVolunteer(id int64) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// RecordLateness increments the volunteer's lateness count and runs the
// promotion check. Returns store.ErrNotFound when no such volunteer exists.
func (l *Ledger) RecordLateness(ctx context.Context, id int64) (Outcome, error) {
	return l.record(ctx, id, l.store.IncrementLateness)
}

// RecordWarning increments the volunteer's warning count and runs the
// promotion check. Returns store.ErrNotFound when no such volunteer exists.
func (l *Ledger) RecordWarning(ctx context.Context, id int64) (Outcome, error) {
	return l.record(ctx, id, l.store.IncrementWarning)
}

func (l *Ledger) record(ctx context.Context, id int64, increment func(context.Context, int64) error) (Outcome, error) {
	unlock := l.lockVolunteer(id)
	defer unlock()

	if err := increment(ctx, id); err != nil {
		return Outcome{}, err
	}

	v, err := l.store.GetVolunteer(ctx, id)
	if err != nil {
		return Outcome{}, fmt.Errorf("reload after increment: %w", err)
	}

	total := v.TotalViolations()
	if total < PromotionThreshold || v.Status == volunteer.StatusBlacklisted {
		return Outcome{Volunteer: v}, nil
	}

	reason := fmt.Sprintf("%d violations (lateness+warnings)", total)
	if err := l.store.SetStatus(ctx, id, volunteer.StatusBlacklisted); err != nil {
		return Outcome{}, fmt.Errorf("promote volunteer %d: %w", id, err)
	}
	if err := l.store.UpsertBlacklistEntry(ctx, v.FullName, reason); err != nil {
		return Outcome{}, fmt.Errorf("blacklist volunteer %d: %w", id, err)
	}
	v.Status = volunteer.StatusBlacklisted

	l.logger.Info("volunteer promoted to blacklist",
		zap.Int64("volunteer_id", id),
		zap.String("full_name", v.FullName),
		zap.Int("total_violations", total),
	)
	return Outcome{Volunteer: v, Promoted: true}, nil
}

// ApplyManualBlacklist blacklists the volunteer unconditionally and upserts
// a blacklist entry with the given reason. An existing entry for the same
// full name keeps its original reason. Returns store.ErrNotFound when no
// such volunteer exists.
func (l *Ledger) ApplyManualBlacklist(ctx context.Context, id int64, reason string) (volunteer.Volunteer, error) {
	unlock := l.lockVolunteer(id)
	defer unlock()

	v, err := l.store.GetVolunteer(ctx, id)
	if err != nil {
		return volunteer.Volunteer{}, err
	}

	if err := l.store.SetStatus(ctx, id, volunteer.StatusBlacklisted); err != nil {
		return volunteer.Volunteer{}, fmt.Errorf("blacklist volunteer %d: %w", id, err)
	}
	if err := l.store.UpsertBlacklistEntry(ctx, v.FullName, reason); err != nil {
		return volunteer.Volunteer{}, fmt.Errorf("blacklist entry for %q: %w", v.FullName, err)
	}
	v.Status = volunteer.StatusBlacklisted

	l.logger.Info("volunteer manually blacklisted",
		zap.Int64("volunteer_id", id),
		zap.String("full_name", v.FullName),
	)
	return v, nil
}
