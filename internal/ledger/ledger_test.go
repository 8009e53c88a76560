package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/volunteerd/internal/store"
	"github.com/fyrsmithlabs/volunteerd/internal/store/sqlite"
	"github.com/fyrsmithlabs/volunteerd/internal/volunteer"
)

func newLedger(t *testing.T) (*Ledger, store.Store) {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := sqlite.New(db)
	return New(st, zap.NewNop()), st
}

func addVolunteer(t *testing.T, st store.Store, name, contacts string) int64 {
	t.Helper()
	id, err := st.InsertVolunteer(context.Background(), name, contacts)
	require.NoError(t, err)
	return id
}

func TestRecordLatenessUnknownVolunteer(t *testing.T) {
	l, _ := newLedger(t)

	_, err := l.RecordLateness(context.Background(), 42)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPromotionAtThreshold(t *testing.T) {
	l, st := newLedger(t)
	ctx := context.Background()
	id := addVolunteer(t, st, "Ann Lee", "+1-555-0100")

	out, err := l.RecordLateness(ctx, id)
	require.NoError(t, err)
	assert.False(t, out.Promoted)
	assert.Equal(t, volunteer.StatusActive, out.Volunteer.Status)

	out, err = l.RecordWarning(ctx, id)
	require.NoError(t, err)
	assert.False(t, out.Promoted)

	// Third violation crosses the threshold.
	out, err = l.RecordLateness(ctx, id)
	require.NoError(t, err)
	assert.True(t, out.Promoted)
	assert.Equal(t, volunteer.StatusBlacklisted, out.Volunteer.Status)

	entries, err := st.ListBlacklist(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Ann Lee", entries[0].FullName)
	assert.Equal(t, "3 violations (lateness+warnings)", entries[0].Reason)
}

func TestRepeatedViolationsKeepSingleBlacklistEntry(t *testing.T) {
	l, st := newLedger(t)
	ctx := context.Background()
	id := addVolunteer(t, st, "Bob Ray", "bob@example.com")

	for i := 0; i < 6; i++ {
		_, err := l.RecordWarning(ctx, id)
		require.NoError(t, err)
	}

	entries, err := st.ListBlacklist(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "3 violations (lateness+warnings)", entries[0].Reason)

	v, err := st.GetVolunteer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 6, v.WarningsCount)
	assert.Equal(t, volunteer.StatusBlacklisted, v.Status)
}

func TestConcurrentRecordingsLoseNoCounts(t *testing.T) {
	l, st := newLedger(t)
	ctx := context.Background()
	id := addVolunteer(t, st, "Cara Diaz", "cara@example.com")

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.RecordLateness(ctx, id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	v, err := st.GetVolunteer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, n, v.LatenessCount)
	assert.Equal(t, volunteer.StatusBlacklisted, v.Status)

	entries, err := st.ListBlacklist(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestManualBlacklist(t *testing.T) {
	l, st := newLedger(t)
	ctx := context.Background()
	id := addVolunteer(t, st, "Dana Fox", "dana@example.com")

	v, err := l.ApplyManualBlacklist(ctx, id, "policy violation")
	require.NoError(t, err)
	assert.Equal(t, volunteer.StatusBlacklisted, v.Status)

	entries, err := st.ListBlacklist(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "policy violation", entries[0].Reason)

	_, err = l.ApplyManualBlacklist(ctx, 999, "whatever")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestManualBlacklistPreservesExistingReason(t *testing.T) {
	l, st := newLedger(t)
	ctx := context.Background()
	id := addVolunteer(t, st, "Eve Hart", "eve@example.com")

	_, err := l.ApplyManualBlacklist(ctx, id, "first reason")
	require.NoError(t, err)
	_, err = l.ApplyManualBlacklist(ctx, id, "second reason")
	require.NoError(t, err)

	entries, err := st.ListBlacklist(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "first reason", entries[0].Reason)
}

func TestBlacklistInvariant(t *testing.T) {
	// status = Blacklisted iff total violations >= threshold or a manual
	// blacklist was applied.
	l, st := newLedger(t)
	ctx := context.Background()

	below := addVolunteer(t, st, "Under Threshold", "u@example.com")
	at := addVolunteer(t, st, "At Threshold", "a@example.com")
	manual := addVolunteer(t, st, "Manual", "m@example.com")

	_, err := l.RecordLateness(ctx, below)
	require.NoError(t, err)
	_, err = l.RecordWarning(ctx, below)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := l.RecordLateness(ctx, at)
		require.NoError(t, err)
	}

	_, err = l.ApplyManualBlacklist(ctx, manual, "policy violation")
	require.NoError(t, err)

	all, err := st.ListVolunteers(ctx)
	require.NoError(t, err)
	for _, v := range all {
		blacklisted := v.Status == volunteer.StatusBlacklisted
		switch v.ID {
		case below:
			assert.False(t, blacklisted, "below threshold must stay active")
		case at, manual:
			assert.True(t, blacklisted, "volunteer %d must be blacklisted", v.ID)
		}
	}
}
