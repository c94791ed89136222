package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectSnapshots(t *testing.T, s *SQLite, collection string, f Filter) (<-chan Snapshot, Subscription) {
	t.Helper()
	snaps := make(chan Snapshot, 16)
	sub, err := s.Listen(collection, f,
		func(snap Snapshot) { snaps <- snap },
		func(err error) { t.Errorf("listener error: %v", err) },
	)
	require.NoError(t, err)
	t.Cleanup(sub.Close)
	return snaps, sub
}

func nextSnapshot(t *testing.T, snaps <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap := <-snaps:
		return snap
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}

// waitForDocs reads snapshots until one contains exactly want doc ids.
func waitForDocs(t *testing.T, snaps <-chan Snapshot, want int) Snapshot {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case snap := <-snaps:
			if len(snap.Docs) == want {
				return snap
			}
		case <-deadline:
			t.Fatalf("timed out waiting for snapshot with %d docs", want)
		}
	}
}

func TestListenDeliversInitialSnapshot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "widgets", "w1", widget{ID: "w1", Color: "red"}))

	snaps, _ := collectSnapshots(t, s, "widgets", Filter{Field: "color", Op: OpEqual, Value: "red"})
	snap := nextSnapshot(t, snaps)
	require.Len(t, snap.Docs, 1)
	assert.Equal(t, "w1", snap.Docs[0].ID)
}

func TestListenDeliversInitialEmptySnapshot(t *testing.T) {
	s := openTestStore(t)

	snaps, _ := collectSnapshots(t, s, "widgets", Filter{DocID: "missing"})
	snap := nextSnapshot(t, snaps)
	assert.Empty(t, snap.Docs)
}

func TestListenNotifiesAfterCommit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	snaps, _ := collectSnapshots(t, s, "widgets", Filter{Field: "color", Op: OpEqual, Value: "red"})
	nextSnapshot(t, snaps) // initial, empty

	require.NoError(t, s.Set(ctx, "widgets", "w1", widget{ID: "w1", Color: "red"}))
	waitForDocs(t, snaps, 1)

	require.NoError(t, s.Delete(ctx, "widgets", "w1"))
	waitForDocs(t, snaps, 0)
}

func TestListenConflatesBursts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	snaps, _ := collectSnapshots(t, s, "widgets", Filter{Field: "color", Op: OpEqual, Value: "red"})
	nextSnapshot(t, snaps)

	for i := 0; i < 20; i++ {
		require.NoError(t, s.Set(ctx, "widgets", "w1", widget{ID: "w1", Color: "red", Labels: []string{string(rune('a' + i))}}))
	}

	// Intermediate states may collapse, but the last snapshot must reflect
	// the final write.
	deadline := time.After(3 * time.Second)
	for {
		snap := nextSnapshot(t, snaps)
		require.Len(t, snap.Docs, 1)
		var w widget
		require.NoError(t, snap.Docs[0].Decode(&w))
		if len(w.Labels) == 1 && w.Labels[0] == string(rune('a'+19)) {
			return
		}
		select {
		case <-deadline:
			t.Fatal("never observed the final write")
		default:
		}
	}
}

func TestListenTransactionNotifiesOncePerCollection(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	widgetSnaps, _ := collectSnapshots(t, s, "widgets", Filter{Field: "color", Op: OpEqual, Value: "red"})
	gadgetSnaps, _ := collectSnapshots(t, s, "gadgets", Filter{Field: "color", Op: OpEqual, Value: "red"})
	nextSnapshot(t, widgetSnaps)
	nextSnapshot(t, gadgetSnaps)

	err := s.Transaction(ctx, func(tx Tx) error {
		if err := tx.Set("widgets", "w1", widget{ID: "w1", Color: "red"}); err != nil {
			return err
		}
		return tx.Set("gadgets", "g1", widget{ID: "g1", Color: "red"})
	})
	require.NoError(t, err)

	waitForDocs(t, widgetSnaps, 1)
	waitForDocs(t, gadgetSnaps, 1)
}

func TestListenRolledBackTransactionStaysSilent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	snaps, _ := collectSnapshots(t, s, "widgets", Filter{Field: "color", Op: OpEqual, Value: "red"})
	nextSnapshot(t, snaps)

	err := s.Transaction(ctx, func(tx Tx) error {
		if err := tx.Set("widgets", "w1", widget{ID: "w1", Color: "red"}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	select {
	case snap := <-snaps:
		t.Fatalf("unexpected snapshot after rollback: %d docs", len(snap.Docs))
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	s := openTestStore(t)

	snaps, sub := collectSnapshots(t, s, "widgets", Filter{DocID: "w1"})
	nextSnapshot(t, snaps)

	sub.Close()
	sub.Close()

	// Commits after Close never reach the listener
	require.NoError(t, s.Set(context.Background(), "widgets", "w1", widget{ID: "w1"}))
	select {
	case <-snaps:
		t.Fatal("snapshot delivered after Close")
	case <-time.After(200 * time.Millisecond):
	}
}
