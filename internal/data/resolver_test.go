package data

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/store"
)

// fakeBatchGetter serves user docs from a map and records every QueryIn call
type fakeBatchGetter struct {
	mu    sync.Mutex
	calls [][]string
	users map[string]models.User
}

func (f *fakeBatchGetter) QueryIn(ctx context.Context, collection string, ids []string) ([]store.Doc, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{}, ids...))
	f.mu.Unlock()

	var docs []store.Doc
	for _, id := range ids {
		u, ok := f.users[id]
		if !ok {
			continue
		}
		data, err := json.Marshal(u)
		if err != nil {
			return nil, err
		}
		docs = append(docs, store.Doc{ID: id, Data: data})
	}
	return docs, nil
}

func (f *fakeBatchGetter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newFakeUsers(n int) *fakeBatchGetter {
	users := make(map[string]models.User, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("u%02d", i)
		users[id] = models.User{ID: id, Email: id + "@example.com", DisplayName: "User " + id}
	}
	return &fakeBatchGetter{users: users}
}

func userIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("u%02d", i)
	}
	return ids
}

func TestResolveBatchesInChunks(t *testing.T) {
	fake := newFakeUsers(25)
	r := NewUserResolver(fake)

	resolved, err := r.Resolve(context.Background(), userIDs(25))
	require.NoError(t, err)
	assert.Len(t, resolved, 25)

	// 25 misses at a chunk limit of 10 means exactly 3 calls
	assert.Equal(t, 3, fake.callCount())
	for _, call := range fake.calls {
		assert.LessOrEqual(t, len(call), store.ChunkLimit)
	}
}

func TestResolveServesRepeatsFromCache(t *testing.T) {
	fake := newFakeUsers(5)
	r := NewUserResolver(fake)
	ctx := context.Background()

	_, err := r.Resolve(ctx, userIDs(5))
	require.NoError(t, err)
	require.Equal(t, 1, fake.callCount())

	resolved, err := r.Resolve(ctx, userIDs(5))
	require.NoError(t, err)
	assert.Len(t, resolved, 5)
	assert.Equal(t, 1, fake.callCount(), "cached ids must not be fetched again")
}

func TestResolveFetchesOnlyMisses(t *testing.T) {
	fake := newFakeUsers(10)
	r := NewUserResolver(fake)
	ctx := context.Background()

	_, err := r.Resolve(ctx, userIDs(5))
	require.NoError(t, err)

	resolved, err := r.Resolve(ctx, userIDs(10))
	require.NoError(t, err)
	assert.Len(t, resolved, 10)

	require.Equal(t, 2, fake.callCount())
	assert.Len(t, fake.calls[1], 5, "only the 5 new ids should be fetched")
}

func TestResolveOmitsMissingUsers(t *testing.T) {
	fake := newFakeUsers(2)
	r := NewUserResolver(fake)

	resolved, err := r.Resolve(context.Background(), []string{"u00", "ghost", "u01"})
	require.NoError(t, err)
	assert.Len(t, resolved, 2)
	_, ok := resolved["ghost"]
	assert.False(t, ok)
}

func TestResolveDedupesAndSkipsEmpty(t *testing.T) {
	fake := newFakeUsers(1)
	r := NewUserResolver(fake)

	resolved, err := r.Resolve(context.Background(), []string{"u00", "u00", "", "u00"})
	require.NoError(t, err)
	assert.Len(t, resolved, 1)
	require.Equal(t, 1, fake.callCount())
	assert.Equal(t, []string{"u00"}, fake.calls[0])
}

func TestResolveEmptyInput(t *testing.T) {
	fake := newFakeUsers(0)
	r := NewUserResolver(fake)

	resolved, err := r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, resolved)
	assert.Zero(t, fake.callCount())
}
