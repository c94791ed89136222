package data

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/store"
)

// batchGetter is the slice of the store contract the resolver needs
type batchGetter interface {
	QueryIn(ctx context.Context, collection string, ids []string) ([]store.Doc, error)
}

// UserResolver translates referenced user ids into resolved users with as
// few store round-trips as possible. Resolved users are cached for the
// lifetime of the resolver; entries are only ever added, so a display-name
// change elsewhere will not show up in views resolved earlier.
type UserResolver struct {
	store batchGetter

	mu    sync.RWMutex
	cache map[string]models.User
}

func NewUserResolver(st batchGetter) *UserResolver {
	return &UserResolver{
		store: st,
		cache: make(map[string]models.User),
	}
}

// Resolve returns a mapping for the requested ids, restricted to ids that
// could be resolved. Missing ids are silently omitted; the caller decides
// whether a dangling reference is fatal. Cache misses are fetched in chunks
// of store.ChunkLimit, issued concurrently.
func (r *UserResolver) Resolve(ctx context.Context, ids []string) (map[string]models.User, error) {
	wanted := dedupeStrings(ids)
	if len(wanted) == 0 {
		return map[string]models.User{}, nil
	}

	r.mu.RLock()
	var misses []string
	for _, id := range wanted {
		if _, ok := r.cache[id]; !ok {
			misses = append(misses, id)
		}
	}
	r.mu.RUnlock()

	if len(misses) > 0 {
		fetched, err := r.fetch(ctx, misses)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		for id, u := range fetched {
			r.cache[id] = u
		}
		r.mu.Unlock()
	}

	result := make(map[string]models.User, len(wanted))
	r.mu.RLock()
	for _, id := range wanted {
		if u, ok := r.cache[id]; ok {
			result[id] = u
		}
	}
	r.mu.RUnlock()
	return result, nil
}

func (r *UserResolver) fetch(ctx context.Context, ids []string) (map[string]models.User, error) {
	chunks := chunkIDs(ids, store.ChunkLimit)
	results := make([][]store.Doc, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			docs, err := r.store.QueryIn(gctx, store.CollectionUsers, chunk)
			if err != nil {
				return err
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}

	users := make(map[string]models.User, len(ids))
	for _, docs := range results {
		for _, doc := range docs {
			var u models.User
			if err := doc.Decode(&u); err != nil {
				return nil, fmt.Errorf("resolve users: %w", err)
			}
			users[u.ID] = u
		}
	}
	return users, nil
}
