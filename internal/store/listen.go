package store

import (
	"context"
	"sync"
)

// hub fans out commit notifications to active listeners. Each listener gets
// a conflated wake-up channel: if re-evaluations fall behind, intermediate
// states collapse into the latest one, never a backlog.
type hub struct {
	store *SQLite
	mu    sync.Mutex
	subs  map[*subscription]struct{}
}

func newHub(s *SQLite) *hub {
	return &hub{
		store: s,
		subs:  make(map[*subscription]struct{}),
	}
}

type subscription struct {
	hub        *hub
	collection string
	filter     Filter
	onChange   func(Snapshot)
	onError    func(error)
	wake       chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
}

func (h *hub) subscribe(collection string, f Filter, onChange func(Snapshot), onError func(error)) *subscription {
	sub := &subscription{
		hub:        h,
		collection: collection,
		filter:     f,
		onChange:   onChange,
		onError:    onError,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	// The contract promises the current result set first, then changes.
	sub.wake <- struct{}{}
	go sub.run()
	return sub
}

// notify wakes every listener on collection after a commit.
func (h *hub) notify(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if sub.collection == collection {
			select {
			case sub.wake <- struct{}{}:
			default: // already pending, the next evaluation covers this commit
			}
		}
	}
}

func (h *hub) notifyAll(collections map[string]struct{}) {
	for c := range collections {
		h.notify(c)
	}
}

func (h *hub) remove(sub *subscription) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

func (h *hub) closeAll() {
	h.mu.Lock()
	subs := make([]*subscription, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

// run re-evaluates the listened query once per wake-up and pushes the
// snapshot to the callback. Callbacks run on this goroutine, one at a time.
func (sub *subscription) run() {
	for {
		select {
		case <-sub.done:
			return
		case <-sub.wake:
		}

		docs, err := sub.hub.store.Query(context.Background(), sub.collection, sub.filter)
		select {
		case <-sub.done:
			// Detached while querying: deliver nothing.
			return
		default:
		}
		if err != nil {
			sub.onError(err)
			continue
		}
		sub.onChange(Snapshot{Docs: docs})
	}
}

// Close detaches the listener. No callback fires after Close returns unless
// one was already in flight.
func (sub *subscription) Close() {
	sub.closeOnce.Do(func() {
		sub.hub.remove(sub)
		close(sub.done)
	})
}
