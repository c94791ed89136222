package data

import (
	"context"
	"fmt"
	"sync"

	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/store"
)

// ProjectEvent is one emission from a live single-project view. Err is
// terminal: the channel closes right after the event carrying it.
type ProjectEvent struct {
	Project models.Project
	Err     error
}

// ProjectListEvent is one emission from a live project-list view
type ProjectListEvent struct {
	Projects []models.Project
	Err      error
}

// WatchProject emits a fully resolved snapshot of the project whenever the
// project document or any of its tasks change. The stream ends with an
// error when the project is deleted or a listener fails. Cancelling ctx
// detaches all listeners, stops in-flight recomputation and closes the
// channel without an error.
func (r *Repo) WatchProject(ctx context.Context, projectID string) <-chan ProjectEvent {
	out := make(chan ProjectEvent, 1)

	go func() {
		defer close(out)

		trigger := make(chan struct{}, 1)
		errs := make(chan error, 2)
		kick := func() {
			select {
			case trigger <- struct{}{}:
			default:
			}
		}
		fail := func(err error) {
			select {
			case errs <- err:
			default:
			}
		}

		projSub, err := r.store.Listen(store.CollectionProjects,
			store.Filter{DocID: projectID},
			func(s store.Snapshot) {
				if len(s.Docs) == 0 {
					fail(fmt.Errorf("project %s: %w", projectID, store.ErrNotFound))
					return
				}
				kick()
			},
			fail,
		)
		if err != nil {
			emitEvent(ctx, out, ProjectEvent{Err: err})
			return
		}
		defer projSub.Close()

		taskSub, err := r.store.Listen(store.CollectionTasks,
			store.Filter{Field: "projectId", Op: store.OpEqual, Value: projectID},
			func(store.Snapshot) { kick() },
			fail,
		)
		if err != nil {
			emitEvent(ctx, out, ProjectEvent{Err: err})
			return
		}
		defer taskSub.Close()

		debounceLoop(ctx, trigger, errs,
			func(runCtx context.Context) (models.Project, error) {
				return r.ProjectByID(runCtx, projectID)
			},
			func(p models.Project) bool {
				return emitEvent(ctx, out, ProjectEvent{Project: p})
			},
			func(err error) {
				emitEvent(ctx, out, ProjectEvent{Err: err})
			},
		)
	}()

	return out
}

// WatchUserProjects emits the de-duplicated union of projects the user owns
// or is a member of, fully resolved, whenever either query changes. The
// stream only terminates on a listener error or when ctx is cancelled.
func (r *Repo) WatchUserProjects(ctx context.Context, userID string) <-chan ProjectListEvent {
	out := make(chan ProjectListEvent, 1)

	go func() {
		defer close(out)

		trigger := make(chan struct{}, 1)
		errs := make(chan error, 2)
		kick := func() {
			select {
			case trigger <- struct{}{}:
			default:
			}
		}
		fail := func(err error) {
			select {
			case errs <- err:
			default:
			}
		}

		// The two listeners race freely; each keeps only its latest result
		// set and recomputation unions them.
		var mu sync.Mutex
		var owned, member []string

		ownerSub, err := r.store.Listen(store.CollectionProjects,
			store.Filter{Field: "ownerId", Op: store.OpEqual, Value: userID},
			func(s store.Snapshot) {
				mu.Lock()
				owned = docIDs(s)
				mu.Unlock()
				kick()
			},
			fail,
		)
		if err != nil {
			emitEvent(ctx, out, ProjectListEvent{Err: err})
			return
		}
		defer ownerSub.Close()

		memberSub, err := r.store.Listen(store.CollectionProjects,
			store.Filter{Field: "users", Op: store.OpArrayContains, Value: userID},
			func(s store.Snapshot) {
				mu.Lock()
				member = docIDs(s)
				mu.Unlock()
				kick()
			},
			fail,
		)
		if err != nil {
			emitEvent(ctx, out, ProjectListEvent{Err: err})
			return
		}
		defer memberSub.Close()

		debounceLoop(ctx, trigger, errs,
			func(runCtx context.Context) ([]models.Project, error) {
				mu.Lock()
				ids := dedupeStrings(append(append([]string{}, owned...), member...))
				mu.Unlock()
				return r.ProjectsByIDs(runCtx, ids)
			},
			func(projects []models.Project) bool {
				return emitEvent(ctx, out, ProjectListEvent{Projects: projects})
			},
			func(err error) {
				emitEvent(ctx, out, ProjectListEvent{Err: err})
			},
		)
	}()

	return out
}

// debounceLoop is the recompute cycle shared by both live views. A trigger
// cancels any in-flight recomputation and schedules a fresh one; only the
// most recently scheduled run may emit, so a stale result racing to
// completion can never overwrite a newer one. Cancellation of a superseded
// run is control flow, not an error.
func debounceLoop[T any](
	ctx context.Context,
	trigger <-chan struct{},
	errs <-chan error,
	compute func(context.Context) (T, error),
	emit func(T) bool,
	fail func(error),
) {
	type result struct {
		gen int
		val T
		err error
	}
	results := make(chan result, 1)

	gen := 0
	cancelInFlight := func() {}
	defer func() { cancelInFlight() }()

	for {
		select {
		case <-ctx.Done():
			return

		case err := <-errs:
			fail(err)
			return

		case <-trigger:
			cancelInFlight()
			gen++
			runCtx, cancel := context.WithCancel(ctx)
			cancelInFlight = cancel
			current := gen
			go func() {
				val, err := compute(runCtx)
				select {
				case results <- result{gen: current, val: val, err: err}:
				case <-runCtx.Done():
				}
			}()

		case res := <-results:
			if res.gen != gen {
				continue
			}
			if res.err != nil {
				if store.IsCancellation(res.err) {
					continue
				}
				fail(res.err)
				return
			}
			if !emit(res.val) {
				return
			}
		}
	}
}

// emitEvent sends ev unless the subscriber is gone. Reports whether the
// send happened.
func emitEvent[T any](ctx context.Context, out chan<- T, ev T) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func docIDs(s store.Snapshot) []string {
	ids := make([]string, 0, len(s.Docs))
	for _, doc := range s.Docs {
		ids = append(ids, doc.ID)
	}
	return ids
}
