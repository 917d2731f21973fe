package mutate

import (
	"context"
	"fmt"
	"sync"

	"github.com/zanvidmar/vitrina/internal/notify"
)

// Writer performs the real mutation against the content store. The ids
// slice is never empty.
type Writer interface {
	Archive(ctx context.Context, collection string, ids []int64) error
	Restore(ctx context.Context, collection string, ids []int64) error
	Delete(ctx context.Context, collection string, ids []int64) error
}

// Mutator manages a record list with optimistic archive/restore/delete.
//
// Dispatching a mutation appends it to the pending queue and returns
// immediately; List then reflects it until the server round-trip finishes.
// On success the action is folded into the base list (and the refetch
// callback, if any, runs); on failure it is dropped, so the projection
// rolls back to the last confirmed state instead of going silently stale.
//
// Any number of mutations may be in flight at once. Two mutations touching
// the same id race: the one dispatched last wins in the projection, and
// whichever write lands last wins at the store.
type Mutator[T any, P interface {
	*T
	Row
}] struct {
	collection string
	writer     Writer
	notifier   notify.Notifier
	onUpdate   func()

	mu      sync.Mutex
	base    []T
	pending []*Action

	wg sync.WaitGroup
}

// New creates a Mutator for one collection. onUpdate is invoked after every
// successful write (typically to refetch the canonical list); it may be nil.
func New[T any, P interface {
	*T
	Row
}](collection string, writer Writer, notifier notify.Notifier, onUpdate func()) *Mutator[T, P] {
	return &Mutator[T, P]{
		collection: collection,
		writer:     writer,
		notifier:   notifier,
		onUpdate:   onUpdate,
	}
}

// SetBase replaces the last-known-good list, keeping pending actions.
func (m *Mutator[T, P]) SetBase(list []T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.base = append([]T(nil), list...)
}

// List returns the speculative projection: the base list with every
// pending action applied.
func (m *Mutator[T, P]) List() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Project[T, P](m.base, m.actions())
}

// Pending reports how many mutations are still in flight.
func (m *Mutator[T, P]) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Archive marks one record archived.
func (m *Mutator[T, P]) Archive(ctx context.Context, id int64) {
	m.dispatch(ctx, Action{Kind: KindArchive, IDs: []int64{id}})
}

// Restore marks one record active again.
func (m *Mutator[T, P]) Restore(ctx context.Context, id int64) {
	m.dispatch(ctx, Action{Kind: KindRestore, IDs: []int64{id}})
}

// Delete permanently removes one record.
func (m *Mutator[T, P]) Delete(ctx context.Context, id int64) {
	m.dispatch(ctx, Action{Kind: KindDelete, IDs: []int64{id}})
}

// BulkArchive marks all given records archived in one round-trip.
func (m *Mutator[T, P]) BulkArchive(ctx context.Context, ids []int64) {
	m.dispatch(ctx, Action{Kind: KindArchive, IDs: ids})
}

// BulkRestore marks all given records active in one round-trip.
func (m *Mutator[T, P]) BulkRestore(ctx context.Context, ids []int64) {
	m.dispatch(ctx, Action{Kind: KindRestore, IDs: ids})
}

// BulkDelete permanently removes all given records in one round-trip.
func (m *Mutator[T, P]) BulkDelete(ctx context.Context, ids []int64) {
	m.dispatch(ctx, Action{Kind: KindDelete, IDs: ids})
}

// Wait blocks until all in-flight mutations have completed.
func (m *Mutator[T, P]) Wait() {
	m.wg.Wait()
}

func (m *Mutator[T, P]) dispatch(ctx context.Context, a Action) {
	if len(a.IDs) == 0 {
		return
	}

	p := &a
	m.mu.Lock()
	m.pending = append(m.pending, p)
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		err := m.write(ctx, a)
		m.retire(p, err == nil)

		if err != nil {
			m.notifier.Error(fmt.Sprintf("%s %s: %v", verb(a.Kind), m.collection, err))
			return
		}

		m.notifier.Success(successMessage(a))
		if m.onUpdate != nil {
			m.onUpdate()
		}
	}()
}

func (m *Mutator[T, P]) write(ctx context.Context, a Action) error {
	switch a.Kind {
	case KindArchive:
		return m.writer.Archive(ctx, m.collection, a.IDs)
	case KindRestore:
		return m.writer.Restore(ctx, m.collection, a.IDs)
	case KindDelete:
		return m.writer.Delete(ctx, m.collection, a.IDs)
	default:
		return fmt.Errorf("unknown action kind %d", a.Kind)
	}
}

// retire removes the pending action. Confirmed actions are folded into the
// base list first so the projection doesn't flicker between retirement and
// the next refetch; failed ones simply vanish, reverting the projection.
func (m *Mutator[T, P]) retire(p *Action, confirmed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, q := range m.pending {
		if q == p {
			m.pending = append(m.pending[:i:i], m.pending[i+1:]...)
			break
		}
	}
	if confirmed {
		m.base = Project[T, P](m.base, []Action{*p})
	}
}

func (m *Mutator[T, P]) actions() []Action {
	actions := make([]Action, len(m.pending))
	for i, p := range m.pending {
		actions[i] = *p
	}
	return actions
}

func verb(k Kind) string {
	switch k {
	case KindArchive:
		return "archiving"
	case KindRestore:
		return "restoring"
	case KindDelete:
		return "deleting"
	default:
		return "mutating"
	}
}

func successMessage(a Action) string {
	if len(a.IDs) == 1 {
		switch a.Kind {
		case KindArchive:
			return "archived"
		case KindRestore:
			return "restored"
		case KindDelete:
			return "deleted permanently"
		}
	}
	switch a.Kind {
	case KindArchive:
		return fmt.Sprintf("%d records archived", len(a.IDs))
	case KindRestore:
		return fmt.Sprintf("%d records restored", len(a.IDs))
	case KindDelete:
		return fmt.Sprintf("%d records deleted permanently", len(a.IDs))
	}
	return "done"
}
