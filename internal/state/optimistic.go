package state

import (
	"context"
	"sync"

	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
)

// mutationPhase tracks an optimistic mutation through its round-trip.
type mutationPhase int

const (
	mutationPending mutationPhase = iota
	mutationCommitted
	mutationRolledBack
)

// toggleMutation is one in-flight optimistic toggle: the pre-image snapshot
// plus the phase. Its lifetime is bounded to one RPC round-trip; the
// snapshot exists only to make rollback exact.
type toggleMutation struct {
	entityID string
	before   domain.ToggleState
	phase    mutationPhase
}

// guess returns the optimistic local state: flag flipped, counter adjusted
// by one. The server's response later overwrites this, never the other way
// around.
func (m *toggleMutation) guess() domain.ToggleState {
	if m.before.Active {
		return domain.ToggleState{Active: false, Count: m.before.Count - 1}
	}
	return domain.ToggleState{Active: true, Count: m.before.Count + 1}
}

func (m *toggleMutation) commit()   { m.phase = mutationCommitted }
func (m *toggleMutation) rollback() { m.phase = mutationRolledBack }

// runToggle is the optimistic-update-then-reconcile-or-rollback protocol
// shared by every interaction toggle (like, save, register):
//
//  1. snapshot the entity's current {flag, counter},
//  2. write the optimistic inverse into the collection immediately,
//  3. issue the RPC,
//  4. on success overwrite with the server's authoritative values,
//  5. on failure restore the snapshot exactly.
//
// An entity missing from the collection at any step (paged out mid-flight)
// makes that step a keyed no-op. The mutex is released while the RPC is in
// flight so other actions and realtime merges interleave freely.
func runToggle[T domain.Entity](
	ctx context.Context,
	mu *sync.Mutex,
	col *collection[T],
	id string,
	read func(T) domain.ToggleState,
	write func(*T, domain.ToggleState),
	rpc func(context.Context) (*domain.ToggleState, error),
) (*toggleMutation, error) {
	mu.Lock()
	cur, ok := col.get(id)
	if !ok {
		mu.Unlock()
		return nil, nil
	}
	mut := &toggleMutation{entityID: id, before: read(cur)}
	optimistic := mut.guess()
	col.patch(id, func(t *T) { write(t, optimistic) })
	mu.Unlock()

	confirmed, err := rpc(ctx)

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		mut.rollback()
		col.patch(id, func(t *T) { write(t, mut.before) })
		return mut, err
	}

	mut.commit()
	col.patch(id, func(t *T) { write(t, *confirmed) })
	return mut, nil
}
