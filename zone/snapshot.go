package zone

import (
	"context"
	"fmt"
	"sync"

	monoprice "github.com/abates/monoprice-hub"
)

// Snapshots holds at most one saved status per zone.
type Snapshots struct {
	mu     sync.Mutex
	states map[monoprice.ZoneID]monoprice.State
}

func NewSnapshots() *Snapshots {
	return &Snapshots{states: map[monoprice.ZoneID]monoprice.State{}}
}

// Take reads the zone and replaces its snapshot. A failed read leaves the
// previous snapshot in place.
func (s *Snapshots) Take(ctx context.Context, driver Driver, id monoprice.ZoneID) error {
	state, err := driver.ZoneStatus(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: zone %d: %w", ErrRead, id, err)
	}

	s.mu.Lock()
	s.states[id] = state
	s.mu.Unlock()
	return nil
}

func (s *Snapshots) Get(id monoprice.ZoneID) (state monoprice.State, found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, found = s.states[id]
	return
}

// Restore re-applies the snapshot of id. It reports false when there is
// nothing to restore. The snapshot is kept.
func (s *Snapshots) Restore(ctx context.Context, driver Driver, id monoprice.ZoneID) (bool, error) {
	state, found := s.Get(id)
	if !found {
		return false, nil
	}
	if err := driver.Restore(ctx, id, state); err != nil {
		return false, err
	}
	return true, nil
}
