package mocks

import (
	"context"
	"fmt"
	"sync"

	monoprice "github.com/abates/monoprice-hub"
)

// FakeAmplifier keeps zone state in memory. Zones without state do not
// answer.
type FakeAmplifier struct {
	mu     sync.Mutex
	states map[monoprice.ZoneID]monoprice.State
	errs   map[monoprice.ZoneID]error
	calls  []string
}

func NewFakeAmplifier(states ...monoprice.State) *FakeAmplifier {
	f := &FakeAmplifier{
		states: map[monoprice.ZoneID]monoprice.State{},
		errs:   map[monoprice.ZoneID]error{},
	}
	for _, state := range states {
		f.states[state.Zone] = state
	}
	return f
}

// Fail makes every call for zone return err until Fail(zone, nil).
func (f *FakeAmplifier) Fail(zone monoprice.ZoneID, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, zone)
	} else {
		f.errs[zone] = err
	}
}

func (f *FakeAmplifier) State(zone monoprice.ZoneID) monoprice.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.states[zone]
}

func (f *FakeAmplifier) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeAmplifier) update(zone monoprice.ZoneID, call string, fn func(*monoprice.State)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, fmt.Sprintf("%d %s", zone, call))
	if err := f.errs[zone]; err != nil {
		return err
	}
	state, found := f.states[zone]
	if !found {
		return monoprice.ErrUnknownState
	}
	fn(&state)
	f.states[zone] = state
	return nil
}

func (f *FakeAmplifier) ZoneStatus(ctx context.Context, zone monoprice.ZoneID) (state monoprice.State, err error) {
	err = f.update(zone, "status", func(s *monoprice.State) { state = *s })
	return
}

func (f *FakeAmplifier) SetPower(ctx context.Context, zone monoprice.ZoneID, on bool) error {
	return f.update(zone, fmt.Sprintf("power %v", on), func(s *monoprice.State) { s.Power = on })
}

func (f *FakeAmplifier) SetMute(ctx context.Context, zone monoprice.ZoneID, mute bool) error {
	return f.update(zone, fmt.Sprintf("mute %v", mute), func(s *monoprice.State) { s.Mute = mute })
}

func (f *FakeAmplifier) SetVolume(ctx context.Context, zone monoprice.ZoneID, level int) error {
	return f.update(zone, fmt.Sprintf("volume %d", level), func(s *monoprice.State) { s.Volume = level })
}

func (f *FakeAmplifier) SetTreble(ctx context.Context, zone monoprice.ZoneID, level int) error {
	return f.update(zone, fmt.Sprintf("treble %d", level), func(s *monoprice.State) { s.Treble = level })
}

func (f *FakeAmplifier) SetBass(ctx context.Context, zone monoprice.ZoneID, level int) error {
	return f.update(zone, fmt.Sprintf("bass %d", level), func(s *monoprice.State) { s.Bass = level })
}

func (f *FakeAmplifier) SetBalance(ctx context.Context, zone monoprice.ZoneID, level int) error {
	return f.update(zone, fmt.Sprintf("balance %d", level), func(s *monoprice.State) { s.Balance = level })
}

func (f *FakeAmplifier) SetSource(ctx context.Context, zone monoprice.ZoneID, source int) error {
	return f.update(zone, fmt.Sprintf("source %d", source), func(s *monoprice.State) { s.Source = source })
}

func (f *FakeAmplifier) Restore(ctx context.Context, zone monoprice.ZoneID, state monoprice.State) error {
	return f.update(zone, "restore", func(s *monoprice.State) {
		s.Power = state.Power
		s.Mute = state.Mute
		s.Volume = state.Volume
		s.Treble = state.Treble
		s.Bass = state.Bass
		s.Balance = state.Balance
		s.Source = state.Source
	})
}
