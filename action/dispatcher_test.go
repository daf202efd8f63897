package action

import (
	"context"
	"errors"
	"testing"

	monoprice "github.com/abates/monoprice-hub"
	"github.com/abates/monoprice-hub/mocks"
	"github.com/abates/monoprice-hub/source"
	"github.com/abates/monoprice-hub/zone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T, amp zone.Driver, ids ...monoprice.ZoneID) (*Dispatcher, *[]Result) {
	t.Helper()
	catalog, err := source.Build(map[string]string{"1": "CD"})
	require.NoError(t, err)

	zones := map[monoprice.ZoneID]*zone.Zone{}
	for _, id := range ids {
		zones[id] = zone.New(zone.Options{
			ID:         id,
			Namespace:  "test",
			Driver:     amp,
			Reconciler: zone.NewReconciler(catalog, zone.DefaultMaxVolume),
			Translator: zone.NewTranslator(catalog, zone.DefaultMaxVolume),
		})
	}

	observed := &[]Result{}
	lookup := func(id monoprice.ZoneID) (*zone.Zone, bool) {
		z, found := zones[id]
		return z, found
	}
	return NewDispatcher(lookup, func(_ Name, r Result) { *observed = append(*observed, r) }, nil), observed
}

func resultFor(results []Result, id monoprice.ZoneID) (Result, bool) {
	for _, r := range results {
		if r.Zone == id {
			return r, true
		}
	}
	return Result{}, false
}

func TestDispatcher_IsolatesFailures(t *testing.T) {
	amp := mocks.NewFakeAmplifier(monoprice.State{Zone: 11}, monoprice.State{Zone: 21})
	d, observed := newTestDispatcher(t, amp, 11, 21)

	level := 10
	results, err := d.Dispatch(context.Background(), []monoprice.ZoneID{11, 21, 99}, SetBass, Params{Level: &level})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Len(t, *observed, 3)

	for _, id := range []monoprice.ZoneID{11, 21} {
		r, found := resultFor(results, id)
		require.True(t, found)
		assert.NoError(t, r.Err)
		assert.True(t, r.Applied)
		assert.Equal(t, 10, amp.State(id).Bass)
	}

	r, found := resultFor(results, 99)
	require.True(t, found)
	assert.ErrorIs(t, r.Err, ErrUnknownZone)
	assert.False(t, r.Applied)
}

func TestDispatcher_DriverFailureDoesNotAbort(t *testing.T) {
	amp := mocks.NewFakeAmplifier(monoprice.State{Zone: 11}, monoprice.State{Zone: 12}, monoprice.State{Zone: 13})
	amp.Fail(12, errors.New("serial failure"))
	d, _ := newTestDispatcher(t, amp, 11, 12, 13)

	level := 3
	results, err := d.Dispatch(context.Background(), []monoprice.ZoneID{11, 12, 13}, SetTreble, Params{Level: &level})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, 3, amp.State(11).Treble)
	assert.Equal(t, 3, amp.State(13).Treble)
}

func TestDispatcher_ValidationPerZone(t *testing.T) {
	amp := mocks.NewFakeAmplifier(monoprice.State{Zone: 11}, monoprice.State{Zone: 12})
	d, _ := newTestDispatcher(t, amp, 11, 12)

	level := 22
	results, err := d.Dispatch(context.Background(), []monoprice.ZoneID{11, 12}, SetBalance, Params{Level: &level})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, zone.ErrValidation)
	}
	assert.Empty(t, amp.Calls())
}

func TestDispatcher_DefaultLevels(t *testing.T) {
	amp := mocks.NewFakeAmplifier(monoprice.State{Zone: 11, Balance: 10, Bass: 1, Treble: 1})
	d, _ := newTestDispatcher(t, amp, 11)
	ctx := context.Background()

	for _, name := range []Name{SetBass, SetTreble, SetBalance} {
		_, err := d.Dispatch(ctx, []monoprice.ZoneID{11}, name, Params{})
		require.NoError(t, err)
	}

	state := amp.State(11)
	assert.Equal(t, 5, state.Bass)
	assert.Equal(t, 5, state.Treble)
	assert.Equal(t, 0, state.Balance)
}

func TestDispatcher_SnapshotRestore(t *testing.T) {
	original := monoprice.State{Zone: 11, Power: true, Volume: 12, Source: 1}
	amp := mocks.NewFakeAmplifier(original, monoprice.State{Zone: 12})
	d, _ := newTestDispatcher(t, amp, 11, 12)
	ctx := context.Background()

	results, err := d.Dispatch(ctx, []monoprice.ZoneID{11}, Snapshot, Params{})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	require.NoError(t, amp.SetPower(ctx, 11, false))

	results, err = d.Dispatch(ctx, []monoprice.ZoneID{11, 12}, Restore, Params{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Applied)
	assert.Equal(t, original, amp.State(11))

	assert.NoError(t, results[1].Err)
	assert.False(t, results[1].Applied)
}

func TestDispatcher_EmptyTargets(t *testing.T) {
	amp := mocks.NewFakeAmplifier(monoprice.State{Zone: 11})
	d, observed := newTestDispatcher(t, amp, 11)

	results, err := d.Dispatch(context.Background(), nil, SetBass, Params{})
	assert.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, *observed)
	assert.Empty(t, amp.Calls())
}

func TestDispatcher_UnknownAction(t *testing.T) {
	amp := mocks.NewFakeAmplifier(monoprice.State{Zone: 11})
	d, _ := newTestDispatcher(t, amp, 11)

	_, err := d.Dispatch(context.Background(), []monoprice.ZoneID{11}, Name("party_mode"), Params{})
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Empty(t, amp.Calls())
}

func TestNames(t *testing.T) {
	for _, name := range Names() {
		_, found := handlers[name]
		assert.True(t, found, string(name))
	}
	assert.Len(t, handlers, len(Names()))
}
