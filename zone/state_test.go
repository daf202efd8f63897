package zone

import (
	"errors"
	"testing"

	monoprice "github.com/abates/monoprice-hub"
	"github.com/abates/monoprice-hub/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *source.Catalog {
	t.Helper()
	c, err := source.Build(map[string]string{"1": "CD", "2": "Tuner"})
	require.NoError(t, err)
	return c
}

func TestReconciler_Reconcile(t *testing.T) {
	r := NewReconciler(testCatalog(t), DefaultMaxVolume)

	t.Run("maps a successful read", func(t *testing.T) {
		got := r.Reconcile(EntityState{}, monoprice.State{Zone: 11, Power: true, Volume: 19, Mute: false, Source: 2}, nil)

		assert.Equal(t, EntityState{Known: true, On: true, Volume: 0.5, VolumeRaw: 19, Muted: false, Source: "Tuner"}, got)
	})

	t.Run("unconfigured source is unknown", func(t *testing.T) {
		got := r.Reconcile(EntityState{}, monoprice.State{Zone: 11, Mute: true, Source: 5}, nil)

		assert.True(t, got.Known)
		assert.True(t, got.Muted)
		assert.Empty(t, got.Source)
	})

	t.Run("failed read keeps previous state", func(t *testing.T) {
		previous := EntityState{Known: true, On: true, Volume: 0.25, VolumeRaw: 9, Source: "CD", SoundMode: SoundModeLowBass}

		got := r.Reconcile(previous, monoprice.State{Power: false, Volume: 38}, errors.New("serial failure"))
		assert.Equal(t, previous, got)
	})

	t.Run("failed first read is fully unknown", func(t *testing.T) {
		got := r.Reconcile(EntityState{}, monoprice.State{}, monoprice.ErrUnknownState)
		assert.Equal(t, EntityState{}, got)
	})

	t.Run("sound mode survives a poll", func(t *testing.T) {
		previous := EntityState{Known: true, SoundMode: SoundModeHighBass}

		got := r.Reconcile(previous, monoprice.State{Bass: 12, Source: 1}, nil)
		assert.Equal(t, SoundModeHighBass, got.SoundMode)
		assert.Equal(t, "CD", got.Source)
	})

	t.Run("volume out of range is not clamped", func(t *testing.T) {
		got := r.Reconcile(EntityState{}, monoprice.State{Volume: 57}, nil)
		assert.InDelta(t, 1.5, got.Volume, 1e-9)
	})
}

func TestReconciler_VolumeRoundTrip(t *testing.T) {
	catalog := testCatalog(t)
	r := NewReconciler(catalog, DefaultMaxVolume)
	tr := NewTranslator(catalog, DefaultMaxVolume)

	for raw := 0; raw <= DefaultMaxVolume; raw++ {
		state := r.Reconcile(EntityState{}, monoprice.State{Volume: raw}, nil)
		assert.Equal(t, raw, tr.VolumeToRaw(state.Volume), "raw %d", raw)
	}
}

func TestReconciler_MaxVolume(t *testing.T) {
	r := NewReconciler(testCatalog(t), 80)
	assert.InDelta(t, 0.5, r.Fraction(40), 1e-9)

	r = NewReconciler(testCatalog(t), 0)
	assert.InDelta(t, 1.0, r.Fraction(DefaultMaxVolume), 1e-9)
}
