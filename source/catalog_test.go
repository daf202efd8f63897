package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	t.Run("maps indices both ways", func(t *testing.T) {
		c, err := Build(map[string]string{"1": "CD", "2": "Tuner", "6": "Chromecast"})
		require.NoError(t, err)

		for _, index := range []int{1, 2, 6} {
			name, ok := c.Name(index)
			require.True(t, ok)

			back, ok := c.Index(name)
			require.True(t, ok)
			assert.Equal(t, index, back)
		}
	})

	t.Run("orders names by index", func(t *testing.T) {
		c, err := Build(map[string]string{"5": "Aux", "1": "Zebra", "3": "Mid"})
		require.NoError(t, err)

		assert.Equal(t, []string{"Zebra", "Mid", "Aux"}, c.Names())
		assert.Equal(t, 3, c.Len())
	})

	t.Run("names are a copy", func(t *testing.T) {
		c, err := Build(map[string]string{"1": "CD"})
		require.NoError(t, err)

		names := c.Names()
		names[0] = "changed"
		assert.Equal(t, []string{"CD"}, c.Names())
	})

	t.Run("unconfigured index is unknown", func(t *testing.T) {
		c, err := Build(map[string]string{"1": "CD", "2": "Tuner"})
		require.NoError(t, err)

		for _, index := range []int{0, 3, 4, 5, 6, -1} {
			_, ok := c.Name(index)
			assert.False(t, ok, "index %d", index)
		}

		_, ok := c.Index("Phono")
		assert.False(t, ok)
	})

	t.Run("empty mapping is valid", func(t *testing.T) {
		c, err := Build(nil)
		require.NoError(t, err)
		assert.Empty(t, c.Names())
	})

	t.Run("tolerates padded keys", func(t *testing.T) {
		c, err := Build(map[string]string{" 4 ": "Phono"})
		require.NoError(t, err)

		name, ok := c.Name(4)
		assert.True(t, ok)
		assert.Equal(t, "Phono", name)
	})
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]string
	}{
		{"non numeric key", map[string]string{"one": "CD"}},
		{"duplicate name", map[string]string{"1": "CD", "2": "CD"}},
		{"empty name", map[string]string{"1": ""}},
		{"duplicate index", map[string]string{"1": "CD", "01": "Tuner"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Build(tt.raw)
			assert.ErrorIs(t, err, ErrConfig)
			assert.Nil(t, c)
		})
	}
}
