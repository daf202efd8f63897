package zone

import (
	"errors"
	"fmt"
	"math"

	"github.com/abates/monoprice-hub/source"
)

const (
	MaxBalance = 21
	MaxTone    = 15
)

var ErrValidation = errors.New("value out of range")

type Direction int

const (
	Up Direction = iota + 1
	Down
)

type Translator struct {
	catalog   *source.Catalog
	maxVolume int
}

func NewTranslator(catalog *source.Catalog, maxVolume int) *Translator {
	if maxVolume <= 0 {
		maxVolume = DefaultMaxVolume
	}
	return &Translator{catalog: catalog, maxVolume: maxVolume}
}

func (t *Translator) ResolveSource(name string) (int, bool) {
	return t.catalog.Index(name)
}

func (t *Translator) SourceNames() []string {
	return t.catalog.Names()
}

// VolumeToRaw converts a 0..1 fraction to amplifier units. Callers constrain
// the fraction.
func (t *Translator) VolumeToRaw(f float64) int {
	return int(math.Round(f * float64(t.maxVolume)))
}

// StepVolume returns the raw volume one step away from current. There is
// nothing to step from until the zone has been read once.
func (t *Translator) StepVolume(current EntityState, dir Direction) (int, bool) {
	if !current.Known {
		return 0, false
	}
	switch dir {
	case Up:
		return min(current.VolumeRaw+1, t.maxVolume), true
	case Down:
		return max(current.VolumeRaw-1, 0), true
	}
	return 0, false
}

func ValidateBalance(v int) (int, error) {
	return validate("balance", v, MaxBalance)
}

func ValidateBass(v int) (int, error) {
	return validate("bass", v, MaxTone)
}

func ValidateTreble(v int) (int, error) {
	return validate("treble", v, MaxTone)
}

func validate(name string, v, upper int) (int, error) {
	if v < 0 || v > upper {
		return 0, fmt.Errorf("%w: %s %d not in [0,%d]", ErrValidation, name, v, upper)
	}
	return v, nil
}
