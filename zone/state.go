package zone

import (
	"errors"

	monoprice "github.com/abates/monoprice-hub"
	"github.com/abates/monoprice-hub/source"
)

// DefaultMaxVolume is the raw volume ceiling of the Monoprice 6-zone amplifier.
const DefaultMaxVolume = monoprice.MaxVolume

var ErrRead = errors.New("zone status read failed")

// EntityState is the presentation-facing state of a zone. The zero value is
// the fully unknown state.
type EntityState struct {
	Known     bool    `json:"known"`
	On        bool    `json:"on"`
	Volume    float64 `json:"volume"`
	VolumeRaw int     `json:"volume_raw"`
	Muted     bool    `json:"muted"`
	// Source is empty when the amplifier reports an unconfigured input.
	Source string `json:"source,omitempty"`
	// SoundMode only lives in the entity; the amplifier stores the bass level.
	SoundMode string `json:"sound_mode,omitempty"`
}

type Reconciler struct {
	catalog   *source.Catalog
	maxVolume int
}

func NewReconciler(catalog *source.Catalog, maxVolume int) *Reconciler {
	if maxVolume <= 0 {
		maxVolume = DefaultMaxVolume
	}
	return &Reconciler{catalog: catalog, maxVolume: maxVolume}
}

// Reconcile derives the next entity state from a status read. A failed read
// keeps previous as is.
func (r *Reconciler) Reconcile(previous EntityState, status monoprice.State, err error) EntityState {
	if err != nil {
		return previous
	}

	name, _ := r.catalog.Name(status.Source)
	return EntityState{
		Known:     true,
		On:        status.Power,
		Volume:    r.Fraction(status.Volume),
		VolumeRaw: status.Volume,
		Muted:     status.Mute,
		Source:    name,
		SoundMode: previous.SoundMode,
	}
}

// Fraction scales a raw volume to 0..1. Out of range values are not clamped.
func (r *Reconciler) Fraction(raw int) float64 {
	return float64(raw) / float64(r.maxVolume)
}
