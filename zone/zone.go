package zone

import (
	"context"
	"fmt"
	"sync"

	monoprice "github.com/abates/monoprice-hub"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/discard"
)

// Event is published whenever the presented state of a zone changes.
type Event struct {
	Zone      monoprice.ZoneID `json:"zone"`
	Available bool             `json:"available"`
	State     EntityState      `json:"state"`
}

type Listener func(Event)

type Options struct {
	ID         monoprice.ZoneID
	Namespace  string
	Driver     Driver
	Reconciler *Reconciler
	Translator *Translator
	Snapshots  *Snapshots
	// Logger defaults to discarding output when nil.
	Logger   *logwrap.Logger
	Listener Listener
}

// Zone is the media player entity of one amplifier zone.
type Zone struct {
	id         monoprice.ZoneID
	namespace  string
	driver     Driver
	reconciler *Reconciler
	translator *Translator
	snapshots  *Snapshots
	logger     logwrap.Logger
	listener   Listener

	// op orders reads against writes so a reconciled status is never older
	// than a completed write.
	op sync.Mutex

	mu        sync.Mutex
	state     EntityState
	available bool
}

func New(opts Options) *Zone {
	z := &Zone{
		id:         opts.ID,
		namespace:  opts.Namespace,
		driver:     opts.Driver,
		reconciler: opts.Reconciler,
		translator: opts.Translator,
		snapshots:  opts.Snapshots,
		listener:   opts.Listener,
		available:  true,
	}
	if z.snapshots == nil {
		z.snapshots = NewSnapshots()
	}
	if opts.Logger != nil {
		z.logger = *opts.Logger
	} else {
		z.logger = logwrap.New(discard.Discard())
	}
	return z
}

func (z *Zone) ID() monoprice.ZoneID {
	return z.id
}

func (z *Zone) UniqueID() string {
	return fmt.Sprintf("%s_%d", z.namespace, z.id)
}

func (z *Zone) Name() string {
	return fmt.Sprintf("Zone %d", z.id)
}

func (z *Zone) State() EntityState {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.state
}

// Available reports whether the last status read succeeded.
func (z *Zone) Available() bool {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.available
}

func (z *Zone) SourceList() []string {
	return z.translator.SourceNames()
}

func (z *Zone) SoundModeList() []string {
	return SoundModes()
}

// Update reads the zone and reconciles its state. On failure the previous
// state is kept and the read error is returned for the caller to record.
func (z *Zone) Update(ctx context.Context) error {
	z.op.Lock()
	defer z.op.Unlock()

	status, err := z.driver.ZoneStatus(ctx, z.id)

	z.mu.Lock()
	z.state = z.reconciler.Reconcile(z.state, status, err)
	wasAvailable := z.available
	z.available = err == nil
	z.mu.Unlock()

	if err != nil {
		z.logger.LogWarn(ctx, "Could not update zone.", z.datum(), logwrap.Err(err))
		if wasAvailable {
			z.notify()
		}
		return fmt.Errorf("%w: zone %d: %w", ErrRead, z.id, err)
	}

	z.notify()
	return nil
}

func (z *Zone) TurnOn(ctx context.Context) error {
	return z.setPower(ctx, true)
}

func (z *Zone) TurnOff(ctx context.Context) error {
	return z.setPower(ctx, false)
}

func (z *Zone) setPower(ctx context.Context, on bool) error {
	z.op.Lock()
	defer z.op.Unlock()

	if err := z.driver.SetPower(ctx, z.id, on); err != nil {
		return err
	}
	z.apply(func(s *EntityState) { s.On = on })
	return nil
}

func (z *Zone) Mute(ctx context.Context, mute bool) error {
	z.op.Lock()
	defer z.op.Unlock()

	if err := z.driver.SetMute(ctx, z.id, mute); err != nil {
		return err
	}
	z.apply(func(s *EntityState) { s.Muted = mute })
	return nil
}

// SetVolume sets the volume from a 0..1 fraction.
func (z *Zone) SetVolume(ctx context.Context, fraction float64) error {
	z.op.Lock()
	defer z.op.Unlock()

	return z.setVolumeRaw(ctx, z.translator.VolumeToRaw(fraction))
}

func (z *Zone) VolumeUp(ctx context.Context) error {
	return z.stepVolume(ctx, Up)
}

func (z *Zone) VolumeDown(ctx context.Context) error {
	return z.stepVolume(ctx, Down)
}

func (z *Zone) stepVolume(ctx context.Context, dir Direction) error {
	z.op.Lock()
	defer z.op.Unlock()

	raw, ok := z.translator.StepVolume(z.State(), dir)
	if !ok {
		z.logger.LogDebug(ctx, "Ignoring volume step, zone volume is unknown.", z.datum())
		return nil
	}
	return z.setVolumeRaw(ctx, raw)
}

func (z *Zone) setVolumeRaw(ctx context.Context, raw int) error {
	if err := z.driver.SetVolume(ctx, z.id, raw); err != nil {
		return err
	}
	z.apply(func(s *EntityState) {
		s.VolumeRaw = raw
		s.Volume = z.reconciler.Fraction(raw)
	})
	return nil
}

// SelectSource switches input by display name. Unknown names are ignored.
func (z *Zone) SelectSource(ctx context.Context, name string) error {
	index, ok := z.translator.ResolveSource(name)
	if !ok {
		z.logger.LogDebug(ctx, "Ignoring unknown source.", z.datum(), logwrap.Datum("source", name))
		return nil
	}

	z.op.Lock()
	defer z.op.Unlock()

	if err := z.driver.SetSource(ctx, z.id, index); err != nil {
		return err
	}
	z.apply(func(s *EntityState) { s.Source = name })
	return nil
}

// SelectSoundMode applies the bass preset of a sound mode. Unknown names are
// ignored.
func (z *Zone) SelectSoundMode(ctx context.Context, name string) error {
	bass, ok := SoundModeBass(name)
	if !ok {
		z.logger.LogDebug(ctx, "Ignoring unknown sound mode.", z.datum(), logwrap.Datum("soundMode", name))
		return nil
	}

	z.op.Lock()
	defer z.op.Unlock()

	if err := z.driver.SetBass(ctx, z.id, bass); err != nil {
		return err
	}

	z.mu.Lock()
	z.state.SoundMode = name
	z.mu.Unlock()
	z.notify()
	return nil
}

func (z *Zone) SetBalance(ctx context.Context, level int) error {
	level, err := ValidateBalance(level)
	if err != nil {
		return err
	}
	return z.driver.SetBalance(ctx, z.id, level)
}

func (z *Zone) SetBass(ctx context.Context, level int) error {
	level, err := ValidateBass(level)
	if err != nil {
		return err
	}
	return z.driver.SetBass(ctx, z.id, level)
}

func (z *Zone) SetTreble(ctx context.Context, level int) error {
	level, err := ValidateTreble(level)
	if err != nil {
		return err
	}
	return z.driver.SetTreble(ctx, z.id, level)
}

func (z *Zone) Snapshot(ctx context.Context) error {
	return z.snapshots.Take(ctx, z.driver, z.id)
}

// Restore re-applies the last snapshot and refreshes the zone right away. It
// reports false when no snapshot has been taken.
func (z *Zone) Restore(ctx context.Context) (bool, error) {
	z.op.Lock()
	restored, err := z.snapshots.Restore(ctx, z.driver, z.id)
	if err == nil && restored {
		// the restored bass level no longer matches any selected sound mode
		z.mu.Lock()
		z.state.SoundMode = ""
		z.mu.Unlock()
	}
	z.op.Unlock()

	if err != nil || !restored {
		return restored, err
	}

	if err := z.Update(ctx); err != nil {
		z.logger.LogWarn(ctx, "Restored zone but could not refresh state.", z.datum(), logwrap.Err(err))
	}
	return true, nil
}

// apply updates a known state after a successful write, so presentation does
// not wait for the next poll. Callers hold op.
func (z *Zone) apply(fn func(*EntityState)) {
	z.mu.Lock()
	known := z.state.Known
	if known {
		fn(&z.state)
	}
	z.mu.Unlock()

	if known {
		z.notify()
	}
}

func (z *Zone) datum() logwrap.Option {
	return logwrap.Datum("zone", int(z.id))
}

func (z *Zone) notify() {
	if z.listener == nil {
		return
	}

	z.mu.Lock()
	event := Event{Zone: z.id, Available: z.available, State: z.state}
	z.mu.Unlock()

	z.listener(event)
}
