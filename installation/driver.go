package installation

import (
	"context"
	"time"

	monoprice "github.com/abates/monoprice-hub"
	"github.com/abates/monoprice-hub/metrics"
	"github.com/abates/monoprice-hub/zone"
	"golang.org/x/sync/semaphore"
)

// serialDriver lets one driver operation run at a time. The amplifier only
// orders single frames, while a restore or a status query with retries spans
// several of them.
type serialDriver struct {
	driver zone.Driver
	sem    *semaphore.Weighted
}

var _ zone.Driver = (*serialDriver)(nil)

func newSerialDriver(driver zone.Driver) *serialDriver {
	return &serialDriver{driver: driver, sem: semaphore.NewWeighted(1)}
}

func (d *serialDriver) do(ctx context.Context, command string, fn func(context.Context) error) error {
	waitStart := time.Now()
	if err := d.sem.Acquire(ctx, 1); err != nil {
		metrics.ObserveCommand(command, err, time.Since(waitStart))
		return err
	}
	defer d.sem.Release(1)
	metrics.ObserveLockWait(time.Since(waitStart))

	start := time.Now()
	err := fn(ctx)
	metrics.ObserveCommand(command, err, time.Since(start))
	return err
}

func (d *serialDriver) ZoneStatus(ctx context.Context, id monoprice.ZoneID) (state monoprice.State, err error) {
	err = d.do(ctx, "status", func(ctx context.Context) (err error) {
		state, err = d.driver.ZoneStatus(ctx, id)
		return err
	})
	return state, err
}

func (d *serialDriver) SetPower(ctx context.Context, id monoprice.ZoneID, on bool) error {
	return d.do(ctx, "power", func(ctx context.Context) error { return d.driver.SetPower(ctx, id, on) })
}

func (d *serialDriver) SetMute(ctx context.Context, id monoprice.ZoneID, mute bool) error {
	return d.do(ctx, "mute", func(ctx context.Context) error { return d.driver.SetMute(ctx, id, mute) })
}

func (d *serialDriver) SetVolume(ctx context.Context, id monoprice.ZoneID, level int) error {
	return d.do(ctx, "volume", func(ctx context.Context) error { return d.driver.SetVolume(ctx, id, level) })
}

func (d *serialDriver) SetTreble(ctx context.Context, id monoprice.ZoneID, level int) error {
	return d.do(ctx, "treble", func(ctx context.Context) error { return d.driver.SetTreble(ctx, id, level) })
}

func (d *serialDriver) SetBass(ctx context.Context, id monoprice.ZoneID, level int) error {
	return d.do(ctx, "bass", func(ctx context.Context) error { return d.driver.SetBass(ctx, id, level) })
}

func (d *serialDriver) SetBalance(ctx context.Context, id monoprice.ZoneID, level int) error {
	return d.do(ctx, "balance", func(ctx context.Context) error { return d.driver.SetBalance(ctx, id, level) })
}

func (d *serialDriver) SetSource(ctx context.Context, id monoprice.ZoneID, source int) error {
	return d.do(ctx, "source", func(ctx context.Context) error { return d.driver.SetSource(ctx, id, source) })
}

func (d *serialDriver) Restore(ctx context.Context, id monoprice.ZoneID, state monoprice.State) error {
	return d.do(ctx, "restore", func(ctx context.Context) error { return d.driver.Restore(ctx, id, state) })
}
