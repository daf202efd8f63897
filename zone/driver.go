// Package zone turns raw amplifier status into entity state and translates
// entity operations back into driver calls.
package zone

import (
	"context"

	monoprice "github.com/abates/monoprice-hub"
)

// Driver is the channel to the amplifier hardware. Calls may block and must
// not be issued concurrently for one installation; *monoprice.Amplifier
// satisfies it.
type Driver interface {
	ZoneStatus(ctx context.Context, zone monoprice.ZoneID) (monoprice.State, error)
	SetPower(ctx context.Context, zone monoprice.ZoneID, on bool) error
	SetMute(ctx context.Context, zone monoprice.ZoneID, mute bool) error
	SetVolume(ctx context.Context, zone monoprice.ZoneID, level int) error
	SetTreble(ctx context.Context, zone monoprice.ZoneID, level int) error
	SetBass(ctx context.Context, zone monoprice.ZoneID, level int) error
	SetBalance(ctx context.Context, zone monoprice.ZoneID, level int) error
	SetSource(ctx context.Context, zone monoprice.ZoneID, source int) error
	Restore(ctx context.Context, zone monoprice.ZoneID, state monoprice.State) error
}

var _ Driver = (*monoprice.Amplifier)(nil)
