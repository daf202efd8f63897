package monoprice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shimmeringbee/retry"
)

// QueryTimeout bounds a single status query attempt.
const QueryTimeout = 2 * time.Second

// StatusRetries is the number of status query attempts before a zone is
// considered unreachable.
const StatusRetries = 3

type ZoneID int

// Bank is the amplifier unit a zone belongs to (1x, 2x or 3x).
func (id ZoneID) Bank() int {
	return int(id) / 10
}

// Valid reports whether id addresses a real zone. Bank base ids (10, 20, 30)
// are reserved.
func (id ZoneID) Valid() bool {
	bank, pos := int(id)/10, int(id)%10
	return bank >= 1 && bank <= 3 && pos >= 1 && pos <= 6
}

// ZoneIDs lists every addressable zone of a three unit installation.
func ZoneIDs() []ZoneID {
	ids := []ZoneID{}
	for i := 1; i < 4; i++ {
		for j := 1; j < 7; j++ {
			ids = append(ids, ZoneID(10*i+j))
		}
	}
	return ids
}

func (amp *Amplifier) queryState(ctx context.Context, zone ZoneID) (state State, err error) {
	resp, err := amp.sendQuery(ctx, zone)
	if err == nil {
		err = state.Unmarshal(resp)
	} else if errors.Is(err, io.EOF) {
		err = ErrInvalidZone
	}
	return
}

// ZoneStatus queries the complete status of a zone. Zones that never answer
// are reported as ErrUnknownState.
func (amp *Amplifier) ZoneStatus(ctx context.Context, zone ZoneID) (state State, err error) {
	if !zone.Valid() {
		return state, ErrInvalidZone
	}

	var closed error
	err = retry.Retry(ctx, QueryTimeout, StatusRetries, func(ctx context.Context) (err error) {
		state, err = amp.queryState(ctx, zone)
		if errors.Is(err, ErrClosed) {
			closed = err
			return nil
		}
		if err == nil && state.Zone != zone {
			err = fmt.Errorf("%w: got status for zone %d", ErrInvalidResponse, state.Zone)
		}
		return err
	})
	if closed != nil {
		return state, closed
	}
	if errors.Is(err, ErrInvalidZone) {
		err = ErrUnknownState
	}
	return
}

func (amp *Amplifier) SetPower(ctx context.Context, zone ZoneID, on bool) error {
	return amp.sendCmd(ctx, zone, SetPower, boolInt(on))
}

func (amp *Amplifier) SetMute(ctx context.Context, zone ZoneID, mute bool) error {
	return amp.sendCmd(ctx, zone, SetMute, boolInt(mute))
}

func (amp *Amplifier) SetVolume(ctx context.Context, zone ZoneID, level int) error {
	return amp.sendCmd(ctx, zone, SetVolume, level)
}

func (amp *Amplifier) SetTreble(ctx context.Context, zone ZoneID, level int) error {
	return amp.sendCmd(ctx, zone, SetTreble, level)
}

func (amp *Amplifier) SetBass(ctx context.Context, zone ZoneID, level int) error {
	return amp.sendCmd(ctx, zone, SetBass, level)
}

func (amp *Amplifier) SetBalance(ctx context.Context, zone ZoneID, level int) error {
	return amp.sendCmd(ctx, zone, SetBalance, level)
}

func (amp *Amplifier) SetSource(ctx context.Context, zone ZoneID, source int) error {
	return amp.sendCmd(ctx, zone, SetSource, source)
}

// Restore re-applies a previously read state to a zone.
func (amp *Amplifier) Restore(ctx context.Context, zone ZoneID, state State) (err error) {
	for _, cmd := range []struct {
		cmd Command
		arg int
	}{
		{SetPower, boolInt(state.Power)},
		{SetMute, boolInt(state.Mute)},
		{SetVolume, state.Volume},
		{SetTreble, state.Treble},
		{SetBass, state.Bass},
		{SetBalance, state.Balance},
		{SetSource, state.Source},
	} {
		err = amp.sendCmd(ctx, zone, cmd.cmd, cmd.arg)
		if err != nil {
			break
		}
	}
	return err
}
