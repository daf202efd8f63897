package monoprice

import (
	"fmt"
	"io"
	"strings"
)

// State is the complete status of one zone as reported by the amplifier.
type State struct {
	Zone         ZoneID `json:"zone"`
	PA           bool   `json:"pa"`
	Power        bool   `json:"power"`
	Mute         bool   `json:"mute"`
	DoNotDisturb bool   `json:"do_not_disturb"`
	Volume       int    `json:"volume"`
	Treble       int    `json:"treble"`
	Bass         int    `json:"bass"`
	Balance      int    `json:"balance"`
	Source       int    `json:"source"`
	KeyPad       bool   `json:"keypad"`
}

func (state *State) Unmarshal(str string) (err error) {
	zone := 0
	unmarshalers := []unmarshaler{
		intUnmarshaler(&zone),
		boolUnmarshaler(&state.PA),
		boolUnmarshaler(&state.Power),
		boolUnmarshaler(&state.Mute),
		boolUnmarshaler(&state.DoNotDisturb),
		intUnmarshaler(&state.Volume),
		intUnmarshaler(&state.Treble),
		intUnmarshaler(&state.Bass),
		intUnmarshaler(&state.Balance),
		intUnmarshaler(&state.Source),
		boolUnmarshaler(&state.KeyPad),
	}

	for err == nil {
		if len(str) < 2 {
			err = io.ErrUnexpectedEOF
		} else if len(unmarshalers) == 0 {
			err = fmt.Errorf("%w trailing %q", ErrTooLong, str)
		} else {
			err = unmarshalers[0](str[0:2])
			if err == nil {
				str = str[2:]
				unmarshalers = unmarshalers[1:]
				if len(unmarshalers) == 0 && len(str) == 0 {
					break
				}
			}
		}
	}
	state.Zone = ZoneID(zone)
	return err
}

func (state *State) Marshal() (string, error) {
	marshalers := []marshaler{
		intMarshaler(int(state.Zone)),
		boolMarshaler(state.PA),
		boolMarshaler(state.Power),
		boolMarshaler(state.Mute),
		boolMarshaler(state.DoNotDisturb),
		intMarshaler(state.Volume),
		intMarshaler(state.Treble),
		intMarshaler(state.Bass),
		intMarshaler(state.Balance),
		intMarshaler(state.Source),
		boolMarshaler(state.KeyPad),
	}

	builder := &strings.Builder{}
	for _, marshaler := range marshalers {
		builder.WriteString(marshaler())
	}
	return builder.String(), nil
}
