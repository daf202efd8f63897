package monoprice

import (
	"fmt"
)

type cmdReq struct {
	cmd   string
	query bool
	resp  chan<- cmdResp
}

type cmdResp struct {
	value string
	err   error
}

type Command string

// MaxVolume is the highest raw volume the amplifier accepts.
const MaxVolume = 38

type commandRange struct {
	min, max int
}

func (c Command) format(v int) (string, error) {
	r, found := commands[c]
	if !found {
		return "", fmt.Errorf("%w %q", ErrCommand, string(c))
	}
	if v < r.min || v > r.max {
		return "", fmt.Errorf("%w: %s value %d outside [%d,%d]", ErrCommand, string(c), v, r.min, r.max)
	}
	return intMarshaler(v)(), nil
}

var (
	SetPower   Command = "PR"
	SetMute    Command = "MU"
	SetVolume  Command = "VO"
	SetTreble  Command = "TR"
	SetBass    Command = "BS"
	SetBalance Command = "BL"
	SetSource  Command = "CH"

	commands = map[Command]commandRange{
		SetPower:   {0, 1},
		SetMute:    {0, 1},
		SetVolume:  {0, MaxVolume},
		SetTreble:  {0, 15},
		SetBass:    {0, 15},
		SetBalance: {0, 21},
		SetSource:  {1, 6},
	}
)
