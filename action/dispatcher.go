// Package action applies bulk actions to a set of zones.
package action

import (
	"context"
	"errors"
	"fmt"

	monoprice "github.com/abates/monoprice-hub"
	"github.com/abates/monoprice-hub/zone"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/discard"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrUnknownZone   = errors.New("unknown zone")
)

type Name string

const (
	Snapshot   Name = "snapshot"
	Restore    Name = "restore"
	SetBalance Name = "set_balance"
	SetBass    Name = "set_bass"
	SetTreble  Name = "set_treble"
)

// Names lists the closed set of actions.
func Names() []Name {
	return []Name{Snapshot, Restore, SetBalance, SetBass, SetTreble}
}

type Params struct {
	Level *int `json:"level,omitempty"`
}

func (p Params) level(fallback int) int {
	if p.Level == nil {
		return fallback
	}
	return *p.Level
}

// Result is the outcome of an action on one zone. Applied is false for a
// restore without snapshot.
type Result struct {
	Zone    monoprice.ZoneID `json:"zone"`
	Applied bool             `json:"applied"`
	Err     error            `json:"-"`
}

// Lookup resolves a zone entity by id.
type Lookup func(monoprice.ZoneID) (*zone.Zone, bool)

// Observer is told about every per-zone outcome.
type Observer func(name Name, result Result)

type handler func(context.Context, *zone.Zone, Params) (bool, error)

var handlers = map[Name]handler{
	Snapshot: func(ctx context.Context, z *zone.Zone, _ Params) (bool, error) {
		return true, z.Snapshot(ctx)
	},
	Restore: func(ctx context.Context, z *zone.Zone, _ Params) (bool, error) {
		return z.Restore(ctx)
	},
	SetBalance: func(ctx context.Context, z *zone.Zone, p Params) (bool, error) {
		return true, z.SetBalance(ctx, p.level(0))
	},
	SetBass: func(ctx context.Context, z *zone.Zone, p Params) (bool, error) {
		return true, z.SetBass(ctx, p.level(5))
	},
	SetTreble: func(ctx context.Context, z *zone.Zone, p Params) (bool, error) {
		return true, z.SetTreble(ctx, p.level(5))
	},
}

type Dispatcher struct {
	lookup   Lookup
	observer Observer
	logger   logwrap.Logger
}

func NewDispatcher(lookup Lookup, observer Observer, logger *logwrap.Logger) *Dispatcher {
	d := &Dispatcher{lookup: lookup, observer: observer, logger: logwrap.New(discard.Discard())}
	if logger != nil {
		d.logger = *logger
	}
	return d
}

// Dispatch applies an action to every target independently. A failing zone
// is reported in its Result and does not stop the others.
func (d *Dispatcher) Dispatch(ctx context.Context, targets []monoprice.ZoneID, name Name, params Params) ([]Result, error) {
	if len(targets) == 0 {
		return nil, nil
	}

	h, found := handlers[name]
	if !found {
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, string(name))
	}

	ctx, end := d.logger.Segment(ctx, "Dispatching action.", logwrap.Datum("action", string(name)), logwrap.Datum("zones", len(targets)))
	defer end()

	results := make([]Result, 0, len(targets))
	for _, id := range targets {
		result := Result{Zone: id}
		if z, ok := d.lookup(id); ok {
			result.Applied, result.Err = h(ctx, z, params)
		} else {
			result.Err = fmt.Errorf("%w %d", ErrUnknownZone, id)
		}
		if result.Err != nil {
			result.Applied = false
			d.logger.LogWarn(ctx, "Action failed for zone.", logwrap.Datum("zone", int(id)), logwrap.Err(result.Err))
		}

		if d.observer != nil {
			d.observer(name, result)
		}
		results = append(results, result)
	}
	return results, nil
}
