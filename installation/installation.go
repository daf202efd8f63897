// Package installation assembles everything one amplifier needs: the source
// catalog, the serialized driver, the zone entities and the action
// dispatcher.
package installation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	monoprice "github.com/abates/monoprice-hub"
	"github.com/abates/monoprice-hub/action"
	"github.com/abates/monoprice-hub/metrics"
	"github.com/abates/monoprice-hub/registry"
	"github.com/abates/monoprice-hub/source"
	"github.com/abates/monoprice-hub/zone"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/discard"
)

// DefaultNamespace prefixes unique ids when no registry is configured.
const DefaultNamespace = "monoprice"

var ErrUnknownZone = errors.New("unknown zone")

type Options struct {
	Driver    zone.Driver
	Sources   map[string]string
	MaxVolume int
	// Registry persists the first-run probe. When nil every start probes.
	Registry *registry.Registry
	Logger   *logwrap.Logger
}

type Installation struct {
	id         string
	logger     logwrap.Logger
	catalog    *source.Catalog
	registry   *registry.Registry
	dispatcher *action.Dispatcher

	ids     []monoprice.ZoneID
	zones   map[monoprice.ZoneID]*zone.Zone
	selects map[monoprice.ZoneID]*zone.SourceSelect

	mu        sync.RWMutex
	enabled   map[monoprice.ZoneID]bool
	listeners []zone.Listener
}

// New builds the installation. A malformed source table is fatal. On first
// run every zone is probed once to decide which ones are enabled.
func New(ctx context.Context, opts Options) (*Installation, error) {
	if opts.Driver == nil {
		return nil, errors.New("installation requires a driver")
	}

	catalog, err := source.Build(opts.Sources)
	if err != nil {
		return nil, err
	}

	inst := &Installation{
		id:       DefaultNamespace,
		logger:   logwrap.New(discard.Discard()),
		catalog:  catalog,
		registry: opts.Registry,
		ids:      monoprice.ZoneIDs(),
		zones:    map[monoprice.ZoneID]*zone.Zone{},
		selects:  map[monoprice.ZoneID]*zone.SourceSelect{},
		enabled:  map[monoprice.ZoneID]bool{},
	}
	if opts.Logger != nil {
		inst.logger = *opts.Logger
	}

	if inst.registry != nil {
		if inst.id, err = inst.registry.InstallationID(); err != nil {
			return nil, err
		}
	}

	driver := newSerialDriver(opts.Driver)
	reconciler := zone.NewReconciler(catalog, opts.MaxVolume)
	translator := zone.NewTranslator(catalog, opts.MaxVolume)
	snapshots := zone.NewSnapshots()

	for _, id := range inst.ids {
		z := zone.New(zone.Options{
			ID:         id,
			Namespace:  inst.id,
			Driver:     driver,
			Reconciler: reconciler,
			Translator: translator,
			Snapshots:  snapshots,
			Logger:     &inst.logger,
			Listener:   inst.publish,
		})
		inst.zones[id] = z
		inst.selects[id] = zone.NewSourceSelect(z, &inst.logger)
	}

	inst.dispatcher = action.NewDispatcher(inst.Zone, func(name action.Name, result action.Result) {
		metrics.ObserveAction(string(name), result.Err)
	}, &inst.logger)

	if err := inst.loadEnabled(ctx); err != nil {
		return nil, err
	}
	return inst, nil
}

func (inst *Installation) loadEnabled(ctx context.Context) error {
	if inst.registry != nil {
		records, err := inst.registry.Zones()
		if err != nil {
			return err
		}
		if len(records) > 0 {
			for _, rec := range records {
				inst.enabled[monoprice.ZoneID(rec.Zone)] = rec.Enabled
			}
			return nil
		}
	}

	ctx, end := inst.logger.Segment(ctx, "Probing zones.", logwrap.Datum("zones", len(inst.ids)))
	defer end()

	records := make([]registry.ZoneRecord, 0, len(inst.ids))
	for _, id := range inst.ids {
		probeOK := inst.zones[id].Update(ctx) == nil
		enabled := zone.EnabledByDefault(id, probeOK)
		inst.enabled[id] = enabled
		records = append(records, registry.ZoneRecord{Zone: int(id), Enabled: enabled, ProbeOK: probeOK})
		inst.logger.LogDebug(ctx, "Probed zone.", logwrap.Datum("zone", int(id)), logwrap.Datum("probeOK", probeOK), logwrap.Datum("enabled", enabled))
	}

	if inst.registry != nil {
		return inst.registry.SaveZones(records)
	}
	return nil
}

// ID namespaces the unique ids of every entity of the installation.
func (inst *Installation) ID() string {
	return inst.id
}

func (inst *Installation) Catalog() *source.Catalog {
	return inst.catalog
}

// Zone returns an enabled zone entity.
func (inst *Installation) Zone(id monoprice.ZoneID) (*zone.Zone, bool) {
	if !inst.Enabled(id) {
		return nil, false
	}
	return inst.zones[id], true
}

// Select returns the source select entity of an enabled zone.
func (inst *Installation) Select(id monoprice.ZoneID) (*zone.SourceSelect, bool) {
	if !inst.Enabled(id) {
		return nil, false
	}
	return inst.selects[id], true
}

// Zones lists the enabled zone entities by ascending id.
func (inst *Installation) Zones() []*zone.Zone {
	zones := []*zone.Zone{}
	for _, id := range inst.ids {
		if z, ok := inst.Zone(id); ok {
			zones = append(zones, z)
		}
	}
	return zones
}

func (inst *Installation) Selects() []*zone.SourceSelect {
	selects := []*zone.SourceSelect{}
	for _, id := range inst.ids {
		if s, ok := inst.Select(id); ok {
			selects = append(selects, s)
		}
	}
	return selects
}

func (inst *Installation) Enabled(id monoprice.ZoneID) bool {
	inst.mu.RLock()
	defer inst.mu.RUnlock()
	return inst.enabled[id]
}

// SetEnabled enables or disables a zone entity and persists the choice.
func (inst *Installation) SetEnabled(id monoprice.ZoneID, enabled bool) error {
	if _, found := inst.zones[id]; !found {
		return fmt.Errorf("%w %d", ErrUnknownZone, id)
	}
	if inst.registry != nil {
		if err := inst.registry.SetEnabled(int(id), enabled); err != nil {
			return err
		}
	}

	inst.mu.Lock()
	inst.enabled[id] = enabled
	inst.mu.Unlock()
	return nil
}

func (inst *Installation) Dispatcher() *action.Dispatcher {
	return inst.dispatcher
}

// Subscribe registers fn for every zone event.
func (inst *Installation) Subscribe(fn zone.Listener) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.listeners = append(inst.listeners, fn)
}

func (inst *Installation) publish(event zone.Event) {
	inst.mu.RLock()
	listeners := append([]zone.Listener(nil), inst.listeners...)
	inst.mu.RUnlock()

	for _, fn := range listeners {
		fn(event)
	}
}

// Poll refreshes every enabled zone in turn and returns how many reads
// failed. Failed zones keep their previous state.
func (inst *Installation) Poll(ctx context.Context) (failed int) {
	for _, z := range inst.Zones() {
		if ctx.Err() != nil {
			return failed
		}
		err := z.Update(ctx)
		metrics.ObservePoll(int(z.ID()), err)
		if err != nil {
			failed++
		}
	}
	return failed
}
