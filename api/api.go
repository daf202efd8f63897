// Package api serves the zone entities, source selects and bulk actions of an
// installation over HTTP, and streams zone events over a websocket.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	monoprice "github.com/abates/monoprice-hub"
	"github.com/abates/monoprice-hub/action"
	"github.com/abates/monoprice-hub/installation"
	"github.com/abates/monoprice-hub/zone"
	"github.com/gorilla/mux"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/discard"
)

// ParseBool accepts on/off in addition to the strconv spellings.
func ParseBool(str string) (bool, error) {
	switch strings.ToLower(str) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return strconv.ParseBool(str)
}

type api struct {
	inst   *installation.Installation
	events *hub
	logger logwrap.Logger
}

func New(inst *installation.Installation, logger *logwrap.Logger) *mux.Router {
	a := &api{inst: inst, logger: logwrap.New(discard.Discard())}
	if logger != nil {
		a.logger = *logger
	}
	a.events = newHub(a.logger)
	inst.Subscribe(a.events.publish)

	r := mux.NewRouter()
	r.HandleFunc("/zones", a.listZones).Methods("GET")
	r.HandleFunc("/zones/{zone}/enabled/{enabled}", a.setEnabled).Methods("PUT")
	r.HandleFunc("/sources", a.listSources).Methods("GET")
	r.HandleFunc("/sound_modes", a.listSoundModes).Methods("GET")
	r.HandleFunc("/actions", a.listActions).Methods("GET")
	r.HandleFunc("/actions/{action}", a.dispatch).Methods("POST")
	r.HandleFunc("/ws", a.streamEvents).Methods("GET")

	r.HandleFunc("/{zone}/status", a.zoneHandler(a.status)).Methods("GET")
	r.HandleFunc("/{zone}/power/{power}", a.command("power", func(ctx context.Context, z *zone.Zone, v string) error {
		on, err := ParseBool(v)
		if err != nil {
			return badRequest(err)
		}
		if on {
			return z.TurnOn(ctx)
		}
		return z.TurnOff(ctx)
	})).Methods("PUT")
	r.HandleFunc("/{zone}/mute/{mute}", a.command("mute", func(ctx context.Context, z *zone.Zone, v string) error {
		mute, err := ParseBool(v)
		if err != nil {
			return badRequest(err)
		}
		return z.Mute(ctx, mute)
	})).Methods("PUT")
	r.HandleFunc("/{zone}/volume/up", a.zoneCommand(func(ctx context.Context, z *zone.Zone) error { return z.VolumeUp(ctx) })).Methods("PUT")
	r.HandleFunc("/{zone}/volume/down", a.zoneCommand(func(ctx context.Context, z *zone.Zone) error { return z.VolumeDown(ctx) })).Methods("PUT")
	r.HandleFunc("/{zone}/volume/{level}", a.command("level", func(ctx context.Context, z *zone.Zone, v string) error {
		level, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return badRequest(err)
		}
		return z.SetVolume(ctx, level)
	})).Methods("PUT")
	r.HandleFunc("/{zone}/source/{source}", a.command("source", func(ctx context.Context, z *zone.Zone, v string) error {
		return z.SelectSource(ctx, v)
	})).Methods("PUT")
	r.HandleFunc("/{zone}/sound_mode/{mode}", a.command("mode", func(ctx context.Context, z *zone.Zone, v string) error {
		return z.SelectSoundMode(ctx, v)
	})).Methods("PUT")
	r.HandleFunc("/{zone}/treble/{level}", a.command("level", levelCommand((*zone.Zone).SetTreble))).Methods("PUT")
	r.HandleFunc("/{zone}/bass/{level}", a.command("level", levelCommand((*zone.Zone).SetBass))).Methods("PUT")
	r.HandleFunc("/{zone}/balance/{level}", a.command("level", levelCommand((*zone.Zone).SetBalance))).Methods("PUT")
	r.HandleFunc("/{zone}/snapshot", a.zoneCommand(func(ctx context.Context, z *zone.Zone) error { return z.Snapshot(ctx) })).Methods("PUT")
	r.HandleFunc("/{zone}/restore", a.zoneHandler(a.restore)).Methods("PUT")
	r.HandleFunc("/{zone}/select", a.zoneHandler(a.selectStatus)).Methods("GET")
	r.HandleFunc("/{zone}/select/{option}", a.zoneHandler(a.selectOption)).Methods("PUT")

	return r
}

type zoneView struct {
	ID            int              `json:"id"`
	UniqueID      string           `json:"unique_id"`
	Name          string           `json:"name"`
	Available     bool             `json:"available"`
	State         zone.EntityState `json:"state"`
	SourceList    []string         `json:"source_list"`
	SoundModeList []string         `json:"sound_mode_list"`
}

func newZoneView(z *zone.Zone) zoneView {
	return zoneView{
		ID:            int(z.ID()),
		UniqueID:      z.UniqueID(),
		Name:          z.Name(),
		Available:     z.Available(),
		State:         z.State(),
		SourceList:    z.SourceList(),
		SoundModeList: z.SoundModeList(),
	}
}

type selectView struct {
	UniqueID string   `json:"unique_id"`
	Name     string   `json:"name"`
	Options  []string `json:"options"`
	Current  string   `json:"current_option"`
}

func newSelectView(s *zone.SourceSelect) selectView {
	return selectView{
		UniqueID: s.UniqueID(),
		Name:     s.Name(),
		Options:  s.Options(),
		Current:  s.CurrentOption(),
	}
}

type actionRequest struct {
	Zones []int `json:"zones"`
	Level *int  `json:"level,omitempty"`
}

type actionResult struct {
	Zone    int    `json:"zone"`
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errBadRequest marks request values that could not be decoded.
var errBadRequest = errors.New("bad request")

func badRequest(err error) error {
	return errors.Join(errBadRequest, err)
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, zone.ErrValidation), errors.Is(err, monoprice.ErrCommand):
		return http.StatusBadRequest
	case errors.Is(err, installation.ErrUnknownZone), errors.Is(err, monoprice.ErrInvalidZone), errors.Is(err, action.ErrUnknownAction):
		return http.StatusNotFound
	case errors.Is(err, zone.ErrRead), errors.Is(err, monoprice.ErrUnknownState), errors.Is(err, monoprice.ErrClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (a *api) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	status := statusCode(err)
	if status >= http.StatusInternalServerError {
		a.logger.LogError(ctx, msg, logwrap.Err(err))
	} else {
		a.logger.LogDebug(ctx, msg, logwrap.Err(err))
	}
	http.Error(w, err.Error(), status)
}

func (a *api) listZones(w http.ResponseWriter, r *http.Request) {
	views := []zoneView{}
	for _, z := range a.inst.Zones() {
		views = append(views, newZoneView(z))
	}
	writeJSON(w, http.StatusOK, views)
}

func (a *api) listSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.inst.Catalog().Names())
}

func (a *api) listSoundModes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, zone.SoundModes())
}

func (a *api) listActions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, action.Names())
}

func parseZone(str string) (monoprice.ZoneID, error) {
	id, err := strconv.Atoi(str)
	if err != nil {
		return 0, badRequest(err)
	}
	return monoprice.ZoneID(id), nil
}

func (a *api) setEnabled(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := parseZone(vars["zone"])
	if err == nil {
		var enabled bool
		if enabled, err = ParseBool(vars["enabled"]); err != nil {
			err = badRequest(err)
		} else {
			err = a.inst.SetEnabled(id, enabled)
		}
	}
	if err != nil {
		a.writeError(r.Context(), w, "Failed to change zone registration.", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": a.inst.Enabled(id)})
}

func (a *api) zoneHandler(handler func(*zone.Zone, http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		id, err := parseZone(vars["zone"])
		if err != nil {
			a.writeError(r.Context(), w, "Failed to convert zone to integer.", err)
			return
		}
		z, found := a.inst.Zone(id)
		if !found {
			a.writeError(r.Context(), w, "Zone not found.", fmt.Errorf("%w %d", installation.ErrUnknownZone, id))
			return
		}
		handler(z, w, r)
	}
}

func (a *api) respond(w http.ResponseWriter, r *http.Request, z *zone.Zone, err error) {
	if err != nil {
		a.writeError(r.Context(), w, "Failed sending command to amp.", err)
		return
	}
	writeJSON(w, http.StatusOK, newZoneView(z))
}

func (a *api) zoneCommand(fn func(context.Context, *zone.Zone) error) http.HandlerFunc {
	return a.zoneHandler(func(z *zone.Zone, w http.ResponseWriter, r *http.Request) {
		a.respond(w, r, z, fn(r.Context(), z))
	})
}

// command passes the route variable v to fn.
func (a *api) command(v string, fn func(context.Context, *zone.Zone, string) error) http.HandlerFunc {
	return a.zoneHandler(func(z *zone.Zone, w http.ResponseWriter, r *http.Request) {
		a.respond(w, r, z, fn(r.Context(), z, mux.Vars(r)[v]))
	})
}

func levelCommand(set func(*zone.Zone, context.Context, int) error) func(context.Context, *zone.Zone, string) error {
	return func(ctx context.Context, z *zone.Zone, v string) error {
		level, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(err)
		}
		return set(z, ctx, level)
	}
}

func (a *api) status(z *zone.Zone, w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	if !z.Available() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, newZoneView(z))
}

func (a *api) restore(z *zone.Zone, w http.ResponseWriter, r *http.Request) {
	restored, err := z.Restore(r.Context())
	if err != nil {
		a.writeError(r.Context(), w, "Failed to restore zone.", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"restored": restored, "zone": newZoneView(z)})
}

func (a *api) selectStatus(z *zone.Zone, w http.ResponseWriter, r *http.Request) {
	s, _ := a.inst.Select(z.ID())
	writeJSON(w, http.StatusOK, newSelectView(s))
}

func (a *api) selectOption(z *zone.Zone, w http.ResponseWriter, r *http.Request) {
	s, _ := a.inst.Select(z.ID())
	if err := s.SelectOption(r.Context(), mux.Vars(r)["option"]); err != nil {
		a.writeError(r.Context(), w, "Failed to select source.", err)
		return
	}
	writeJSON(w, http.StatusOK, newSelectView(s))
}

func (a *api) dispatch(w http.ResponseWriter, r *http.Request) {
	req := actionRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(r.Context(), w, "Failed decoding action request.", badRequest(err))
		return
	}

	targets := make([]monoprice.ZoneID, 0, len(req.Zones))
	for _, id := range req.Zones {
		targets = append(targets, monoprice.ZoneID(id))
	}

	results, err := a.inst.Dispatcher().Dispatch(r.Context(), targets, action.Name(mux.Vars(r)["action"]), action.Params{Level: req.Level})
	if err != nil {
		a.writeError(r.Context(), w, "Failed to dispatch action.", err)
		return
	}

	out := make([]actionResult, 0, len(results))
	for _, result := range results {
		res := actionResult{Zone: int(result.Zone), Applied: result.Applied}
		if result.Err != nil {
			res.Error = result.Err.Error()
		}
		out = append(out, res)
	}
	writeJSON(w, http.StatusOK, out)
}
