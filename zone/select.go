package zone

import (
	"context"
	"fmt"

	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/discard"
)

// UnknownOption is presented while a zone plays an unconfigured input.
const UnknownOption = "Unknown"

// SourceSelect exposes the source of a zone as a separate selectable entity.
// It shares state with the zone entity.
type SourceSelect struct {
	zone   *Zone
	logger logwrap.Logger
}

func NewSourceSelect(zone *Zone, logger *logwrap.Logger) *SourceSelect {
	s := &SourceSelect{zone: zone, logger: logwrap.New(discard.Discard())}
	if logger != nil {
		s.logger = *logger
	}
	return s
}

func (s *SourceSelect) Zone() *Zone {
	return s.zone
}

func (s *SourceSelect) UniqueID() string {
	return fmt.Sprintf("%s_source_%d", s.zone.namespace, s.zone.id)
}

func (s *SourceSelect) Name() string {
	return fmt.Sprintf("Zone %d Source", s.zone.id)
}

func (s *SourceSelect) Options() []string {
	return s.zone.SourceList()
}

func (s *SourceSelect) CurrentOption() string {
	if name := s.zone.State().Source; name != "" {
		return name
	}
	return UnknownOption
}

// SelectOption changes the zone source. Names outside Options are logged and
// dropped without touching the amplifier.
func (s *SourceSelect) SelectOption(ctx context.Context, option string) error {
	if _, ok := s.zone.translator.ResolveSource(option); !ok {
		s.logger.LogError(ctx, "Invalid source name selected.", s.zone.datum(), logwrap.Datum("source", option))
		return nil
	}
	return s.zone.SelectSource(ctx, option)
}
