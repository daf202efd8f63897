package zone

import monoprice "github.com/abates/monoprice-hub"

// EnabledByDefault decides whether a newly registered zone entity starts
// enabled. The first amplifier is assumed present; expansion units only show
// up when their zones answered the initial probe.
func EnabledByDefault(id monoprice.ZoneID, probeOK bool) bool {
	if int(id)%10 == 0 {
		return false
	}
	return id < 20 || probeOK
}
