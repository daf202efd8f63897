package zone

const (
	SoundModeNormal     = "Normal"
	SoundModeHighBass   = "High Bass"
	SoundModeMediumBass = "Medium Bass"
	SoundModeLowBass    = "Low Bass"
)

var soundModes = []struct {
	name string
	bass int
}{
	{SoundModeNormal, 7},
	{SoundModeHighBass, 12},
	{SoundModeMediumBass, 10},
	{SoundModeLowBass, 3},
}

func SoundModes() []string {
	names := make([]string, 0, len(soundModes))
	for _, mode := range soundModes {
		names = append(names, mode.name)
	}
	return names
}

// SoundModeBass returns the bass preset behind a sound mode name.
func SoundModeBass(name string) (int, bool) {
	for _, mode := range soundModes {
		if mode.name == name {
			return mode.bass, true
		}
	}
	return 0, false
}
