package monoprice

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

type testPort struct {
	io.Reader
	bytes.Buffer
}

func newTestAmp(input string) (*Amplifier, *testPort) {
	port := &testPort{Reader: strings.NewReader(input)}
	return New(port), port
}

func (tp *testPort) Read(p []byte) (int, error) {
	return tp.Reader.Read(p)
}

func TestAmpQueryState(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    State
		wantErr error
	}{
		{"Good", "?11\r\n#>1100000000130705100301\r\r\n#", State{Zone: 11, Volume: 13, Treble: 7, Bass: 5, Balance: 10, Source: 3, KeyPad: true}, nil},
		{"Empty then good", "?11\r\n#\r\n?11\r\n#>1100010000130705100301\r\r\n#", State{Zone: 11, Power: true, Volume: 13, Treble: 7, Bass: 5, Balance: 10, Source: 3, KeyPad: true}, nil},
		{"Bad echo", strings.Repeat("?12\r\n#>1200000000130705100301\r\r\n#", StatusRetries), State{}, ErrInvalidResponse},
		{"No answer", "", State{}, ErrUnknownState},
	}

	// 2023/01/15 20:16:02 RX "?11\r\n#" (err: <nil>)
	// 2023/01/15 20:16:02 RX ">1100000000130705100301\r\r\n#" (err: <nil>)

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			amp, _ := newTestAmp(test.input)
			defer amp.Close()

			got, gotErr := amp.ZoneStatus(context.Background(), 11)
			if !errors.Is(gotErr, test.wantErr) {
				t.Errorf("Wanted error %v got %v", test.wantErr, gotErr)
			} else if gotErr == nil && got != test.want {
				t.Errorf("Wanted %+v got %+v", test.want, got)
			}
		})
	}
}

func TestAmpQueryInvalidZone(t *testing.T) {
	for _, id := range []ZoneID{0, 10, 17, 20, 40, 99} {
		amp, port := newTestAmp("")
		_, err := amp.ZoneStatus(context.Background(), id)
		if !errors.Is(err, ErrInvalidZone) {
			t.Errorf("zone %d: wanted %v got %v", id, ErrInvalidZone, err)
		}
		if port.Len() != 0 {
			t.Errorf("zone %d: wanted no bytes written got %q", id, port.String())
		}
		amp.Close()
	}
}

func TestAmpSendCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		send    func(*Amplifier) error
		wantTX  string
		wantErr error
	}{
		{"power on", "<11PR01\r\r\n#", func(a *Amplifier) error { return a.SetPower(context.Background(), 11, true) }, "<11PR01\r", nil},
		{"mute off", "<23MU00\r\r\n#", func(a *Amplifier) error { return a.SetMute(context.Background(), 23, false) }, "<23MU00\r", nil},
		{"volume", "<11VO19\r\r\n#", func(a *Amplifier) error { return a.SetVolume(context.Background(), 11, 19) }, "<11VO19\r", nil},
		{"bass", "<36BS10\r\r\n#", func(a *Amplifier) error { return a.SetBass(context.Background(), 36, 10) }, "<36BS10\r", nil},
		{"treble", "<11TR07\r\r\n#", func(a *Amplifier) error { return a.SetTreble(context.Background(), 11, 7) }, "<11TR07\r", nil},
		{"balance", "<11BL21\r\r\n#", func(a *Amplifier) error { return a.SetBalance(context.Background(), 11, 21) }, "<11BL21\r", nil},
		{"source", "<11CH02\r\r\n#", func(a *Amplifier) error { return a.SetSource(context.Background(), 11, 2) }, "<11CH02\r", nil},
		{"volume out of range", "", func(a *Amplifier) error { return a.SetVolume(context.Background(), 11, 39) }, "", ErrCommand},
		{"invalid zone", "", func(a *Amplifier) error { return a.SetPower(context.Background(), 20, true) }, "", ErrInvalidZone},
		{"wrong echo", "<11PR00\r\r\n#", func(a *Amplifier) error { return a.SetPower(context.Background(), 11, true) }, "<11PR01\r", ErrInvalidResponse},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			amp, port := newTestAmp(test.input)
			defer amp.Close()

			gotErr := test.send(amp)
			if !errors.Is(gotErr, test.wantErr) {
				t.Errorf("Wanted error %v got %v", test.wantErr, gotErr)
			}
			if port.String() != test.wantTX {
				t.Errorf("Wanted TX %q got %q", test.wantTX, port.String())
			}
		})
	}
}

func TestAmpRestore(t *testing.T) {
	input := "<11PR01\r\r\n#<11MU00\r\r\n#<11VO19\r\r\n#<11TR07\r\r\n#<11BS12\r\r\n#<11BL10\r\r\n#<11CH02\r\r\n#"
	amp, port := newTestAmp(input)
	defer amp.Close()

	state := State{Zone: 11, Power: true, Volume: 19, Treble: 7, Bass: 12, Balance: 10, Source: 2}
	if err := amp.Restore(context.Background(), 11, state); err != nil {
		t.Fatalf("Wanted no error got %v", err)
	}

	want := "<11PR01\r<11MU00\r<11VO19\r<11TR07\r<11BS12\r<11BL10\r<11CH02\r"
	if port.String() != want {
		t.Errorf("Wanted TX %q got %q", want, port.String())
	}
}

func TestAmpClosed(t *testing.T) {
	amp, _ := newTestAmp("")
	amp.Close()

	if err := amp.SetPower(context.Background(), 11, true); !errors.Is(err, ErrClosed) {
		t.Errorf("Wanted %v got %v", ErrClosed, err)
	}
	if _, err := amp.ZoneStatus(context.Background(), 11); !errors.Is(err, ErrClosed) {
		t.Errorf("Wanted %v got %v", ErrClosed, err)
	}
}

func TestZoneIDs(t *testing.T) {
	ids := ZoneIDs()
	if len(ids) != 18 {
		t.Fatalf("Wanted 18 zones got %d", len(ids))
	}
	for _, id := range ids {
		if !id.Valid() {
			t.Errorf("Zone %d should be valid", id)
		}
		if id%10 == 0 {
			t.Errorf("Zone %d is a bank base id", id)
		}
	}
	if ZoneID(24).Bank() != 2 {
		t.Errorf("Wanted bank 2 got %d", ZoneID(24).Bank())
	}
}

func TestCommandFormat(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		value   int
		want    string
		wantErr error
	}{
		{"volume max", SetVolume, MaxVolume, "38", nil},
		{"volume above max", SetVolume, MaxVolume + 1, "", ErrCommand},
		{"source below range", SetSource, 0, "", ErrCommand},
		{"public address is read only", Command("PA"), 1, "", ErrCommand},
		{"do not disturb is read only", Command("DT"), 1, "", ErrCommand},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, gotErr := test.cmd.format(test.value)
			if !errors.Is(gotErr, test.wantErr) {
				t.Errorf("Wanted error %v got %v", test.wantErr, gotErr)
			} else if got != test.want {
				t.Errorf("Wanted %q got %q", test.want, got)
			}
		})
	}
}
