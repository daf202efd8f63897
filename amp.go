package monoprice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/discard"
)

var (
	ErrInvalidZone     = errors.New("invalid Zone ID")
	ErrUnknownState    = errors.New("failed to determine state")
	ErrCommand         = errors.New("invalid Command")
	ErrInvalidResponse = errors.New("invalid response")
	ErrRetryTimeout    = errors.New("retries exceeded")
	ErrClosed          = errors.New("amplifier closed")

	QueryRetryLimit = 3
)

type Amplifier struct {
	writer     io.Writer
	reader     *bufio.Reader
	writeCh    chan cmdReq
	done       chan struct{}
	closeOnce  sync.Once
	logger     logwrap.Logger
	verboseLog bool
}

type Option func(*Amplifier)

func VerboseOption() Option {
	return func(amp *Amplifier) {
		amp.verboseLog = true
	}
}

func LoggerOption(logger logwrap.Logger) Option {
	return func(amp *Amplifier) {
		amp.logger = logger
	}
}

// New wraps an open serial port. All exchanges with the amplifier are funneled
// through a single goroutine, so the returned Amplifier is safe to share.
func New(port io.ReadWriter, options ...Option) *Amplifier {
	amp := &Amplifier{
		writer:  port,
		reader:  bufio.NewReader(port),
		writeCh: make(chan cmdReq),
		done:    make(chan struct{}),
		logger:  logwrap.New(discard.Discard()),
	}

	for _, option := range options {
		option(amp)
	}

	go amp.writeLoop()
	return amp
}

// Close stops the write loop. It does not close the underlying port.
func (amp *Amplifier) Close() error {
	amp.closeOnce.Do(func() {
		close(amp.done)
	})
	return nil
}

func (amp *Amplifier) readLine() (line string, err error) {
	data, err := amp.reader.ReadBytes('\n')
	if err == nil {
		if amp.verboseLog {
			amp.logger.LogDebug(context.Background(), "RX", logwrap.Datum("data", string(data)))
		}
		line = strings.TrimPrefix(strings.TrimSpace(string(data)), "#")
	} else if amp.verboseLog {
		amp.logger.LogDebug(context.Background(), "RX error", logwrap.Err(err))
	}
	return line, err
}

func (amp *Amplifier) exchange(req *cmdReq) (resp cmdResp) {
	for tries := 0; tries < QueryRetryLimit; tries++ {
		if _, resp.err = amp.writer.Write([]byte(req.cmd + "\r")); resp.err != nil {
			return resp
		}
		if amp.verboseLog {
			amp.logger.LogDebug(context.Background(), "TX", logwrap.Datum("cmd", req.cmd))
		}

		// wait for command to be echoed back
		line := ""
		line, resp.err = amp.readLine()
		if resp.err != nil {
			return resp
		}
		if line != req.cmd {
			resp.err = fmt.Errorf("%w: expected echo %q got %q", ErrInvalidResponse, req.cmd, line)
			return resp
		}

		if !req.query {
			return resp
		}

		line, resp.err = amp.readLine()
		if resp.err != nil {
			return resp
		}

		if line == "" {
			if amp.verboseLog {
				amp.logger.LogDebug(context.Background(), "Empty response received, re-sending command")
			}
			continue
		}

		if line[0] == '>' {
			resp.value = line[1:]
			return resp
		}

		resp.err = fmt.Errorf("%w received %q", ErrInvalidResponse, line)
		return resp
	}

	resp.err = ErrRetryTimeout
	return resp
}

func (amp *Amplifier) writeLoop() {
	for {
		select {
		case req := <-amp.writeCh:
			req.resp <- amp.exchange(&req)
		case <-amp.done:
			return
		}
	}
}

func (amp *Amplifier) sendQuery(ctx context.Context, zone ZoneID) (string, error) {
	return amp.write(ctx, cmdReq{cmd: fmt.Sprintf("?%d", zone), query: true})
}

func (amp *Amplifier) sendCmd(ctx context.Context, zone ZoneID, cmd Command, value int) error {
	if !zone.Valid() {
		return ErrInvalidZone
	}
	arg, err := cmd.format(value)
	if err != nil {
		return err
	}
	_, err = amp.write(ctx, cmdReq{cmd: fmt.Sprintf("<%d%s%s", zone, cmd, arg)})
	return err
}

func (amp *Amplifier) write(ctx context.Context, req cmdReq) (string, error) {
	ch := make(chan cmdResp, 1)
	req.resp = ch

	select {
	case <-amp.done:
		return "", ErrClosed
	default:
	}

	select {
	case amp.writeCh <- req:
	case <-amp.done:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case resp := <-ch:
		return resp.value, resp.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
