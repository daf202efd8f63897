// Package poller refreshes zone state on a cron schedule.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/discard"
)

// DefaultSchedule matches the polling interval of the amplifier integration.
const DefaultSchedule = "@every 10s"

// Target is polled on every tick and reports how many zones failed.
type Target interface {
	Poll(ctx context.Context) int
}

type Poller struct {
	target Target
	cron   *cron.Cron
	logger logwrap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// New schedules polls of target. A tick that starts while the previous poll is
// still running is skipped.
func New(target Target, schedule string, logger *logwrap.Logger) (*Poller, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	p := &Poller{target: target, logger: logwrap.New(discard.Discard())}
	if logger != nil {
		p.logger = *logger
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())

	cronLogger := cronLog{logger: p.logger}
	p.cron = cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))
	if _, err := p.cron.AddFunc(schedule, p.run); err != nil {
		return nil, fmt.Errorf("invalid poll schedule %q: %w", schedule, err)
	}
	return p, nil
}

func (p *Poller) run() {
	start := time.Now()
	failed := p.target.Poll(p.ctx)
	p.logger.LogDebug(p.ctx, "Polled zones.", logwrap.Datum("failed", failed), logwrap.Datum("duration", time.Since(start).String()))
}

func (p *Poller) Start() {
	p.cron.Start()
}

// Stop cancels a running poll and waits for it to return.
func (p *Poller) Stop() {
	p.once.Do(func() {
		p.cancel()
		<-p.cron.Stop().Done()
	})
}

// cronLog adapts logwrap to the logger interface of the cron scheduler.
type cronLog struct {
	logger logwrap.Logger
}

func (l cronLog) Info(msg string, keysAndValues ...interface{}) {
	l.logger.LogDebug(context.Background(), msg, keyValues(keysAndValues)...)
}

func (l cronLog) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.LogError(context.Background(), msg, append(keyValues(keysAndValues), logwrap.Err(err))...)
}

func keyValues(keysAndValues []interface{}) []logwrap.Option {
	opts := []logwrap.Option{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		opts = append(opts, logwrap.Datum(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}
	return opts
}
