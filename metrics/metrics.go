// Package metrics exposes amplifier polling, command and action counters to
// prometheus.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "ampserver_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	pollTotal       *prometheus.CounterVec
	zoneAvailable   *prometheus.GaugeVec
	commandTotal    *prometheus.CounterVec
	commandLatency  *prometheus.HistogramVec
	actionTotal     *prometheus.CounterVec
	lockWaitLatency prometheus.Histogram
)

// Init registers the collectors with registerer, or with the default registry
// when registerer is nil. Only the first call has an effect.
func Init(registerer prometheus.Registerer) {
	registerOnce.Do(func() {
		if registerer == nil {
			registerer = prometheus.DefaultRegisterer
		}

		pollTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "zone_polls_total",
				Help: "Total zone status polls by zone and result",
			},
			[]string{"zone", "result"},
		)
		zoneAvailable = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "zone_available",
				Help: "Whether the last status poll of a zone succeeded",
			},
			[]string{"zone"},
		)
		commandTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "driver_commands_total",
				Help: "Total amplifier driver calls by command and result",
			},
			[]string{"command", "result"},
		)
		commandLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "driver_command_latency_seconds",
				Help:    "Amplifier driver call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		)
		actionTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "zone_actions_total",
				Help: "Total per-zone bulk action outcomes by action and result",
			},
			[]string{"action", "result"},
		)
		lockWaitLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "driver_lock_wait_seconds",
				Help:    "Time spent waiting for the serial link",
				Buckets: prometheus.DefBuckets,
			},
		)

		registerer.MustRegister(
			pollTotal,
			zoneAvailable,
			commandTotal,
			commandLatency,
			actionTotal,
			lockWaitLatency,
		)
	})
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

// ObservePoll records the outcome of one zone status poll.
func ObservePoll(zone int, err error) {
	label := strconv.Itoa(zone)
	if pollTotal != nil {
		pollTotal.WithLabelValues(label, result(err)).Inc()
	}
	if zoneAvailable != nil {
		available := 1.0
		if err != nil {
			available = 0
		}
		zoneAvailable.WithLabelValues(label).Set(available)
	}
}

// ObserveCommand records one driver call.
func ObserveCommand(command string, err error, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if commandTotal != nil {
		commandTotal.WithLabelValues(command, result(err)).Inc()
	}
	if commandLatency != nil {
		commandLatency.WithLabelValues(command).Observe(duration.Seconds())
	}
}

// ObserveAction records the outcome of a bulk action on one zone.
func ObserveAction(action string, err error) {
	if actionTotal != nil {
		actionTotal.WithLabelValues(action, result(err)).Inc()
	}
}

// ObserveLockWait records how long a caller waited for the serial link.
func ObserveLockWait(duration time.Duration) {
	if lockWaitLatency != nil {
		lockWaitLatency.Observe(duration.Seconds())
	}
}
