package app

import (
	"sync/atomic"
	"time"
)

// Metrics counts session activity.
type Metrics struct {
	events   atomic.Uint64
	renders  atomic.Uint64
	renderNs atomic.Int64
	commands atomic.Uint64
	handled  atomic.Uint64
	resizes  atomic.Uint64
	reloads  atomic.Uint64

	startTime time.Time
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Uptime        time.Duration
	Events        uint64
	Renders       uint64
	AvgRender     time.Duration
	Commands      uint64
	Handled       uint64
	Resizes       uint64
	ConfigReloads uint64
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordEvent records one backend event.
func (m *Metrics) RecordEvent() {
	m.events.Add(1)
}

// RecordRender records render timing.
func (m *Metrics) RecordRender(d time.Duration) {
	m.renders.Add(1)
	m.renderNs.Add(d.Nanoseconds())
}

// RecordCommand records a dispatched command and whether a handler took it.
func (m *Metrics) RecordCommand(handled bool) {
	m.commands.Add(1)
	if handled {
		m.handled.Add(1)
	}
}

// RecordResize records a committed resize.
func (m *Metrics) RecordResize() {
	m.resizes.Add(1)
}

// RecordReload records an applied configuration reload.
func (m *Metrics) RecordReload() {
	m.reloads.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	renders := m.renders.Load()
	var avg time.Duration
	if renders > 0 {
		avg = time.Duration(m.renderNs.Load() / int64(renders))
	}
	return MetricsSnapshot{
		Uptime:        time.Since(m.startTime),
		Events:        m.events.Load(),
		Renders:       renders,
		AvgRender:     avg,
		Commands:      m.commands.Load(),
		Handled:       m.handled.Load(),
		Resizes:       m.resizes.Load(),
		ConfigReloads: m.reloads.Load(),
	}
}
