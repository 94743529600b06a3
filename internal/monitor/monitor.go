// Package monitor keeps one Router per present target device by polling the
// input driver on a fixed interval.
package monitor

import (
	"context"
	"sort"
	"time"

	"github.com/leandrodaf/midisynth/internal/eventqueue"
	"github.com/leandrodaf/midisynth/internal/router"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// DefaultInterval is the poll interval used when Config.Interval is zero.
const DefaultInterval = 2 * time.Second

// Config configures a Monitor.
type Config struct {
	Interval time.Duration
	Filter   contracts.DeviceFilter
}

// Result summarises one poll cycle.
type Result struct {
	Arrived   []string // Routers created this cycle.
	Departed  []string // Routers closed this cycle.
	Failed    []string // Arrivals whose subscription failed; retried next cycle.
	Connected int      // Routers alive after the cycle.
	Err       error    // Port listing failure. The registry is untouched when set.
}

// Monitor reconciles the router registry against the driver's port list.
//
// The registry has a single owner: the goroutine calling Poll and Run. No
// other goroutine may call methods on a Monitor while it is running.
type Monitor struct {
	driver   contracts.InputDriver
	events   *eventqueue.Queue
	logger   contracts.Logger
	filter   Filter
	interval time.Duration
	routers  map[string]*router.Router
}

// New returns a monitor that has not polled yet.
func New(driver contracts.InputDriver, events *eventqueue.Queue, logger contracts.Logger, cfg Config) *Monitor {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		driver:   driver,
		events:   events,
		logger:   logger,
		filter:   NewFilter(cfg.Filter),
		interval: interval,
		routers:  map[string]*router.Router{},
	}
}

// Run polls immediately and then once per interval until ctx is done. Every
// router is closed before Run returns.
func (m *Monitor) Run(ctx context.Context) {
	defer m.CloseAll()

	m.Poll()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Poll()
		}
	}
}

// Poll runs one reconciliation cycle.
func (m *Monitor) Poll() Result {
	var res Result
	ports, err := m.driver.Ports()
	if err != nil {
		m.logger.Warn("Failed to list MIDI inputs", m.logger.Field().Error("error", err))
		res.Err = err
		res.Connected = len(m.routers)
		return res
	}

	present := make(map[string]struct{}, len(ports))
	for _, port := range ports {
		if !m.filter.Match(port.Name) {
			continue
		}
		// a second port with the same name counts as already connected
		if _, seen := present[port.Name]; seen {
			continue
		}
		present[port.Name] = struct{}{}
		if _, ok := m.routers[port.Name]; ok {
			continue
		}

		r, err := router.Connect(m.driver, port, m.events)
		if err != nil {
			m.logger.Warn("Failed to connect to MIDI device",
				m.logger.Field().String("device", port.Name),
				m.logger.Field().Error("error", err))
			res.Failed = append(res.Failed, port.Name)
			continue
		}
		m.routers[port.Name] = r
		res.Arrived = append(res.Arrived, port.Name)
		m.logger.Info("MIDI device connected", m.logger.Field().String("device", port.Name))
	}

	for name, r := range m.routers {
		if _, ok := present[name]; ok {
			continue
		}
		m.drop(name, r)
		res.Departed = append(res.Departed, name)
	}
	sort.Strings(res.Departed)

	res.Connected = len(m.routers)
	m.logger.Debug("MIDI poll complete",
		m.logger.Field().Int("ports", len(ports)),
		m.logger.Field().Int("connected", res.Connected))
	return res
}

// CloseAll closes and forgets every router.
func (m *Monitor) CloseAll() {
	for name, r := range m.routers {
		m.drop(name, r)
	}
}

func (m *Monitor) drop(name string, r *router.Router) {
	delete(m.routers, name)
	if err := r.Close(); err != nil {
		m.logger.Warn("Error closing MIDI device",
			m.logger.Field().String("device", name),
			m.logger.Field().Error("error", err))
	}
	m.logger.Info("MIDI device disconnected", m.logger.Field().String("device", name))
}
