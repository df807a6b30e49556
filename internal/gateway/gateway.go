package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-mysensors/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-mysensors/internal/mysensors"
	"github.com/nerrad567/gray-logic-mysensors/internal/registry"
)

// Loop defaults, used when the configuration leaves an interval at zero.
const (
	defaultLoopInterval    = 300 * time.Millisecond
	defaultPollInterval    = time.Second
	defaultPersistInterval = time.Minute
)

// Options holds the dependencies of a Gateway.
type Options struct {
	// Config holds the loop, poll and snapshot intervals.
	Config config.GatewayConfig

	// Transport is the serial gateway stream. Required.
	Transport Transport

	// Controller is the Domoticz API used by the dispatcher. Required.
	Controller Controller

	// Switches lists controller switches for reconciliation. Required.
	Switches SwitchLister

	// Registry is the loaded channel table. Required.
	Registry *registry.Registry

	// Store persists the registry on the snapshot interval. Required.
	Store SnapshotStore

	// Sinks receive reading changes. Optional.
	Sinks []ReadingSink

	// View receives registry copies for the status API. Optional.
	View *View

	// Logger is optional.
	Logger Logger

	// Metrics is optional.
	Metrics *Metrics

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// Gateway runs the single-threaded translation loop.
type Gateway struct {
	cfg        config.GatewayConfig
	transport  Transport
	reg        *registry.Registry
	store      SnapshotStore
	sinks      []ReadingSink
	view       *View
	dispatcher *Dispatcher
	poller     *Poller
	logger     Logger
	metrics    *Metrics
	now        func() time.Time

	lastPoll    time.Time
	lastPersist time.Time
}

// New creates a gateway. Call Run to start the loop.
func New(opts Options) (*Gateway, error) {
	if opts.Transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("snapshot store is required")
	}

	cfg := opts.Config
	if cfg.LoopInterval <= 0 {
		cfg.LoopInterval = defaultLoopInterval
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.PersistInterval <= 0 {
		cfg.PersistInterval = defaultPersistInterval
	}

	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	dispatcher, err := NewDispatcher(DispatcherOptions{
		Registry:   opts.Registry,
		Controller: opts.Controller,
		Writer:     opts.Transport,
		Sinks:      opts.Sinks,
		Logger:     logger,
		Metrics:    opts.Metrics,
		Now:        now,
		LocalTime:  cfg.LocalTime,
	})
	if err != nil {
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}

	poller, err := NewPoller(PollerOptions{
		Registry: opts.Registry,
		Switches: opts.Switches,
		Writer:   opts.Transport,
		Sinks:    opts.Sinks,
		Logger:   logger,
		Metrics:  opts.Metrics,
		Now:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("creating poller: %w", err)
	}

	return &Gateway{
		cfg:        cfg,
		transport:  opts.Transport,
		reg:        opts.Registry,
		store:      opts.Store,
		sinks:      opts.Sinks,
		view:       opts.View,
		dispatcher: dispatcher,
		poller:     poller,
		logger:     logger,
		metrics:    opts.Metrics,
		now:        now,
	}, nil
}

// Run loops until ctx is cancelled. Each iteration reads at most one
// telegram, polls the controller when the poll interval has elapsed,
// snapshots the registry when the persist interval has elapsed, then sleeps
// for the loop interval.
//
// Run returns nil on cancellation. Nothing inside an iteration is fatal.
func (g *Gateway) Run(ctx context.Context) error {
	start := g.now()
	g.lastPoll = start
	g.lastPersist = start
	g.publishView()

	g.logger.Info("gateway loop started",
		"channels", g.reg.Len(),
		"loop_interval", g.cfg.LoopInterval.String(),
		"poll_interval", g.cfg.PollInterval.String(),
		"persist_interval", g.cfg.PersistInterval.String())

	ticker := time.NewTicker(g.cfg.LoopInterval)
	defer ticker.Stop()

	for {
		g.iterate(ctx)

		select {
		case <-ctx.Done():
			g.logger.Info("gateway loop stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// iterate runs one loop iteration.
func (g *Gateway) iterate(ctx context.Context) {
	g.readTelegram(ctx)

	now := g.now()
	if now.Sub(g.lastPoll) >= g.cfg.PollInterval {
		g.lastPoll = now
		if err := g.poller.Poll(ctx); err != nil {
			g.logger.Error("reconciliation failed", "error", err)
		}
	}
	if now.Sub(g.lastPersist) >= g.cfg.PersistInterval {
		g.lastPersist = now
		g.persist(ctx)
	}

	changed := g.dispatcher.takeChanged()
	if g.poller.takeChanged() {
		changed = true
	}
	if changed {
		g.publishView()
	}
}

// readTelegram reads and dispatches at most one telegram.
func (g *Gateway) readTelegram(ctx context.Context) {
	line, ok, err := g.transport.ReadLine()
	if err != nil {
		g.logger.Error("reading serial gateway", "error", err)
		return
	}
	if !ok || strings.TrimSpace(line) == "" {
		return
	}

	t, err := mysensors.ParseTelegram(line)
	if err != nil {
		g.metrics.telegramMalformed()
		g.logger.Warn("malformed telegram dropped", "error", err)
		return
	}
	g.metrics.telegramReceived(t.Type.String())
	g.logger.Debug("telegram received", "telegram", t.String())

	if t.IsAck() {
		g.metrics.ackIgnored()
		return
	}
	if err := g.dispatcher.Dispatch(ctx, t); err != nil {
		g.logger.Error("dispatch failed", "telegram", t.String(), "error", err)
	}
}

// persist writes the registry snapshot and runs sink housekeeping.
func (g *Gateway) persist(ctx context.Context) {
	err := g.store.Save(g.reg)
	g.metrics.snapshotWritten(err)
	if err != nil {
		g.logger.Error("saving registry snapshot", "error", err)
	} else {
		g.logger.Debug("registry snapshot saved", "channels", g.reg.Len())
	}

	for _, s := range g.sinks {
		m, ok := s.(Maintainer)
		if !ok {
			continue
		}
		if err := m.Maintain(ctx); err != nil {
			g.logger.Warn("sink maintenance failed", "sink", s.Name(), "error", err)
		}
	}
}

// publishView copies the registry into the view.
func (g *Gateway) publishView() {
	g.metrics.setChannels(g.reg.Len())
	if g.view == nil {
		return
	}
	g.view.update(g.reg.Snapshot(), g.now())
}
