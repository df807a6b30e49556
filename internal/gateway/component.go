package gateway

import (
	"context"
	"time"

	"github.com/nerrad567/gray-logic-mysensors/internal/history"
	"github.com/nerrad567/gray-logic-mysensors/internal/registry"
)

// component holds what the dispatcher and the poller share.
type component struct {
	reg     *registry.Registry
	writer  LineWriter
	sinks   []ReadingSink
	logger  Logger
	metrics *Metrics
	now     func() time.Time

	// changed is set when the registry was mutated since the last
	// takeChanged.
	changed bool
}

func newComponent(reg *registry.Registry, writer LineWriter, sinks []ReadingSink,
	logger Logger, metrics *Metrics, now func() time.Time,
) component {
	if logger == nil {
		logger = nopLogger{}
	}
	if now == nil {
		now = time.Now
	}
	return component{
		reg:     reg,
		writer:  writer,
		sinks:   sinks,
		logger:  logger,
		metrics: metrics,
		now:     now,
	}
}

// takeChanged reports and clears the changed flag.
func (c *component) takeChanged() bool {
	changed := c.changed
	c.changed = false
	return changed
}

// notify hands a reading change to every sink.
func (c *component) notify(ctx context.Context, ch *registry.Channel, origin history.Origin) {
	ev := ReadingEvent{Channel: *ch, Origin: origin}
	for _, s := range c.sinks {
		if err := s.HandleReading(ctx, ev); err != nil {
			c.metrics.sinkError(s.Name())
			c.logger.Warn("reading sink failed",
				"sink", s.Name(),
				"channel", ch.Key().String(),
				"error", err)
		}
	}
}

// notifyNode hands a node event to the sinks that accept them.
func (c *component) notifyNode(ctx context.Context, ev NodeEvent) {
	for _, s := range c.sinks {
		ns, ok := s.(NodeEventSink)
		if !ok {
			continue
		}
		if err := ns.HandleNodeEvent(ctx, ev); err != nil {
			c.metrics.sinkError(s.Name())
			c.logger.Warn("node event sink failed",
				"sink", s.Name(),
				"node", ev.Node,
				"error", err)
		}
	}
}

// send writes one telegram to the sensor network.
func (c *component) send(line string) error {
	if err := c.writer.WriteLine(line); err != nil {
		return err
	}
	c.metrics.telegramSent()
	c.logger.Debug("telegram sent", "telegram", line)
	return nil
}
