package gateway

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-mysensors/internal/domoticz"
	"github.com/nerrad567/gray-logic-mysensors/internal/history"
	"github.com/nerrad567/gray-logic-mysensors/internal/mysensors"
	"github.com/nerrad567/gray-logic-mysensors/internal/registry"
)

// Switch level values sent to nodes.
const (
	levelOn  = 100
	levelOff = 0
)

var (
	onTokens  = []string{"On", "Up", "Open"}
	offTokens = []string{"Off", "Down", "Closed"}
)

// PollerOptions holds the dependencies of a Poller.
type PollerOptions struct {
	Registry *registry.Registry
	Switches SwitchLister
	Writer   LineWriter
	Sinks    []ReadingSink
	Logger   Logger
	Metrics  *Metrics
	Now      func() time.Time
}

// Poller pulls switch changes made on the controller into the sensor
// network.
//
// Thread Safety:
//   - Not safe for concurrent use; called from the gateway loop only.
type Poller struct {
	component
	switches SwitchLister
}

// NewPoller creates a poller.
func NewPoller(opts PollerOptions) (*Poller, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.Switches == nil {
		return nil, fmt.Errorf("switch lister is required")
	}
	if opts.Writer == nil {
		return nil, fmt.Errorf("telegram writer is required")
	}
	return &Poller{
		component: newComponent(opts.Registry, opts.Writer, opts.Sinks,
			opts.Logger, opts.Metrics, opts.Now),
		switches: opts.Switches,
	}, nil
}

// Poll runs one reconciliation pass.
//
// A switch is applied when it maps to a registry device and its controller
// LastUpdate is strictly after the LastUpdate of the device's first
// channel. The level is written to every channel of the device and sent to
// the first channel's node as an acknowledged V_DIMMER SET.
//
// Returns:
//   - error: Listing failure, or the joined write failures
func (p *Poller) Poll(ctx context.Context) error {
	switches, err := p.switches.Switches(ctx)
	if err != nil {
		p.metrics.controllerError("switches")
		return fmt.Errorf("listing switches: %w", err)
	}

	var errs []error
	for _, sw := range switches {
		channels := p.reg.ByDeviceID(sw.ID)
		if len(channels) == 0 {
			continue
		}
		first := channels[0]
		if !sw.LastUpdate.After(first.LastUpdate) {
			continue
		}

		reading := strconv.Itoa(SwitchLevel(sw))
		updated := p.reg.SetDeviceReading(sw.ID, reading, p.now())
		p.changed = true
		p.metrics.switchReconciled()
		for _, ch := range updated {
			p.notify(ctx, ch, history.OriginController)
		}

		p.logger.Info("switch changed on controller",
			"device_id", sw.ID,
			"data", sw.Data,
			"level", reading,
			"channel", first.Key().String())

		t := mysensors.NewSetTelegram(first.Node, first.Child, mysensors.ValueDimmer, true, reading)
		if err := p.send(t.String()); err != nil {
			errs = append(errs, fmt.Errorf("sending level to %s: %w", first.Key(), err))
		}
	}
	return errors.Join(errs...)
}

// SwitchLevel maps a controller switch state to a node level: 100 when the
// display value contains an on token, 0 when it contains an off token,
// otherwise the reported dimmer level.
func SwitchLevel(sw domoticz.SwitchStatus) int {
	if containsAny(sw.Data, onTokens) {
		return levelOn
	}
	if containsAny(sw.Data, offTokens) {
		return levelOff
	}
	return sw.Level
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
