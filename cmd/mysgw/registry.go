package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-mysensors/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-mysensors/internal/registry"
)

func newRegistryCmd(configPath func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the channel registry snapshot",
	}

	var node int
	list := &cobra.Command{
		Use:   "list",
		Short: "List the channels of the registry snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			reg, err := registry.NewStore(cfg.Registry.Path).Load()
			if err != nil {
				return fmt.Errorf("loading registry: %w", err)
			}
			return printChannels(cmd.OutOrStdout(), reg.Snapshot(), node)
		},
	}
	list.Flags().IntVarP(&node, "node", "n", 0, "only show channels of this node")

	cmd.AddCommand(list)
	return cmd
}

// printChannels writes the channels as an aligned table. A positive node
// restricts the output to that node.
func printChannels(w io.Writer, channels []registry.Channel, node int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // column padding
	fmt.Fprintln(tw, "NODE\tCHILD\tSENSOR\tDEVICE\tTYPE\tREADING\tLAST UPDATE\tINFO")

	for _, ch := range channels {
		if node > 0 && ch.Node != node {
			continue
		}
		device := "-"
		if ch.Mapped() {
			device = strconv.Itoa(ch.DeviceID)
		}
		last := "-"
		if !ch.LastUpdate.IsZero() {
			last = ch.LastUpdate.Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			ch.Node, ch.Child, ch.SensorType, device, ch.DeviceType, ch.Reading, last, ch.NodeInfo)
	}
	return tw.Flush()
}
