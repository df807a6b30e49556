// mysgw bridges a MySensors serial gateway and a Domoticz controller.
//
// Sensor readings arriving on the serial link are pushed to Domoticz as
// virtual device updates; switch changes made in Domoticz are polled back
// and sent to the nodes. Node ids, child presentations and the mapping to
// Domoticz devices are kept in a JSON registry snapshot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// defaultConfigPath is used when neither --config nor MYSGW_CONFIG is set.
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "mysgw",
		Short: "MySensors serial gateway to Domoticz bridge",
		Long: `mysgw translates between a MySensors serial gateway and the Domoticz
HTTP/JSON API.

Examples:
  # Run the bridge
  mysgw run --config /etc/mysgw/config.yaml

  # Show the channel registry
  mysgw registry list`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default $MYSGW_CONFIG or "+defaultConfigPath+")")

	resolve := func() string { return getConfigPath(configPath) }

	root.AddCommand(
		newRunCmd(resolve),
		newRegistryCmd(resolve),
		newVersionCmd(),
	)
	return root
}

// getConfigPath returns the flag value, then MYSGW_CONFIG, then the default.
func getConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if path := os.Getenv("MYSGW_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mysgw %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
