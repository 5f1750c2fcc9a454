// Devterm is an interactive terminal for line-oriented devices.
//
// It talks to a device over a local serial port or, through a
// publish/subscribe broker, to a device attached to a remote bridge. A
// command palette offers recent commands, macros and the commands listed in
// the configuration file; everything the device sends scrolls below it.
//
// Usage:
//
//	devterm [flags]
//	devterm bridge [flags]
//
// See 'devterm --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/devterm/internal/logging"
	"github.com/muurk/devterm/internal/transport"
	"github.com/muurk/devterm/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		if !silentError(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// Global flags
var (
	portFlag        string
	remoteFlag      bool
	configFlag      string
	baudFlag        int
	logLevelFlag    string
	logFileFlag     string
	discoverTimeout string
)

// remotePort is the --port value that selects the broker transport.
const remotePort = "R"

var rootCmd = &cobra.Command{
	Use:   "devterm",
	Short: "Interactive terminal for line-oriented devices",
	Long: `An interactive terminal for devices that speak a line-oriented command
protocol over a serial port or through an MQTT broker bridge.

Every command is framed with the configured prefix and suffix before it is
sent. Macros expand into several commands and may run a script against the
device's reply.`,
	Example: `  # Talk to the device on the default serial port
  devterm

  # Another port and configuration file
  devterm -p /dev/ttyACM0 -j board.json

  # Reach a remote device through the broker named in the configuration
  devterm -p R
  devterm --remote`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTerminal,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&portFlag, "port", "p", "/dev/ttyUSB0", `Serial device, or "R" for the broker transport`)
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "j", "term.json", "Configuration file (JSON with comments, or YAML)")
	rootCmd.PersistentFlags().IntVar(&baudFlag, "baud", transport.DefaultBaudRate, "Serial baud rate")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error (default: $"+logging.LogLevelEnvVar+" or silent)")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Log destination (default: $"+logging.LogFileEnvVar+")")
	rootCmd.PersistentFlags().StringVar(&discoverTimeout, "discover-timeout", "5s", "How long to browse mDNS when the broker address is empty or \"mdns\"")

	rootCmd.Flags().BoolVar(&remoteFlag, "remote", false, `Use the broker transport (same as -p R)`)

	rootCmd.AddCommand(bridgeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(exampleConfigCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("devterm %s\n", version.Full())
	},
}
