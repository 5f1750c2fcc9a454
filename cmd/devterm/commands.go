package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/devterm/internal/bridge"
	"github.com/muurk/devterm/internal/config"
	"github.com/muurk/devterm/internal/logging"
	"github.com/muurk/devterm/internal/session"
	"github.com/muurk/devterm/internal/transport"
	"github.com/muurk/devterm/internal/ui"
)

// reportedError marks an error whose failure box was already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func silentError(err error) bool {
	var reported *reportedError
	return errors.As(err, &reported)
}

// fail prints a failure box to stderr and returns err marked as reported.
func fail(title string, err error, tips ...string) error {
	ui.NewFailureResult(title, err, tips).Fprint(os.Stderr)
	return &reportedError{err: err}
}

// setupLogging initializes zap. The interactive screen owns stdout, so it
// logs to a file whenever logging is enabled.
func setupLogging(interactive bool, defaultLevel string) error {
	level := logLevelFlag
	if level == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
		level = defaultLevel
	}
	output := logFileFlag
	if interactive && output == "" && os.Getenv(logging.LogFileEnvVar) == "" {
		output = logging.DefaultLogFile
	}
	if err := logging.Initialize(level, output); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// loadConfig resolves and loads the configuration file.
func loadConfig() (*config.Config, string, error) {
	path, err := config.Resolve(configFlag)
	if err != nil {
		return nil, configFlag, fail("Configuration not found", err,
			"Pass the file with -j/--config",
			"Create an example with 'devterm example-config "+configFlag+"'",
		)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, fail("Invalid configuration", err,
			`Required keys: "prefix", "sufix", "init", "commands"`,
			"Compare with the output of 'devterm example-config'",
		)
	}
	return cfg, path, nil
}

// brokerAddress returns the configured broker, browsing mDNS when the
// address is empty or "mdns".
func brokerAddress(ctx context.Context, remote *config.Remote) (string, error) {
	if !transport.NeedsDiscovery(remote.Broker) {
		return remote.Broker, nil
	}

	timeout, err := time.ParseDuration(discoverTimeout)
	if err != nil {
		return "", fmt.Errorf("invalid --discover-timeout %q: %w", discoverTimeout, err)
	}
	fmt.Fprintf(os.Stderr, "Looking for an MQTT broker on the local network (timeout: %s)...\n", timeout)

	addr, err := transport.DiscoverBroker(ctx, timeout)
	if err != nil {
		return "", fail("No broker found", err,
			"Check that the broker advertises "+transport.BrokerServiceType+" over mDNS",
			`Set "remote.broker" in the configuration to skip discovery`,
			"Try a longer --discover-timeout",
		)
	}
	logging.Info("Discovered broker", zap.String("addr", addr))
	return addr, nil
}

func serialTransport() *transport.Serial {
	return transport.NewSerial(transport.SerialOptions{
		Device:   portFlag,
		BaudRate: baudFlag,
	})
}

func serialTips() []string {
	return []string{
		"Check that the device is plugged in and the path is right (-p)",
		"Make sure your user may open the port (e.g. member of the dialout group)",
		"Close other programs that hold the port open",
	}
}

func brokerTips(addr string) []string {
	return []string{
		"Check that the broker at " + transport.BrokerURL(addr) + " is running",
		"Check \"remote.broker\" in the configuration",
	}
}

// runTerminal runs the interactive session.
func runTerminal(cmd *cobra.Command, args []string) error {
	if err := setupLogging(true, ""); err != nil {
		return err
	}

	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	logging.Info("Loaded configuration",
		zap.String("path", path),
		zap.Int("commands", len(cfg.Commands)),
		zap.Int("macros", len(cfg.Macros)),
	)

	if !ui.IsInteractive() {
		return errors.New("devterm needs an interactive terminal; use 'devterm bridge' for headless operation")
	}

	ctx := cmd.Context()

	var (
		link transport.Transport
		tips []string
	)
	if remoteFlag || portFlag == remotePort {
		if !cfg.HasRemote() {
			return fail("No remote configured", fmt.Errorf("%s has no \"remote\" block", path),
				`Add "remote": {"broker", "publish", "subscribe"} to the configuration`,
			)
		}
		addr, err := brokerAddress(ctx, cfg.Remote)
		if err != nil {
			return err
		}
		link = transport.NewBroker(transport.BrokerOptions{
			Broker:    addr,
			Publish:   cfg.Remote.Publish,
			Subscribe: cfg.Remote.Subscribe,
		})
		tips = brokerTips(addr)
	} else {
		link = serialTransport()
		tips = serialTips()
	}

	err = session.New(cfg, link).Run(ctx)
	var connErr *transport.ConnectionError
	if errors.As(err, &connErr) {
		return fail("Could not connect to "+link.Target(), err, tips...)
	}
	return err
}

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Relay a local serial device to the MQTT broker",
	Long: `Run headless next to the device and relay it to the broker named in the
configuration's "remote" block, so that 'devterm --remote' can reach it from
another machine.

Lines read from the serial port are published to remote.subscribe; messages
arriving on remote.publish are written to the serial port unchanged.`,
	Example: `  # Bridge the default port
  devterm bridge

  # Bridge another port with debug logging
  devterm bridge -p /dev/ttyACM0 --log-level debug`,
	RunE: runBridge,
}

func runBridge(cmd *cobra.Command, args []string) error {
	if err := setupLogging(false, "info"); err != nil {
		return err
	}

	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.HasRemote() {
		return fail("No remote configured", fmt.Errorf("%s has no \"remote\" block", path),
			`Add "remote": {"broker", "publish", "subscribe"} to the configuration`,
		)
	}

	ctx := cmd.Context()
	opts := bridge.MirrorTopics(cfg.Remote)
	if opts.Broker, err = brokerAddress(ctx, cfg.Remote); err != nil {
		return err
	}

	fmt.Println(ui.NewHeader("Serial bridge", "devterm "+strings.Join(os.Args[1:], " "),
		ui.Detail{Key: "Serial", Value: fmt.Sprintf("%s @ %d", portFlag, baudFlag)},
		ui.Detail{Key: "Broker", Value: transport.BrokerURL(opts.Broker)},
		ui.Detail{Key: "Publish", Value: opts.Publish},
		ui.Detail{Key: "Subscribe", Value: opts.Subscribe},
	).Render())

	serial := serialTransport()
	err = bridge.New(serial, transport.NewBroker(opts)).Run(ctx)

	var connErr *transport.ConnectionError
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return nil
	case errors.As(err, &connErr) && connErr.Transport == serial.Name():
		return fail("Could not open "+portFlag, err, serialTips()...)
	case errors.As(err, &connErr):
		return fail("Could not connect to the broker", err, brokerTips(opts.Broker)...)
	default:
		return fail("Bridge stopped", err, serialTips()...)
	}
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration file",
	Long: `Load the configuration file, report every problem found and print a
summary of the commands and macros it defines.`,
	Example: `  devterm check -j board.json`,
	RunE:    runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	if err := setupLogging(false, ""); err != nil {
		return err
	}

	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	result := ui.NewSuccessResult("Configuration is valid",
		ui.Detail{Key: "File", Value: path},
		ui.Detail{Key: "Prefix", Value: fmt.Sprintf("%q", cfg.Prefix)},
		ui.Detail{Key: "Suffix", Value: fmt.Sprintf("%q", cfg.Suffix)},
		ui.Detail{Key: "Init", Value: fmt.Sprintf("%q", cfg.Init)},
		ui.Detail{Key: "Commands", Value: strings.Join(cfg.Commands, ", ")},
	)
	if names := cfg.MacroNames(); len(names) > 0 {
		result.AddDetail("Macros", strings.Join(names, ", "))
	}
	if cfg.HasRemote() {
		broker := cfg.Remote.Broker
		if transport.NeedsDiscovery(broker) {
			broker = "discovered via mDNS"
		}
		result.AddDetail("Broker", broker)
		result.AddDetail("Topics", fmt.Sprintf("publish %s, subscribe %s", cfg.Remote.Publish, cfg.Remote.Subscribe))
	}
	result.Fprint(os.Stdout)
	return nil
}

var exampleConfigCmd = &cobra.Command{
	Use:   "example-config [path]",
	Short: "Write an annotated example configuration",
	Long: `Write an example configuration file with comments explaining each key.
An existing file is never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultFile
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteExample(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}
