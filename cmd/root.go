package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sdmic/micdump/pkg/binfile"
	"github.com/sdmic/micdump/pkg/config"
)

// configKeyAnnotation marks a flag as the source of a config key.
const configKeyAnnotation = "micdump/config-key"

var (
	// Global flags
	configFile string

	// Resolved in PersistentPreRunE
	cfg                = config.Default()
	log logging.Logger = logging.NoLog{}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "micdump",
	Short:         "Recorder dump tools",
	SilenceErrors: true,
	SilenceUsage:  true,
	Long: `Tools for getting microphone recordings off the recorder board.

The firmware prints every 16-bit sample as a "0x%04x, " line on its serial
console, framed by "-- start", "-- mid" and "-- end" lines.

Example usage:
  micdump capture --port /dev/ttyACM0 -o data.txt
  micdump hex decode data.txt -o output.pcm --swap16
  micdump wav output.pcm
  micdump hex encode output.pcm --firmware

Environment Variables:
  MICDUMP_<KEY>   Any setting, e.g. MICDUMP_SERIAL_PORT, MICDUMP_BAUD,
                  MICDUMP_DECODE_OUTPUT, MICDUMP_LOG_LEVEL, MICDUMP_TIMEOUT`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", cfg.LogLevel, "Log level: verbo, debug, trace, info, warn, error, off")
	rootCmd.PersistentFlags().String("log-format", cfg.LogFormat, "Log format: auto, plain, colors or json")
	rootCmd.PersistentFlags().Bool("atomic", cfg.Atomic, "Write outputs to a temp file and rename on success")

	bindConfigKey(rootCmd.PersistentFlags(), "log-level", config.KeyLogLevel)
	bindConfigKey(rootCmd.PersistentFlags(), "log-format", config.KeyLogFormat)
	bindConfigKey(rootCmd.PersistentFlags(), "atomic", config.KeyAtomic)
}

// bindConfigKey records that flag name supplies key; loadSettings does the binding.
func bindConfigKey(fs *pflag.FlagSet, name, key string) {
	if err := fs.SetAnnotation(name, configKeyAnnotation, []string{key}); err != nil {
		panic(err)
	}
}

// loadSettings resolves configuration for cmd and sets up logging.
func loadSettings(cmd *cobra.Command) error {
	v, err := config.New(configFile)
	if err != nil {
		return err
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		keys := f.Annotations[configKeyAnnotation]
		if len(keys) == 0 || bindErr != nil {
			return
		}
		bindErr = config.BindFlag(v, keys[0], cmd.Flags(), f.Name)
	})
	if bindErr != nil {
		return bindErr
	}

	resolved, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(resolved.LogLevel, resolved.LogFormat, os.Stderr)
	if err != nil {
		return err
	}

	cfg, log = resolved, logger
	log.Debug("configuration loaded",
		zap.String("command", cmd.CommandPath()),
		zap.String("configFile", v.ConfigFileUsed()),
	)
	return nil
}

// getOperationContext returns a context cancelled on SIGINT/SIGTERM or, when
// timeout is positive, once it expires.
// The returned cancel function must be called to release resources.
func getOperationContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	// Set up signal handling for graceful cancellation
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nOperation cancelled by user")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// statusOutput is where progress text goes. Results written to stdout must
// not be mixed with it.
func statusOutput(outputPath string) *os.File {
	if outputPath == binfile.StdioPath {
		return os.Stderr
	}
	return os.Stdout
}
