// Package config resolves micdump settings from flags, MICDUMP_* environment
// variables, an optional config file and built-in defaults, in that order.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sdmic/micdump/pkg/serialcap"
)

// EnvPrefix prefixes every environment variable, e.g. MICDUMP_SERIAL_PORT.
const EnvPrefix = "MICDUMP"

// Keys shared by flags, environment variables and config files.
const (
	KeyDecodeOutput  = "decode-output"
	KeyStrict        = "strict"
	KeySwap16        = "swap16"
	KeyAtomic        = "atomic"
	KeySerialPort    = "serial-port"
	KeyBaudRate      = "baud"
	KeyCaptureOutput = "capture-output"
	KeyProgressEvery = "progress-every"
	KeyTimeout       = "timeout"
	KeyLogLevel      = "log-level"
	KeyLogFormat     = "log-format"
)

// Config holds resolved settings.
type Config struct {
	DecodeOutput  string
	Strict        bool
	Swap16        bool
	Atomic        bool
	SerialPort    string
	BaudRate      int
	CaptureOutput string
	ProgressEvery int
	Timeout       time.Duration
	LogLevel      string
	LogFormat     string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DecodeOutput:  "output.pcm",
		SerialPort:    DefaultSerialPort(),
		BaudRate:      serialcap.DefaultBaudRate,
		CaptureOutput: "data.txt",
		ProgressEvery: serialcap.DefaultProgressEvery,
		LogLevel:      "info",
		LogFormat:     "auto",
	}
}

// DefaultSerialPort returns the port the recorder usually enumerates as.
func DefaultSerialPort() string {
	if runtime.GOOS == "windows" {
		return "COM9"
	}
	return "/dev/ttyACM0"
}

// New returns a viper instance with defaults and environment lookup set up.
// When configFile is not empty it is read as well.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()

	d := Default()
	v.SetDefault(KeyDecodeOutput, d.DecodeOutput)
	v.SetDefault(KeyStrict, d.Strict)
	v.SetDefault(KeySwap16, d.Swap16)
	v.SetDefault(KeyAtomic, d.Atomic)
	v.SetDefault(KeySerialPort, d.SerialPort)
	v.SetDefault(KeyBaudRate, d.BaudRate)
	v.SetDefault(KeyCaptureOutput, d.CaptureOutput)
	v.SetDefault(KeyProgressEvery, d.ProgressEvery)
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		if err := ReadFile(v, configFile); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// ReadFile merges configFile into v. The format follows the file extension.
func ReadFile(v *viper.Viper, configFile string) error {
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}
	return nil
}

// BindFlag binds key to the named flag in fs.
func BindFlag(v *viper.Viper, key string, fs *pflag.FlagSet, name string) error {
	flag := fs.Lookup(name)
	if flag == nil {
		return fmt.Errorf("flag --%s is not defined", name)
	}
	return v.BindPFlag(key, flag)
}

// Load resolves every key.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		DecodeOutput:  v.GetString(KeyDecodeOutput),
		Strict:        v.GetBool(KeyStrict),
		Swap16:        v.GetBool(KeySwap16),
		Atomic:        v.GetBool(KeyAtomic),
		SerialPort:    v.GetString(KeySerialPort),
		BaudRate:      v.GetInt(KeyBaudRate),
		CaptureOutput: v.GetString(KeyCaptureOutput),
		ProgressEvery: v.GetInt(KeyProgressEvery),
		Timeout:       v.GetDuration(KeyTimeout),
		LogLevel:      v.GetString(KeyLogLevel),
		LogFormat:     v.GetString(KeyLogFormat),
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	var errs []error
	if c.DecodeOutput == "" {
		errs = append(errs, fmt.Errorf("%s cannot be empty", KeyDecodeOutput))
	}
	if c.CaptureOutput == "" {
		errs = append(errs, fmt.Errorf("%s cannot be empty", KeyCaptureOutput))
	}
	if c.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive (got %d)", KeyBaudRate, c.BaudRate))
	}
	if c.ProgressEvery < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative (got %d)", KeyProgressEvery, c.ProgressEvery))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative (got %s)", KeyTimeout, c.Timeout))
	}
	return errors.Join(errs...)
}
