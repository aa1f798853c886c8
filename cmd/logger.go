package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// newLogger builds the CLI logger writing to out. The "auto" format uses
// colors only when out is a terminal.
func newLogger(level, format string, out *os.File) (logging.Logger, error) {
	lvl, err := logging.ToLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encoder, err := consoleEncoder(format, out)
	if err != nil {
		return nil, err
	}

	return logging.NewLogger(
		"",
		logging.NewWrappedCore(lvl, out, encoder),
	), nil
}

func consoleEncoder(format string, out *os.File) (zapcore.Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto":
		if term.IsTerminal(int(out.Fd())) {
			return logging.Colors.ConsoleEncoder(), nil
		}
		return logging.Plain.ConsoleEncoder(), nil
	case "plain":
		return logging.Plain.ConsoleEncoder(), nil
	case "colors":
		return logging.Colors.ConsoleEncoder(), nil
	case "json":
		return logging.JSON.ConsoleEncoder(), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (use auto, plain, colors or json)", format)
	}
}
