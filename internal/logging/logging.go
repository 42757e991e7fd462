// Package logging builds the process logger: logr on top of zerolog.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatAuto    = "auto"
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns a logger writing to w. level is a zerolog level name
// (debug shows V(1) messages). format "auto" picks console output when
// w is a terminal and JSON lines otherwise.
func New(w io.Writer, level, format string) (logr.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return logr.Discard(), fmt.Errorf("log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	console := false
	switch strings.ToLower(format) {
	case FormatAuto, "":
		console = isTerminal(w)
	case FormatConsole:
		console = true
	case FormatJSON:
	default:
		return logr.Discard(), fmt.Errorf("log format %q: want auto, console or json", format)
	}

	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"

	out := w
	if console {
		out = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    !isTerminal(w) || os.Getenv("NO_COLOR") != "",
			TimeFormat: time.RFC3339,
		}
	}

	zl := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	return zerologr.New(&zl), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
