package logger

import (
	"io"
	"os"
	"strings"

	"github.com/labstack/gommon/log"

	"furnit-storefront/internal/config"
)

const textHeader = "${time_rfc3339} ${level} [${prefix}]"

// Factory hands out component loggers that share level, format and output.
type Factory struct {
	level  log.Lvl
	header string
	out    io.Writer
}

func NewFactory(cfg config.Log) *Factory {
	f := &Factory{
		level: ParseLevel(cfg.Level),
		out:   os.Stdout,
	}
	if strings.EqualFold(cfg.Format, "text") {
		f.header = textHeader
	}
	return f
}

// New returns a logger tagged with the component name.
func (f *Factory) New(component string) *log.Logger {
	l := log.New(component)
	l.SetLevel(f.level)
	l.SetOutput(f.out)
	if f.header != "" {
		l.SetHeader(f.header)
	}
	return l
}

func ParseLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// Discard is a silent logger for tests and optional collaborators.
func Discard() *log.Logger {
	l := log.New("discard")
	l.SetOutput(io.Discard)
	l.SetLevel(log.OFF)
	return l
}
