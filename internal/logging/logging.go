package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls global logger setup
type Options struct {
	Verbose bool
	JSON    bool      // machine-readable output (used by `serve`)
	Out     io.Writer // defaults to stderr
}

// Init initializes the global logger for CLI use
func Init(verbose bool) {
	Setup(Options{Verbose: verbose})
}

// Setup initializes the global logger from options
func Setup(opts Options) {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	if opts.JSON {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// WithComponent creates a logger with a component field
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}
