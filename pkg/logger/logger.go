// Package logx configures the process-wide zerolog logger. Conversation text
// is written to stdout by the chat loop, so all logging goes to stderr.
package logx

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config is populated from LOG_* environment variables. PrettyFormat switches
// from JSON lines to the human console writer for local runs.
type Config struct {
	Debug        bool `split_words:"true" default:"false"`
	PrettyFormat bool `split_words:"true" default:"false"`
}

// Init replaces the global logger. Without arguments it applies the defaults
// (info level, JSON output).
func Init(opts ...Config) {
	var conf Config
	if len(opts) > 0 {
		conf = opts[0]
	}

	var base zerolog.Logger
	if conf.PrettyFormat {
		base = zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
		}))
	} else {
		base = zerolog.New(os.Stderr)
	}

	level := zerolog.InfoLevel
	if conf.Debug {
		level = zerolog.DebugLevel
	}

	log.Logger = base.Level(level).With().Timestamp().Caller().Logger()
}
