package utils

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging configures the global zerolog logger. Unknown levels fall back
// to info. pretty switches to the human-readable console writer.
func SetupLogging(level string, pretty bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05.000"}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// BotLogf provides centralized formatted logging tagged with a component area
func BotLogf(area string, format string, args ...interface{}) {
	log.Info().Str("area", area).Msg(fmt.Sprintf(format, args...))
}

// BotWarnf is BotLogf at warn level, for degraded but recoverable conditions
func BotWarnf(area string, format string, args ...interface{}) {
	log.Warn().Str("area", area).Msg(fmt.Sprintf(format, args...))
}
