package cfg

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConfigureLogging sets the global zerolog level and output. Pretty output
// uses the console writer on w, otherwise JSON lines are written to w.
func ConfigureLogging(s Settings, w io.Writer) error {
	if w == nil {
		w = os.Stderr
	}

	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)

	if s.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
	} else {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	}
	return nil
}
