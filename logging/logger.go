package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// LevelEnv names the environment variable holding the log level
const LevelEnv = "STREAMCHAIN_LOG_LEVEL"

var RootLogger zerolog.Logger = zerolog.New(
	zerolog.NewConsoleWriter(
		func(w *zerolog.ConsoleWriter) { w.Out = os.Stderr },
		func(w *zerolog.ConsoleWriter) { w.TimeFormat = "15:04:05.000" })).Level(levelFromEnv()).
	With().Timestamp().Logger()

func levelFromEnv() zerolog.Level {
	level, err := zerolog.ParseLevel(os.Getenv(LevelEnv))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// SetLevel changes the level of RootLogger; loggers derived earlier keep theirs
func SetLevel(name string) error {
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return err
	}
	RootLogger = RootLogger.Level(level)
	return nil
}
