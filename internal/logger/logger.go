package logger

import (
	"io"
	"log"
	"os"
)

var Log *log.Logger

// Init points the session log at the given file. Components log here so
// stdout stays reserved for rendered output.
func Init(logFilePath string) error {
	file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
	if err != nil {
		return err
	}

	Log = log.New(file, "", log.LstdFlags)
	Log.Println("Logger initialized.")
	return nil
}

// InitDiscard installs a no-op logger. Used by tests and by commands that
// run before the config (and therefore the log path) is known.
func InitDiscard() {
	Log = log.New(io.Discard, "", log.LstdFlags)
}
