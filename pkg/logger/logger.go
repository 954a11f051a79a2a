// Package logger configures the process-wide logrus instance.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the shared logger. Init must be called once at startup;
// before that it behaves as a default logrus logger.
var Log = logrus.New()

// Init sets the log level and optional file output.
func Init(levelStr string, filePath string) error {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	writers := []io.Writer{os.Stdout}
	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		writers = append(writers, file)
	}
	Log.SetOutput(io.MultiWriter(writers...))

	return nil
}
