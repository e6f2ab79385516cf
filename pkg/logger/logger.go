package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

func Init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
		ForceColors:     true,
		PadLevelText:    true,
	})
	Logger.SetLevel(logrus.InfoLevel)
}

// SetLevel applies a textual level such as "debug" or "warn". Unknown values
// leave the current level untouched and are reported back to the caller.
func SetLevel(level string) error {
	trimmed := strings.TrimSpace(strings.ToLower(level))
	if trimmed == "" {
		return nil
	}
	parsed, err := logrus.ParseLevel(trimmed)
	if err != nil {
		return err
	}
	Logger.SetLevel(parsed)
	return nil
}

// SetOutput redirects log output, mostly useful for tests and quiet CLI runs.
func SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	Logger.SetOutput(w)
}

func Info(msg string, fields map[string]interface{}) {
	Logger.WithFields(fields).Info(msg)
}

func Error(err error, msg string, fields map[string]interface{}) {
	Logger.WithError(err).WithFields(fields).Error(msg)
}

func Warn(msg string, fields map[string]interface{}) {
	Logger.WithFields(fields).Warn(msg)
}

func Debug(msg string, fields map[string]interface{}) {
	Logger.WithFields(fields).Debug(msg)
}

func Fatal(msg string, fields map[string]interface{}) {
	Logger.WithFields(fields).Fatal(msg)
}
