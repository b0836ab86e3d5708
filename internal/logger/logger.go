package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log = logrus.New()

// Init configures the shared JSON logger. When filePath is set, entries are
// also written to a rotated file.
func Init(level, filePath string) {
	log = logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z",
	})

	var out io.Writer = os.Stdout
	if filePath != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	}
	log.SetOutput(out)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)
}

// SetOutput redirects the logger, mostly for tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func Debug(args ...interface{}) {
	log.Debug(args...)
}

func Info(args ...interface{}) {
	log.Info(args...)
}

func Warn(args ...interface{}) {
	log.Warn(args...)
}

func Error(args ...interface{}) {
	log.Error(args...)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}

func Writer() *io.PipeWriter {
	return log.Writer()
}

// Logrus exposes the underlying logger for libraries that take a Printf-style writer.
func Logrus() *logrus.Logger {
	return log
}
