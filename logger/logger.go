/*
Leveled logger shared by the migration runner, the state syncers and the HTTP server.
Entries bound to a migration carry its id in the "prefix" field rendered by the prefixed formatter.
*/
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

const prefixField = "prefix"

var logger = logrus.New()

func init() {
	logger.Out = os.Stdout
	logger.Level = logrus.InfoLevel
	logger.Formatter = new(prefixed.TextFormatter)
}

func SetOut(out io.Writer) {
	logger.Out = out
}

func SetLevel(level string) error {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logger.Level = l
	return nil
}

//Entry logging every message under a fixed prefix
type Entry struct {
	entry *logrus.Entry
}

func WithPrefix(prefix string) *Entry {
	return &Entry{entry: logger.WithField(prefixField, prefix)}
}

//Entry for the migration with the given id
func Migration(id string) *Entry {
	return WithPrefix(id)
}

func (e *Entry) Debug(format string, args ...interface{}) {
	e.entry.Debugf(format, args...)
}

func (e *Entry) Error(format string, args ...interface{}) {
	e.entry.Errorf(format, args...)
}

func (e *Entry) Warn(format string, args ...interface{}) {
	e.entry.Warnf(format, args...)
}

func (e *Entry) Info(format string, args ...interface{}) {
	e.entry.Infof(format, args...)
}

func Debug(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

func Error(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

func Warn(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

func Info(format string, args ...interface{}) {
	logger.Infof(format, args...)
}
