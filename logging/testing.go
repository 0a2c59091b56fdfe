package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

// tbAppender writes entries through testing.TB.Log so that output of parallel tests stays with
// the test that produced it and is only shown on failure or with -v.
type tbAppender struct {
	tb testing.TB
}

// NewTestAppender returns an appender writing the same lines as a ConsoleAppender to tb.
func NewTestAppender(tb testing.TB) Appender {
	return tbAppender{tb}
}

func (app tbAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	app.tb.Helper()
	line, err := formatEntry(entry, fields)
	app.tb.Log(line)
	return err
}

func (app tbAppender) Sync() error {
	return nil
}
