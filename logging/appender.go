package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// DefaultTimeFormatStr is the default time format string for log appenders.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries. This is a subset of the `zapcore.Core` interface.
type Appender interface {
	// Write submits a structured log entry to the appender for logging.
	Write(zapcore.Entry, []zapcore.Field) error
	// Sync is for signaling that any buffered logs to `Write` should be flushed. E.g: at shutdown.
	Sync() error
}

// ConsoleAppender will create human readable lines from log events and write them to the desired
// output sync. E.g: stdout or a file.
type ConsoleAppender struct {
	io.Writer
}

// NewStdoutAppender creates a new appender that outputs to stdout.
func NewStdoutAppender() ConsoleAppender {
	return ConsoleAppender{os.Stdout}
}

// NewWriterAppender creates a new appender that outputs to the input writer.
func NewWriterAppender(writer io.Writer) ConsoleAppender {
	return ConsoleAppender{writer}
}

// Write outputs the log entry to the underlying stream.
func (appender ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line, err := formatEntry(entry, fields)
	fmt.Fprintln(appender.Writer, line)
	return err
}

// Sync is a no-op.
func (appender ConsoleAppender) Sync() error {
	return nil
}

// formatEntry renders entry as one tab separated line: time, level, logger name, caller, message
// and the fields as a JSON object. The fields keep their order. If they fail to encode the line
// is returned without them, along with the error.
func formatEntry(entry zapcore.Entry, fields []zapcore.Field) (string, error) {
	var line strings.Builder
	line.WriteString(entry.Time.Format(DefaultTimeFormatStr))
	line.WriteString("\t" + strings.ToUpper(entry.Level.String()))
	if entry.LoggerName != "" {
		line.WriteString("\t" + entry.LoggerName)
	}
	if entry.Caller.Defined {
		line.WriteString("\t" + entry.Caller.TrimmedPath())
	}
	line.WriteString("\t" + entry.Message)
	if len(fields) == 0 {
		return line.String(), nil
	}

	// an empty Entry so that only the fields are encoded
	buf, err := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true}).EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return line.String(), err
	}
	defer buf.Free()
	line.WriteString("\t" + buf.String())
	return line.String(), nil
}
