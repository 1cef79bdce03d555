package console

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger writes leveled, timestamped records to a terminal stream.
type Logger struct {
	logger *log.Logger
}

type Params struct {
	// Level is one of debug, info, warn or error. Empty means info.
	Level string
	// JSON switches from the human-readable layout to one JSON object per line.
	JSON bool
	// Output defaults to stderr so stdout stays free for reports and MCP.
	Output io.Writer
}

func New(params Params) (*Logger, error) {
	level := log.InfoLevel
	if params.Level != "" {
		parsed, err := log.ParseLevel(params.Level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		level = parsed
	}
	out := params.Output
	if out == nil {
		out = os.Stderr
	}
	opts := log.Options{
		ReportTimestamp: true,
		Level:           level,
	}
	if params.JSON {
		opts.Formatter = log.JSONFormatter
	}
	return &Logger{logger: log.NewWithOptions(out, opts)}, nil
}

func (c *Logger) Debug(message string, keyvals ...any) {
	c.logger.Debug(message, keyvals...)
}

func (c *Logger) Info(message string, keyvals ...any) {
	c.logger.Info(message, keyvals...)
}

func (c *Logger) Warn(message string, keyvals ...any) {
	c.logger.Warn(message, keyvals...)
}

func (c *Logger) Error(message string, keyvals ...any) {
	c.logger.Error(message, keyvals...)
}
