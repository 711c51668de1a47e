package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global logger instance
	Logger *zap.SugaredLogger
	// JSONOutput records whether Initialize selected the JSON encoder
	JSONOutput bool
)

func init() {
	// Safe no-op logger until the CLI calls Initialize
	Logger = zap.NewNop().Sugar()
}

// Options controls how Initialize builds the global logger
type Options struct {
	JSON      bool      // production JSON encoder instead of the console encoder
	Verbosity int       // CLI -v count, see VerbosityToLevel
	Output    io.Writer // console destination (nil = stderr)
}

// Initialize replaces the global logger according to opts
func Initialize(opts Options) error {
	JSONOutput = opts.JSON
	level := VerbosityToLevel(opts.Verbosity)

	if opts.JSON {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		zapLogger, err := config.Build()
		if err != nil {
			return err
		}
		Logger = zapLogger.Sugar()
		return nil
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	Logger = New(out, level)
	return nil
}

// New builds a console logger writing to w at the given level.
// Tests use it to capture output without touching the global logger.
func New(w io.Writer, level zapcore.Level) *zap.SugaredLogger {
	core := zapcore.NewCore(newConsoleEncoder(), zapcore.AddSync(w), level)
	return zap.New(core).Sugar()
}

// Named returns a child of the global logger for a component
func Named(component string) *zap.SugaredLogger {
	return Logger.Named(component)
}

// OrNop returns l, or a no-op logger when l is nil.
// Components accept an optional logger at construction and call this once.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}

// Cleanup flushes any buffered log entries
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
