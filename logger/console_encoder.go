package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorDim   = "\x1b[2m"
	colorWarn  = "\x1b[33m"
	colorError = "\x1b[31m"
	colorName  = "\x1b[36m"
)

var bufferPool = buffer.NewPool()

// consoleEncoder writes calm single-line entries:
//
//	13:04:35  WARN  store  skipped record  code=weight reason=duplicate_code
//
// Context fields added with With() are kept in the embedded map encoder so they
// are rendered alongside per-entry fields. No field is ever dropped.
type consoleEncoder struct {
	*zapcore.MapObjectEncoder
	color bool
}

func newConsoleEncoder() *consoleEncoder {
	return &consoleEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder(), color: true}
}

func (enc *consoleEncoder) Clone() zapcore.Encoder {
	clone := &consoleEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder(), color: enc.color}
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return clone
}

func (enc *consoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := bufferPool.Get()

	final.AppendString(enc.paint(colorDim, ent.Time.Format("15:04:05")))

	if ent.Level != zapcore.InfoLevel {
		final.AppendString("  ")
		final.AppendString(enc.levelString(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(enc.paint(colorName, ent.LoggerName))
	}

	final.AppendString("  ")
	final.AppendString(ent.Message)

	if rendered := enc.renderFields(fields); rendered != "" {
		final.AppendString("  ")
		final.AppendString(rendered)
	}

	final.AppendString("\n")
	return final, nil
}

func (enc *consoleEncoder) levelString(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return enc.paint(colorDim, "DEBUG")
	case zapcore.WarnLevel:
		return enc.paint(colorWarn, "WARN")
	default:
		return enc.paint(colorError, level.CapitalString())
	}
}

// renderFields merges context and entry fields into sorted key=value pairs
func (enc *consoleEncoder) renderFields(fields []zapcore.Field) string {
	merged := zapcore.NewMapObjectEncoder()
	for k, v := range enc.Fields {
		merged.Fields[k] = v
	}
	for _, f := range fields {
		f.AddTo(merged)
	}
	if len(merged.Fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(merged.Fields))
	for k := range merged.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, merged.Fields[k]))
	}
	return strings.Join(parts, " ")
}

func (enc *consoleEncoder) paint(color, s string) string {
	if !enc.color {
		return s
	}
	return color + s + colorReset
}
