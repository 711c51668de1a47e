package logger

import (
	"bytes"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/underthemoss/construction-taxonomy/errors"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func TestConsoleEncoderKeepsEveryField(t *testing.T) {
	enc := newConsoleEncoder()
	entry := zapcore.Entry{
		Level:      zapcore.WarnLevel,
		Time:       time.Date(2025, 5, 1, 13, 4, 35, 0, time.UTC),
		LoggerName: "merge",
		Message:    "candidate rejected",
	}

	buf, err := enc.EncodeEntry(entry, []zapcore.Field{
		zap.String(FieldCode, "weight"),
		zap.String(FieldReason, "duplicate_code"),
		zap.Int(FieldCount, 3),
		zap.Bool("dry_run", true),
		zap.Error(errors.New("boom")),
	})
	require.NoError(t, err)

	line := stripANSI(buf.String())
	assert.Contains(t, line, "13:04:35")
	assert.Contains(t, line, "WARN")
	assert.Contains(t, line, "merge")
	assert.Contains(t, line, "candidate rejected")
	assert.Contains(t, line, "code=weight")
	assert.Contains(t, line, "reason=duplicate_code")
	assert.Contains(t, line, "count=3")
	assert.Contains(t, line, "dry_run=true")
	assert.Contains(t, line, "error=boom")
}

func TestConsoleEncoderContextFields(t *testing.T) {
	var out bytes.Buffer
	log := New(&out, zapcore.InfoLevel).With(FieldBatchID, "b-1")

	log.Infow("record written", FieldCode, "length")

	line := stripANSI(out.String())
	assert.Contains(t, line, "batch_id=b-1")
	assert.Contains(t, line, "code=length")
	assert.NotContains(t, line, "INFO")
}

func TestNewRespectsLevel(t *testing.T) {
	var out bytes.Buffer
	log := New(&out, zapcore.WarnLevel)

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.WarnLevel},
		{0, zapcore.WarnLevel},
		{1, zapcore.InfoLevel},
		{2, zapcore.DebugLevel},
		{5, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VerbosityToLevel(tt.verbosity), "verbosity %d", tt.verbosity)
	}
	assert.False(t, ShouldLogDecisions(1))
	assert.True(t, ShouldLogDecisions(2))
}

func TestInitializeConsole(t *testing.T) {
	t.Cleanup(func() { Logger = zap.NewNop().Sugar() })

	var out bytes.Buffer
	require.NoError(t, Initialize(Options{Verbosity: 1, Output: &out}))
	assert.False(t, JSONOutput)

	Named("store").Infow("consolidated", FieldCount, 12)
	line := stripANSI(out.String())
	assert.Contains(t, line, "store")
	assert.Contains(t, line, "count=12")
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewNop().Sugar()
	assert.Same(t, l, OrNop(l))
}
