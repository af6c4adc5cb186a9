package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel(" DEBUG "))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestNew(t *testing.T) {
	l, err := New(Config{Level: "debug", Development: true})
	require.NoError(t, err)
	l.With(String("k", "v")).Debug("hello")
}

func TestFromZap_With(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).With(String("run_id", "r1"))

	l.Warn("page size unchanged", Err(errors.New("timeout")), Int("page", 2))

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, "page size unchanged", e.Message)
	assert.Equal(t, zapcore.WarnLevel, e.Level)
	fields := e.ContextMap()
	assert.Equal(t, "r1", fields["run_id"])
	assert.Equal(t, int64(2), fields["page"])
	assert.Equal(t, "timeout", fields["error"])
}

func TestOrNop(t *testing.T) {
	assert.Equal(t, Nop{}, OrNop(nil))
	l := NewNop()
	assert.Equal(t, l, OrNop(l))
	assert.NoError(t, OrNop(nil).Sync())
}
