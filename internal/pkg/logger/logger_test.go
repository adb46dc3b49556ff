package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithFieldsAreAttached(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(zap.NewNop()) })

	ctx := WithFields(context.Background(), "unit", "GU_504260")
	ctx = WithFields(ctx, "lag", "D-1")
	Warnf(ctx, "missing %s", "demand")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "missing demand", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "GU_504260", fields["unit"])
	assert.Equal(t, "D-1", fields["lag"])
}
