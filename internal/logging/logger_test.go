package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedact(t *testing.T) {
	t.Run("masks credential keys", func(t *testing.T) {
		out := redact([]interface{}{"user_id", "u1", "jwt_token", "abc", "Password", "hunter2"})
		assert.Equal(t, []interface{}{"user_id", "u1", "jwt_token", "[REDACTED]", "Password", "[REDACTED]"}, out)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		in := []interface{}{"secret", "s"}
		_ = redact(in)
		assert.Equal(t, "s", in[1])
	})

	t.Run("odd length keeps trailing value", func(t *testing.T) {
		out := redact([]interface{}{"token", "t", "dangling"})
		assert.Equal(t, []interface{}{"token", "[REDACTED]", "dangling"}, out)
	})
}

func TestLogger_WritesRedactedFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := &Logger{SugaredLogger: zap.New(core).Sugar()}

	log.With("component", "test").Info("login", "email", "a@b.c", "password", "pw")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "test", fields["component"])
	assert.Equal(t, "[REDACTED]", fields["password"])
	assert.Equal(t, "a@b.c", fields["email"])
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"dev", "prod", ""} {
		l, err := New(mode)
		require.NoError(t, err)
		require.NotNil(t, l)
	}
	NewNop().Info("discarded")
}
