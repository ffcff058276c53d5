package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/benjamin-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		name      string
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{name: "debug", level: "debug", wantDebug: true, wantInfo: true},
		{name: "info", level: "info", wantDebug: false, wantInfo: true},
		{name: "uppercase warn", level: "WARN", wantDebug: false, wantInfo: false},
		{name: "invalid falls back to info", level: "chatty", wantDebug: false, wantInfo: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, err := Setup(config.ServerConfig{LogLevel: tc.level, LogFormat: "json"})
			require.NoError(t, err)
			require.NotNil(t, l)

			ctx := context.Background()
			assert.Equal(t, tc.wantDebug, l.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tc.wantInfo, l.Enabled(ctx, slog.LevelInfo))
			assert.Same(t, l, slog.Default())
		})
	}
}

func TestNew_TextFormat(t *testing.T) {
	t.Parallel()

	buf := &TestLogBuffer{}
	l := New("info", "text", buf)
	l.Info("hello", "project", "Google")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "project=Google")
}

func TestNew_RedactsSensitiveValues(t *testing.T) {
	t.Parallel()

	l, buf := NewTestLogger(t)
	l.Info("login attempt",
		"user_name", "a.elmurzaev95",
		"password", "hunter2-secret-pass",
		"header", "Bearer abc.def-ghi_jkl",
		"dsn", "postgres://app:s3cr3tpw@db:5432/benjamin",
	)

	out := buf.String()
	assert.Contains(t, out, "a.elmurzaev95")
	assert.NotContains(t, out, "hunter2-secret-pass")
	assert.NotContains(t, out, "abc.def-ghi_jkl")
	assert.NotContains(t, out, "s3cr3tpw")
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	l, buf := NewTestLogger(t)
	fallback := slog.New(slog.NewJSONHandler(&TestLogBuffer{}, nil))

	t.Run("empty context uses fallback", func(t *testing.T) {
		assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	})

	t.Run("stored logger wins", func(t *testing.T) {
		ctx := WithLogger(context.Background(), l.With("trace_id", "t-1"))
		FromContext(ctx).Info("inside request")

		entries, err := buf.GetLogEntries()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "t-1", entries[0]["trace_id"])
		assert.Equal(t, []string{"inside request"}, buf.Messages())
	})

	t.Run("nil context uses fallback", func(t *testing.T) {
		//nolint:staticcheck // exercising nil guard
		assert.Same(t, fallback, FromContextOrDefault(nil, fallback))
	})
}
