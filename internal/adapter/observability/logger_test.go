package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/pm-interview-coach/internal/config"
)

func TestSetupLogger_DevAndProd(t *testing.T) {
	lg := SetupLogger(config.Config{AppEnv: "dev", OTELServiceName: "svc"})
	if lg == nil {
		t.Fatalf("nil logger")
	}
	lg2 := SetupLogger(config.Config{AppEnv: "prod", OTELServiceName: "svc"})
	if lg2 == nil {
		t.Fatalf("nil logger prod")
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, levelFor(config.Config{AppEnv: "dev"}))
	assert.Equal(t, slog.LevelInfo, levelFor(config.Config{AppEnv: "prod"}))
	assert.Equal(t, slog.LevelWarn, levelFor(config.Config{AppEnv: "dev", LogLevel: "WARN"}))
	assert.Equal(t, slog.LevelError, levelFor(config.Config{LogLevel: "error"}))
	assert.Equal(t, slog.LevelInfo, levelFor(config.Config{AppEnv: "dev", LogLevel: "info"}))
}

func TestNewLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	lg := newLogger(&buf, config.Config{AppEnv: "test", OTELServiceName: "pm-interview-coach"})
	lg.Info("hello", slog.String("framework", "star"))
	lg.Debug("hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "pm-interview-coach", rec["service"])
	assert.Equal(t, "test", rec["env"])
	assert.Equal(t, "star", rec["framework"])
	assert.NotContains(t, buf.String(), "hidden")
}
