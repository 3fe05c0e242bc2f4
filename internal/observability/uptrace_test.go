package observability

import (
	"context"
	"testing"

	"github.com/riskibarqy/football-live/internal/config"
	"github.com/riskibarqy/football-live/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitUptrace_Disabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: false,
		ServiceName:    "football-live-api",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	base := logging.NewNop()
	logger, shutdown, err := InitUptrace(cfg, base)
	require.NoError(t, err)
	assert.Same(t, base, logger)
	require.NoError(t, shutdown(context.Background()))
}

func TestInitUptrace_EmptyDSNIsNoop(t *testing.T) {
	cfg := config.Config{UptraceEnabled: true, UptraceDSN: "  "}

	logger, shutdown, err := InitUptrace(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, logger)
	require.NoError(t, shutdown(context.Background()))
}
