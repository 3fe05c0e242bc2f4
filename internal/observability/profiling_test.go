package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/football-live/internal/config"
	"github.com/riskibarqy/football-live/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestProfilingDisabledIsNoop(t *testing.T) {
	cfg := config.Config{}

	stop, err := InitPyroscope(cfg, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, stop())

	srv, err := StartPprofServer(cfg, logging.NewNop())
	require.NoError(t, err)
	assert.Nil(t, srv)
	require.NoError(t, StopPprofServer(context.Background(), srv, nil))
}

func TestStartPprofServer_ShutsDown(t *testing.T) {
	cfg := config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:0"}

	srv, err := StartPprofServer(cfg, logging.NewNop())
	require.NoError(t, err)
	require.NotNil(t, srv)
	require.NoError(t, StopPprofServer(context.Background(), srv, logging.NewNop()))
}

func TestPprofMux_ServesIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	newPprofMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newPprofMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/matches", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPyroscopeLogger_FormatsMessages(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := pyroscopeLogger{logger: logging.FromZap(zap.New(core))}

	l.Infof("upload %d profiles", 3)
	l.Errorf("upload failed: %s", "timeout")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "upload 3 profiles", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}
