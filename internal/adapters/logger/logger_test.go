package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tinify/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger with an injected bytes.Buffer for isolated testing.
// It also sets NO_COLOR=1 to ensure deterministic output without ANSI escape codes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name       string
		log        func(*logger.Logger)
		goldenName string
	}{
		{
			name:       "info",
			log:        func(l *logger.Logger) { l.Info("tinifying release: cf-1.0.tgz") },
			goldenName: "info_basic",
		},
		{
			name:       "warn",
			log:        func(l *logger.Logger) { l.Warn("release has no jobs") },
			goldenName: "warn_basic",
		},
		{
			name:       "error",
			log:        func(l *logger.Logger) { l.Error(os.ErrPermission) },
			goldenName: "error_simple",
		},
		{
			name:       "debug filtered by default",
			log:        func(l *logger.Logger) { l.Debug("removing payload") },
			goldenName: "debug_filtered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			tt.log(lg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Verbose(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetVerbose(true)

	lg.Debug("removing payload")

	assert.Equal(t, "  ● removing payload\n", buf.String())
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Error(nil)

	assert.Empty(t, buf.String())
}

func TestLogger_ErrorMultiline(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Error(errors.New("yaml: unmarshal errors:\n  line 3: cannot unmarshal"))

	assert.Equal(t, "✗ Error: yaml: unmarshal errors:\n         line 3: cannot unmarshal\n", buf.String())
}

func TestLogger_ErrorMetadata(t *testing.T) {
	lg, buf := newTestLogger(t)

	var err error = zerr.Wrap(zerr.New("compiled package payload not found"), "cannot remove redundant package")
	err = zerr.With(err, "path", "cf.tgz")
	err = zerr.With(err, "package", "python")
	lg.Error(err)

	g := goldie.New(t)
	g.Assert(t, "error_metadata", buf.Bytes())
}

func TestPrettyHandler_Attrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	buf := &bytes.Buffer{}
	log := slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.With("release", "cf.tgz").Debug("removing compiled package", "package", "python")
	log.WithGroup("tile").Warn("skipping release", "reason", "not a compiled release")

	assert.Equal(t,
		"  ● removing compiled package\n    release: cf.tgz\n    package: python\n"+
			"! skipping release\n  tile.reason: not a compiled release\n",
		buf.String())
}

func TestLogger_SetJSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Info("output written")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "output written", record["msg"])
}

func TestLogger_SetJSON_Error(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Error(errors.New("boom"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "operation failed", record["msg"])
	assert.Equal(t, "boom", record["error"])
}

func TestLogger_SetOutputNil(t *testing.T) {
	lg, _ := newTestLogger(t)

	require.NotPanics(t, func() {
		lg.SetOutput(nil)
	})
}

func TestNew(t *testing.T) {
	lg := logger.New()
	require.NotNil(t, lg)
}

func TestConfigure(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	buf := &bytes.Buffer{}
	lg := logger.New()

	logger.Configure(lg, buf, false, true)
	lg.Debug("removing compiled package: golang")

	assert.Equal(t, "  ● removing compiled package: golang\n", buf.String())
}

func TestConfigure_IgnoresOtherLoggers(t *testing.T) {
	require.NotPanics(t, func() {
		logger.Configure(nil, &bytes.Buffer{}, true, true)
	})
}
