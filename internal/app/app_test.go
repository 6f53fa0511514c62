package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rar-studio/internal/config"
	"rar-studio/internal/testutil"
)

func TestSetupLogging(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)

	SetupLogging(config.LogConfig{Level: "debug", Format: "text"})
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logrus.StandardLogger().Formatter)

	SetupLogging(config.LogConfig{Level: "loud", Format: "json"})
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)
}

func TestNewWiresRoutes(t *testing.T) {
	cfg := &config.Config{
		Outbound: config.OutboundConfig{
			BatchLimit:      25,
			DryRun:          true,
			SendTimeout:     time.Second,
			IntervalMinutes: 5,
		},
		SendGrid: config.SendGridConfig{Transport: config.TransportAPI},
		OpenAI:   config.OpenAIConfig{Model: "gpt-4.1-mini"},
		Brand:    config.BrandConfig{Name: "RAR AI Studio", Audience: "small business"},
	}

	a := New(cfg, testutil.NewDB(t), prometheus.NewRegistry())
	require.NotNil(t, a.Router)
	assert.False(t, a.Scheduler.IsRunning())

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/usage", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"lead_cap":100`)
}
