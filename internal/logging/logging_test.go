// internal/logging/logging_test.go
package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/larderline/larder-backend/internal/config"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	Configure(log, config.LogConfig{Level: "debug", Format: "json"}, &buf)

	log.WithField("product_id", 7).Debug("Stock adjusted")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Stock adjusted", entry["msg"])
	assert.Equal(t, float64(7), entry["product_id"])
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestConfigureUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	Configure(log, config.LogConfig{Level: "loud", Format: "text"}, &buf)

	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "Unknown log level")
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, GormLogLevel("silent"))
	assert.Equal(t, logger.Info, GormLogLevel("info"))
	assert.Equal(t, logger.Error, GormLogLevel("error"))
	assert.Equal(t, logger.Warn, GormLogLevel("anything"))
}
