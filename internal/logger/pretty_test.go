package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestPrettyLoggerDropsFieldsOutsideDebug(t *testing.T) {
	var out bytes.Buffer
	log := newPrettyLogger(&out, false)

	log.Info("Balance loaded", zap.String("total_eq", "1000"))
	log.Debug("not shown")

	assert.Contains(t, out.String(), "[INFO]")
	assert.Contains(t, out.String(), "Balance loaded")
	assert.NotContains(t, out.String(), "total_eq")
	assert.NotContains(t, out.String(), "not shown")
}

func TestPrettyLoggerDebugKeepsFields(t *testing.T) {
	var out bytes.Buffer
	log := newPrettyLogger(&out, true).With(zap.String("component", "check"))

	log.Debug("Request completed", zap.Int("status", 200))

	assert.Contains(t, out.String(), "[DEBUG]")
	assert.Contains(t, out.String(), `"status": 200`)
	assert.Contains(t, out.String(), "check")
}
