package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerWithAddsField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWith(&buf, "json", "info").With("command", "scrape")

	logger.Info("[main] Scraped %d listings", 42)
	logger.Debug("hidden below info")

	out := buf.String()
	assert.Contains(t, out, `"command":"scrape"`)
	assert.Contains(t, out, `"message":"[main] Scraped 42 listings"`)
	assert.Contains(t, out, `"service":"rental-estimator"`)
	assert.NotContains(t, out, "hidden below info")
}
