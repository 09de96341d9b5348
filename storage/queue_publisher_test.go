package storage

import (
	"encoding/json"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-estimator/models"
)

func TestRawMessage(t *testing.T) {
	l := sampleRaw("https://example.com/a")

	msg, err := rawMessage(l)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, l.URL, msg.MessageId)
	assert.Equal(t, l.ScrapedAt, msg.Timestamp)

	var decoded models.RawListing
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, l.AgentDescription, decoded.AgentDescription)
	assert.Equal(t, l.PropertyTypeFurnishingYear, decoded.PropertyTypeFurnishingYear)
}
