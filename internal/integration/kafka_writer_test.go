//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/planet-weather-fusion/internal/adapter/kafka"
	"github.com/couchcryptid/planet-weather-fusion/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFusedTopic = "test-fused-records"

// TestKafkaWriter_PublishFused verifies a published record can be read back
// with its key and headers intact.
func TestKafkaWriter_PublishFused(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testFusedTopic)

	writer := kafka.NewWriter([]string{broker}, testFusedTopic, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	rec := domain.FusedRecord{
		ID:        "f-1",
		Character: domain.Character{Name: "Leia Organa"},
		Planet:    domain.Planet{Name: "Alderaan"},
		Weather:   domain.Conditions{Temperature: 12.3, WindSpeed: 4.5, Time: "2024-05-04T12:00"},
		FusedAt:   "2024-05-04T12:00:00.000Z",
	}
	require.NoError(t, writer.PublishFused(ctx, rec))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testFusedTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from fused topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "f-1", string(msg.Key))
	assert.Equal(t, "fused", headers["record_type"])
	assert.Equal(t, "2024-05-04T12:00:00.000Z", headers["fused_at"])

	var got domain.FusedRecord
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, rec, got)
}
