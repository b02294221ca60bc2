package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"garden-monitor/pkg/mqttx"

	"go.uber.org/zap"
)

// ReadingWriter stores one validated sensor reading.
type ReadingWriter interface {
	InsertReading(ctx context.Context, gardenID, sensorID int64, value float64, timestamp time.Time) error
}

// readingPayload is the JSON body devices publish.
type readingPayload struct {
	Value     float64    `json:"value"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Consumer subscribes to the sensor-reading topic and inserts each valid
// message. Topic shape: garden/{gardenID}/sensor/{sensorID}.
type Consumer struct {
	client *mqttx.Client
	store  ReadingWriter
	topic  string
	qos    byte
	logger *zap.Logger

	now func() time.Time
}

// NewConsumer creates a consumer. topic is the subscription filter,
// typically garden/+/sensor/+.
func NewConsumer(client *mqttx.Client, store ReadingWriter, topic string, qos byte, logger *zap.Logger) *Consumer {
	return &Consumer{
		client: client,
		store:  store,
		topic:  topic,
		qos:    qos,
		logger: logger,
		now:    time.Now,
	}
}

// Start subscribes to the reading topic. Messages are handled until Stop.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.client.Subscribe(c.topic, c.qos, func(topic string, payload []byte) {
		c.handleMessage(ctx, topic, payload)
	}); err != nil {
		return fmt.Errorf("failed to subscribe to sensor topic: %w", err)
	}

	c.logger.Info("sensor ingest started", zap.String("topic", c.topic))
	return nil
}

// Stop unsubscribes from the reading topic.
func (c *Consumer) Stop() {
	if err := c.client.Unsubscribe(c.topic); err != nil {
		c.logger.Warn("failed to unsubscribe from sensor topic", zap.Error(err))
	}
}

func (c *Consumer) handleMessage(ctx context.Context, topic string, payload []byte) {
	gardenID, sensorID, err := parseReadingTopic(topic)
	if err != nil {
		c.logger.Warn("dropping message with bad topic",
			zap.String("topic", topic), zap.Error(err))
		return
	}

	var body readingPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		c.logger.Warn("dropping message with bad payload",
			zap.String("topic", topic), zap.Error(err))
		return
	}

	timestamp := c.now()
	if body.Timestamp != nil {
		timestamp = *body.Timestamp
	}

	if err := c.store.InsertReading(ctx, gardenID, sensorID, body.Value, timestamp); err != nil {
		c.logger.Error("failed to store sensor reading",
			zap.Int64("garden_id", gardenID),
			zap.Int64("sensor_id", sensorID),
			zap.Error(err))
		return
	}

	c.logger.Debug("sensor reading stored",
		zap.Int64("garden_id", gardenID),
		zap.Int64("sensor_id", sensorID),
		zap.Float64("value", body.Value))
}

// parseReadingTopic extracts garden and sensor ids from a topic of the form
// garden/{gardenID}/sensor/{sensorID}.
func parseReadingTopic(topic string) (gardenID, sensorID int64, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "garden" || parts[2] != "sensor" {
		return 0, 0, fmt.Errorf("unexpected topic shape %q", topic)
	}

	gardenID, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil || gardenID <= 0 {
		return 0, 0, fmt.Errorf("invalid garden id %q", parts[1])
	}

	sensorID, err = strconv.ParseInt(parts[3], 10, 64)
	if err != nil || sensorID <= 0 {
		return 0, 0, fmt.Errorf("invalid sensor id %q", parts[3])
	}

	return gardenID, sensorID, nil
}
