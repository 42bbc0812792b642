package consumer

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/config"
	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/service"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Ingestor is the slice of the telemetry service the consumer needs.
type Ingestor interface {
	Ingest(ctx context.Context, serialNumber string, input service.ReadingInput) (*service.IngestResult, error)
}

// TelemetryConsumer reads device readings from a Redis stream and feeds them
// through the same pipeline as the HTTP ingest endpoint. Each message carries
// a serial_number field and a data field with the reading JSON.
type TelemetryConsumer struct {
	client   *redis.Client
	cfg      *config.Config
	ingestor Ingestor
	logger   *zap.Logger
}

func NewTelemetryConsumer(client *redis.Client, cfg *config.Config, ingestor Ingestor, logger *zap.Logger) *TelemetryConsumer {
	return &TelemetryConsumer{
		client:   client,
		cfg:      cfg,
		ingestor: ingestor,
		logger:   logger,
	}
}

// Start blocks, consuming the stream until the context is canceled. Malformed
// or failing messages are acknowledged and dropped so the stream never jams;
// the failure is logged instead.
func (c *TelemetryConsumer) Start(ctx context.Context) error {
	stream := c.cfg.Telemetry.Stream
	group := c.cfg.Telemetry.Group

	err := c.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}

	c.logger.Info("telemetry consumer started",
		zap.String("stream", stream),
		zap.String("group", group),
		zap.String("consumer", c.cfg.Telemetry.Consumer))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("telemetry consumer stopped")
			return nil
		default:
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: c.cfg.Telemetry.Consumer,
			Streams:  []string{stream, ">"},
			Count:    int64(c.cfg.Telemetry.BatchSize),
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			c.logger.Error("failed to read telemetry stream", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				c.handleMessage(ctx, msg)
				if err := c.client.XAck(ctx, stream, group, msg.ID).Err(); err != nil {
					c.logger.Error("failed to ack telemetry message",
						zap.String("message_id", msg.ID),
						zap.Error(err))
				}
			}
		}
	}
}

func (c *TelemetryConsumer) handleMessage(ctx context.Context, msg redis.XMessage) {
	serial, _ := msg.Values["serial_number"].(string)
	payload, _ := msg.Values["data"].(string)
	if serial == "" || payload == "" {
		c.logger.Warn("dropping malformed telemetry message", zap.String("message_id", msg.ID))
		return
	}

	var input service.ReadingInput
	if err := json.Unmarshal([]byte(payload), &input); err != nil {
		c.logger.Warn("dropping unparseable telemetry message",
			zap.String("message_id", msg.ID),
			zap.String("serial_number", serial),
			zap.Error(err))
		return
	}

	if _, err := c.ingestor.Ingest(ctx, serial, input); err != nil {
		c.logger.Error("telemetry ingest failed",
			zap.String("message_id", msg.ID),
			zap.String("serial_number", serial),
			zap.Error(err))
	}
}
