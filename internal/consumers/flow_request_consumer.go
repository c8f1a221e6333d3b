package consumers

import (
	"bytes"
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"

	"insideredge/internal/adapters/kafka"
	"insideredge/internal/domain/optionsflow"
	"insideredge/internal/events"
	"insideredge/internal/ingest"
	"insideredge/internal/metrics"
	"insideredge/internal/services/options"
	"insideredge/pkg/errors"
	"insideredge/pkg/logger"
)

// MessageReader is the read side of a Kafka consumer
type MessageReader interface {
	ReadMessageWithShutdownCheck(ctx context.Context) (kafkago.Message, error)
}

// FlowAnalyzer runs one flow analysis
type FlowAnalyzer interface {
	AnalyzeFlow(ctx context.Context, req options.FlowRequest) (*optionsflow.Report, error)
}

// ReportPublisher publishes finished flow reports
type ReportPublisher interface {
	PublishFlowReport(ctx context.Context, runID, requestID string, report *optionsflow.Report) error
}

// FlowRequestConsumer answers flow analysis requests arriving on Kafka
type FlowRequestConsumer struct {
	reader    MessageReader
	analyzer  FlowAnalyzer
	publisher ReportPublisher
	log       *logger.Logger
}

// NewFlowRequestConsumer creates a new flow request consumer
func NewFlowRequestConsumer(reader MessageReader, analyzer FlowAnalyzer, publisher ReportPublisher, log *logger.Logger) *FlowRequestConsumer {
	return &FlowRequestConsumer{
		reader:    reader,
		analyzer:  analyzer,
		publisher: publisher,
		log:       log.Component("flow_request_consumer"),
	}
}

// Start consumes until ctx is cancelled. A failed message is logged and skipped.
func (c *FlowRequestConsumer) Start(ctx context.Context) error {
	c.log.Infow("Starting flow request consumer", "topic", kafka.TopicOptionsFlowRequests)

	for {
		msg, err := c.reader.ReadMessageWithShutdownCheck(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("Flow request consumer stopping (context cancelled)")
				return nil
			}
			c.log.Errorw("Failed to read flow request", "error", err)
			continue
		}

		err = c.handleMessage(ctx, msg)
		metrics.RecordKafkaMessage(kafka.TopicOptionsFlowRequests, "consumed", err)
		if err != nil {
			c.log.Errorw("Failed to handle flow request",
				"key", string(msg.Key),
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

func (c *FlowRequestConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var event events.FlowRequestEvent
	dec := json.NewDecoder(bytes.NewReader(msg.Value))
	dec.UseNumber()
	if err := dec.Decode(&event); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "unmarshal flow request: %v", err)
	}

	if event.Type != "" && event.Type != events.EventFlowRequest {
		return errors.Wrapf(errors.ErrInvalidInput, "unexpected event type %q on flow request topic", event.Type)
	}

	if event.Ticker == "" && len(event.Alerts) == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "flow request needs a ticker or alerts")
	}

	req := options.FlowRequest{
		Ticker:  event.Ticker,
		Options: event.Options(),
	}
	if len(event.Alerts) > 0 {
		req.Alerts = ingest.Alerts(event.Alerts)
		if len(req.Alerts) == 0 {
			return errors.Wrapf(errors.ErrInvalidInput, "none of %d alerts normalized: request_id=%s", len(event.Alerts), event.RequestID)
		}
	}

	report, err := c.analyzer.AnalyzeFlow(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "analyze flow: request_id=%s", event.RequestID)
	}

	runID := event.RunID
	if runID == "" {
		runID = events.NewRunID()
	}

	if err := c.publisher.PublishFlowReport(ctx, runID, event.RequestID, report); err != nil {
		return err
	}

	c.log.Debugw("Flow request answered",
		"request_id", event.RequestID,
		"ticker", report.Ticker,
		"clusters", report.ClustersAnalyzed,
	)
	return nil
}
