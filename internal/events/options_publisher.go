package events

import (
	"context"
	"strings"
	"time"

	"insideredge/internal/adapters/kafka"
	"insideredge/internal/domain/fivefactor"
	"insideredge/internal/domain/optionsflow"
	"insideredge/internal/ingest"
	"insideredge/internal/metrics"
	"insideredge/pkg/errors"
	"insideredge/pkg/logger"
)

// MessagePublisher writes JSON events keyed for partitioning
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, key string, event interface{}) error
}

// FlowReportEvent is published for every computed flow report
type FlowReportEvent struct {
	Envelope
	RequestID string              `json:"request_id,omitempty"`
	Ticker    string              `json:"ticker"`
	Report    *optionsflow.Report `json:"report"`
}

// FiveFactorEvent is published for every snapshot run. Snapshot is null when
// the ticker has no options activity recorded.
type FiveFactorEvent struct {
	Envelope
	Ticker   string               `json:"ticker"`
	HasData  bool                 `json:"has_data"`
	Snapshot *fivefactor.Snapshot `json:"snapshot"`
}

// FlowRequestEvent asks the service to analyze a ticker or a batch of raw alerts
type FlowRequestEvent struct {
	Envelope
	RequestID         string          `json:"request_id"`
	Ticker            string          `json:"ticker"`
	MinClusterPremium float64         `json:"min_cluster_premium,omitempty"`
	MinRowPremium     float64         `json:"min_row_premium,omitempty"`
	LookbackHours     float64         `json:"lookback_hours,omitempty"`
	FetchLimit        int             `json:"fetch_limit,omitempty"`
	Limit             int             `json:"limit,omitempty"`
	MinAction         string          `json:"min_action,omitempty"`
	Alerts            []ingest.Record `json:"alerts,omitempty"`
}

// Options converts the request overrides; zero values keep service defaults
func (e FlowRequestEvent) Options() optionsflow.Options {
	return optionsflow.Options{
		MinClusterPremium: e.MinClusterPremium,
		MinRowPremium:     e.MinRowPremium,
		Lookback:          time.Duration(e.LookbackHours * float64(time.Hour)),
		FetchLimit:        e.FetchLimit,
		Limit:             e.Limit,
		MinAction:         optionsflow.Action(strings.ToUpper(e.MinAction)),
	}
}

// OptionsPublisher publishes analytics results to Kafka
type OptionsPublisher struct {
	producer MessagePublisher
	source   string
	log      *logger.Logger
}

// NewOptionsPublisher creates a new options analytics publisher
func NewOptionsPublisher(producer MessagePublisher, source string, log *logger.Logger) *OptionsPublisher {
	return &OptionsPublisher{
		producer: producer,
		source:   source,
		log:      log.Component("options_publisher"),
	}
}

// PublishFlowReport publishes a flow report keyed by ticker
func (p *OptionsPublisher) PublishFlowReport(ctx context.Context, runID, requestID string, report *optionsflow.Report) error {
	if report == nil {
		return errors.Wrap(errors.ErrInvalidInput, "nil flow report")
	}

	ticker := SanitizeUTF8(report.Ticker)
	event := FlowReportEvent{
		Envelope:  NewEnvelope(EventFlowReport, p.source, runID),
		RequestID: requestID,
		Ticker:    ticker,
		Report:    report,
	}

	return p.publish(ctx, kafka.TopicOptionsFlowReports, ticker, event)
}

// PublishFiveFactors publishes a snapshot, or the explicit absence of one
func (p *OptionsPublisher) PublishFiveFactors(ctx context.Context, runID, ticker string, snapshot *fivefactor.Snapshot) error {
	ticker = SanitizeUTF8(strings.ToUpper(ticker))
	event := FiveFactorEvent{
		Envelope: NewEnvelope(EventFiveFactors, p.source, runID),
		Ticker:   ticker,
		HasData:  snapshot != nil,
		Snapshot: snapshot,
	}

	return p.publish(ctx, kafka.TopicFiveFactors, ticker, event)
}

func (p *OptionsPublisher) publish(ctx context.Context, topic, key string, event interface{}) error {
	err := p.producer.Publish(ctx, topic, key, event)
	metrics.RecordKafkaMessage(topic, "produced", err)
	if err != nil {
		return errors.Wrapf(errors.ErrPublishFailed, "topic=%s key=%s: %v", topic, key, err)
	}

	p.log.Debugw("Event published", "topic", topic, "key", key)
	return nil
}
