package metrics

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insideredge/internal/domain/optionsflow"
	"insideredge/pkg/logger"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	if out.Counter != nil {
		return out.GetCounter().GetValue()
	}
	return out.GetGauge().GetValue()
}

func TestRecordFlowReport(t *testing.T) {
	investigate := ClustersByAction.WithLabelValues(string(optionsflow.ActionInvestigate))
	watch := ClustersByAction.WithLabelValues(string(optionsflow.ActionWatch))
	whale := ClustersByTag.WithLabelValues(string(optionsflow.TagUltraWhale))
	computed := FlowReports.WithLabelValues("computed")
	cached := FlowReports.WithLabelValues("cached")

	beforeInvestigate := value(t, investigate)
	beforeWatch := value(t, watch)
	beforeWhale := value(t, whale)
	beforeComputed := value(t, computed)
	beforeCached := value(t, cached)

	report := &optionsflow.Report{
		Ticker: "XYZ",
		Clusters: []optionsflow.ClusterAnalysis{
			{Action: optionsflow.ActionInvestigate, Tag: optionsflow.TagUltraWhale},
			{Action: optionsflow.ActionInvestigate},
			{Action: optionsflow.ActionWatch},
		},
	}

	RecordFlowReport("computed", report)
	RecordFlowReport("cached", report)

	assert.Equal(t, beforeComputed+1, value(t, computed))
	assert.Equal(t, beforeCached+1, value(t, cached))
	assert.Equal(t, beforeInvestigate+2, value(t, investigate), "cached reports are not recounted")
	assert.Equal(t, beforeWatch+1, value(t, watch))
	assert.Equal(t, beforeWhale+1, value(t, whale))
}

func TestRecordWorkerExecution(t *testing.T) {
	ok := WorkerExecutions.WithLabelValues("metrics_test", "success")
	failed := WorkerExecutions.WithLabelValues("metrics_test", "error")

	RecordWorkerExecution("metrics_test", 20*time.Millisecond, nil)
	RecordWorkerExecution("metrics_test", 20*time.Millisecond, errors.New("boom"))
	RecordWorkerExecution("metrics_test", 20*time.Millisecond, nil)

	assert.Equal(t, 2.0, value(t, ok))
	assert.Equal(t, 1.0, value(t, failed))
	assert.Greater(t, value(t, WorkerLastRun.WithLabelValues("metrics_test")), 0.0)
}

func TestCollectUpcomingEarnings(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	collector := NewCustomCollector(logger.Nop(), sqlx.NewDb(db, "postgres"), nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM ticker_earnings")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	ch := make(chan prometheus.Metric, 1)
	collector.collectUpcomingEarnings(t.Context(), ch)
	require.Len(t, ch, 1)

	m := <-ch
	assert.Contains(t, m.Desc().String(), "insideredge_upcoming_earnings")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectUpcomingEarnings_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	collector := NewCustomCollector(logger.Nop(), sqlx.NewDb(db, "postgres"), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM ticker_earnings")).WillReturnError(errors.New("down"))

	ch := make(chan prometheus.Metric, 1)
	collector.collectUpcomingEarnings(t.Context(), ch)
	assert.Empty(t, ch)
}
