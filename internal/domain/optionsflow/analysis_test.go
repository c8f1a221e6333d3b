package optionsflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCluster(t *testing.T) {
	c := Cluster{
		Ticker: "XYZ", Type: OptionCall, Strike: "100", Expiry: "2026-10-30",
		PremiumTotal: 1_250_000, AskRatio: 0.96, VolumeOIRatioMax: 1.5, DaysToExpiry: days(10),
	}

	a := AnalyzeCluster(c)
	assert.Equal(t, "CALL 100 exp 2026-10-30", a.Label)
	assert.Equal(t, ImportanceVeryStrong, a.Importance)
	assert.Equal(t, IntentBullishAggression, a.Intent)
	assert.Equal(t, QualityHighConviction, a.Quality)
	assert.Equal(t, ActionInvestigate, a.Action)
	assert.Equal(t, TagUltraWhale, a.Tag)
	assert.Equal(t, []string{
		"Premium total: $1250k",
		"Aggression: 96% at the ask",
		"Volume/OI: 1.50x",
	}, a.Why)
}

func TestAnalyzeCluster_Intent(t *testing.T) {
	assert.Equal(t, IntentBearishAggression, AnalyzeCluster(Cluster{AskRatio: 0.35}).Intent)
	assert.Equal(t, IntentNeutralHedging, AnalyzeCluster(Cluster{AskRatio: 0.5}).Intent)
	assert.Equal(t, IntentBullishAggression, AnalyzeCluster(Cluster{AskRatio: 0.65}).Intent)
	assert.Equal(t, QualityStandard, AnalyzeCluster(Cluster{VolumeOIRatioMax: 1.0}).Quality)
	assert.Equal(t, ImportanceStrong, AnalyzeCluster(Cluster{PremiumTotal: 999_999}).Importance)
}

func TestRank(t *testing.T) {
	analyses := Analyze([]Cluster{
		{PremiumTotal: 1_500_000, AskRatio: 0.9},
		{PremiumTotal: 300_000, AskRatio: 0.6, DaysToExpiry: days(30)},
		{PremiumTotal: 200_000, AskRatio: 0.2, DaysToExpiry: days(30)},
	})

	assert.Len(t, Rank(analyses, Options{}), 3)
	assert.Len(t, Rank(analyses, Options{Limit: 2}), 2)

	watch := Rank(analyses, Options{MinAction: ActionWatch})
	require.Len(t, watch, 2)
	assert.Equal(t, ActionInvestigate, watch[0].Action)
	assert.Equal(t, ActionWatch, watch[1].Action)
}

func TestSummarize(t *testing.T) {
	t.Run("whales and sweeps", func(t *testing.T) {
		analyses := Analyze([]Cluster{
			{PremiumTotal: 1_500_000, AskRatio: 0.9},
			{PremiumTotal: 300_000, AskRatio: 0.9, DaysToExpiry: days(30)},
		})

		summary := Summarize(analyses, DefaultLookback, testNow)
		assert.Contains(t, summary, "1 ultra whale cluster(s)")
		assert.Contains(t, summary, "1 golden sweep(s)")
		assert.Contains(t, summary, "1 position(s) show a strong conviction anomaly")
		assert.Contains(t, summary, "$1,800,000")
	})

	t.Run("moderate activity", func(t *testing.T) {
		analyses := Analyze([]Cluster{{PremiumTotal: 150_000, AskRatio: 0.6, DaysToExpiry: days(30)}})

		summary := Summarize(analyses, DefaultLookback, testNow)
		assert.Contains(t, summary, "Moderate institutional activity detected (1 clusters")
	})

	t.Run("empty on a weekday", func(t *testing.T) {
		summary := Summarize(nil, DefaultLookback, testNow)
		assert.Equal(t, "No institutional-grade signal detected over the last 72h.", summary)
	})

	t.Run("empty on a Monday", func(t *testing.T) {
		monday := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
		summary := Summarize(nil, DefaultLookback, monday)
		assert.Contains(t, summary, "markets were closed over the weekend")
		assert.NotEqual(t, Summarize(nil, DefaultLookback, testNow), summary)
	})
}

func TestBuildReport(t *testing.T) {
	alerts := append(splitAlerts(5, 1_200_000, 50_000, expiryIn(10)), splitAlerts(2, 60_000, 10_000, expiryIn(40))...)
	for i := 5; i < len(alerts); i++ {
		alerts[i].Strike = "120"
	}

	report := BuildReport("", alerts, Options{}, testNow)
	assert.Equal(t, "XYZ", report.Ticker)
	assert.Equal(t, 1, report.ClustersAnalyzed)
	require.Len(t, report.Clusters, 1)
	assert.Equal(t, "CALL 100 exp "+expiryIn(10), report.Clusters[0].Label)
	assert.Equal(t, testNow, report.Timestamp)
	assert.False(t, report.Cached)

	empty := BuildReport("", nil, Options{}, testNow)
	assert.Equal(t, "N/A", empty.Ticker)
	assert.Empty(t, empty.Clusters)
	assert.Contains(t, empty.Summary, "No institutional-grade signal")
}
