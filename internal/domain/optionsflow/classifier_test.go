package optionsflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func days(v int) *int { return &v }

func TestComputeAction(t *testing.T) {
	tests := []struct {
		name    string
		cluster Cluster
		want    Action
	}{
		{"ultra whale and aggressive", Cluster{PremiumTotal: 1_000_000, AskRatio: 0.85, DaysToExpiry: days(60)}, ActionInvestigate},
		{"ultra whale alone", Cluster{PremiumTotal: 1_000_000, AskRatio: 0.10, DaysToExpiry: days(60)}, ActionInvestigate},
		{"urgent aggressive 500k", Cluster{PremiumTotal: 500_000, AskRatio: 0.85, DaysToExpiry: days(14)}, ActionInvestigate},
		{"urgent aggressive but 15 days", Cluster{PremiumTotal: 500_000, AskRatio: 0.85, DaysToExpiry: days(15)}, ActionWatch},
		{"missing expiry is not urgent", Cluster{PremiumTotal: 600_000, AskRatio: 0.90}, ActionWatch},
		{"watch boundary", Cluster{PremiumTotal: 100_000, AskRatio: 0.55, DaysToExpiry: days(30)}, ActionWatch},
		{"below watch ratio", Cluster{PremiumTotal: 400_000, AskRatio: 0.549, DaysToExpiry: days(30)}, ActionIgnore},
		{"below watch premium", Cluster{PremiumTotal: 99_999, AskRatio: 0.99, DaysToExpiry: days(1)}, ActionIgnore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeAction(tt.cluster))
		})
	}
}

func TestComputeTag(t *testing.T) {
	tests := []struct {
		name    string
		cluster Cluster
		want    Tag
	}{
		{"ultra whale wins", Cluster{PremiumTotal: 1_000_000, AskRatio: 0.95, DaysToExpiry: days(2)}, TagUltraWhale},
		{"golden sweep", Cluster{PremiumTotal: 250_001, AskRatio: 0.85, DaysToExpiry: days(30)}, TagGoldenSweep},
		{"golden sweep needs strictly more than 250k", Cluster{PremiumTotal: 250_000, AskRatio: 0.85, DaysToExpiry: days(30)}, TagNone},
		{"loto conviction", Cluster{PremiumTotal: 150_000, AskRatio: 0.76, DaysToExpiry: days(7)}, TagLotoConviction},
		{"loto ratio strictly above", Cluster{PremiumTotal: 150_000, AskRatio: 0.75, DaysToExpiry: days(7)}, TagNone},
		{"loto needs known expiry", Cluster{PremiumTotal: 150_000, AskRatio: 0.80}, TagNone},
		{"no tag", Cluster{PremiumTotal: 150_000, AskRatio: 0.50, DaysToExpiry: days(20)}, TagNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeTag(tt.cluster))
		})
	}
}

func TestClassifier_Examples(t *testing.T) {
	t.Run("ultra whale aggressive call", func(t *testing.T) {
		clusters := BuildClusters(splitAlerts(5, 1_200_000, 50_000, expiryIn(10)), DefaultMinClusterPremium, testNow)
		require.Len(t, clusters, 1)
		c := clusters[0]

		assert.InDelta(t, 0.96, c.AskRatio, 0.005)
		assert.Equal(t, ActionInvestigate, ComputeAction(c))
		assert.Equal(t, TagUltraWhale, ComputeTag(c))
	})

	t.Run("golden sweep on watch", func(t *testing.T) {
		clusters := BuildClusters(splitAlerts(5, 300_000, 20_000, expiryIn(5)), DefaultMinClusterPremium, testNow)
		require.Len(t, clusters, 1)
		c := clusters[0]

		assert.InDelta(t, 0.9375, c.AskRatio, 1e-9)
		assert.InDelta(t, 320_000, c.PremiumTotal, 1e-6)
		assert.Equal(t, TagGoldenSweep, ComputeTag(c))
		assert.Equal(t, ActionWatch, ComputeAction(c))
	})
}

func TestClassifier_Idempotent(t *testing.T) {
	c := Cluster{PremiumTotal: 720_000, AskRatio: 0.88, DaysToExpiry: days(6)}

	firstAction, firstTag := ComputeAction(c), ComputeTag(c)
	for i := 0; i < 5; i++ {
		assert.Equal(t, firstAction, ComputeAction(c))
		assert.Equal(t, firstTag, ComputeTag(c))
	}
	assert.Equal(t, ActionInvestigate, firstAction)
	assert.Equal(t, TagGoldenSweep, firstTag)
}
