package optionsflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Analyze classifies each cluster. Input order is preserved (BuildClusters
// already sorts by premium descending).
func Analyze(clusters []Cluster) []ClusterAnalysis {
	analyses := make([]ClusterAnalysis, 0, len(clusters))
	for _, c := range clusters {
		analyses = append(analyses, AnalyzeCluster(c))
	}
	return analyses
}

// AnalyzeCluster derives label, tiers and rationale for one cluster
func AnalyzeCluster(c Cluster) ClusterAnalysis {
	return ClusterAnalysis{
		Cluster:    c,
		Label:      fmt.Sprintf("%s %s exp %s", strings.ToUpper(string(c.Type)), c.Strike, c.Expiry),
		Importance: importanceOf(c),
		Intent:     intentOf(c),
		Quality:    qualityOf(c),
		Action:     ComputeAction(c),
		Tag:        ComputeTag(c),
		Why:        rationale(c),
	}
}

func importanceOf(c Cluster) Importance {
	if c.PremiumTotal >= UltraWhalePremium {
		return ImportanceVeryStrong
	}
	return ImportanceStrong
}

func intentOf(c Cluster) Intent {
	switch {
	case c.AskRatio >= BullishAskRatio:
		return IntentBullishAggression
	case c.AskRatio <= BearishAskRatio:
		return IntentBearishAggression
	default:
		return IntentNeutralHedging
	}
}

func qualityOf(c Cluster) Quality {
	if c.VolumeOIRatioMax > HighConvictionVolOI {
		return QualityHighConviction
	}
	return QualityStandard
}

func rationale(c Cluster) []string {
	return []string{
		fmt.Sprintf("Premium total: $%.0fk", c.PremiumTotal/1000),
		fmt.Sprintf("Aggression: %.0f%% at the ask", c.AskRatio*100),
		fmt.Sprintf("Volume/OI: %.2fx", c.VolumeOIRatioMax),
	}
}

// Rank applies the optional action filter and limit to already sorted analyses
func Rank(analyses []ClusterAnalysis, opts Options) []ClusterAnalysis {
	ranked := make([]ClusterAnalysis, 0, len(analyses))
	for _, a := range analyses {
		if opts.MinAction != "" && !a.Action.AtLeast(opts.MinAction) {
			continue
		}
		ranked = append(ranked, a)
		if opts.Limit > 0 && len(ranked) == opts.Limit {
			break
		}
	}
	return ranked
}

// Summarize composes the narrative for a ranked set. An empty set yields the
// weekend message on Mondays and the no-signal message otherwise.
func Summarize(analyses []ClusterAnalysis, lookback time.Duration, now time.Time) string {
	if len(analyses) == 0 {
		return EmptySummary(lookback, now)
	}

	var whales, sweeps, investigations int
	var premium float64
	for _, a := range analyses {
		switch a.Tag {
		case TagUltraWhale:
			whales++
		case TagGoldenSweep:
			sweeps++
		}
		if a.Action == ActionInvestigate {
			investigations++
		}
		premium += a.Cluster.PremiumTotal
	}

	if whales == 0 && investigations == 0 {
		return fmt.Sprintf(
			"Moderate institutional activity detected (%d clusters, $%s premium). No critical whale movement for now.",
			len(analyses), humanize.Comma(int64(premium)),
		)
	}

	var b strings.Builder
	b.WriteString("Flow summary: ")
	if whales > 0 {
		fmt.Fprintf(&b, "%d ultra whale cluster(s) detected. ", whales)
	}
	if sweeps > 0 {
		fmt.Fprintf(&b, "%d golden sweep(s) identified. ", sweeps)
	}
	fmt.Fprintf(&b, "%d position(s) show a strong conviction anomaly across $%s premium.",
		investigations, humanize.Comma(int64(premium)))
	return b.String()
}

// EmptySummary explains why no cluster survived
func EmptySummary(lookback time.Duration, now time.Time) string {
	if now.Weekday() == time.Monday {
		return "No significant movement detected. Note: markets were closed over the weekend, the freshest data is from Friday's session."
	}
	return fmt.Sprintf("No institutional-grade signal detected over the last %.0fh.", lookback.Hours())
}

// BuildReport runs the full cluster pipeline over already fetched alerts
func BuildReport(ticker string, alerts []OptionTradeAlert, opts Options, now time.Time) Report {
	opts = opts.WithDefaults()

	clusters := BuildClusters(alerts, opts.MinClusterPremium, now)
	ranked := Rank(Analyze(clusters), opts)

	if ticker == "" && len(clusters) > 0 {
		ticker = clusters[0].Ticker
	}
	if ticker == "" {
		ticker = "N/A"
	}

	return Report{
		Ticker:           ticker,
		ClustersAnalyzed: len(ranked),
		Clusters:         ranked,
		Summary:          Summarize(ranked, opts.Lookback, now),
		Timestamp:        now,
	}
}
