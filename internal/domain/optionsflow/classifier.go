package optionsflow

func daysOrMissing(c Cluster) int {
	if c.DaysToExpiry == nil {
		return MissingDaysToExpiry
	}
	return *c.DaysToExpiry
}

// ComputeAction assigns the conviction tier of a single cluster
func ComputeAction(c Cluster) Action {
	isUltraWhale := c.PremiumTotal >= UltraWhalePremium
	isVeryAggressive := c.AskRatio >= AggressiveAskRatio
	isUrgent := daysOrMissing(c) <= UrgencyDays

	switch {
	case isUltraWhale && isVeryAggressive:
		return ActionInvestigate
	case isUltraWhale:
		return ActionInvestigate
	case c.PremiumTotal >= UrgentInvestigatePremium && isUrgent && isVeryAggressive:
		return ActionInvestigate
	case c.PremiumTotal >= WatchPremium && c.AskRatio >= WatchAskRatio:
		return ActionWatch
	default:
		return ActionIgnore
	}
}

// ComputeTag assigns the optional pattern tag of a single cluster
func ComputeTag(c Cluster) Tag {
	switch {
	case c.PremiumTotal >= UltraWhalePremium:
		return TagUltraWhale
	case c.AskRatio >= AggressiveAskRatio && c.PremiumTotal > GoldenSweepPremium:
		return TagGoldenSweep
	case daysOrMissing(c) <= LotoDays && c.AskRatio > LotoAskRatio:
		return TagLotoConviction
	default:
		return TagNone
	}
}
