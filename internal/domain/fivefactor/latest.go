package fivefactor

// latestDate returns the greatest non-empty data date. ISO dates order
// lexically, so a string compare is enough.
func latestDate[T any](rows []T, dateOf func(T) string) string {
	latest := ""
	for _, r := range rows {
		if d := dateOf(r); d > latest {
			latest = d
		}
	}
	return latest
}

// rowsAtLatestDate keeps only the rows of the most recent data date
func rowsAtLatestDate[T any](rows []T, dateOf func(T) string) (string, []T) {
	latest := latestDate(rows, dateOf)
	if latest == "" {
		return "", nil
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if dateOf(r) == latest {
			out = append(out, r)
		}
	}
	return latest, out
}
