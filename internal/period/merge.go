package period

import (
	"slices"
)

// Merge folds overlapping periods into maximal spans. Periods that only
// touch at an endpoint are joined. The result is ordered by start; the
// input slice is left untouched.
func Merge(periods []TimePeriod) []TimePeriod {
	return sweep(periods, func(acc, next TimePeriod) TimePeriod {
		return acc.Union(next)
	})
}

// IntersectChain runs the same sweep as Merge but folds each overlapping
// period into the accumulator by intersection, so a chain of overlapping
// periods narrows to the span common to all of them. Kept for callers that
// rely on the older overlap-report behaviour.
func IntersectChain(periods []TimePeriod) []TimePeriod {
	return sweep(periods, func(acc, next TimePeriod) TimePeriod {
		in, _ := acc.Intersection(next)
		return in
	})
}

func sweep(periods []TimePeriod, fold func(acc, next TimePeriod) TimePeriod) []TimePeriod {
	if len(periods) == 0 {
		return []TimePeriod{}
	}

	sorted := slices.Clone(periods)
	slices.SortStableFunc(sorted, func(a, b TimePeriod) int {
		return a.start.Compare(b.start)
	})

	out := make([]TimePeriod, 0, len(sorted))
	acc := sorted[0]
	for _, p := range sorted[1:] {
		if acc.Overlaps(p) {
			acc = fold(acc, p)
			continue
		}
		out = append(out, acc)
		acc = p
	}
	return append(out, acc)
}
