package gencode

import "sort"

// IntervalTree provides O(log n + k) overlap queries using a sorted-slice approach.
// Features are loaded once and never modified after build.
type IntervalTree struct {
	intervals []*Feature
	maxEnd    []int64 // maxEnd[i] = max(End) for intervals[:i+1]
}

// BuildIntervalTree creates an interval tree from a slice of features.
func BuildIntervalTree(features []*Feature) *IntervalTree {
	if len(features) == 0 {
		return &IntervalTree{}
	}

	intervals := append([]*Feature(nil), features...)
	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].Start < intervals[j].Start
	})

	maxEnd := make([]int64, len(intervals))
	maxEnd[0] = intervals[0].End
	for i := 1; i < len(intervals); i++ {
		maxEnd[i] = max(maxEnd[i-1], intervals[i].End)
	}

	return &IntervalTree{intervals: intervals, maxEnd: maxEnd}
}

// Len returns the number of features in the tree.
func (t *IntervalTree) Len() int {
	return len(t.intervals)
}

// FindOverlaps returns the features whose [Start, End] range intersects
// [start, end], ordered by start.
func (t *IntervalTree) FindOverlaps(start, end int64) []*Feature {
	if len(t.intervals) == 0 || end < start {
		return nil
	}

	// Candidates are [0, hi): everything starting at or before end.
	hi := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].Start > end
	})

	// Walk back until no earlier interval can reach start.
	lo := hi
	for lo > 0 && t.maxEnd[lo-1] >= start {
		lo--
	}

	var result []*Feature
	for i := lo; i < hi; i++ {
		if t.intervals[i].End >= start {
			result = append(result, t.intervals[i])
		}
	}
	return result
}
