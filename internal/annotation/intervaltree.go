package annotation

import "sort"

// IntervalTree provides O(log n + k) overlap queries using a sorted-slice
// approach. Transcripts are loaded once and never modified after build.
type IntervalTree struct {
	intervals []interval
	maxEnd    []int64 // maxEnd[i] = max(End) for intervals[:i+1]
}

type interval struct {
	start      int64
	end        int64
	transcript *Transcript
}

// BuildIntervalTree creates an interval tree from a slice of transcripts.
func BuildIntervalTree(transcripts []*Transcript) *IntervalTree {
	if len(transcripts) == 0 {
		return &IntervalTree{}
	}

	intervals := make([]interval, len(transcripts))
	for i, t := range transcripts {
		intervals[i] = interval{start: t.Start, end: t.End, transcript: t}
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	// Build prefix-max array: maxEnd[i] = max(end) for intervals[:i+1].
	// The downward scan in FindOverlaps breaks on it: once every interval
	// at or before i ends ahead of the query, none further left can reach.
	maxEnd := make([]int64, len(intervals))
	maxEnd[0] = intervals[0].end
	for i := 1; i < len(intervals); i++ {
		maxEnd[i] = intervals[i].end
		if maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &IntervalTree{intervals: intervals, maxEnd: maxEnd}
}

// FindOverlaps returns all transcripts whose span overlaps [start, end].
func (t *IntervalTree) FindOverlaps(start, end int64) []*Transcript {
	if len(t.intervals) == 0 {
		return nil
	}

	var result []*Transcript

	// Binary search: find rightmost interval with start <= end.
	// All candidates must begin at or before the query end.
	hi := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].start > end
	})

	for i := hi - 1; i >= 0; i-- {
		// Prune: if maxEnd[i] < start, no interval from 0..i can reach
		// the query.
		if t.maxEnd[i] < start {
			break
		}
		if t.intervals[i].end >= start {
			result = append(result, t.intervals[i].transcript)
		}
	}

	return result
}
