// Package isoform reconstructs the two competing transcript structures
// implied by a splicing event.
package isoform

import (
	"errors"
	"sort"

	"github.com/betsig/GeneStructureTools/internal/gtf"
)

// ErrTooFewExons is returned when a transcript has fewer than two exons
// and therefore no introns.
var ErrTooFewExons = errors.New("isoform: transcript has fewer than 2 exons")

// Intron is a gap between two consecutive exons of one transcript.
// Index is the ordinal position in transcript 5'->3' order (0-based).
type Intron struct {
	Seqname      string
	Start        int64
	End          int64
	Strand       int8
	TranscriptID string
	Index        int
}

// Length returns the intron length in nucleotides.
func (in Intron) Length() int64 {
	return in.End - in.Start + 1
}

// IntronsFromExons converts one transcript's ordered exon sequence to its
// ordered intron sequence (transcript 5'->3' order, strand preserved).
func IntronsFromExons(exons []gtf.Exon) ([]Intron, error) {
	if len(exons) < 2 {
		return nil, ErrTooFewExons
	}

	introns := make([]Intron, 0, len(exons)-1)
	for i := 0; i < len(exons)-1; i++ {
		a, b := exons[i], exons[i+1]
		// Transcript order is descending genomic order on the minus strand.
		lo, hi := a, b
		if lo.Start > hi.Start {
			lo, hi = hi, lo
		}
		introns = append(introns, Intron{
			Seqname:      a.Seqname,
			Start:        lo.End + 1,
			End:          hi.Start - 1,
			Strand:       a.Strand,
			TranscriptID: a.TranscriptID,
			Index:        i,
		})
	}
	return introns, nil
}

// OverlapsJunction reports whether [start, end] matches the intron
// boundaries exactly. Intron-retention events must resolve against the
// precise reference junction, not just any positional overlap.
func OverlapsJunction(in Intron, start, end int64) bool {
	return in.Start == start && in.End == end
}

// Overlaps reports whether [start, end] positionally overlaps the intron.
// Used as a fallback when no exact junction match exists.
func Overlaps(in Intron, start, end int64) bool {
	return in.Start <= end && in.End >= start
}

// MatchIntron finds the reference intron for an event region: exact
// junction match first, then the positionally overlapping intron with the
// largest overlap. The second return reports whether the match was exact.
func MatchIntron(introns []Intron, start, end int64) (*Intron, bool) {
	for i := range introns {
		if OverlapsJunction(introns[i], start, end) {
			return &introns[i], true
		}
	}

	var best *Intron
	var bestOverlap int64
	for i := range introns {
		if !Overlaps(introns[i], start, end) {
			continue
		}
		lo := max64(introns[i].Start, start)
		hi := min64(introns[i].End, end)
		if ov := hi - lo + 1; ov > bestOverlap {
			bestOverlap = ov
			best = &introns[i]
		}
	}
	return best, false
}

// InferStrand returns the majority strand of the introns overlapping
// [start, end]. Zero when nothing overlaps.
func InferStrand(introns []Intron, start, end int64) int8 {
	var plus, minus int
	for _, in := range introns {
		if !Overlaps(in, start, end) {
			continue
		}
		if in.Strand == -1 {
			minus++
		} else {
			plus++
		}
	}
	switch {
	case plus == 0 && minus == 0:
		return 0
	case minus > plus:
		return -1
	default:
		return 1
	}
}

// SplitAtBoundary splits any exon overlapping [start, end] at the region
// boundaries, so the region maps cleanly to whole sub-exons. Exons outside
// the region pass through unchanged. The result is in genomic order with
// exon numbers cleared; callers renumber after assembly.
func SplitAtBoundary(exons []gtf.Exon, start, end int64) []gtf.Exon {
	result := make([]gtf.Exon, 0, len(exons)+2)
	for _, e := range exons {
		if !e.Overlaps(start, end) || (e.Start >= start && e.End <= end) {
			result = append(result, e)
			continue
		}

		if e.Start < start {
			left := e
			left.End = start - 1
			left.ExonNumber = 0
			result = append(result, left)
		}

		mid := e
		mid.Start = max64(e.Start, start)
		mid.End = min64(e.End, end)
		mid.ExonNumber = 0
		result = append(result, mid)

		if e.End > end {
			right := e
			right.Start = end + 1
			right.ExonNumber = 0
			result = append(result, right)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Start < result[j].Start
	})
	return result
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
