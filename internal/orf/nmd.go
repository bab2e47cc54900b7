package orf

// Label classifies NMD susceptibility.
type Label string

const (
	NMDLikely     Label = "likely"
	NMDUnlikely   Label = "unlikely"
	NMDBorderline Label = "probable-borderline"
)

// The last-exon rule: a stop codon more than ~50 nt upstream of the last
// exon-exon junction marks a transcript for degradation. The threshold is
// a heuristic without a hard derivation, so both it and the borderline
// band are configurable rather than fixed biology.
const (
	DefaultNMDThreshold  = 50
	DefaultNMDBorderline = 5
)

// Classify applies the last-exon rule to a stop-to-junction distance.
// Distances within +/- borderline of the threshold are labeled
// probable-borderline instead of being forced to a hard class. ORFs with
// no stop codon cannot trigger NMD and are always unlikely. The returned
// score is the signed distance beyond the threshold.
func Classify(stopToJunction int64, hasStop bool, threshold, borderline int64) (Label, float64) {
	score := float64(stopToJunction - threshold)
	if !hasStop {
		return NMDUnlikely, score
	}
	switch {
	case stopToJunction > threshold+borderline:
		return NMDLikely, score
	case stopToJunction < threshold-borderline:
		return NMDUnlikely, score
	default:
		return NMDBorderline, score
	}
}

// PassesFilter reports whether an ORF record survives the NMD-exclusion
// filter used by the comparator: anything not firmly NMD-likely passes.
func (r Record) PassesFilter() bool {
	return !r.Missing && r.NMD != NMDLikely
}
