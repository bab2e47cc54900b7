package compare

// DefaultSubstitutionCost effectively disallows substitutions, so only
// exact-residue containment contributes to the score.
const DefaultSubstitutionCost = 100

// Similarity scores two amino-acid sequences with a bounded edit distance
// using asymmetric costs: against the longer sequence deletions are cheap
// (1) and insertions expensive (100), mirrored when the roles swap. This
// approximates the fraction of the shorter sequence contained as a
// contiguous-ish block inside the longer one, far more cheaply than full
// alignment.
//
// The result is ((lenA + lenB - distance) / 2) / max(lenA, lenB), clamped
// to 0 when the raw distance exceeds lenA+lenB. Output is always in
// [0, 1]. The second return is false when either sequence is missing; the
// score is then undefined and must propagate as missing data.
func Similarity(a, b string, subCost int) (float64, bool) {
	if a == "" || b == "" {
		return 0, false
	}
	if subCost <= 0 {
		subCost = DefaultSubstitutionCost
	}

	// Orient so the first argument is the longer sequence: deleting from
	// it is cheap, inserting into it is expensive.
	long, short := a, b
	if len(long) < len(short) {
		long, short = short, long
	}
	dist := editDistance(long, short, 1, 100, subCost)

	lenA, lenB := len(a), len(b)
	maxLen := lenA
	if lenB > maxLen {
		maxLen = lenB
	}

	if dist > lenA+lenB {
		return 0, true // degenerate: no meaningful overlap
	}
	score := (float64(lenA+lenB) - float64(dist)) / 2 / float64(maxLen)
	if score < 0 {
		return 0, true
	}
	if score > 1 {
		return 1, true
	}
	return score, true
}

// editDistance computes weighted edit distance from a to b, where delCost
// applies to dropping a residue of a, insCost to adding a residue of b,
// and subCost to a mismatch. Two rolling rows keep memory at O(len(b)).
func editDistance(a, b string, delCost, insCost, subCost int) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 1; j <= len(b); j++ {
		prev[j] = prev[j-1] + insCost
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = prev[0] + delCost
		for j := 1; j <= len(b); j++ {
			sub := prev[j-1]
			if a[i-1] != b[j-1] {
				sub += subCost
			}
			del := prev[j] + delCost
			ins := curr[j-1] + insCost

			best := sub
			if del < best {
				best = del
			}
			if ins < best {
				best = ins
			}
			curr[j] = best
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
