package orf

import "sort"

// findUORFs scans the 5'UTR ahead of the main ORF start for complete
// start-to-stop runs in any frame. Records are ranked by length
// (longest first) and carry the distance to and index of the nearest
// downstream exon-exon junction.
func (e *Engine) findUORFs(isoformID, seq string, junctions []int64, mainStart int64) []Record {
	if mainStart < 6 {
		return nil // no room for even a start and stop codon upstream
	}

	utr := seq[:mainStart]
	var uorfs []Record
	for frame := 0; frame < 3; frame++ {
		for _, r := range scanFrame(isoformID, utr, frame) {
			if !r.HasStop {
				continue // must terminate before the main start
			}
			uorfs = append(uorfs, r)
		}
	}
	if len(uorfs) == 0 {
		return nil
	}

	sort.SliceStable(uorfs, func(i, j int) bool {
		return uorfs[i].Length > uorfs[j].Length
	})

	txLen := int64(len(seq))
	for i := range uorfs {
		u := &uorfs[i]
		u.Rank = i + 1
		u.UTR5 = u.Start
		u.UTR3 = txLen - u.Stop
		u.StopToJunction, u.JunctionIndex = distanceToLastJunction(u.Stop, junctions)
		if u.JunctionIndex >= 0 {
			u.JunctionDist = junctions[u.JunctionIndex] - u.Stop
		} else {
			u.JunctionDist = -1
		}
		u.NMD, u.NMDScore = Classify(u.StopToJunction, u.HasStop, e.opts.NMDThreshold, e.opts.NMDBorderline)
	}
	return uorfs
}

// LimitToLongest returns the isoform IDs eligible for uORF search when a
// SelectLongest fraction is configured: the given fraction of isoforms
// with the longest main ORFs, trading completeness for runtime on large
// batches.
func LimitToLongest(records []Record, fraction float64) map[string]bool {
	if fraction <= 0 || fraction >= 1 {
		eligible := make(map[string]bool, len(records))
		for _, r := range records {
			eligible[r.IsoformID] = true
		}
		return eligible
	}

	mains := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.Missing && r.Rank == 0 {
			mains = append(mains, r)
		}
	}
	sort.SliceStable(mains, func(i, j int) bool {
		return mains[i].Length > mains[j].Length
	})

	keep := int(float64(len(mains)) * fraction)
	if keep < 1 {
		keep = 1
	}
	eligible := make(map[string]bool, keep)
	for _, r := range mains[:keep] {
		eligible[r.IsoformID] = true
	}
	return eligible
}
