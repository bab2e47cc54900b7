package annotation

import "sort"

// Index provides transcript overlap queries per chromosome.
type Index struct {
	trees       map[string]*IntervalTree
	byID        map[string]*Transcript
	byGene      map[string][]*Transcript
	transcripts []*Transcript
}

// NewIndex builds an index over the given transcripts.
func NewIndex(transcripts []*Transcript) *Index {
	byChrom := make(map[string][]*Transcript)
	byID := make(map[string]*Transcript, len(transcripts))
	byGene := make(map[string][]*Transcript)
	for _, t := range transcripts {
		byChrom[t.Seqname] = append(byChrom[t.Seqname], t)
		byID[t.ID] = t
		if t.GeneID != "" {
			byGene[t.GeneID] = append(byGene[t.GeneID], t)
		}
	}

	trees := make(map[string]*IntervalTree, len(byChrom))
	for chrom, ts := range byChrom {
		trees[chrom] = BuildIntervalTree(ts)
	}

	return &Index{
		trees:       trees,
		byID:        byID,
		byGene:      byGene,
		transcripts: transcripts,
	}
}

// FindOverlapping returns all transcripts overlapping [start, end] on the
// given chromosome, sorted by ID for deterministic batch output.
func (idx *Index) FindOverlapping(chrom string, start, end int64) []*Transcript {
	tree, ok := idx.trees[chrom]
	if !ok {
		return nil
	}
	result := tree.FindOverlaps(start, end)
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Get returns a transcript by ID, or nil if not present.
func (idx *Index) Get(id string) *Transcript {
	return idx.byID[id]
}

// GeneTranscripts returns all transcripts of a gene.
func (idx *Index) GeneTranscripts(geneID string) []*Transcript {
	return idx.byGene[geneID]
}

// TranscriptCount returns the number of indexed transcripts.
func (idx *Index) TranscriptCount() int {
	return len(idx.transcripts)
}

// Chromosomes returns a sorted list of indexed chromosomes.
func (idx *Index) Chromosomes() []string {
	chroms := make([]string, 0, len(idx.trees))
	for chrom := range idx.trees {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}
