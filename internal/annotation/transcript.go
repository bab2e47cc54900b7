// Package annotation indexes reference transcripts for overlap queries.
package annotation

import (
	"sort"

	"github.com/betsig/GeneStructureTools/internal/gtf"
)

// Transcript is an exon-ordered reference transcript assembled from the
// exon rows of the annotation. Exons are held in transcript 5'->3' order,
// which is descending genomic order on the minus strand.
type Transcript struct {
	ID       string
	GeneID   string
	GeneName string
	Seqname  string
	Strand   int8
	Biotype  string
	Start    int64 // genomic span start
	End      int64 // genomic span end
	Exons    []gtf.Exon
}

// Length returns the spliced transcript length in nucleotides.
func (t *Transcript) Length() int64 {
	var n int64
	for _, e := range t.Exons {
		n += e.Length()
	}
	return n
}

// Junctions returns the transcript-coordinate positions of the exon-exon
// junctions, i.e. the cumulative exon lengths after each exon except the
// last. A single-exon transcript has no junctions.
func (t *Transcript) Junctions() []int64 {
	if len(t.Exons) < 2 {
		return nil
	}
	junctions := make([]int64, 0, len(t.Exons)-1)
	var pos int64
	for _, e := range t.Exons[:len(t.Exons)-1] {
		pos += e.Length()
		junctions = append(junctions, pos)
	}
	return junctions
}

// IsProteinCoding reports whether the transcript biotype carries a CDS.
func (t *Transcript) IsProteinCoding() bool {
	return t.Biotype == "protein_coding"
}

// Overlaps reports whether [start, end] overlaps the transcript span.
func (t *Transcript) Overlaps(start, end int64) bool {
	return t.Start <= end && t.End >= start
}

// Assemble groups exon rows into transcripts. Exons are ordered 5'->3'
// within each transcript; transcripts are returned sorted by ID so batch
// output is deterministic.
func Assemble(exons []gtf.Exon) []*Transcript {
	byID := make(map[string]*Transcript)
	for _, e := range exons {
		t, ok := byID[e.TranscriptID]
		if !ok {
			t = &Transcript{
				ID:       e.TranscriptID,
				GeneID:   e.GeneID,
				GeneName: e.GeneName,
				Seqname:  e.Seqname,
				Strand:   e.Strand,
				Biotype:  e.TranscriptType,
				Start:    e.Start,
				End:      e.End,
			}
			byID[e.TranscriptID] = t
		}
		if e.Start < t.Start {
			t.Start = e.Start
		}
		if e.End > t.End {
			t.End = e.End
		}
		t.Exons = append(t.Exons, e)
	}

	transcripts := make([]*Transcript, 0, len(byID))
	for _, t := range byID {
		sortTranscriptOrder(t)
		transcripts = append(transcripts, t)
	}
	sort.Slice(transcripts, func(i, j int) bool {
		return transcripts[i].ID < transcripts[j].ID
	})
	return transcripts
}

// sortTranscriptOrder orders exons 5'->3' and renumbers them when the
// annotation did not carry exon_number.
func sortTranscriptOrder(t *Transcript) {
	if t.Strand == -1 {
		sort.Slice(t.Exons, func(i, j int) bool {
			return t.Exons[i].Start > t.Exons[j].Start
		})
	} else {
		sort.Slice(t.Exons, func(i, j int) bool {
			return t.Exons[i].Start < t.Exons[j].Start
		})
	}
	for i := range t.Exons {
		if t.Exons[i].ExonNumber == 0 {
			t.Exons[i].ExonNumber = i + 1
		}
	}
}
