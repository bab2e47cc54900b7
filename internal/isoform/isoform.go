package isoform

import (
	"sort"

	"github.com/betsig/GeneStructureTools/internal/event"
	"github.com/betsig/GeneStructureTools/internal/gtf"
)

// Set labels identifying the role of a reconstructed isoform within its
// event. The two isoforms of one event always carry complementary labels.
const (
	SetIncluded   = "included_exon"
	SetSkipped    = "skipped_exon"
	SetRetained   = "retained_intron"
	SetSpliced    = "spliced_intron"
	SetAltLong    = "alt_long"
	SetAltShort   = "alt_short"
	SetDownstream = "dnre"
	SetUpstream   = "upre"
)

// Isoform is one concrete splice path for one event: a labeled, ordered
// exon sequence. Exons are new records derived from the reference
// annotation, never in-place edits of it.
type Isoform struct {
	ID           string // composite: <transcriptID>:<eventID>:<set>
	TranscriptID string
	EventID      string
	Set          string
	GeneID       string
	GeneName     string
	Seqname      string
	Strand       int8
	Exons        []gtf.Exon // transcript 5'->3' order
}

// Length returns the spliced isoform length in nucleotides.
func (iso *Isoform) Length() int64 {
	var n int64
	for _, e := range iso.Exons {
		n += e.Length()
	}
	return n
}

// Junctions returns transcript-coordinate exon-exon junction positions
// (cumulative exon lengths after each exon except the last).
func (iso *Isoform) Junctions() []int64 {
	if len(iso.Exons) < 2 {
		return nil
	}
	junctions := make([]int64, 0, len(iso.Exons)-1)
	var pos int64
	for _, e := range iso.Exons[:len(iso.Exons)-1] {
		pos += e.Length()
		junctions = append(junctions, pos)
	}
	return junctions
}

// GroupID returns the matching key shared by the two isoforms of one
// event on one reference transcript.
func (iso *Isoform) GroupID() string {
	return iso.TranscriptID + ":" + iso.EventID
}

// Pair is the comparison unit: the two splice paths of one event on one
// reference transcript. X is the path named in the "included" column of
// the construction table; direction correction happens downstream in the
// comparator, not here.
type Pair struct {
	Event event.Event
	X     *Isoform
	Y     *Isoform
}

// Key identifies a pair for deduplication.
func (p Pair) Key() [2]string {
	return [2]string{p.Event.ID, p.X.TranscriptID}
}

// DedupePairs collapses duplicate pairs by exact (event id, transcript id)
// equality, keeping the first representative. Order is preserved.
func DedupePairs(pairs []Pair) []Pair {
	seen := make(map[[2]string]bool, len(pairs))
	result := pairs[:0:0]
	for _, p := range pairs {
		k := p.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		result = append(result, p)
	}
	return result
}

// newIsoform assembles an isoform from genomic-order exons, ordering them
// 5'->3' and renumbering.
func newIsoform(ev event.Event, transcriptID, set string, exons []gtf.Exon) *Isoform {
	ordered := make([]gtf.Exon, len(exons))
	copy(ordered, exons)

	strand := int8(1)
	if len(ordered) > 0 {
		strand = ordered[0].Strand
	}
	if strand == -1 {
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].Start > ordered[j].Start
		})
	} else {
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].Start < ordered[j].Start
		})
	}

	iso := &Isoform{
		ID:           transcriptID + ":" + ev.ID + ":" + set,
		TranscriptID: transcriptID,
		EventID:      ev.ID,
		Set:          set,
		Strand:       strand,
	}
	for i := range ordered {
		ordered[i].ExonNumber = i + 1
		ordered[i].TranscriptID = transcriptID
	}
	if len(ordered) > 0 {
		iso.GeneID = ordered[0].GeneID
		iso.GeneName = ordered[0].GeneName
		iso.Seqname = ordered[0].Seqname
	}
	iso.Exons = ordered
	return iso
}
