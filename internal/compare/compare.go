package compare

import (
	"sort"

	"go.uber.org/zap"

	"github.com/betsig/GeneStructureTools/internal/event"
	"github.com/betsig/GeneStructureTools/internal/orf"
)

// Filtered values describe which sides of a change record passed the
// NMD-exclusion filter. "none" is a fallback so an event is never silently
// dropped just because both candidate ORFs look NMD-targeted.
const (
	FilteredBoth = "both"
	FilteredX    = "x"
	FilteredY    = "y"
	FilteredNone = "none"
)

// Change is one row of the comparator output: a matched, scored isoform
// pair. ORF lengths of -1 mark missing ORFs (no detectable start/stop).
type Change struct {
	EventID      string
	GeneID       string
	GeneName     string
	TranscriptID string
	IDX          string
	IDY          string
	FrameX       int
	FrameY       int

	ORFLengthX int64 // -1 when the X-side ORF is missing
	ORFLengthY int64
	UTR5X      int64
	UTR5Y      int64
	UTR3X      int64
	UTR3Y      int64

	NMDX orf.Label
	NMDY orf.Label

	Similarity   float64
	SimilarityNA bool

	// Gene-level similarity: each side's ORF against every annotated
	// protein-coding ORF of the same gene, max-aggregated.
	GeneSimilarityX  float64
	GeneSimilarityY  float64
	GeneSimilarityNA bool

	// Protein-domain presence counts per side, when a domain table was
	// supplied.
	DomainsX   int
	DomainsY   int
	HasDomains bool

	Filtered string

	// Pass-through significance and direction fields.
	PValue           float64
	PsiDelta         float64
	DirectionFlipped bool
}

// Options configure the comparator.
type Options struct {
	SubstitutionCost int

	// CompareBy "gene" aggregates rows per gene before output; downstream
	// consumers usually want "did this gene's protein change" rather than
	// per-transcript noise.
	CompareBy string

	// Aggregate is "max" or "min", applied during gene-level grouping.
	Aggregate string

	// DirectionCorrect flips X/Y per event so X always denotes the
	// higher-inclusion isoform, regardless of which physical structure
	// that corresponds to.
	DirectionCorrect bool

	// GeneORFs maps gene id to the amino-acid sequences of its annotated
	// protein-coding ORFs, enabling gene-level similarity. Optional.
	GeneORFs map[string][]string
}

// Comparator scores matched ORF pairs into change records.
type Comparator struct {
	opts   Options
	logger *zap.Logger
}

// NewComparator creates a comparator.
func NewComparator(opts Options) *Comparator {
	if opts.SubstitutionCost == 0 {
		opts.SubstitutionCost = DefaultSubstitutionCost
	}
	if opts.Aggregate == "" {
		opts.Aggregate = "max"
	}
	return &Comparator{opts: opts, logger: zap.NewNop()}
}

// SetLogger sets the logger for dropped-pair diagnostics.
func (c *Comparator) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Compare scores each matched pair. events supplies the originating
// significance and direction fields by event id; pairs whose event is
// unknown are still scored, with zero significance carried through.
func (c *Comparator) Compare(matched []MatchedPair, events map[string]event.Event) []Change {
	changes := make([]Change, 0, len(matched))
	for _, m := range matched {
		changes = append(changes, c.score(m, events))
	}

	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].EventID != changes[j].EventID {
			return changes[i].EventID < changes[j].EventID
		}
		return changes[i].TranscriptID < changes[j].TranscriptID
	})

	if c.opts.CompareBy == "gene" {
		changes = c.aggregateByGene(changes)
	}
	return changes
}

func (c *Comparator) score(m MatchedPair, events map[string]event.Event) Change {
	x, y := m.X, m.Y

	var flipped bool
	if c.opts.DirectionCorrect {
		if ev, ok := events[x.EventID]; ok && !ev.HigherInclusionIsX() {
			x, y = y, x
			flipped = true
		}
	}

	ch := Change{
		EventID:          x.EventID,
		GeneID:           x.GeneID,
		GeneName:         x.GeneName,
		TranscriptID:     x.TranscriptID,
		IDX:              x.RawID,
		IDY:              y.RawID,
		FrameX:           x.ORF.Frame,
		FrameY:           y.ORF.Frame,
		ORFLengthX:       orfLength(x.ORF),
		ORFLengthY:       orfLength(y.ORF),
		UTR5X:            x.ORF.UTR5,
		UTR5Y:            y.ORF.UTR5,
		UTR3X:            x.ORF.UTR3,
		UTR3Y:            y.ORF.UTR3,
		NMDX:             x.ORF.NMD,
		NMDY:             y.ORF.NMD,
		DirectionFlipped: flipped,
	}

	if ev, ok := events[x.EventID]; ok {
		ch.PValue = ev.PValue
		ch.PsiDelta = ev.PsiDelta
	}

	sim, ok := Similarity(x.ORF.AASeq, y.ORF.AASeq, c.opts.SubstitutionCost)
	ch.Similarity = sim
	ch.SimilarityNA = !ok

	ch.Filtered = filteredLabel(x.ORF, y.ORF)

	if c.opts.GeneORFs != nil {
		c.geneSimilarity(&ch, x.ORF, y.ORF)
	}

	return ch
}

// filteredLabel records which sides passed the NMD-exclusion filter.
func filteredLabel(x, y orf.Record) string {
	switch {
	case x.PassesFilter() && y.PassesFilter():
		return FilteredBoth
	case x.PassesFilter():
		return FilteredX
	case y.PassesFilter():
		return FilteredY
	default:
		return FilteredNone
	}
}

// geneSimilarity scores each side against every annotated coding ORF of
// the gene, keeping the maximum.
func (c *Comparator) geneSimilarity(ch *Change, x, y orf.Record) {
	geneORFs := c.opts.GeneORFs[ch.GeneID]
	if len(geneORFs) == 0 {
		ch.GeneSimilarityNA = true
		return
	}

	bestX, okX := maxSimilarity(x.AASeq, geneORFs, c.opts.SubstitutionCost)
	bestY, okY := maxSimilarity(y.AASeq, geneORFs, c.opts.SubstitutionCost)
	ch.GeneSimilarityX = bestX
	ch.GeneSimilarityY = bestY
	ch.GeneSimilarityNA = !okX || !okY
}

func maxSimilarity(aa string, candidates []string, subCost int) (float64, bool) {
	var best float64
	any := false
	for _, cand := range candidates {
		if s, ok := Similarity(aa, cand, subCost); ok {
			any = true
			if s > best {
				best = s
			}
		}
	}
	return best, any
}

// aggregateByGene collapses per-transcript rows into one representative
// row per gene, aggregating numeric attributes with max (or min). The
// first row of each gene supplies the identifying fields.
func (c *Comparator) aggregateByGene(changes []Change) []Change {
	groups := make(map[string][]Change)
	var order []string
	for _, ch := range changes {
		key := ch.GeneID
		if key == "" {
			key = ch.EventID
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], ch)
	}

	pick := func(a, b float64) float64 {
		if c.opts.Aggregate == "min" {
			if b < a {
				return b
			}
			return a
		}
		if b > a {
			return b
		}
		return a
	}
	pickInt := func(a, b int64) int64 {
		return int64(pick(float64(a), float64(b)))
	}

	result := make([]Change, 0, len(order))
	for _, key := range order {
		rows := groups[key]
		agg := rows[0]
		for _, r := range rows[1:] {
			agg.ORFLengthX = pickInt(agg.ORFLengthX, r.ORFLengthX)
			agg.ORFLengthY = pickInt(agg.ORFLengthY, r.ORFLengthY)
			agg.UTR5X = pickInt(agg.UTR5X, r.UTR5X)
			agg.UTR5Y = pickInt(agg.UTR5Y, r.UTR5Y)
			agg.UTR3X = pickInt(agg.UTR3X, r.UTR3X)
			agg.UTR3Y = pickInt(agg.UTR3Y, r.UTR3Y)
			if !r.SimilarityNA && (agg.SimilarityNA || pick(agg.Similarity, r.Similarity) == r.Similarity) {
				agg.Similarity = r.Similarity
				agg.SimilarityNA = false
			}
		}
		result = append(result, agg)
	}
	return result
}

func orfLength(r orf.Record) int64 {
	if r.Missing {
		return -1
	}
	return r.Length
}
