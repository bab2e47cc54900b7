package isoform

import (
	"go.uber.org/zap"

	"github.com/betsig/GeneStructureTools/internal/annotation"
	"github.com/betsig/GeneStructureTools/internal/event"
	"github.com/betsig/GeneStructureTools/internal/gtf"
)

// Builder reconstructs isoform pairs from splicing events and the
// reference annotation.
type Builder struct {
	index  *annotation.Index
	logger *zap.Logger
}

// NewBuilder creates a builder over the given transcript index.
func NewBuilder(index *annotation.Index) *Builder {
	return &Builder{index: index, logger: zap.NewNop()}
}

// SetLogger sets the logger for skipped-event warnings.
func (b *Builder) SetLogger(l *zap.Logger) {
	b.logger = l
}

// Build produces the isoform pairs for one event: one pair per overlapping
// reference transcript, deduplicated by (event id, transcript id). An
// event with no annotated context yields no pairs and is logged, never
// raised — a splicing call outside the annotation cannot be modeled.
func (b *Builder) Build(ev event.Event) []Pair {
	candidates := b.index.FindOverlapping(ev.Seqname, ev.Start, ev.End)
	if len(candidates) == 0 {
		b.logger.Warn("event overlaps no annotated transcript, skipping",
			zap.String("event", ev.ID),
			zap.String("region", ev.Seqname),
			zap.Int64("start", ev.Start),
			zap.Int64("end", ev.End))
		return nil
	}

	strand := ev.Strand
	if strand == 0 {
		strand = b.inferStrand(candidates, ev)
	}

	var pairs []Pair
	for _, t := range candidates {
		if strand != 0 && t.Strand != strand {
			continue
		}
		pair, ok := b.buildForTranscript(ev, t)
		if !ok {
			continue
		}
		pairs = append(pairs, pair)
	}

	if len(pairs) == 0 {
		b.logger.Warn("event could not be modeled on any overlapping transcript",
			zap.String("event", ev.ID),
			zap.String("type", ev.Type.String()))
		return nil
	}

	return DedupePairs(pairs)
}

// inferStrand derives the event strand from the majority of overlapping
// reference introns when the upstream tool did not report one.
func (b *Builder) inferStrand(candidates []*annotation.Transcript, ev event.Event) int8 {
	var introns []Intron
	for _, t := range candidates {
		ins, err := IntronsFromExons(t.Exons)
		if err != nil {
			continue
		}
		introns = append(introns, ins...)
	}
	if s := InferStrand(introns, ev.Start, ev.End); s != 0 {
		return s
	}
	// No overlapping introns; fall back to the majority exon strand.
	var plus, minus int
	for _, t := range candidates {
		if t.Strand == -1 {
			minus++
		} else {
			plus++
		}
	}
	if minus > plus {
		return -1
	}
	return 1
}

// buildForTranscript dispatches on the event type. The returned pair's X
// isoform is the "included" path of the construction table.
func (b *Builder) buildForTranscript(ev event.Event, t *annotation.Transcript) (Pair, bool) {
	switch ev.Type {
	case event.SkippedExon:
		return b.buildSkip(ev, t)
	case event.MutuallyExclusive:
		return b.buildMutuallyExclusive(ev, t)
	case event.IntronRetention:
		return b.buildRetention(ev, t)
	case event.Alt5Site, event.Alt3Site:
		return b.buildAltSite(ev, t)
	case event.AltFirstExon, event.AltLastExon, event.IntronCluster:
		return b.buildTerminal(ev, t)
	}
	return Pair{}, false
}

// buildSkip constructs included/skipped paths for a skipped-exon event.
// When the event span does not align with annotated exon edges, the
// enclosing exons are split at the event boundary rather than the event
// being discarded.
func (b *Builder) buildSkip(ev event.Event, t *annotation.Transcript) (Pair, bool) {
	exons := SplitAtBoundary(t.Exons, ev.Start, ev.End)

	kept := removeContained(exons, ev.Start, ev.End)
	if len(kept) == len(exons) || len(kept) == 0 {
		// The variable region covers no exon, or the whole transcript.
		return Pair{}, false
	}

	included := newIsoform(ev, t.ID, SetIncluded, exons)
	skipped := newIsoform(ev, t.ID, SetSkipped, kept)
	return Pair{Event: ev, X: included, Y: skipped}, true
}

// buildMutuallyExclusive swaps the two variable exon regions. The X
// isoform includes the first region, the Y isoform the second.
func (b *Builder) buildMutuallyExclusive(ev event.Event, t *annotation.Transcript) (Pair, bool) {
	if ev.Start2 == 0 || ev.End2 == 0 {
		b.logger.Warn("mutually exclusive event missing second exon region",
			zap.String("event", ev.ID))
		return Pair{}, false
	}

	exons := SplitAtBoundary(t.Exons, ev.Start, ev.End)
	exons = SplitAtBoundary(exons, ev.Start2, ev.End2)

	withFirst := removeContained(exons, ev.Start2, ev.End2)
	withSecond := removeContained(exons, ev.Start, ev.End)
	if len(withFirst) == len(exons) && len(withSecond) == len(exons) {
		return Pair{}, false
	}

	x := newIsoform(ev, t.ID, SetIncluded, withFirst)
	y := newIsoform(ev, t.ID, SetSkipped, withSecond)
	return Pair{Event: ev, X: x, Y: y}, true
}

// buildRetention constructs retained/spliced paths for an intron-retention
// event. The event region must resolve to a reference intron: exact
// junction match first, largest positional overlap as fallback.
func (b *Builder) buildRetention(ev event.Event, t *annotation.Transcript) (Pair, bool) {
	introns, err := IntronsFromExons(t.Exons)
	if err != nil {
		return Pair{}, false
	}

	in, exact := MatchIntron(introns, ev.Start, ev.End)
	if in == nil {
		return Pair{}, false
	}
	if !exact {
		b.logger.Debug("intron retention resolved by positional overlap",
			zap.String("event", ev.ID),
			zap.String("transcript", t.ID))
	}

	// Retained path: the two flanking exons and the intron merge into a
	// single exon spanning both.
	var retained []gtf.Exon
	for i, e := range t.Exons {
		if i == in.Index {
			merged := e
			merged.Start = min64(e.Start, t.Exons[i+1].Start)
			merged.End = max64(t.Exons[i+1].End, e.End)
			merged.ExonNumber = 0
			retained = append(retained, merged)
			continue
		}
		if i == in.Index+1 {
			continue // folded into the merged exon
		}
		retained = append(retained, e)
	}

	x := newIsoform(ev, t.ID, SetRetained, retained)
	y := newIsoform(ev, t.ID, SetSpliced, t.Exons)
	return Pair{Event: ev, X: x, Y: y}, true
}

// buildAltSite constructs long/short boundary forms for an alternative
// 5'/3' splice-site event. The event region is the stretch between the
// two competing boundaries.
func (b *Builder) buildAltSite(ev event.Event, t *annotation.Transcript) (Pair, bool) {
	// Annotation carries the long form: an exon contains the region at
	// its edge, and the short form trims it off.
	for i, e := range t.Exons {
		if !e.Contains(ev.Start, ev.End) {
			continue
		}
		if e.Start != ev.Start && e.End != ev.End {
			// Region is interior to the exon; not an alternative boundary.
			continue
		}
		short := make([]gtf.Exon, len(t.Exons))
		copy(short, t.Exons)
		trimmed := e
		if e.Start == ev.Start {
			trimmed.Start = ev.End + 1
		} else {
			trimmed.End = ev.Start - 1
		}
		if trimmed.Start > trimmed.End {
			// The region is the whole exon; trimming leaves nothing.
			return Pair{}, false
		}
		short[i] = trimmed

		x := newIsoform(ev, t.ID, SetAltLong, t.Exons)
		y := newIsoform(ev, t.ID, SetAltShort, short)
		return Pair{Event: ev, X: x, Y: y}, true
	}

	// Annotation carries the short form: an exon edge abuts the region,
	// and the long form extends across it.
	for i, e := range t.Exons {
		var extended gtf.Exon
		switch {
		case e.End == ev.Start-1:
			extended = e
			extended.End = ev.End
		case e.Start == ev.End+1:
			extended = e
			extended.Start = ev.Start
		default:
			continue
		}
		long := make([]gtf.Exon, len(t.Exons))
		copy(long, t.Exons)
		long[i] = extended

		x := newIsoform(ev, t.ID, SetAltLong, long)
		y := newIsoform(ev, t.ID, SetAltShort, t.Exons)
		return Pair{Event: ev, X: x, Y: y}, true
	}

	return Pair{}, false
}

// buildTerminal constructs downstream-preferred/upstream-preferred paths
// for alternative first/last exons and leafcutter cluster introns. The
// event region is an intron of the preferred path: the dnre isoform
// splices it out as a junction, the upre isoform keeps the annotated path
// through the region.
func (b *Builder) buildTerminal(ev event.Event, t *annotation.Transcript) (Pair, bool) {
	exons := SplitAtBoundary(t.Exons, ev.Start, ev.End)

	spliced := removeContained(exons, ev.Start, ev.End)
	if len(spliced) == 0 {
		return Pair{}, false
	}
	if len(spliced) == len(exons) {
		// Nothing exonic inside the region: the annotated path already
		// uses this junction, so the alternative path retains the region
		// as exonic, fused to its upstream flank.
		retained := retainRegion(exons, ev.Start, ev.End)
		if retained == nil {
			return Pair{}, false
		}
		x := newIsoform(ev, t.ID, SetDownstream, exons)
		y := newIsoform(ev, t.ID, SetUpstream, retained)
		return Pair{Event: ev, X: x, Y: y}, true
	}

	x := newIsoform(ev, t.ID, SetDownstream, spliced)
	y := newIsoform(ev, t.ID, SetUpstream, exons)
	return Pair{Event: ev, X: x, Y: y}, true
}

// retainRegion turns the event region into exonic sequence by extending
// the exon that abuts its upstream genomic edge. Returns nil when no exon
// abuts the region.
func retainRegion(exons []gtf.Exon, start, end int64) []gtf.Exon {
	result := make([]gtf.Exon, len(exons))
	copy(result, exons)
	for i, e := range result {
		if e.End == start-1 {
			result[i].End = end
			result[i].ExonNumber = 0
			return result
		}
		if e.Start == end+1 {
			result[i].Start = start
			result[i].ExonNumber = 0
			return result
		}
	}
	return nil
}

// removeContained drops exons lying entirely within [start, end].
func removeContained(exons []gtf.Exon, start, end int64) []gtf.Exon {
	result := make([]gtf.Exon, 0, len(exons))
	for _, e := range exons {
		if e.Start >= start && e.End <= end {
			continue
		}
		result = append(result, e)
	}
	return result
}
