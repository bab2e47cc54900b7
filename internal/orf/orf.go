package orf

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/betsig/GeneStructureTools/internal/genome"
	"github.com/betsig/GeneStructureTools/internal/gtf"
	"github.com/betsig/GeneStructureTools/internal/isoform"
)

// SelectionMode picks which ORF candidates are reported per transcript.
// The modes are mutually exclusive.
type SelectionMode int

const (
	// Longest reports the single longest ORF across all frames.
	Longest SelectionMode = iota
	// LongestPerFrame reports the longest ORF in each of the 3 frames.
	LongestPerFrame
	// TopN reports the N longest ORFs ignoring frame.
	TopN
)

// Record is one ORF computed for one isoform. Coordinates are 0-based
// transcript positions: Start is the first base of the start codon, Stop
// is one past the last base of the stop codon (or transcript end for
// no-stop candidates), so UTR5 + Length + UTR3 partitions the transcript.
type Record struct {
	IsoformID string
	Frame     int // reading-frame offset 0/1/2
	Start     int64
	Stop      int64
	HasStop   bool
	AASeq     string // amino-acid sequence, without the trailing stop
	Length    int64  // ORF length in nucleotides, including the stop codon
	UTR5      int64
	UTR3      int64

	// StopToJunction is the distance from the stop codon to the last
	// exon-exon junction: positive when the stop lies upstream of it.
	StopToJunction int64
	NMD            Label
	NMDScore       float64

	// Missing marks a transcript with no detectable ORF. Absence is
	// expected data, not an error, and propagates through comparison.
	Missing bool

	// uORF fields. Rank is 1-based among the upstream ORFs of one
	// isoform; JunctionDist/JunctionIndex locate the nearest downstream
	// junction, used to assess re-initiation likelihood.
	Rank          int
	JunctionDist  int64
	JunctionIndex int
}

// Options configure the ORF engine.
type Options struct {
	Mode          SelectionMode
	N             int  // for TopN
	AllFrames     bool // scan offsets 1 and 2 in addition to 0
	IncludeNoStop bool // rank ORFs lacking an in-frame stop
	FindUORFs     bool

	// SelectLongest limits uORF search to the given fraction of isoforms,
	// longest main ORF first. 0 or 1 searches everything.
	SelectLongest float64

	NMDThreshold  int64 // last-exon rule distance, default 50
	NMDBorderline int64 // half-width of the borderline band, default 5
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		Mode:          Longest,
		AllFrames:     true,
		NMDThreshold:  DefaultNMDThreshold,
		NMDBorderline: DefaultNMDBorderline,
	}
}

// Engine computes ORF records for exon-ordered transcripts.
type Engine struct {
	genome genome.Source
	opts   Options
	logger *zap.Logger
}

// NewEngine creates an ORF engine over the given sequence source.
func NewEngine(src genome.Source, opts Options) *Engine {
	if opts.NMDThreshold == 0 {
		opts.NMDThreshold = DefaultNMDThreshold
	}
	if opts.NMDBorderline == 0 {
		opts.NMDBorderline = DefaultNMDBorderline
	}
	if opts.Mode == TopN && opts.N <= 0 {
		opts.N = 3
	}
	return &Engine{genome: src, opts: opts, logger: zap.NewNop()}
}

// SetLogger sets the logger for per-isoform diagnostics.
func (e *Engine) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Options returns the engine's effective options, defaults applied.
func (e *Engine) Options() Options {
	return e.opts
}

// SplicedSequence concatenates the isoform's exon sequences in transcript
// orientation.
func (e *Engine) SplicedSequence(iso *isoform.Isoform) (string, error) {
	return e.ExonSequence(iso.Exons)
}

// ExonSequence concatenates exon sequences in transcript orientation. The
// exons must already be in 5'->3' order.
func (e *Engine) ExonSequence(exons []gtf.Exon) (string, error) {
	var sb strings.Builder
	for _, ex := range exons {
		seq, err := e.genome.Fetch(ex.Seqname, ex.Start, ex.End, ex.Strand)
		if err != nil {
			return "", fmt.Errorf("fetch exon %s:%d-%d: %w", ex.Seqname, ex.Start, ex.End, err)
		}
		sb.WriteString(seq)
	}
	return sb.String(), nil
}

// Analyze finds the ORFs of one isoform per the configured selection mode,
// plus its uORFs when enabled. A transcript with no valid start codon in
// any frame yields a single Missing record, never an error.
func (e *Engine) Analyze(iso *isoform.Isoform) ([]Record, error) {
	seq, err := e.SplicedSequence(iso)
	if err != nil {
		return nil, err
	}
	records := e.FindORFs(iso.ID, seq, iso.Junctions())

	if e.opts.FindUORFs {
		// Anchor on the longest main ORF: per-frame and top-N modes also
		// report secondary ORFs, which are not the 5'UTR boundary.
		var main *Record
		for i := range records {
			if records[i].Missing {
				continue
			}
			if main == nil || records[i].Length > main.Length {
				main = &records[i]
			}
		}
		if main != nil {
			records = append(records, e.findUORFs(iso.ID, seq, iso.Junctions(), main.Start)...)
		}
	}
	return records, nil
}

// FindORFs scans the spliced sequence for ORF candidates and applies the
// selection policy. junctions are the transcript-coordinate exon-exon
// junction positions used for the NMD ruling.
func (e *Engine) FindORFs(isoformID, seq string, junctions []int64) []Record {
	frames := 1
	if e.opts.AllFrames {
		frames = 3
	}

	var candidates []Record
	for frame := 0; frame < frames; frame++ {
		candidates = append(candidates, scanFrame(isoformID, seq, frame)...)
	}

	selected := e.selectCandidates(candidates)
	if len(selected) == 0 {
		return []Record{{IsoformID: isoformID, Missing: true}}
	}

	txLen := int64(len(seq))
	for i := range selected {
		r := &selected[i]
		r.UTR5 = r.Start
		r.UTR3 = txLen - r.Stop
		r.StopToJunction, r.JunctionIndex = distanceToLastJunction(r.Stop, junctions)
		r.NMD, r.NMDScore = Classify(r.StopToJunction, r.HasStop, e.opts.NMDThreshold, e.opts.NMDBorderline)
	}
	return selected
}

// scanFrame finds non-nested start-to-stop runs at one frame offset.
// After a stop the scan resumes looking for the next start, so one frame
// can yield several candidates. A run that reaches the transcript end
// without a stop is recorded with HasStop=false.
func scanFrame(isoformID, seq string, frame int) []Record {
	var records []Record
	start := int64(-1)

	for i := frame; i+3 <= len(seq); i += 3 {
		codon := seq[i : i+3]
		if start == -1 {
			if IsStartCodon(codon) {
				start = int64(i)
			}
			continue
		}
		if IsStopCodon(codon) {
			stop := int64(i + 3)
			records = append(records, Record{
				IsoformID: isoformID,
				Frame:     frame,
				Start:     start,
				Stop:      stop,
				HasStop:   true,
				Length:    stop - start,
				AASeq:     TranslateSequence(seq[start : stop-3]),
			})
			start = -1
		}
	}

	if start != -1 {
		// Ran off the transcript end without a stop codon.
		stop := int64(len(seq) - (len(seq)-int(start))%3)
		records = append(records, Record{
			IsoformID: isoformID,
			Frame:     frame,
			Start:     start,
			Stop:      stop,
			HasStop:   false,
			Length:    stop - start,
			AASeq:     TranslateSequence(seq[start:stop]),
		})
	}

	return records
}

// selectCandidates applies the configured selection mode. No-stop
// candidates are excluded from ranking unless IncludeNoStop is set.
func (e *Engine) selectCandidates(candidates []Record) []Record {
	ranked := make([]Record, 0, len(candidates))
	for _, c := range candidates {
		if !c.HasStop && !e.opts.IncludeNoStop {
			continue
		}
		ranked = append(ranked, c)
	}
	if len(ranked) == 0 {
		return nil
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Length > ranked[j].Length
	})

	switch e.opts.Mode {
	case LongestPerFrame:
		var result []Record
		for frame := 0; frame < 3; frame++ {
			for _, c := range ranked {
				if c.Frame == frame {
					result = append(result, c)
					break
				}
			}
		}
		return result
	case TopN:
		if len(ranked) > e.opts.N {
			ranked = ranked[:e.opts.N]
		}
		return ranked
	default: // Longest
		return ranked[:1]
	}
}

// distanceToLastJunction returns the distance from an ORF stop to the
// last exon-exon junction (positive when the stop is upstream of it) and
// the index of the nearest junction at or downstream of the stop, -1 when
// none exists.
func distanceToLastJunction(stop int64, junctions []int64) (int64, int) {
	if len(junctions) == 0 {
		return 0, -1
	}
	last := junctions[len(junctions)-1]
	nearest := -1
	for i, j := range junctions {
		if j >= stop {
			nearest = i
			break
		}
	}
	return last - stop, nearest
}
