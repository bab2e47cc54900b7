package compare

import (
	"go.uber.org/zap"

	"github.com/betsig/GeneStructureTools/internal/isoform"
	"github.com/betsig/GeneStructureTools/internal/orf"
)

// SideRecord is one ORF on one side (X or Y) of the comparison, tagged
// with its upstream group id in whichever encoding the source used.
type SideRecord struct {
	RawID        string
	Key          Key
	TranscriptID string
	EventID      string
	GeneID       string
	GeneName     string
	ORF          orf.Record
}

// NewSideRecord derives the canonical key from a raw upstream id.
func NewSideRecord(rawID, transcriptID, eventID string, rec orf.Record) SideRecord {
	return SideRecord{
		RawID:        rawID,
		Key:          ParseGroupID(rawID),
		TranscriptID: transcriptID,
		EventID:      eventID,
		ORF:          rec,
	}
}

// FromIsoform builds a side record directly from a reconstructed isoform.
func FromIsoform(iso *isoform.Isoform, eventType string, rec orf.Record) SideRecord {
	sr := NewSideRecord(UpstreamID(iso, eventType), iso.TranscriptID, iso.EventID, rec)
	sr.GeneID = iso.GeneID
	sr.GeneName = iso.GeneName
	return sr
}

// UpstreamID formats an isoform's group id the way its event family does:
// the upre_/dnre_ prefix convention for terminal/cluster sets, the
// "+eventtype" suffix convention otherwise.
func UpstreamID(iso *isoform.Isoform, eventType string) string {
	switch iso.Set {
	case isoform.SetUpstream, isoform.SetDownstream:
		return iso.Set + "_" + iso.GroupID()
	default:
		return iso.GroupID() + "+" + eventType
	}
}

// MatchedPair is an ORF matched across the two isoform sides.
type MatchedPair struct {
	X SideRecord
	Y SideRecord
}

type keyFrame struct {
	key   Key
	frame int
}

// MatchSets pairs each X-side ORF with its Y-side counterpart. Matching
// proceeds in priority order: exact (group, frame); group ignoring frame
// (a 5'UTR frameshift can change the reading frame between sides); then,
// when neither side uses cluster-style ids, cross-expansion of suffixed
// ids against plain ids sharing a transcript id and frame. Unresolved
// records are dropped, not reported as ties.
func MatchSets(xs, ys []SideRecord, logger *zap.Logger) []MatchedPair {
	if logger == nil {
		logger = zap.NewNop()
	}

	byKeyFrame := make(map[keyFrame][]SideRecord)
	byKey := make(map[Key][]SideRecord)
	byPlainFrame := make(map[keyFrame][]SideRecord)
	bySuffixFrame := make(map[keyFrame][]SideRecord)
	clusterSide := false
	for _, y := range ys {
		byKeyFrame[keyFrame{y.Key, y.ORF.Frame}] = append(byKeyFrame[keyFrame{y.Key, y.ORF.Frame}], y)
		byKey[y.Key] = append(byKey[y.Key], y)
		if y.Key.HasSuffix() {
			bySuffixFrame[keyFrame{y.Key.Plain(), y.ORF.Frame}] = append(bySuffixFrame[keyFrame{y.Key.Plain(), y.ORF.Frame}], y)
		} else {
			byPlainFrame[keyFrame{y.Key.Plain(), y.ORF.Frame}] = append(byPlainFrame[keyFrame{y.Key.Plain(), y.ORF.Frame}], y)
		}
		if y.Key.IsCluster() {
			clusterSide = true
		}
	}
	for _, x := range xs {
		if x.Key.IsCluster() {
			clusterSide = true
		}
	}

	var matched []MatchedPair
	for _, x := range xs {
		// Exact match on (spliced-group-id, frame).
		if cands := byKeyFrame[keyFrame{matchKey(x.Key), x.ORF.Frame}]; len(cands) > 0 {
			matched = append(matched, MatchedPair{X: x, Y: pickLongest(cands)})
			continue
		}

		// Retry ignoring frame.
		if cands := byKey[matchKey(x.Key)]; len(cands) > 0 {
			matched = append(matched, MatchedPair{X: x, Y: pickLongest(cands)})
			continue
		}

		// Cross-expansion: a suffixed id pairs with a plain id sharing
		// transcript id and frame, in either direction. Skipped entirely
		// for cluster-style sets, whose ids never mix conventions.
		if !clusterSide {
			var cands []SideRecord
			if x.Key.HasSuffix() {
				cands = byPlainFrame[keyFrame{x.Key.Plain(), x.ORF.Frame}]
			} else {
				cands = bySuffixFrame[keyFrame{x.Key.Plain(), x.ORF.Frame}]
			}
			if len(cands) > 0 {
				y := pickByTranscript(cands, x.TranscriptID)
				if y != nil {
					matched = append(matched, MatchedPair{X: x, Y: *y})
					continue
				}
			}
		}

		logger.Debug("no counterpart for ORF, dropping from comparison",
			zap.String("id", x.RawID),
			zap.Int("frame", x.ORF.Frame))
	}

	return matched
}

// matchKey maps an X-side role onto its Y-side counterpart so the two
// cluster roles of one group pair up; other roles match symmetrically.
func matchKey(k Key) Key {
	switch k.Role {
	case "upre":
		return Key{Group: k.Group, Role: "dnre"}
	case "dnre":
		return Key{Group: k.Group, Role: "upre"}
	}
	return k
}

// pickLongest resolves multiple candidates: the longest ORF wins.
func pickLongest(cands []SideRecord) SideRecord {
	best := cands[0]
	for _, c := range cands[1:] {
		if c.ORF.Length > best.ORF.Length {
			best = c
		}
	}
	return best
}

func pickByTranscript(cands []SideRecord, transcriptID string) *SideRecord {
	for i := range cands {
		if cands[i].TranscriptID == transcriptID {
			return &cands[i]
		}
	}
	return nil
}
