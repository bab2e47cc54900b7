// Package event models normalized differential-splicing calls.
package event

import (
	"fmt"
	"strings"
)

// Type identifies the kind of splicing event. Each type has its own
// isoform-construction rule; dispatch is on this enum, never on raw
// upstream strings.
type Type int

const (
	TypeUnknown Type = iota
	SkippedExon
	MutuallyExclusive
	IntronRetention
	Alt5Site
	Alt3Site
	AltFirstExon
	AltLastExon
	IntronCluster
)

// String returns the canonical short code for the event type.
func (t Type) String() string {
	switch t {
	case SkippedExon:
		return "SE"
	case MutuallyExclusive:
		return "MXE"
	case IntronRetention:
		return "RI"
	case Alt5Site:
		return "A5"
	case Alt3Site:
		return "A3"
	case AltFirstExon:
		return "AF"
	case AltLastExon:
		return "AL"
	case IntronCluster:
		return "CLU"
	}
	return "unknown"
}

// ParseType maps the type codes used by the upstream tools onto the enum.
func ParseType(s string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SE", "ES", "SKIPPED_EXON":
		return SkippedExon, nil
	case "MXE", "MX":
		return MutuallyExclusive, nil
	case "RI", "IR", "RETAINED_INTRON":
		return IntronRetention, nil
	case "A5", "A5SS", "ALT5":
		return Alt5Site, nil
	case "A3", "A3SS", "ALT3":
		return Alt3Site, nil
	case "AF", "AFE":
		return AltFirstExon, nil
	case "AL", "ALE":
		return AltLastExon, nil
	case "CLU", "CLUSTER", "LEAFCUTTER":
		return IntronCluster, nil
	}
	return TypeUnknown, fmt.Errorf("unknown event type %q", s)
}

// IsTerminal reports whether the event rearranges a transcript end
// (alternative first/last exon or a leafcutter intron cluster). These
// share the upstream/downstream path construction and the upre_/dnre_
// id convention.
func (t Type) IsTerminal() bool {
	return t == AltFirstExon || t == AltLastExon || t == IntronCluster
}

// Event is one normalized differential-splicing call.
// Coordinates describe the variable region (the skipped exon, the
// retained intron, the alternative boundary region, or a cluster intron).
// Read-only once loaded.
type Event struct {
	ID       string
	Type     Type
	Seqname  string
	Start    int64
	End      int64
	Strand   int8 // 0 when unknown; inferred from the annotation
	PValue   float64
	PsiDelta float64 // sign designates the higher-inclusion isoform

	// Second variable region for mutually exclusive exons; zero otherwise.
	Start2 int64
	End2   int64

	// Tool-specific extra columns, passed through opaquely.
	Extra map[string]string
}

// HigherInclusionIsX reports whether the X (first-built) isoform is the
// higher-inclusion side, per the sign of the reported PSI difference.
func (e *Event) HigherInclusionIsX() bool {
	return e.PsiDelta >= 0
}
