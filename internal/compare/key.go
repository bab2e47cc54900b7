// Package compare matches ORFs across the two isoform sides of each
// splicing event and quantifies how much the protein product changes.
package compare

import "strings"

// Key is the canonical matching key. Four id encodings are in use across
// the upstream tools (plain gene-id grouping, a "+eventtype" suffix, the
// intron-cluster "upre_"/"dnre_" prefixes, and raw transcript ids); all
// are normalized here once so internal matching is a single lookup, not
// four id-repair passes.
type Key struct {
	Group string // spliced-group id
	Role  string // isoform role: event-type suffix, upre/dnre, or ""
}

// ParseGroupID normalizes any of the four id encodings.
func ParseGroupID(id string) Key {
	if rest, ok := strings.CutPrefix(id, "upre_"); ok {
		return Key{Group: rest, Role: "upre"}
	}
	if rest, ok := strings.CutPrefix(id, "dnre_"); ok {
		return Key{Group: rest, Role: "dnre"}
	}
	if before, after, ok := strings.Cut(id, "+"); ok {
		return Key{Group: before, Role: after}
	}
	return Key{Group: id}
}

// IsCluster reports whether the key uses the intron-cluster prefix
// convention; cluster-style ids are excluded from cross-expansion.
func (k Key) IsCluster() bool {
	return k.Role == "upre" || k.Role == "dnre"
}

// HasSuffix reports whether the key came from the "+eventtype" suffix
// convention.
func (k Key) HasSuffix() bool {
	return k.Role != "" && !k.IsCluster()
}

// Plain returns the key stripped of its role, i.e. the raw-id form.
func (k Key) Plain() Key {
	return Key{Group: k.Group}
}
