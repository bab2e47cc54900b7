package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(id string, start, end int64) *Transcript {
	return &Transcript{ID: id, Seqname: "chr1", Start: start, End: end, Strand: 1}
}

func TestIntervalTree_Empty(t *testing.T) {
	tree := BuildIntervalTree(nil)
	assert.Nil(t, tree.FindOverlaps(1, 10))
}

func TestIntervalTree_FindOverlaps(t *testing.T) {
	transcripts := []*Transcript{
		tx("a", 1, 100),
		tx("b", 50, 200),
		tx("c", 150, 300),
		tx("d", 400, 500),
	}
	tree := BuildIntervalTree(transcripts)

	tests := []struct {
		name       string
		start, end int64
		want       []string
	}{
		{"inside first", 10, 20, []string{"a"}},
		{"spans a and b", 60, 90, []string{"a", "b"}},
		{"spans b and c", 160, 180, []string{"b", "c"}},
		{"between c and d", 301, 399, nil},
		{"touches d start", 350, 400, []string{"d"}},
		{"covers everything", 1, 500, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := tree.FindOverlaps(tt.start, tt.end)
			var ids []string
			for _, h := range hits {
				ids = append(ids, h.ID)
			}
			require.ElementsMatch(t, tt.want, ids)
		})
	}
}

func TestIntervalTree_LongIntervalNotPruned(t *testing.T) {
	// A long interval starting early must still be found for queries far
	// to its right, despite shorter intervals in between.
	transcripts := []*Transcript{
		tx("long", 1, 1000),
		tx("short1", 100, 110),
		tx("short2", 200, 210),
	}
	tree := BuildIntervalTree(transcripts)

	hits := tree.FindOverlaps(900, 950)
	require.Len(t, hits, 1)
	assert.Equal(t, "long", hits[0].ID)

	hits = tree.FindOverlaps(150, 160)
	require.Len(t, hits, 1, "query between the short intervals still reaches the long one")
	assert.Equal(t, "long", hits[0].ID)
}
