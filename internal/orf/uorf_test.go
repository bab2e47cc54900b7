package orf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betsig/GeneStructureTools/internal/gtf"
	"github.com/betsig/GeneStructureTools/internal/isoform"
)

// stubSource serves one sequence regardless of seqname.
type stubSource string

func (s stubSource) Fetch(seqname string, start, end int64, strand int8) (string, error) {
	return string(s)[start-1 : end], nil
}

func TestFindUORFs(t *testing.T) {
	e := newTestEngine(DefaultOptions())

	// A 9 nt uORF ahead of the 12 nt main ORF.
	seq := "ATGAAATAA" + "CCC" + "ATGAAAAAATAA"
	uorfs := e.findUORFs("iso1", seq, []int64{15}, 12)
	require.Len(t, uorfs, 1)

	u := uorfs[0]
	assert.Equal(t, 1, u.Rank)
	assert.Equal(t, int64(0), u.Start)
	assert.Equal(t, int64(9), u.Stop)
	assert.Equal(t, int64(9), u.Length)
	assert.True(t, u.HasStop)
	assert.Equal(t, 0, u.JunctionIndex)
	assert.Equal(t, int64(6), u.JunctionDist)
	assert.Equal(t, NMDUnlikely, u.NMD)
}

func TestFindUORFs_RankedByLength(t *testing.T) {
	e := newTestEngine(DefaultOptions())

	// Two complete uORFs in the leader: 12 nt and 9 nt.
	seq := "ATGAAAAAATAA" + "ATGAAATAA" + "ATGAAAAAAAAAAAATAA"
	uorfs := e.findUORFs("iso1", seq, nil, 21)
	require.Len(t, uorfs, 2)
	assert.Equal(t, int64(12), uorfs[0].Length)
	assert.Equal(t, 1, uorfs[0].Rank)
	assert.Equal(t, int64(9), uorfs[1].Length)
	assert.Equal(t, 2, uorfs[1].Rank)
}

func TestFindUORFs_TooShortLeader(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	assert.Nil(t, e.findUORFs("iso1", "CCATGAAATAA", nil, 2))
}

func TestFindUORFs_RequiresStop(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	// ATG in the leader but no stop before the main start.
	seq := "ATGAAAAAA" + "ATGAAATAA"
	assert.Nil(t, e.findUORFs("iso1", seq, nil, 9))
}

func TestAnalyzeFindsUORFs(t *testing.T) {
	opts := DefaultOptions()
	opts.FindUORFs = true
	e := NewEngine(nil, opts)

	seq := "ATGAAATAA" + "CCC" + "ATGAAAAAATAA"
	records := e.FindORFs("iso1", seq, nil)
	require.Len(t, records, 1)
	assert.Equal(t, int64(12), records[0].Length, "main ORF is the longest")

	uorfs := e.findUORFs("iso1", seq, nil, records[0].Start)
	require.Len(t, uorfs, 1)
	assert.Equal(t, 1, uorfs[0].Rank)
}

func TestAnalyze_UORFAnchorsOnLongestMain(t *testing.T) {
	// Frame 0 holds only the short leader ORF; the true main ORF sits in
	// frame 1. Per-frame selection reports both, and the uORF scan must
	// anchor on the longer one, not on frame 0's.
	seq := "ATGAAATAA" + "C" + "ATG" + strings.Repeat("A", 18) + "TAA"
	opts := DefaultOptions()
	opts.Mode = LongestPerFrame
	opts.FindUORFs = true
	e := NewEngine(stubSource(seq), opts)

	iso := &isoform.Isoform{
		ID:     "iso1",
		Strand: 1,
		Exons:  []gtf.Exon{{Seqname: "chrU", Start: 1, End: int64(len(seq)), Strand: 1}},
	}
	records, err := e.Analyze(iso)
	require.NoError(t, err)
	require.Len(t, records, 3)

	var uorfs []Record
	for _, r := range records {
		if r.Rank > 0 {
			uorfs = append(uorfs, r)
		}
	}
	require.Len(t, uorfs, 1, "leader ORF reported as a uORF of the frame-1 main")
	assert.Equal(t, int64(0), uorfs[0].Start)
	assert.Equal(t, int64(9), uorfs[0].Length)
	assert.Equal(t, 0, uorfs[0].Frame)
}

func TestLimitToLongest(t *testing.T) {
	records := []Record{
		{IsoformID: "a", Length: 300},
		{IsoformID: "b", Length: 200},
		{IsoformID: "c", Length: 100},
		{IsoformID: "d", Length: 50},
	}

	t.Run("fraction keeps longest", func(t *testing.T) {
		eligible := LimitToLongest(records, 0.5)
		assert.Len(t, eligible, 2)
		assert.True(t, eligible["a"])
		assert.True(t, eligible["b"])
		assert.False(t, eligible["c"])
	})

	t.Run("zero fraction keeps all", func(t *testing.T) {
		eligible := LimitToLongest(records, 0)
		assert.Len(t, eligible, 4)
	})

	t.Run("tiny fraction keeps at least one", func(t *testing.T) {
		eligible := LimitToLongest(records, 0.01)
		assert.Len(t, eligible, 1)
		assert.True(t, eligible["a"])
	})

	t.Run("missing and uORF records excluded from ranking", func(t *testing.T) {
		mixed := append(records, Record{IsoformID: "e", Missing: true}, Record{IsoformID: "f", Rank: 1, Length: 900})
		eligible := LimitToLongest(mixed, 0.5)
		assert.True(t, eligible["a"])
		assert.False(t, eligible["f"])
	})
}
