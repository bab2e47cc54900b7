package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betsig/GeneStructureTools/internal/orf"
)

func TestUORFWriter_WriteAll(t *testing.T) {
	var sb strings.Builder
	uw := NewUORFWriter(&sb)

	records := []orf.Record{
		{
			IsoformID:    "tx1:ev1:spliced_intron",
			Rank:         1,
			Frame:        0,
			Start:        0,
			Stop:         9,
			Length:       9,
			AASeq:        "MK",
			JunctionDist: 51,
			NMD:          orf.NMDBorderline,
		},
		{
			IsoformID:    "tx1:ev1:spliced_intron",
			Rank:         2,
			Frame:        1,
			Start:        4,
			Stop:         10,
			Length:       6,
			AASeq:        "M",
			JunctionDist: -1, // no downstream junction
			NMD:          orf.NMDUnlikely,
		},
	}
	require.NoError(t, uw.WriteAll(records))

	lines := strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "#isoform_id"))

	fields := strings.Split(lines[1], "\t")
	require.Len(t, fields, 9)
	assert.Equal(t, "tx1:ev1:spliced_intron", fields[0])
	assert.Equal(t, "1", fields[1])
	assert.Equal(t, "9", fields[5])
	assert.Equal(t, "MK", fields[6])
	assert.Equal(t, "51", fields[7])
	assert.Equal(t, "probable-borderline", fields[8])

	fields = strings.Split(lines[2], "\t")
	assert.Equal(t, "-", fields[7], "no downstream junction")
}
