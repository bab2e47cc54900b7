package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betsig/GeneStructureTools/internal/compare"
	"github.com/betsig/GeneStructureTools/internal/orf"
)

func TestTabWriter_Header(t *testing.T) {
	var sb strings.Builder
	tw := NewTabWriter(&sb)
	require.NoError(t, tw.WriteHeader())
	require.NoError(t, tw.Flush())

	header := strings.TrimSuffix(sb.String(), "\n")
	fields := strings.Split(header, "\t")
	assert.Equal(t, "#event_id", fields[0])
	assert.Len(t, fields, 24)
	assert.Contains(t, fields, "orf_similarity")
	assert.Contains(t, fields, "filtered")
	assert.Contains(t, fields, "psi_delta")
}

func TestTabWriter_Write(t *testing.T) {
	var sb strings.Builder
	tw := NewTabWriter(&sb)

	ch := compare.Change{
		EventID:      "ev1",
		GeneID:       "ENSG01",
		GeneName:     "GENEA",
		TranscriptID: "tx1",
		IDX:          "tx1:ev1+se",
		IDY:          "tx1:ev1+se",
		ORFLengthX:   300,
		ORFLengthY:   102,
		UTR5X:        0,
		UTR3Y:        97,
		NMDX:         orf.NMDUnlikely,
		NMDY:         orf.NMDLikely,
		Similarity:   0.3333,
		Filtered:     compare.FilteredX,
		PValue:       0.001,
		PsiDelta:     0.4,
	}
	require.NoError(t, tw.Write(ch))
	require.NoError(t, tw.Flush())

	fields := strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\t")
	require.Len(t, fields, 24)
	assert.Equal(t, "ev1", fields[0])
	assert.Equal(t, "ENSG01", fields[1])
	assert.Equal(t, "300", fields[8])
	assert.Equal(t, "102", fields[9])
	assert.Equal(t, "unlikely", fields[14])
	assert.Equal(t, "likely", fields[15])
	assert.Equal(t, "0.3333", fields[16])
	assert.Equal(t, "-", fields[17], "gene similarity missing")
	assert.Equal(t, "-", fields[19], "no domain table supplied")
	assert.Equal(t, "x", fields[21])
	assert.Equal(t, "0.001", fields[22])
	assert.Equal(t, "0.4", fields[23])
}

func TestTabWriter_MissingMarkers(t *testing.T) {
	var sb strings.Builder
	tw := NewTabWriter(&sb)

	ch := compare.Change{
		EventID:      "ev1",
		ORFLengthX:   300,
		ORFLengthY:   -1, // no detectable ORF
		SimilarityNA: true,
		Filtered:     compare.FilteredNone,
	}
	require.NoError(t, tw.Write(ch))
	require.NoError(t, tw.Flush())

	fields := strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\t")
	assert.Equal(t, "-", fields[1], "empty gene id")
	assert.Equal(t, "-", fields[9], "missing ORF length")
	assert.Equal(t, "-", fields[16], "undefined similarity")
	assert.Equal(t, "-", fields[14], "no NMD label")
}

func TestTabWriter_DomainsAndGeneSimilarity(t *testing.T) {
	var sb strings.Builder
	tw := NewTabWriter(&sb)

	ch := compare.Change{
		EventID:         "ev1",
		GeneSimilarityX: 1.0,
		GeneSimilarityY: 0.25,
		DomainsX:        2,
		DomainsY:        1,
		HasDomains:      true,
		Filtered:        compare.FilteredBoth,
	}
	require.NoError(t, tw.Write(ch))
	require.NoError(t, tw.Flush())

	fields := strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\t")
	assert.Equal(t, "1.0000", fields[17])
	assert.Equal(t, "0.2500", fields[18])
	assert.Equal(t, "2", fields[19])
	assert.Equal(t, "1", fields[20])
}

func TestTabWriter_WriteAll(t *testing.T) {
	var sb strings.Builder
	tw := NewTabWriter(&sb)

	changes := []compare.Change{
		{EventID: "ev1", Filtered: compare.FilteredBoth},
		{EventID: "ev2", Filtered: compare.FilteredNone},
	}
	require.NoError(t, tw.WriteAll(changes))

	lines := strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "#event_id"))
	assert.True(t, strings.HasPrefix(lines[1], "ev1"))
	assert.True(t, strings.HasPrefix(lines[2], "ev2"))
}
