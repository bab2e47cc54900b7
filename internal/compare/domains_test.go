package compare

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betsig/GeneStructureTools/internal/event"
	"github.com/betsig/GeneStructureTools/internal/gtf"
	"github.com/betsig/GeneStructureTools/internal/isoform"
)

func TestReadDomains(t *testing.T) {
	content := "#seqname\tstart\tend\tname\n" +
		"chr1\t100\t200\tkinase\n" +
		"\n" +
		"chr2\t500\t600\tzinc_finger\n"

	domains, err := ReadDomains(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, domains, 2)
	assert.Equal(t, Domain{Seqname: "chr1", Start: 100, End: 200, Name: "kinase"}, domains[0])
	assert.Equal(t, "zinc_finger", domains[1].Name)
}

func TestReadDomains_BadRow(t *testing.T) {
	_, err := ReadDomains(strings.NewReader("chr1\t100\tkinase\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func domainIsoform(exons ...gtf.Exon) *isoform.Isoform {
	return &isoform.Isoform{Seqname: "chr1", Exons: exons}
}

func TestCountDomains(t *testing.T) {
	iso := domainIsoform(
		gtf.Exon{Seqname: "chr1", Start: 1, End: 99},
		gtf.Exon{Seqname: "chr1", Start: 200, End: 300},
	)

	domains := []Domain{
		{Seqname: "chr1", Start: 10, End: 50, Name: "inside first exon"},
		{Seqname: "chr1", Start: 90, End: 210, Name: "spans the intron"},
		{Seqname: "chr1", Start: 250, End: 300, Name: "inside second exon"},
		{Seqname: "chr2", Start: 10, End: 50, Name: "wrong chromosome"},
	}

	assert.Equal(t, 2, CountDomains(iso, domains),
		"only fully exonic domains count")
}

func TestCountDomains_AdjacentExonsCover(t *testing.T) {
	// Contiguous exons cover an interval spanning their shared boundary.
	iso := domainIsoform(
		gtf.Exon{Seqname: "chr1", Start: 1, End: 99},
		gtf.Exon{Seqname: "chr1", Start: 100, End: 200},
	)
	domains := []Domain{{Seqname: "chr1", Start: 50, End: 150, Name: "spanning"}}
	assert.Equal(t, 1, CountDomains(iso, domains))
}

func TestApplyDomains(t *testing.T) {
	pairX := domainIsoform(
		gtf.Exon{Seqname: "chr1", Start: 1, End: 99},
		gtf.Exon{Seqname: "chr1", Start: 100, End: 200},
	)
	pairX.TranscriptID = "tx1"
	pairY := domainIsoform(gtf.Exon{Seqname: "chr1", Start: 1, End: 99})
	pairY.TranscriptID = "tx1"

	pairs := []isoform.Pair{{
		Event: event.Event{ID: "ev1"},
		X:     pairX,
		Y:     pairY,
	}}
	domains := []Domain{{Seqname: "chr1", Start: 120, End: 180, Name: "kinase"}}

	changes := []Change{{EventID: "ev1", TranscriptID: "tx1"}}
	ApplyDomains(changes, pairs, domains)

	assert.True(t, changes[0].HasDomains)
	assert.Equal(t, 1, changes[0].DomainsX)
	assert.Equal(t, 0, changes[0].DomainsY)
}

func TestApplyDomains_FlippedDirection(t *testing.T) {
	pairX := domainIsoform(gtf.Exon{Seqname: "chr1", Start: 100, End: 200})
	pairX.TranscriptID = "tx1"
	pairY := domainIsoform(gtf.Exon{Seqname: "chr1", Start: 1, End: 99})
	pairY.TranscriptID = "tx1"

	pairs := []isoform.Pair{{Event: event.Event{ID: "ev1"}, X: pairX, Y: pairY}}
	domains := []Domain{{Seqname: "chr1", Start: 120, End: 180, Name: "kinase"}}

	changes := []Change{{EventID: "ev1", TranscriptID: "tx1", DirectionFlipped: true}}
	ApplyDomains(changes, pairs, domains)

	assert.Equal(t, 0, changes[0].DomainsX, "counts follow the corrected orientation")
	assert.Equal(t, 1, changes[0].DomainsY)
}

func TestApplyDomains_NoDomains(t *testing.T) {
	changes := []Change{{EventID: "ev1", TranscriptID: "tx1"}}
	ApplyDomains(changes, nil, nil)
	assert.False(t, changes[0].HasDomains)
}
