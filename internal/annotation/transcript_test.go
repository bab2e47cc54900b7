package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betsig/GeneStructureTools/internal/gtf"
)

func exon(tx string, start, end int64, strand int8) gtf.Exon {
	return gtf.Exon{
		Seqname:      "chr1",
		Start:        start,
		End:          end,
		Strand:       strand,
		TranscriptID: tx,
		GeneID:       "ENSG01",
		GeneName:     "GENEA",
	}
}

func TestAssemble_ForwardStrand(t *testing.T) {
	exons := []gtf.Exon{
		exon("tx1", 201, 300, 1),
		exon("tx1", 1, 99, 1),
		exon("tx1", 100, 200, 1),
	}

	transcripts := Assemble(exons)
	require.Len(t, transcripts, 1)

	tx := transcripts[0]
	assert.Equal(t, "tx1", tx.ID)
	assert.Equal(t, int64(1), tx.Start)
	assert.Equal(t, int64(300), tx.End)
	require.Len(t, tx.Exons, 3)
	assert.Equal(t, int64(1), tx.Exons[0].Start)
	assert.Equal(t, int64(100), tx.Exons[1].Start)
	assert.Equal(t, int64(201), tx.Exons[2].Start)
	assert.Equal(t, []int{1, 2, 3}, []int{tx.Exons[0].ExonNumber, tx.Exons[1].ExonNumber, tx.Exons[2].ExonNumber})
	assert.Equal(t, int64(300), tx.Length())
}

func TestAssemble_ReverseStrandTranscriptOrder(t *testing.T) {
	exons := []gtf.Exon{
		exon("tx2", 1, 99, -1),
		exon("tx2", 201, 300, -1),
	}

	transcripts := Assemble(exons)
	require.Len(t, transcripts, 1)

	tx := transcripts[0]
	// 5'->3' on the minus strand is descending genomic order.
	assert.Equal(t, int64(201), tx.Exons[0].Start)
	assert.Equal(t, int64(1), tx.Exons[1].Start)
}

func TestJunctions(t *testing.T) {
	exons := []gtf.Exon{
		exon("tx1", 1, 99, 1),
		exon("tx1", 100, 200, 1),
		exon("tx1", 201, 300, 1),
	}
	tx := Assemble(exons)[0]
	assert.Equal(t, []int64{99, 200}, tx.Junctions())
}

func TestJunctions_SingleExon(t *testing.T) {
	tx := Assemble([]gtf.Exon{exon("tx1", 1, 99, 1)})[0]
	assert.Nil(t, tx.Junctions())
}

func TestIndex_FindOverlapping(t *testing.T) {
	exons := []gtf.Exon{
		exon("tx1", 1, 99, 1),
		exon("tx1", 201, 300, 1),
		exon("tx2", 500, 600, 1),
	}
	idx := NewIndex(Assemble(exons))

	hits := idx.FindOverlapping("chr1", 150, 250)
	require.Len(t, hits, 1)
	assert.Equal(t, "tx1", hits[0].ID)

	assert.Empty(t, idx.FindOverlapping("chr1", 301, 499))
	assert.Empty(t, idx.FindOverlapping("chr9", 1, 100))
	assert.Equal(t, 2, idx.TranscriptCount())
	assert.Equal(t, []string{"chr1"}, idx.Chromosomes())
}

func TestIndex_GeneTranscripts(t *testing.T) {
	exons := []gtf.Exon{
		exon("tx1", 1, 99, 1),
		exon("tx2", 50, 150, 1),
	}
	idx := NewIndex(Assemble(exons))
	assert.Len(t, idx.GeneTranscripts("ENSG01"), 2)
	assert.NotNil(t, idx.Get("tx1"))
	assert.Nil(t, idx.Get("missing"))
}
