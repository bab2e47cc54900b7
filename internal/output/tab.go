// Package output provides change-table output formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/betsig/GeneStructureTools/internal/compare"
)

// TabWriter writes change records in tab-delimited format. Missing values
// are written as "-" so unresolved rows stay visible instead of vanishing.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#event_id",
			"gene_id",
			"gene_name",
			"transcript_id",
			"id_x",
			"id_y",
			"frame_x",
			"frame_y",
			"orf_length_x",
			"orf_length_y",
			"utr5_x",
			"utr5_y",
			"utr3_x",
			"utr3_y",
			"nmd_x",
			"nmd_y",
			"orf_similarity",
			"gene_similarity_x",
			"gene_similarity_y",
			"domains_x",
			"domains_y",
			"filtered",
			"pvalue",
			"psi_delta",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single change record.
func (tw *TabWriter) Write(ch compare.Change) error {
	sim := "-"
	if !ch.SimilarityNA {
		sim = fmt.Sprintf("%.4f", ch.Similarity)
	}

	geneSimX, geneSimY := "-", "-"
	if !ch.GeneSimilarityNA && (ch.GeneSimilarityX > 0 || ch.GeneSimilarityY > 0) {
		geneSimX = fmt.Sprintf("%.4f", ch.GeneSimilarityX)
		geneSimY = fmt.Sprintf("%.4f", ch.GeneSimilarityY)
	}

	domX, domY := "-", "-"
	if ch.HasDomains {
		domX = fmt.Sprintf("%d", ch.DomainsX)
		domY = fmt.Sprintf("%d", ch.DomainsY)
	}

	values := []string{
		ch.EventID,
		orDash(ch.GeneID),
		orDash(ch.GeneName),
		orDash(ch.TranscriptID),
		ch.IDX,
		ch.IDY,
		fmt.Sprintf("%d", ch.FrameX),
		fmt.Sprintf("%d", ch.FrameY),
		formatLength(ch.ORFLengthX),
		formatLength(ch.ORFLengthY),
		fmt.Sprintf("%d", ch.UTR5X),
		fmt.Sprintf("%d", ch.UTR5Y),
		fmt.Sprintf("%d", ch.UTR3X),
		fmt.Sprintf("%d", ch.UTR3Y),
		orDash(string(ch.NMDX)),
		orDash(string(ch.NMDY)),
		sim,
		geneSimX,
		geneSimY,
		domX,
		domY,
		ch.Filtered,
		fmt.Sprintf("%g", ch.PValue),
		fmt.Sprintf("%g", ch.PsiDelta),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes the header and every record.
func (tw *TabWriter) WriteAll(changes []compare.Change) error {
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, ch := range changes {
		if err := tw.Write(ch); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatLength renders an ORF length, with -1 (no detectable ORF) as a
// missing marker.
func formatLength(n int64) string {
	if n < 0 {
		return "-"
	}
	return fmt.Sprintf("%d", n)
}
