package gtf

import (
	"bufio"
	"fmt"
	"io"
)

// Writer emits exon rows in GTF format. Reconstructed isoforms carry the
// set and comp_set attributes so external viewers can distinguish the two
// splice paths of one event.
type Writer struct {
	w      *bufio.Writer
	source string
}

// NewWriter creates a GTF writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w), source: "GeneStructureTools"}
}

// WriteExon writes a single exon row with isoform labels.
// set identifies the splice path role (e.g. included_exon) and compSet the
// comparison group shared by the two paths of an event.
func (gw *Writer) WriteExon(e Exon, transcriptID, set, compSet string) error {
	attrs := fmt.Sprintf(
		`gene_id "%s"; transcript_id "%s"; gene_name "%s"; exon_number "%d";`,
		e.GeneID, transcriptID, e.GeneName, e.ExonNumber)
	if set != "" {
		attrs += fmt.Sprintf(` set "%s";`, set)
	}
	if compSet != "" {
		attrs += fmt.Sprintf(` comp_set "%s";`, compSet)
	}

	_, err := fmt.Fprintf(gw.w, "%s\t%s\texon\t%d\t%d\t.\t%s\t.\t%s\n",
		e.Seqname, gw.source, e.Start, e.End, FormatStrand(e.Strand), attrs)
	return err
}

// Flush flushes buffered rows to the underlying writer.
func (gw *Writer) Flush() error {
	return gw.w.Flush()
}
