package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/betsig/GeneStructureTools/internal/orf"
)

// UORFWriter writes upstream-ORF records in tab-delimited format.
type UORFWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewUORFWriter creates a new upstream-ORF writer.
func NewUORFWriter(w io.Writer) *UORFWriter {
	return &UORFWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#isoform_id",
			"rank",
			"frame",
			"start",
			"stop",
			"length",
			"aa_seq",
			"junction_dist",
			"nmd",
		},
	}
}

// WriteHeader writes the header line.
func (uw *UORFWriter) WriteHeader() error {
	_, err := uw.w.WriteString(strings.Join(uw.columns, "\t") + "\n")
	return err
}

// Write writes a single upstream-ORF record.
func (uw *UORFWriter) Write(r orf.Record) error {
	junctionDist := "-"
	if r.JunctionDist >= 0 {
		junctionDist = fmt.Sprintf("%d", r.JunctionDist)
	}

	values := []string{
		r.IsoformID,
		fmt.Sprintf("%d", r.Rank),
		fmt.Sprintf("%d", r.Frame),
		fmt.Sprintf("%d", r.Start),
		fmt.Sprintf("%d", r.Stop),
		fmt.Sprintf("%d", r.Length),
		orDash(r.AASeq),
		junctionDist,
		orDash(string(r.NMD)),
	}

	_, err := uw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes the header and every record.
func (uw *UORFWriter) WriteAll(records []orf.Record) error {
	if err := uw.WriteHeader(); err != nil {
		return err
	}
	for _, r := range records {
		if err := uw.Write(r); err != nil {
			return err
		}
	}
	return uw.w.Flush()
}
