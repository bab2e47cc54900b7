// Package gtf reads and writes exon-level GTF annotation.
package gtf

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Exon is a single exon row from the reference annotation.
// Reference exons are immutable once loaded; isoform reconstruction
// creates new records rather than editing these in place.
type Exon struct {
	Seqname        string
	Start          int64 // 1-based
	End            int64 // 1-based, inclusive
	Strand         int8  // +1 or -1
	TranscriptID   string
	GeneID         string
	GeneName       string
	ExonNumber     int
	TranscriptType string
}

// Length returns the exon length in nucleotides.
func (e Exon) Length() int64 {
	return e.End - e.Start + 1
}

// Overlaps reports whether the exon overlaps [start, end].
func (e Exon) Overlaps(start, end int64) bool {
	return e.Start <= end && e.End >= start
}

// Contains reports whether [start, end] lies entirely within the exon.
func (e Exon) Contains(start, end int64) bool {
	return e.Start <= start && e.End >= end
}

// ErrNonExonFeature is returned when the annotation contains feature rows
// other than exons. Gene/transcript/CDS rows corrupt frame and ORF
// coordinate arithmetic downstream, so they are rejected at the boundary.
var ErrNonExonFeature = errors.New("gtf: annotation contains non-exon feature rows")

// Loader reads exon records from a GTF file.
type Loader struct {
	path string

	// FilterFeatures drops non-exon rows instead of rejecting the file.
	FilterFeatures bool
}

// NewLoader creates a loader for the given GTF path (.gtf or .gtf.gz).
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads all exon records from the file.
func (l *Loader) Load() ([]Exon, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open GTF file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return l.Parse(reader)
}

// Parse reads exon records from GTF content.
func (l *Loader) Parse(reader io.Reader) ([]Exon, error) {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var exons []Exon

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 9 {
			return nil, fmt.Errorf("gtf line %d: expected 9 fields, got %d", lineNum, len(fields))
		}

		if fields[2] != "exon" {
			if l.FilterFeatures {
				continue
			}
			return nil, fmt.Errorf("gtf line %d: feature %q: %w", lineNum, fields[2], ErrNonExonFeature)
		}

		start, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("gtf line %d: parse start: %w", lineNum, err)
		}
		end, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("gtf line %d: parse end: %w", lineNum, err)
		}

		attrs := parseAttributes(fields[8])
		transcriptID := stripVersion(attrs["transcript_id"])
		if transcriptID == "" {
			return nil, fmt.Errorf("gtf line %d: missing transcript_id attribute", lineNum)
		}

		exonNum, _ := strconv.Atoi(attrs["exon_number"])

		exons = append(exons, Exon{
			Seqname:        fields[0],
			Start:          start,
			End:            end,
			Strand:         ParseStrand(fields[6]),
			TranscriptID:   transcriptID,
			GeneID:         stripVersion(attrs["gene_id"]),
			GeneName:       attrs["gene_name"],
			ExonNumber:     exonNum,
			TranscriptType: attrs["transcript_type"],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GTF: %w", err)
	}

	return exons, nil
}

// parseAttributes parses the GTF attribute column.
// Format: key "value"; key "value"; ...
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		idx := strings.Index(part, " ")
		if idx == -1 {
			continue
		}

		key := part[:idx]
		value := strings.TrimSpace(part[idx+1:])
		value = strings.Trim(value, "\"")

		attrs[key] = value
	}

	return attrs
}

// ParseStrand converts a strand string to int8.
func ParseStrand(s string) int8 {
	if s == "-" {
		return -1
	}
	return 1
}

// FormatStrand converts an int8 strand back to its GTF representation.
func FormatStrand(strand int8) string {
	if strand == -1 {
		return "-"
	}
	return "+"
}

// stripVersion removes the version suffix from an Ensembl ID.
// e.g., "ENST00000456328.2" -> "ENST00000456328"
func stripVersion(id string) string {
	if idx := strings.LastIndex(id, "."); idx != -1 {
		return id[:idx]
	}
	return id
}
