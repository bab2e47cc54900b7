// Package genome retrieves nucleotide sequence for genomic intervals.
package genome

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Source returns nucleotide sequence for a strand-aware genomic interval.
// Coordinates are 1-based inclusive. Sequence is upper-case IUPAC codes;
// minus-strand requests return the reverse complement.
type Source interface {
	Fetch(seqname string, start, end int64, strand int8) (string, error)
}

// FASTA is an in-memory genome FASTA Source.
type FASTA struct {
	path      string
	sequences map[string]string // seqname -> sequence
}

// NewFASTA creates a FASTA source for the given path (.fa or .fa.gz).
func NewFASTA(path string) *FASTA {
	return &FASTA{
		path:      path,
		sequences: make(map[string]string),
	}
}

// Load parses the FASTA file and stores sequences indexed by record name.
func (f *FASTA) Load() error {
	fh, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("open FASTA file: %w", err)
	}
	defer fh.Close()

	var reader io.Reader = fh
	if strings.HasSuffix(f.path, ".gz") {
		gz, err := gzip.NewReader(fh)
		if err != nil {
			return fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return f.parse(reader)
}

// parse reads FASTA content. Record names are the first whitespace-delimited
// token of each header.
func (f *FASTA) parse(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var currentName string
	var currentSeq strings.Builder

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, ">") {
			if currentName != "" && currentSeq.Len() > 0 {
				f.sequences[currentName] = strings.ToUpper(currentSeq.String())
			}
			currentName = parseHeader(line)
			currentSeq.Reset()
		} else {
			currentSeq.WriteString(strings.TrimSpace(line))
		}
	}

	if currentName != "" && currentSeq.Len() > 0 {
		f.sequences[currentName] = strings.ToUpper(currentSeq.String())
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan FASTA: %w", err)
	}

	return nil
}

// parseHeader extracts the record name from a FASTA header line.
func parseHeader(header string) string {
	header = strings.TrimPrefix(header, ">")
	if idx := strings.IndexAny(header, " \t"); idx != -1 {
		return header[:idx]
	}
	return header
}

// Fetch returns the sequence for [start, end] on the given strand.
func (f *FASTA) Fetch(seqname string, start, end int64, strand int8) (string, error) {
	seq, ok := f.sequences[seqname]
	if !ok {
		// Tolerate chr-prefix mismatches between annotation and genome.
		seq, ok = f.sequences[altSeqname(seqname)]
		if !ok {
			return "", fmt.Errorf("sequence %q not found in %s", seqname, f.path)
		}
	}

	if start < 1 || end > int64(len(seq)) || start > end {
		return "", fmt.Errorf("interval %s:%d-%d out of range (sequence length %d)",
			seqname, start, end, len(seq))
	}

	sub := seq[start-1 : end]
	if strand == -1 {
		return ReverseComplement(sub), nil
	}
	return sub, nil
}

// SequenceCount returns the number of loaded records.
func (f *FASTA) SequenceCount() int {
	return len(f.sequences)
}

// altSeqname toggles the "chr" prefix on a sequence name.
func altSeqname(seqname string) string {
	if strings.HasPrefix(seqname, "chr") {
		return seqname[3:]
	}
	return "chr" + seqname
}

// ReverseComplement returns the reverse complement of a DNA sequence.
func ReverseComplement(seq string) string {
	n := len(seq)
	result := make([]byte, n)
	for i := 0; i < n; i++ {
		result[i] = Complement(seq[n-1-i])
	}
	return string(result)
}

// Complement returns the complement of a single base.
func Complement(base byte) byte {
	switch base {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'G':
		return 'C'
	case 'C':
		return 'G'
	case 'a':
		return 't'
	case 't':
		return 'a'
	case 'g':
		return 'c'
	case 'c':
		return 'g'
	default:
		return 'N'
	}
}
