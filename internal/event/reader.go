package event

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/betsig/GeneStructureTools/internal/gtf"
)

// DefaultSignificance is applied when no threshold is configured.
const DefaultSignificance = 0.05

// Required columns of the normalized event table. Upstream tool-native
// formats are converted to this table by external adapters.
var requiredColumns = []string{
	"event_id", "type", "seqname", "start", "end", "strand", "pvalue", "psi_delta",
}

// Table is an immutable set of splicing events. Filtering produces a new,
// smaller table; the original is never mutated.
type Table struct {
	Events []Event
}

// ReadFile reads a normalized event table from a TSV file (.tsv or .tsv.gz).
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event table: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return Read(reader)
}

// Read parses a normalized event table.
func Read(reader io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("scan event table: %w", err)
		}
		return nil, fmt.Errorf("event table is empty")
	}

	header := strings.Split(strings.TrimPrefix(scanner.Text(), "#"), "\t")
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[strings.TrimSpace(col)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("event table missing required column %q", col)
		}
	}

	var events []Event
	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < len(requiredColumns) {
			return nil, fmt.Errorf("event table line %d: expected at least %d fields, got %d",
				lineNum, len(requiredColumns), len(fields))
		}

		get := func(col string) string {
			i, ok := colIdx[col]
			if !ok || i >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[i])
		}

		typ, err := ParseType(get("type"))
		if err != nil {
			return nil, fmt.Errorf("event table line %d: %w", lineNum, err)
		}

		start, err := strconv.ParseInt(get("start"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("event table line %d: parse start: %w", lineNum, err)
		}
		end, err := strconv.ParseInt(get("end"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("event table line %d: parse end: %w", lineNum, err)
		}

		pvalue, err := strconv.ParseFloat(get("pvalue"), 64)
		if err != nil {
			return nil, fmt.Errorf("event table line %d: parse pvalue: %w", lineNum, err)
		}
		psiDelta, err := strconv.ParseFloat(get("psi_delta"), 64)
		if err != nil {
			return nil, fmt.Errorf("event table line %d: parse psi_delta: %w", lineNum, err)
		}

		ev := Event{
			ID:       get("event_id"),
			Type:     typ,
			Seqname:  get("seqname"),
			Start:    start,
			End:      end,
			PValue:   pvalue,
			PsiDelta: psiDelta,
		}

		switch strand := get("strand"); strand {
		case "+", "-":
			ev.Strand = gtf.ParseStrand(strand)
		default:
			ev.Strand = 0 // inferred later from overlapping annotation
		}

		if s2 := get("start2"); s2 != "" {
			ev.Start2, _ = strconv.ParseInt(s2, 10, 64)
		}
		if e2 := get("end2"); e2 != "" {
			ev.End2, _ = strconv.ParseInt(e2, 10, 64)
		}

		// Carry unrecognized columns through opaquely.
		for col, i := range colIdx {
			if isRequired(col) || col == "start2" || col == "end2" || i >= len(fields) {
				continue
			}
			if ev.Extra == nil {
				ev.Extra = make(map[string]string)
			}
			ev.Extra[col] = fields[i]
		}

		events = append(events, ev)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan event table: %w", err)
	}

	return &Table{Events: events}, nil
}

func isRequired(col string) bool {
	for _, c := range requiredColumns {
		if c == col {
			return true
		}
	}
	return false
}

// FilterOptions selects a subset of an event table.
type FilterOptions struct {
	// Significance is the p-value cutoff. Zero means unset; the default
	// is substituted with a warning rather than silently passing every
	// event through.
	Significance float64

	// Genes, when non-empty, restricts events to those whose gene_id or
	// gene_name extra column matches.
	Genes []string
}

// Filter returns a new table containing only the events that pass the
// given thresholds. The receiver is not modified.
func (t *Table) Filter(opts FilterOptions, logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}

	cutoff := opts.Significance
	if cutoff == 0 {
		cutoff = DefaultSignificance
		logger.Warn("no significance threshold supplied, applying default",
			zap.Float64("default", DefaultSignificance))
	}

	geneSet := make(map[string]bool, len(opts.Genes))
	for _, g := range opts.Genes {
		geneSet[g] = true
	}

	filtered := make([]Event, 0, len(t.Events))
	for _, ev := range t.Events {
		if ev.PValue > cutoff {
			continue
		}
		if len(geneSet) > 0 && !geneSet[ev.Extra["gene_id"]] && !geneSet[ev.Extra["gene_name"]] {
			continue
		}
		filtered = append(filtered, ev)
	}

	return &Table{Events: filtered}
}

// SortByID orders events by ID so sharded results re-merge
// deterministically.
func (t *Table) SortByID() {
	sort.SliceStable(t.Events, func(i, j int) bool {
		return t.Events[i].ID < t.Events[j].ID
	})
}
