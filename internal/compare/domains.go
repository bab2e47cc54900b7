package compare

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/betsig/GeneStructureTools/internal/isoform"
)

// Domain is an annotated protein-domain interval in genomic coordinates.
type Domain struct {
	Seqname string
	Start   int64
	End     int64
	Name    string
}

// LoadDomains reads a domain table: TSV with columns seqname, start, end,
// name. Lines starting with # are skipped.
func LoadDomains(path string) ([]Domain, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open domain table: %w", err)
	}
	defer f.Close()
	return ReadDomains(f)
}

// ReadDomains parses domain rows.
func ReadDomains(reader io.Reader) ([]Domain, error) {
	scanner := bufio.NewScanner(reader)
	var domains []Domain
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			return nil, fmt.Errorf("domain table line %d: expected 4 fields, got %d", lineNum, len(fields))
		}
		start, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("domain table line %d: parse start: %w", lineNum, err)
		}
		end, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("domain table line %d: parse end: %w", lineNum, err)
		}
		domains = append(domains, Domain{
			Seqname: fields[0],
			Start:   start,
			End:     end,
			Name:    fields[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan domain table: %w", err)
	}
	return domains, nil
}

// CountDomains returns how many domains are fully retained by the
// isoform: every base of the domain interval must be exonic.
func CountDomains(iso *isoform.Isoform, domains []Domain) int {
	count := 0
	for _, d := range domains {
		if d.Seqname != iso.Seqname {
			continue
		}
		if coversInterval(iso, d.Start, d.End) {
			count++
		}
	}
	return count
}

// coversInterval reports whether [start, end] is fully covered by the
// isoform's exons. Exons never overlap within one isoform, so coverage is
// checked by walking them in genomic order.
func coversInterval(iso *isoform.Isoform, start, end int64) bool {
	pos := start
	// Exons are in transcript order; walk genomically from the low end.
	for pos <= end {
		advanced := false
		for _, e := range iso.Exons {
			if e.Start <= pos && pos <= e.End {
				pos = e.End + 1
				advanced = true
				break
			}
		}
		if !advanced {
			return false
		}
	}
	return true
}

// ApplyDomains fills the domain-count fields of each change record from
// its isoform pair.
func ApplyDomains(changes []Change, pairs []isoform.Pair, domains []Domain) {
	if len(domains) == 0 {
		return
	}

	type pairKey struct{ event, transcript string }
	byKey := make(map[pairKey]isoform.Pair, len(pairs))
	for _, p := range pairs {
		byKey[pairKey{p.Event.ID, p.X.TranscriptID}] = p
	}

	for i := range changes {
		ch := &changes[i]
		p, ok := byKey[pairKey{ch.EventID, ch.TranscriptID}]
		if !ok {
			continue
		}
		ch.DomainsX = CountDomains(p.X, domains)
		ch.DomainsY = CountDomains(p.Y, domains)
		if ch.DirectionFlipped {
			ch.DomainsX, ch.DomainsY = ch.DomainsY, ch.DomainsX
		}
		ch.HasDomains = true
	}
}
