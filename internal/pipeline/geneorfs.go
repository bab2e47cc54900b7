package pipeline

import (
	"go.uber.org/zap"

	"github.com/betsig/GeneStructureTools/internal/annotation"
	"github.com/betsig/GeneStructureTools/internal/event"
	"github.com/betsig/GeneStructureTools/internal/orf"
)

// CollectGeneORFs translates the annotated protein-coding ORFs of every
// gene touched by an event, keyed by gene id. The comparator scores each
// reconstructed isoform against these for gene-level similarity.
func CollectGeneORFs(index *annotation.Index, engine *orf.Engine, table *event.Table, logger *zap.Logger) map[string][]string {
	if logger == nil {
		logger = zap.NewNop()
	}

	genes := make(map[string]bool)
	for _, ev := range table.Events {
		for _, t := range index.FindOverlapping(ev.Seqname, ev.Start, ev.End) {
			if t.GeneID != "" {
				genes[t.GeneID] = true
			}
		}
	}

	orfs := make(map[string][]string, len(genes))
	for gene := range genes {
		for _, t := range index.GeneTranscripts(gene) {
			if !t.IsProteinCoding() {
				continue
			}
			seq, err := engine.ExonSequence(t.Exons)
			if err != nil {
				logger.Warn("failed to fetch annotated transcript sequence",
					zap.String("transcript", t.ID),
					zap.Error(err))
				continue
			}
			for _, rec := range engine.FindORFs(t.ID, seq, t.Junctions()) {
				if rec.Missing || !rec.HasStop {
					continue
				}
				orfs[gene] = append(orfs[gene], rec.AASeq)
			}
		}
	}
	return orfs
}
