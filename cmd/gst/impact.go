package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/betsig/GeneStructureTools/internal/annotation"
	"github.com/betsig/GeneStructureTools/internal/compare"
	"github.com/betsig/GeneStructureTools/internal/duckdb"
	"github.com/betsig/GeneStructureTools/internal/event"
	"github.com/betsig/GeneStructureTools/internal/genome"
	"github.com/betsig/GeneStructureTools/internal/gtf"
	"github.com/betsig/GeneStructureTools/internal/isoform"
	"github.com/betsig/GeneStructureTools/internal/orf"
	"github.com/betsig/GeneStructureTools/internal/output"
	"github.com/betsig/GeneStructureTools/internal/pipeline"
)

func newImpactCmd() *cobra.Command {
	var (
		gtfPath     string
		fastaPath   string
		eventsPath  string
		domainsPath string
		outputFile  string
		uorfFile    string
		dbPath      string
		sigSet      bool
		sig         float64
		geneSim     bool
	)

	cmd := &cobra.Command{
		Use:   "impact",
		Short: "Score the protein impact of splicing events end to end",
		Example: `  gst impact --gtf ref.gtf --fasta genome.fa --events events.tsv
  gst impact --gtf ref.gtf.gz --fasta genome.fa.gz --events events.tsv -o changes.tsv --db results.duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sigSet = cmd.Flags().Changed("significance")
			return runImpact(gtfPath, fastaPath, eventsPath, domainsPath, outputFile, uorfFile, dbPath, sig, sigSet, geneSim)
		},
	}

	cmd.Flags().StringVar(&gtfPath, "gtf", "", "Reference annotation GTF, exon rows only (required)")
	cmd.Flags().StringVar(&fastaPath, "fasta", "", "Genome FASTA (required)")
	cmd.Flags().StringVar(&eventsPath, "events", "", "Normalized splicing-event table (required)")
	cmd.Flags().StringVar(&domainsPath, "domains", "", "Protein-domain interval table (optional)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&uorfFile, "uorfs", "", "Also write upstream ORFs to this file (enables uORF search)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Also persist results to a DuckDB file")
	cmd.Flags().Float64Var(&sig, "significance", 0, "Significance threshold for event filtering")
	cmd.Flags().BoolVar(&geneSim, "gene-similarity", false, "Score each isoform ORF against the gene's annotated coding ORFs")
	cmd.MarkFlagRequired("gtf")
	cmd.MarkFlagRequired("fasta")
	cmd.MarkFlagRequired("events")

	return cmd
}

func runImpact(gtfPath, fastaPath, eventsPath, domainsPath, outputFile, uorfFile, dbPath string, sig float64, sigSet, geneSim bool) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	index, src, err := loadReference(gtfPath, fastaPath, logger)
	if err != nil {
		return err
	}

	table, err := event.ReadFile(eventsPath)
	if err != nil {
		return err
	}
	logger.Info("loaded events", zap.Int("count", len(table.Events)))

	threshold := viper.GetFloat64("significance")
	if sigSet {
		threshold = sig
	}
	filtered := table.Filter(event.FilterOptions{Significance: threshold}, logger)
	filtered.SortByID()
	logger.Info("events passing significance filter",
		zap.Int("count", len(filtered.Events)),
		zap.Float64("threshold", threshold))

	builder := isoform.NewBuilder(index)
	builder.SetLogger(logger)

	opts := orfOptions()
	if uorfFile != "" {
		opts.FindUORFs = true
	}
	engine := orf.NewEngine(src, opts)
	engine.SetLogger(logger)

	var geneORFs map[string][]string
	if geneSim || viper.GetBool("compare.gene_similarity") || viper.GetString("compare.by") == "gene" {
		geneORFs = pipeline.CollectGeneORFs(index, engine, filtered, logger)
		logger.Info("collected annotated gene ORFs", zap.Int("genes", len(geneORFs)))
	}

	comparator := compare.NewComparator(compare.Options{
		SubstitutionCost: viper.GetInt("compare.subcost"),
		CompareBy:        viper.GetString("compare.by"),
		Aggregate:        viper.GetString("compare.aggregate"),
		DirectionCorrect: viper.GetBool("compare.direction"),
		GeneORFs:         geneORFs,
	})
	comparator.SetLogger(logger)

	runner := &pipeline.Runner{
		Builder:    builder,
		Engine:     engine,
		Comparator: comparator,
		Workers:    viper.GetInt("workers"),
		Logger:     logger,
	}

	result, err := runner.Run(filtered)
	if err != nil {
		return err
	}
	logger.Info("batch complete",
		zap.Int("pairs", len(result.Pairs)),
		zap.Int("changes", len(result.Changes)))

	if domainsPath != "" {
		domains, err := compare.LoadDomains(domainsPath)
		if err != nil {
			return err
		}
		compare.ApplyDomains(result.Changes, result.Pairs, domains)
	}

	out := os.Stdout
	if outputFile != "" {
		out, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()
	}

	if err := output.NewTabWriter(out).WriteAll(result.Changes); err != nil {
		return fmt.Errorf("write change table: %w", err)
	}

	if uorfFile != "" {
		uf, err := os.Create(uorfFile)
		if err != nil {
			return fmt.Errorf("create uORF file: %w", err)
		}
		defer uf.Close()
		if err := output.NewUORFWriter(uf).WriteAll(result.UORFs); err != nil {
			return fmt.Errorf("write uORF table: %w", err)
		}
		logger.Info("wrote upstream ORFs",
			zap.Int("count", len(result.UORFs)),
			zap.String("file", uorfFile))
	}

	if dbPath != "" {
		store, err := duckdb.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.InsertPairs(result.Pairs); err != nil {
			return err
		}
		if err := store.InsertChanges(result.Changes); err != nil {
			return err
		}
		logger.Info("persisted results", zap.String("db", dbPath))
	}

	return nil
}

// loadReference loads and indexes the annotation and opens the genome.
func loadReference(gtfPath, fastaPath string, logger *zap.Logger) (*annotation.Index, genome.Source, error) {
	exons, err := gtf.NewLoader(gtfPath).Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load annotation: %w", err)
	}
	transcripts := annotation.Assemble(exons)
	index := annotation.NewIndex(transcripts)
	logger.Info("loaded annotation",
		zap.Int("exons", len(exons)),
		zap.Int("transcripts", index.TranscriptCount()))

	var src genome.Source
	if fastaPath != "" {
		fa := genome.NewFASTA(fastaPath)
		if err := fa.Load(); err != nil {
			return nil, nil, fmt.Errorf("load genome: %w", err)
		}
		logger.Info("loaded genome", zap.Int("sequences", fa.SequenceCount()))
		src = fa
	}

	return index, src, nil
}

// orfOptions builds engine options from configuration.
func orfOptions() orf.Options {
	opts := orf.DefaultOptions()
	switch viper.GetString("orf.mode") {
	case "per-frame":
		opts.Mode = orf.LongestPerFrame
	case "topn":
		opts.Mode = orf.TopN
		opts.N = viper.GetInt("orf.topn")
	default:
		opts.Mode = orf.Longest
	}
	opts.FindUORFs = viper.GetBool("orf.uorfs")
	opts.SelectLongest = viper.GetFloat64("orf.select_longest")
	opts.NMDThreshold = viper.GetInt64("nmd.threshold")
	opts.NMDBorderline = viper.GetInt64("nmd.borderline")
	return opts
}
