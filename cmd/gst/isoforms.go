package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/betsig/GeneStructureTools/internal/duckdb"
	"github.com/betsig/GeneStructureTools/internal/event"
	"github.com/betsig/GeneStructureTools/internal/gtf"
	"github.com/betsig/GeneStructureTools/internal/isoform"
)

func newIsoformsCmd() *cobra.Command {
	var (
		gtfPath    string
		eventsPath string
		exportPath string
		dbPath     string
	)

	cmd := &cobra.Command{
		Use:   "isoforms",
		Short: "Reconstruct isoform pairs and export them as GTF",
		Example: `  gst isoforms --gtf ref.gtf --events events.tsv --export isoforms.gtf
  gst isoforms --gtf ref.gtf --events events.tsv --db isoforms.duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIsoforms(gtfPath, eventsPath, exportPath, dbPath)
		},
	}

	cmd.Flags().StringVar(&gtfPath, "gtf", "", "Reference annotation GTF, exon rows only (required)")
	cmd.Flags().StringVar(&eventsPath, "events", "", "Normalized splicing-event table (required)")
	cmd.Flags().StringVar(&exportPath, "export", "", "Export reconstructed isoforms as GTF (default: stdout)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Persist isoform exon tables to a DuckDB file")
	cmd.MarkFlagRequired("gtf")
	cmd.MarkFlagRequired("events")

	return cmd
}

func runIsoforms(gtfPath, eventsPath, exportPath, dbPath string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	index, _, err := loadReference(gtfPath, "", logger)
	if err != nil {
		return err
	}

	table, err := event.ReadFile(eventsPath)
	if err != nil {
		return err
	}
	filtered := table.Filter(event.FilterOptions{
		Significance: viper.GetFloat64("significance"),
	}, logger)
	filtered.SortByID()

	builder := isoform.NewBuilder(index)
	builder.SetLogger(logger)

	var pairs []isoform.Pair
	for _, ev := range filtered.Events {
		pairs = append(pairs, builder.Build(ev)...)
	}
	pairs = isoform.DedupePairs(pairs)
	logger.Info("reconstructed isoform pairs", zap.Int("pairs", len(pairs)))

	out := os.Stdout
	if exportPath != "" {
		out, err = os.Create(exportPath)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer out.Close()
	}

	gw := gtf.NewWriter(out)
	for _, p := range pairs {
		compSet := p.Event.ID
		for _, e := range p.X.Exons {
			if err := gw.WriteExon(e, p.X.ID, p.X.Set, compSet); err != nil {
				return fmt.Errorf("write isoform exon: %w", err)
			}
		}
		for _, e := range p.Y.Exons {
			if err := gw.WriteExon(e, p.Y.ID, p.Y.Set, compSet); err != nil {
				return fmt.Errorf("write isoform exon: %w", err)
			}
		}
	}
	if err := gw.Flush(); err != nil {
		return err
	}

	if dbPath != "" {
		store, err := duckdb.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.InsertPairs(pairs); err != nil {
			return err
		}
		logger.Info("persisted isoforms", zap.String("db", dbPath))
	}

	return nil
}
