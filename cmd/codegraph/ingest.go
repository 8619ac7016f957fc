package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"codegraph/internal/crawler"
	"codegraph/internal/extractor"
	"codegraph/internal/index"
)

var printReport bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [root]",
	Short: "Run every extractor over the project and write the graph snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cfg.Project.Root
		if len(args) > 0 {
			root = args[0]
		}
		root, err := filepath.Abs(root)
		if err != nil {
			return err
		}
		if !crawler.IsDir(root) {
			return fmt.Errorf("%s: %w", root, crawler.ErrNotDir)
		}

		// 1. Sources
		sources, err := buildSources(root)
		if err != nil {
			return err
		}

		// 2. Extract, resolve, dedup
		idx := index.NewIndexer(sources, cfg.Ingest.MaxLineBytes, logger)
		g, report, err := idx.BuildGraph(cmd.Context())
		if err != nil {
			return err
		}

		// 3. Persist
		store := openStore()
		if err := store.SaveGraph(cmd.Context(), g); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		logger.Info("snapshot written",
			slog.String("path", store.Location()),
			slog.String("run_id", report.RunID))

		if printReport {
			return printJSON(report)
		}
		fmt.Fprintf(os.Stdout, "%d symbols, %d edges (%d calls unresolved) -> %s\n",
			report.Symbols, report.Edges, report.Resolve.Unresolved, store.Location())
		return nil
	},
}

var (
	extractLanguage string
	printSchema     bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [root]",
	Short: "Run one built-in extractor and write its NDJSON records to stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if printSchema {
			_, err := fmt.Fprintln(os.Stdout, extractor.RecordSchema())
			return err
		}
		root := cfg.Project.Root
		if len(args) > 0 {
			root = args[0]
		}
		ext, err := extractor.NewExtractor(extractLanguage)
		if err != nil {
			return err
		}
		return ext.Run(cmd.Context(), root, os.Stdout)
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&printReport, "report", false, "Print the ingestion report as JSON")
	extractCmd.Flags().BoolVar(&printSchema, "schema", false, "Print the JSON Schema of the record stream and exit")
	extractCmd.Flags().StringVarP(&extractLanguage, "language", "l", extractor.LanguageTypeScript, "Extractor language: typescript or python")
}
