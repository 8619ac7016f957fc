package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"codegraph/internal/analysis"
	"codegraph/internal/config"
	"codegraph/internal/extractor"
	"codegraph/internal/index"
	"codegraph/internal/logging"
	"codegraph/internal/storage"
)

var (
	rootCmd = &cobra.Command{
		Use:           "codegraph",
		Short:         "Cross-language code graph for TypeScript and Python",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}

	configPath   string
	snapshotPath string
	rootDir      string
	logLevel     string

	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&snapshotPath, "snapshot", "s", "", "Graph snapshot path (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", "", "Project root (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(snippetCmd)
}

// setup loads the config, applies flag overrides and installs the logger.
func setup() error {
	c, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if snapshotPath != "" {
		c.Snapshot.Path = snapshotPath
	}
	if rootDir != "" {
		c.Project.Root = rootDir
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}

	l, err := logging.Setup(os.Stderr, c.Log.Level, c.Log.Format)
	if err != nil {
		return err
	}
	cfg, logger = c, l
	return nil
}

func openStore() *storage.SnapshotStore {
	return storage.NewSnapshotStore(cfg.Snapshot.Path)
}

// buildSources turns the configured extractors into ingestion sources.
func buildSources(root string) ([]index.Source, error) {
	var sources []index.Source
	for _, ec := range cfg.Extractors {
		if ec.Language != "" {
			ext, err := extractor.NewExtractor(ec.Language)
			if err != nil {
				return nil, fmt.Errorf("extractor %s: %w", ec.Name, err)
			}
			sources = append(sources, index.NewInProcessSource(ext, root))
			continue
		}

		argv := make([]string, len(ec.Command))
		for i, a := range ec.Command {
			argv[i] = strings.ReplaceAll(a, "{root}", root)
		}
		sources = append(sources, index.NewCommandSource(ec.Name, argv, ""))
	}
	return sources, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitCode maps query failures to distinct statuses for scripting.
func exitCode(err error) int {
	switch analysis.Code(err) {
	case analysis.CodeNoGraph:
		return 3
	case analysis.CodeEmptyQuery, analysis.CodeInvalidArgument, analysis.CodeRangeTooLarge, analysis.CodeInputTooLarge:
		return 2
	case analysis.CodeAccessDenied, analysis.CodeNotFound:
		return 4
	}
	return 1
}
