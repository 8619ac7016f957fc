package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"codegraph/internal/analysis"
	"codegraph/internal/git"
	"codegraph/internal/snippet"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the graph snapshot",
}

// loadEngine reads the snapshot into a fresh engine.
func loadEngine(ctx context.Context) (*analysis.Engine, error) {
	g, err := openStore().LoadGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrNoGraph, err)
	}
	engine := analysis.NewEngine()
	engine.Load(g, cfg.Snapshot.Path)
	return engine, nil
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <query>",
	Short: "Fuzzy symbol lookup by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		res, err := engine.ResolveSymbol(args[0])
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var refsCmd = &cobra.Command{
	Use:   "refs <id>",
	Short: "Inbound call and import edges of a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		res, err := engine.References(args[0])
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var relatedK int

var relatedCmd = &cobra.Command{
	Use:   "related <id>",
	Short: "Outbound then inbound call and import edges of a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		res, err := engine.Related(args[0], relatedK)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var (
	diffFile string
	gitRef   string
	withStat bool
)

var impactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Changed and impacted files for a diff (stdin, --diff or --git-ref)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := readPatch(cmd.Context())
		if err != nil {
			return err
		}
		if len(patch) > cfg.Server.MaxDiffBytes {
			return fmt.Errorf("%w: diff is %d bytes, limit is %d", analysis.ErrInputTooLarge, len(patch), cfg.Server.MaxDiffBytes)
		}

		engine, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		res, err := engine.ImpactFromDiff(patch)
		if err != nil {
			return err
		}
		if !withStat {
			return printJSON(res)
		}
		return printJSON(struct {
			*analysis.Impact
			Stats []git.FileStat `json:"stats"`
		}{res, git.DiffStats(patch)})
	},
}

func readPatch(ctx context.Context) (string, error) {
	switch {
	case gitRef != "":
		return git.Diff(ctx, cfg.Project.Root, gitRef)
	case diffFile != "" && diffFile != "-":
		b, err := os.ReadFile(diffFile)
		return string(b), err
	default:
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
}

var snippetCmd = &cobra.Command{
	Use:   "snippet <path> <start> <end>",
	Short: "Print lines start..end of a file under the project root",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: start: %v", analysis.ErrInvalidArgument, err)
		}
		end, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("%w: end: %v", analysis.ErrInvalidArgument, err)
		}

		reader, err := snippet.NewReader(cfg.Project.Root)
		if err != nil {
			return err
		}
		snip, err := reader.Read(args[0], start, end)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(os.Stdout, snip.Text())
		return err
	},
}

func init() {
	relatedCmd.Flags().IntVarP(&relatedK, "k", "k", analysis.DefaultRelatedK, "Maximum number of edges (1-100)")
	impactCmd.Flags().StringVar(&diffFile, "diff", "", "Read the diff from this file ('-' for stdin)")
	impactCmd.Flags().StringVar(&gitRef, "git-ref", "", "Diff the working tree against this git ref")
	impactCmd.Flags().BoolVar(&withStat, "stat", false, "Include per-file line counts")

	queryCmd.AddCommand(resolveCmd, refsCmd, relatedCmd, impactCmd)
}
