// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/kinpath/internal/kinship"
	"github.com/pdiddy/kinpath/internal/render"
	"github.com/pdiddy/kinpath/internal/snapshot"
	"github.com/pdiddy/kinpath/pkg/types"
)

var findCmd = &cobra.Command{
	Use:   "find START END",
	Short: "Find how two people are related",
	Long: `Find searches upward from both people through their parents until the
two ancestries meet, then reports the shortest distinct paths through the
common ancestors with a degree label for each.

Use --from-file to show a query saved earlier with --query-file without
contacting the provider again.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if from, _ := cmd.Flags().GetString("from-file"); from != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: runFind,
}

func runFind(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if from, _ := cmd.Flags().GetString("from-file"); from != "" {
		qf, err := kinship.ReadQueryFile(from, localeFlag(cmd))
		if err != nil {
			return err
		}
		return writeResult(cmd, out, qf.Result)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	deps, err := newSearchDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close()

	start := normalizeID(cfg, args[0], logger)
	end := normalizeID(cfg, args[1], logger)
	res, err := deps.finder.FindKinshipPaths(ctx, start, end, cfg.Search.MaxDepth)
	if err != nil {
		return err
	}
	logger.Debug("cache after search",
		zap.Int("entries", deps.cache.Len()),
		zap.Uint64("hits", deps.cache.Stats().Hits),
		zap.Uint64("misses", deps.cache.Stats().Misses))

	if err := writeResult(cmd, out, res); err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("query-file"); path != "" {
		params := kinship.QueryParams{
			Start:    start,
			End:      end,
			MaxDepth: res.MaxDepth,
			Provider: cfg.Provider.Kind,
			Locale:   cfg.Search.Locale,
		}
		if err := kinship.WriteQueryFile(path, params, res); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved query to %s\n", path)
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		store, err := snapshot.NewStore(cfg.Store, cfg.Search.Locale)
		if err != nil {
			return err
		}
		defer store.Close()
		snap, err := store.Save(ctx, res, cfg.Provider.Kind)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved snapshot %s\n", snap.Slug)
	}

	if path, _ := cmd.Flags().GetString("metrics-file"); path != "" {
		if err := deps.metrics.WriteTextfile(path); err != nil {
			return err
		}
	}
	return nil
}

// writeResult prints res in the format selected by --json or --mermaid.
func writeResult(cmd *cobra.Command, out io.Writer, res types.Result) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return render.FormatJSON(res, out)
	}
	render.FormatTable(res, out)
	if mermaid, _ := cmd.Flags().GetBool("mermaid"); mermaid && res.Found() {
		fmt.Fprintln(out)
		render.FormatMermaid(res, out)
	}
	return nil
}

// localeFlag returns --locale when it was given, or the configured locale.
func localeFlag(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("locale"); f != nil && f.Changed {
		return f.Value.String()
	}
	return cfg.Search.Locale
}

func init() {
	findCmd.Flags().Int("max-depth", 8, "maximum search rounds")
	findCmd.Flags().Int("max-paths", 8, "maximum paths to report")
	findCmd.Flags().Duration("timeout", 0, "wall-clock limit for the search (0 uses the config)")
	findCmd.Flags().String("provider", "familysearch", "relative provider: familysearch, tree or neo4j")
	findCmd.Flags().String("environment", "beta", "FamilySearch environment: production, beta or integration")
	findCmd.Flags().String("tree", "", "YAML tree file for the tree provider")
	findCmd.Flags().String("graph-uri", "", "Neo4j Bolt URI for the neo4j provider")
	findCmd.Flags().String("locale", "en", "label language: en or pt")
	findCmd.Flags().Bool("remote-finder", false, "ask the provider's relationship endpoint before searching")
	findCmd.Flags().Bool("json", false, "output the result as JSON")
	findCmd.Flags().Bool("mermaid", false, "also print a Mermaid flowchart per path")
	findCmd.Flags().Bool("save", false, "save the result as a shareable snapshot")
	findCmd.Flags().String("store-dir", "", "snapshot store directory (default .kinpath)")
	findCmd.Flags().String("query-file", "", "write the query and result to this YAML file")
	findCmd.Flags().String("from-file", "", "show a saved query file instead of searching")
	findCmd.Flags().String("metrics-file", "", "write Prometheus metrics to this file")

	rootCmd.AddCommand(findCmd)
}
