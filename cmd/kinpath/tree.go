// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kinpath/internal/graphdb"
	"github.com/pdiddy/kinpath/internal/provider"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Work with YAML family tree files (check, import)",
	Long: `Tree validates YAML family tree files and imports them into Neo4j so that
searches can run against a local clone with --provider neo4j.

A tree file lists persons with their parents and spouses:

  persons:
    - id: P1
      name: Ana
      parents: [P3, P4]
      spouses: [P2]`,
}

var treeCheckCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Report structural problems in a tree file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tf, err := provider.ReadTreeFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		problems := provider.Check(tf)
		for _, p := range problems {
			fmt.Fprintf(out, "problem  %s\n", p)
		}
		if len(problems) > 0 {
			return fmt.Errorf("%d problem(s) in %s", len(problems), args[0])
		}
		fmt.Fprintf(out, "%s: %d persons, no problems\n", args[0], provider.NewTree(tf).Len())
		return nil
	},
}

var treeImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a tree file into Neo4j",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := provider.LoadTree(args[0])
		if err != nil {
			return err
		}
		batch, _ := cmd.Flags().GetInt("batch-size")

		ctx := context.Background()
		client, err := graphdb.Open(ctx, cfg.Graph)
		if err != nil {
			return err
		}
		defer client.Close(ctx)

		stats, err := graphdb.ImportTree(ctx, client, tree.Records(), batch)
		if err != nil {
			return err
		}
		total, err := graphdb.CountPersons(ctx, client)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d persons, %d parent links, %d spouse links (%d persons in graph)\n",
			stats.Persons, stats.ParentLinks, stats.SpouseLinks, total)
		return nil
	},
}

func init() {
	treeImportCmd.Flags().String("graph-uri", "", "Neo4j Bolt URI (default from graph.uri)")
	treeImportCmd.Flags().Int("batch-size", graphdb.DefaultBatchSize, "rows per UNWIND batch")

	treeCmd.AddCommand(treeCheckCmd, treeImportCmd)
	rootCmd.AddCommand(treeCmd)
}
