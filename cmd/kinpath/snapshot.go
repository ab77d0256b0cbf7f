// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kinpath/internal/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage saved results (list, show, delete, export)",
	Long: `Snapshot manages results saved with "find --save". Each snapshot has a
short random slug that can be shared; showing it needs no provider access.`,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		list, err := store.List(context.Background())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "No snapshots.")
			return nil
		}
		fmt.Fprintf(out, "%-10s  %-12s  %-12s  %-5s  %s\n", "Slug", "Start", "End", "Paths", "Created")
		fmt.Fprintln(out, strings.Repeat("-", 70))
		for _, s := range list {
			fmt.Fprintf(out, "%-10s  %-12s  %-12s  %-5d  %s\n",
				s.Slug, s.StartID, s.EndID, s.Paths, s.CreatedAt.Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(out, "\n%d snapshots\n", len(list))
		return nil
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show SLUG",
	Short: "Show a saved snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		snap, err := store.Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); !asJSON {
			fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s (%s, saved %s)\n\n",
				snap.Slug, snap.Provider, snap.CreatedAt.Format("2006-01-02 15:04"))
		}
		return writeResult(cmd, cmd.OutOrStdout(), snap.Result)
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete SLUG",
	Short: "Delete a saved snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every snapshot to YAML or JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		var path string
		switch format {
		case "yaml":
			path, err = store.ExportYAML(context.Background())
		case "json":
			path, err = store.ExportJSON(context.Background())
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
		return nil
	},
}

func openStore() (*snapshot.Store, error) {
	return snapshot.NewStore(cfg.Store, cfg.Search.Locale)
}

func init() {
	snapshotCmd.PersistentFlags().String("store-dir", "", "snapshot store directory (default .kinpath)")
	snapshotCmd.PersistentFlags().String("locale", "en", "label language for snapshots saved without labels")

	snapshotShowCmd.Flags().Bool("json", false, "output the result as JSON")
	snapshotShowCmd.Flags().Bool("mermaid", false, "also print a Mermaid flowchart per path")
	snapshotExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	snapshotCmd.AddCommand(snapshotListCmd, snapshotShowCmd, snapshotDeleteCmd, snapshotExportCmd)
	rootCmd.AddCommand(snapshotCmd)
}
