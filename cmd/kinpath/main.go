// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the kinpath CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/kinpath/internal/config"
	"github.com/pdiddy/kinpath/internal/logging"
	"github.com/pdiddy/kinpath/internal/secrets"
	"github.com/pdiddy/kinpath/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds credentials loaded from the secrets directory.
	loadedSecrets map[string]string

	// cfg is the merged configuration for the running command.
	cfg types.Config

	logger = zap.NewNop()
)

// flagKeys maps command flags onto configuration keys. A flag overrides the
// config file and environment only when it is set on the command line.
var flagKeys = map[string]string{
	"provider":      "provider.kind",
	"tree":          "provider.tree_file",
	"environment":   "provider.environment",
	"max-depth":     "search.max_depth",
	"max-paths":     "search.max_paths",
	"timeout":       "search.timeout",
	"locale":        "search.locale",
	"remote-finder": "search.remote_finder",
	"store-dir":     "store.dir",
	"graph-uri":     "graph.uri",
	"log-level":     "log.level",
}

// rootCmd is the base command for the kinpath CLI.
var rootCmd = &cobra.Command{
	Use:   "kinpath",
	Short: "Find and explain how two people in a family tree are related",
	Long: `kinpath searches a genealogical tree from both people at once, walking
up through their parents until the two ancestries meet. The relationship is
reported as a path through the common ancestor and a degree label such as
"2nd cousin, 1× removed".

Relatives are looked up lazily from FamilySearch, a local YAML tree or a
Neo4j clone of a tree. Results can be saved as snapshots and shared by slug.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if names := secrets.Names(s); len(names) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Loaded secrets: %v\n", names)
		}
		return loadConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./kinpath.yaml or ~/.config/kinpath/kinpath.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory holding credential files")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
}

// loadConfig merges defaults, the config file, KINPATH_* variables and the
// command's flags into cfg and builds the logger.
func loadConfig(cmd *cobra.Command) error {
	v := viper.New()
	cfgFile, _ := cmd.Flags().GetString("config")
	config.Setup(v, cfgFile)
	used, err := config.Read(v)
	if err != nil {
		return err
	}
	if used != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", used)
	}

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}

	c, err := config.Load(v)
	if err != nil {
		return err
	}
	c.Provider.AccessToken = secrets.Lookup(loadedSecrets, secrets.FamilySearchAccessToken, c.Provider.AccessToken)
	c.Provider.AppKey = secrets.Lookup(loadedSecrets, secrets.FamilySearchAppKey, c.Provider.AppKey)
	c.Graph.Password = secrets.Lookup(loadedSecrets, secrets.GraphPassword, c.Graph.Password)
	cfg = c

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	logger = log
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
