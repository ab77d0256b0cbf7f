// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kinpath/internal/kinship"
	"github.com/pdiddy/kinpath/pkg/types"
)

var degreeCmd = &cobra.Command{
	Use:   "degree D1 D2",
	Short: "Label the relationship for two generation distances",
	Long: `Degree prints the relationship label for two people whose common
ancestor is D1 generations above the first person and D2 generations above
the second. For example "degree 2 3" prints "1st cousin, 1× removed".`,
	Args: cobra.ExactArgs(2),
	RunE: runDegree,
}

func runDegree(cmd *cobra.Command, args []string) error {
	var d [2]int
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 0 {
			return fmt.Errorf("generation distance must be a non-negative integer, got %q", a)
		}
		d[i] = n
	}

	deg := kinship.Classify(d[0], d[1])
	label := kinship.Label(deg, localeFlag(cmd))

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Label  string       `json:"label"`
			Degree types.Degree `json:"degree"`
		}{label, deg})
	}
	fmt.Fprintln(cmd.OutOrStdout(), label)
	return nil
}

func init() {
	degreeCmd.Flags().String("locale", "en", "label language: en or pt")
	degreeCmd.Flags().Bool("json", false, "output the structured degree as JSON")

	rootCmd.AddCommand(degreeCmd)
}
