// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kinship

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/kinpath/pkg/types"
)

// QueryFile is the on-disk form of one kinship query and its result. A saved
// query can be rendered again later without calling the provider.
type QueryFile struct {
	Query     QueryParams  `yaml:"query"`
	Result    types.Result `yaml:"result"`
	Timestamp time.Time    `yaml:"timestamp"`
}

// QueryParams stores the request that produced the result.
type QueryParams struct {
	Start    types.PersonID     `yaml:"start"`
	End      types.PersonID     `yaml:"end"`
	MaxDepth int                `yaml:"max_depth"`
	Provider types.ProviderKind `yaml:"provider"`
	Locale   string             `yaml:"locale,omitempty"`
}

// WriteQueryFile saves the query and its result to a YAML file.
func WriteQueryFile(path string, params QueryParams, res types.Result) error {
	qf := QueryFile{Query: params, Result: res, Timestamp: time.Now().UTC()}
	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a saved query file. Paths written without degree
// labels get them filled in using locale.
func ReadQueryFile(path, locale string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	if locale == "" {
		locale = qf.Query.Locale
	}
	FillDegreeLabels(qf.Result.Paths, locale)
	return &qf, nil
}
