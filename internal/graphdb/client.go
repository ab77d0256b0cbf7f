// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graphdb holds the Neo4j access layer used to clone a family tree
// into a graph database and to answer relative lookups from it.
package graphdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/pdiddy/kinpath/pkg/types"
)

// ErrMissingURI indicates the graph URI is not configured.
var ErrMissingURI = errors.New("graph URI is required")

// Client is the small surface kinpath needs from a graph database.
type Client interface {
	Write(ctx context.Context, cypher string, params map[string]any) ([]Record, error)
	Read(ctx context.Context, cypher string, params map[string]any) ([]Record, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Record is one result row keyed by column name.
type Record map[string]any

// Open connects to Neo4j over Bolt and verifies the connection.
func Open(ctx context.Context, cfg types.GraphConfig) (Client, error) {
	if cfg.URI == "" {
		return nil, ErrMissingURI
	}

	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		if cfg.MaxConnections > 0 {
			c.MaxConnectionPoolSize = cfg.MaxConnections
		}
	})
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verifying graph connectivity at %s: %w", cfg.URI, err)
	}

	return &boltClient{driver: driver, database: cfg.Database}, nil
}

type boltClient struct {
	driver   neo4j.DriverWithContext
	database string
}

func (c *boltClient) Write(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	return c.run(ctx, neo4j.AccessModeWrite, cypher, params)
}

func (c *boltClient) Read(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	return c.run(ctx, neo4j.AccessModeRead, cypher, params)
}

func (c *boltClient) run(ctx context.Context, mode neo4j.AccessMode, cypher string, params map[string]any) ([]Record, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   mode,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	var records []Record
	for res.Next(ctx) {
		row := res.Record()
		rec := make(Record, len(row.Keys))
		for i, key := range row.Keys {
			rec[key] = row.Values[i]
		}
		records = append(records, rec)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *boltClient) Ping(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

func (c *boltClient) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}
