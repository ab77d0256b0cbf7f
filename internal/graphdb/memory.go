// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphdb

import (
	"context"
	"sync"
)

// Query is a statement executed against a MemoryClient.
type Query struct {
	Cypher string
	Params map[string]any
}

// MemoryClient is an in-memory Client for tests. Reads are answered by an
// optional responder; every statement is recorded.
type MemoryClient struct {
	mu      sync.Mutex
	writes  []Query
	reads   []Query
	respond func(q Query) []Record
	err     error
}

// NewMemoryClient returns an empty fake.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// OnRead installs the function that answers Read calls.
func (m *MemoryClient) OnRead(fn func(q Query) []Record) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.respond = fn
	return m
}

// FailWith makes every subsequent call return err.
func (m *MemoryClient) FailWith(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

func (m *MemoryClient) Write(_ context.Context, cypher string, params map[string]any) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.writes = append(m.writes, Query{Cypher: cypher, Params: params})
	return nil, nil
}

func (m *MemoryClient) Read(_ context.Context, cypher string, params map[string]any) ([]Record, error) {
	m.mu.Lock()
	if m.err != nil {
		defer m.mu.Unlock()
		return nil, m.err
	}
	q := Query{Cypher: cypher, Params: params}
	m.reads = append(m.reads, q)
	respond := m.respond
	m.mu.Unlock()

	if respond == nil {
		return nil, nil
	}
	return respond(q), nil
}

func (m *MemoryClient) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *MemoryClient) Close(context.Context) error { return nil }

// Writes returns the write statements executed so far.
func (m *MemoryClient) Writes() []Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Query(nil), m.writes...)
}

// Reads returns the read statements executed so far.
func (m *MemoryClient) Reads() []Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Query(nil), m.reads...)
}
