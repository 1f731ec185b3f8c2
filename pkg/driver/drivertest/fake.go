// Package drivertest provides a scriptable driver.GraphStore for tests.
package drivertest

import (
	"context"
	"strings"
	"sync"

	"github.com/mousdieng/neo4flix/pkg/driver"
)

// Call kinds recorded by FakeStore.
const (
	KindWrite  = "write"
	KindRead   = "read"
	KindSchema = "schema"
)

// Call is one statement received by FakeStore.
type Call struct {
	Kind   string
	Cypher string
	Params map[string]any
}

// FakeStore records every statement and answers with the configured
// functions. A nil function answers with zero counters and no rows.
type FakeStore struct {
	mu sync.Mutex

	ProviderType driver.GraphProvider
	ConnectErr   error

	WriteFunc  func(ctx context.Context, cypher string, params map[string]any) (driver.Counters, error)
	ReadFunc   func(ctx context.Context, cypher string, params map[string]any) ([]driver.Record, error)
	SchemaFunc func(ctx context.Context, cypher string) (driver.Counters, error)

	calls  []Call
	closed bool
}

// New creates a FakeStore for the Neo4j provider.
func New() *FakeStore {
	return &FakeStore{ProviderType: driver.GraphProviderNeo4j}
}

func (f *FakeStore) record(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

// ExecuteWrite implements driver.GraphStore.
func (f *FakeStore) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (driver.Counters, error) {
	f.record(Call{Kind: KindWrite, Cypher: cypher, Params: params})
	if f.WriteFunc == nil {
		return driver.Counters{}, nil
	}
	return f.WriteFunc(ctx, cypher, params)
}

// ExecuteRead implements driver.GraphStore.
func (f *FakeStore) ExecuteRead(ctx context.Context, cypher string, params map[string]any) ([]driver.Record, error) {
	f.record(Call{Kind: KindRead, Cypher: cypher, Params: params})
	if f.ReadFunc == nil {
		return nil, nil
	}
	return f.ReadFunc(ctx, cypher, params)
}

// RunSchema implements driver.GraphStore.
func (f *FakeStore) RunSchema(ctx context.Context, cypher string) (driver.Counters, error) {
	f.record(Call{Kind: KindSchema, Cypher: cypher})
	if f.SchemaFunc == nil {
		return driver.Counters{}, nil
	}
	return f.SchemaFunc(ctx, cypher)
}

// Provider implements driver.GraphStore.
func (f *FakeStore) Provider() driver.GraphProvider {
	if f.ProviderType == "" {
		return driver.GraphProviderNeo4j
	}
	return f.ProviderType
}

// VerifyConnectivity implements driver.GraphStore.
func (f *FakeStore) VerifyConnectivity(context.Context) error { return f.ConnectErr }

// Close implements driver.GraphStore.
func (f *FakeStore) Close(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *FakeStore) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Calls returns a copy of the recorded calls.
func (f *FakeStore) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsOf returns the recorded calls of one kind.
func (f *FakeStore) CallsOf(kind string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// CallsContaining returns the recorded calls whose Cypher contains substr.
func (f *FakeStore) CallsContaining(substr string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if strings.Contains(c.Cypher, substr) {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets the recorded calls.
func (f *FakeStore) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

var _ driver.GraphStore = (*FakeStore)(nil)
