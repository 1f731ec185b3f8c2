package driver

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// GraphProvider represents the type of graph database provider
type GraphProvider string

const (
	GraphProviderNeo4j    GraphProvider = "neo4j"
	GraphProviderMemgraph GraphProvider = "memgraph"
)

// ParseProvider maps a configuration value to a GraphProvider.
func ParseProvider(s string) (GraphProvider, error) {
	switch GraphProvider(strings.ToLower(strings.TrimSpace(s))) {
	case GraphProviderNeo4j, "":
		return GraphProviderNeo4j, nil
	case GraphProviderMemgraph:
		return GraphProviderMemgraph, nil
	default:
		return "", fmt.Errorf("unsupported graph provider %q", s)
	}
}

// Counters reports the changes made by a write.
type Counters struct {
	NodesCreated         int `json:"nodes_created"`
	NodesDeleted         int `json:"nodes_deleted"`
	RelationshipsCreated int `json:"relationships_created"`
	RelationshipsDeleted int `json:"relationships_deleted"`
	PropertiesSet        int `json:"properties_set"`
	ConstraintsAdded     int `json:"constraints_added"`
	IndexesAdded         int `json:"indexes_added"`
}

// Add accumulates o into c.
func (c *Counters) Add(o Counters) {
	c.NodesCreated += o.NodesCreated
	c.NodesDeleted += o.NodesDeleted
	c.RelationshipsCreated += o.RelationshipsCreated
	c.RelationshipsDeleted += o.RelationshipsDeleted
	c.PropertiesSet += o.PropertiesSet
	c.ConstraintsAdded += o.ConstraintsAdded
	c.IndexesAdded += o.IndexesAdded
}

// SchemaAdded reports whether a schema statement created anything.
func (c Counters) SchemaAdded() bool {
	return c.ConstraintsAdded > 0 || c.IndexesAdded > 0
}

// Record is one result row keyed by column name.
type Record map[string]any

// GraphStore is the boundary between the pipeline and the graph database.
// Every call uses its own session, closed before the call returns.
type GraphStore interface {
	// ExecuteWrite runs cypher in a single managed write transaction.
	// The transaction either commits as a whole or not at all.
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Counters, error)

	// ExecuteRead runs cypher in a read transaction and collects all rows.
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) ([]Record, error)

	// RunSchema runs a schema statement in an auto-commit transaction.
	RunSchema(ctx context.Context, cypher string) (Counters, error)

	// Provider returns the type of graph database provider.
	Provider() GraphProvider

	// VerifyConnectivity checks that the store can be reached.
	VerifyConnectivity(ctx context.Context) error

	// Close releases all resources held by the store.
	Close(ctx context.Context) error
}

// Options configures a bolt connection.
type Options struct {
	Provider GraphProvider
	URI      string
	Username string
	Password string
	// Database selects a named database. Empty means the server default.
	Database string

	MaxConnectionPoolSize        int
	ConnectionAcquisitionTimeout time.Duration
	SocketConnectTimeout         time.Duration
}

// DefaultOptions returns options for a local Neo4j server.
func DefaultOptions() Options {
	return Options{
		Provider:                     GraphProviderNeo4j,
		URI:                          "bolt://localhost:7687",
		Username:                     "neo4j",
		Password:                     "password",
		MaxConnectionPoolSize:        50,
		ConnectionAcquisitionTimeout: 60 * time.Second,
		SocketConnectTimeout:         10 * time.Second,
	}
}
