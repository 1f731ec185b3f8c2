package driver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jStore implements GraphStore over the bolt protocol. It serves both
// Neo4j and Memgraph; only the schema syntax differs between them.
type Neo4jStore struct {
	client   neo4j.DriverWithContext
	database string
	provider GraphProvider
	logger   *slog.Logger
}

// NewNeo4jStore creates a store from opts. No connection is made until the
// first call; use VerifyConnectivity to fail fast.
func NewNeo4jStore(opts Options, logger *slog.Logger) (*Neo4jStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.URI == "" {
		return nil, fmt.Errorf("graph store uri is required")
	}
	if opts.Provider == "" {
		opts.Provider = GraphProviderNeo4j
	}

	auth := neo4j.NoAuth()
	if opts.Username != "" {
		auth = neo4j.BasicAuth(opts.Username, opts.Password, "")
	}

	client, err := neo4j.NewDriverWithContext(opts.URI, auth, configure(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s driver: %w", opts.Provider, err)
	}

	return &Neo4jStore{
		client:   client,
		database: opts.Database,
		provider: opts.Provider,
		logger:   logger.With("component", "graph_store", "provider", string(opts.Provider)),
	}, nil
}

// configure applies opts to the driver config. Managed transactions are
// attempted once: a failed batch is reported to the caller instead of being
// retried by the driver.
func configure(opts Options) func(*neo4j.Config) {
	return func(cfg *neo4j.Config) {
		cfg.MaxTransactionRetryTime = 0
		if opts.MaxConnectionPoolSize > 0 {
			cfg.MaxConnectionPoolSize = opts.MaxConnectionPoolSize
		}
		if opts.ConnectionAcquisitionTimeout > 0 {
			cfg.ConnectionAcquisitionTimeout = opts.ConnectionAcquisitionTimeout
		}
		if opts.SocketConnectTimeout > 0 {
			cfg.SocketConnectTimeout = opts.SocketConnectTimeout
		}
	}
}

// NewMemgraphStore creates a store for a Memgraph server.
func NewMemgraphStore(opts Options, logger *slog.Logger) (*Neo4jStore, error) {
	opts.Provider = GraphProviderMemgraph
	return NewNeo4jStore(opts, logger)
}

// NewStore creates the store selected by opts.Provider.
func NewStore(opts Options, logger *slog.Logger) (GraphStore, error) {
	switch opts.Provider {
	case GraphProviderMemgraph:
		return NewMemgraphStore(opts, logger)
	case GraphProviderNeo4j, "":
		return NewNeo4jStore(opts, logger)
	default:
		return nil, fmt.Errorf("unsupported graph provider %q", opts.Provider)
	}
}

func (n *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return n.client.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: n.database,
		AccessMode:   mode,
	})
}

// ExecuteWrite implements GraphStore.
func (n *Neo4jStore) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Counters, error) {
	session := n.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		return countersFromSummary(summary), nil
	})
	if err != nil {
		return Counters{}, wrapError("write", err)
	}

	counters, ok := result.(Counters)
	if !ok {
		return Counters{}, NewTypeConversionError("driver.Counters", fmt.Sprintf("%T", result), "summary")
	}
	return counters, nil
}

// ExecuteRead implements GraphStore.
func (n *Neo4jStore) ExecuteRead(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	session := n.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, wrapError("read", err)
	}

	records, err := MustRecordSlice(result, "records")
	if err != nil {
		return nil, err
	}
	rows := make([]Record, 0, len(records))
	for _, rec := range records {
		row := make(Record, len(rec.Keys))
		for i, key := range rec.Keys {
			row[key] = rec.Values[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// RunSchema implements GraphStore. Schema statements cannot run inside
// managed transactions on every server, so they use auto-commit.
func (n *Neo4jStore) RunSchema(ctx context.Context, cypher string) (Counters, error) {
	session := n.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	res, err := session.Run(ctx, cypher, nil)
	if err != nil {
		return Counters{}, wrapError("schema", err)
	}
	summary, err := res.Consume(ctx)
	if err != nil {
		return Counters{}, wrapError("schema", err)
	}
	return countersFromSummary(summary), nil
}

// Provider returns the provider type.
func (n *Neo4jStore) Provider() GraphProvider {
	return n.provider
}

// VerifyConnectivity checks if the driver can connect to the database.
func (n *Neo4jStore) VerifyConnectivity(ctx context.Context) error {
	if err := n.client.VerifyConnectivity(ctx); err != nil {
		return &StoreError{Op: "connect", Unavailable: true, Err: err}
	}
	n.logger.Debug("Graph store reachable")
	return nil
}

// Close closes the underlying driver.
func (n *Neo4jStore) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

func countersFromSummary(summary neo4j.ResultSummary) Counters {
	if summary == nil {
		return Counters{}
	}
	c := summary.Counters()
	if c == nil {
		return Counters{}
	}
	return Counters{
		NodesCreated:         c.NodesCreated(),
		NodesDeleted:         c.NodesDeleted(),
		RelationshipsCreated: c.RelationshipsCreated(),
		RelationshipsDeleted: c.RelationshipsDeleted(),
		PropertiesSet:        c.PropertiesSet(),
		ConstraintsAdded:     c.ConstraintsAdded(),
		IndexesAdded:         c.IndexesAdded(),
	}
}

var _ GraphStore = (*Neo4jStore)(nil)
