// Package driver provides the graph store used by neo4flix.
//
// GraphStore is a narrow interface over a bolt server: managed write and
// read transactions, auto-commit schema statements and lifecycle calls.
// Neo4jStore implements it for both Neo4j and Memgraph.
//
// # Usage
//
//	store, err := driver.NewStore(driver.Options{
//	    Provider: driver.GraphProviderNeo4j,
//	    URI:      "bolt://localhost:7687",
//	    Username: "neo4j",
//	    Password: "password",
//	}, logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close(ctx)
//
// Wrap a store with NewBreakerStore to fail fast once the server has
// become unreachable.
//
// # Errors
//
// Store failures are returned as *StoreError carrying the server status
// code. Connectivity failures match ErrStoreUnavailable with errors.Is.
// IsAlreadyExists and IsUnsupported classify schema statement failures.
//
// # Type Helpers
//
// The package provides safe type conversion helpers in type_helpers.go for
// converting database results to Go types without panicking on type assertion
// failures.
package driver
