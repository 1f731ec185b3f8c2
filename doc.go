// Package neo4flix loads the IMDb public datasets into a Neo4j or Memgraph
// movie graph and exports that graph as a JSON snapshot.
//
// # Import
//
// An import ranks feature films by a Bayesian weighted rating, resolves
// their directors and top-billed actors, and upserts everything in
// fixed-size batches:
//
//	store, err := driver.NewStore(driver.Options{
//		Provider: driver.GraphProviderNeo4j,
//		URI:      "bolt://localhost:7687",
//		Username: "neo4j",
//		Password: "password",
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close(ctx)
//
//	source := dataset.NewDirSource("./imdb_data")
//	client, err := neo4flix.NewClient(store, source, nil, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	summary, err := client.Import(ctx, neo4flix.DefaultImportOptions())
//
// With Reset set, every Movie is deleted first and orphaned genres and
// people are reclaimed. User nodes and anything attached to them are left
// alone. ImportOptions.Confirm is asked before the reset.
//
// # Export
//
// Export reads the graph back and writes a deterministic snapshot:
//
//	res, err := client.Export(ctx, exporter.Options{Output: "movies_seed.json"})
//
// Two exports of the same graph differ only in exported_at.
//
// # Runs
//
// Each Import and Export call gets a UUIDv7 run id. The id is attached to
// the context under types.ContextKeyRunID, added to every log record and
// used to name the run's checkpoint file.
package neo4flix
