// Package importer writes resolved movie records into a property graph.
//
// A Writer owns four operations over a driver.GraphStore:
//
//   - Reset removes all Movie nodes in bounded chunks and reclaims genres,
//     directors and actors left without movies. User nodes are preserved.
//   - EnsureSchema applies uniqueness constraints and lookup indexes and
//     reports an Outcome per statement without failing the run.
//   - Import upserts records in fixed-size batches. Invalid records are
//     rejected one by one and the rest of each batch is a single
//     transaction.
//   - Verify reads back node and relationship totals and a top-10 sample.
package importer
