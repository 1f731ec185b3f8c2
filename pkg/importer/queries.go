package importer

// UpsertMoviesQuery writes one batch. Every movie is fully replaced: its
// properties are overwritten and its previous genre, director and actor
// relationships are dropped before the current ones are merged.
const UpsertMoviesQuery = `
UNWIND $movies AS row
MERGE (m:Movie {id: row.id})
SET m = row.props
WITH m, row
OPTIONAL MATCH (m)-[old:BELONGS_TO_GENRE|DIRECTED|ACTED_IN]-()
WITH m, row, collect(old) AS stale
FOREACH (r IN stale | DELETE r)
FOREACH (name IN row.genres |
  MERGE (g:Genre {name: name})
  ON CREATE SET g.description = name + ' movies'
  MERGE (m)-[:BELONGS_TO_GENRE]->(g))
FOREACH (d IN row.directors |
  MERGE (p:Director {id: d.id})
  ON CREATE SET p.name = d.name
  MERGE (p)-[:DIRECTED]->(m))
FOREACH (a IN row.actors |
  MERGE (p:Actor {id: a.id})
  ON CREATE SET p.name = a.name
  MERGE (p)-[:ACTED_IN]->(m))`

// ResetChunkQuery deletes at most $limit movies with their relationships.
const ResetChunkQuery = `
MATCH (m:Movie)
WITH m LIMIT $limit
DETACH DELETE m`

// Orphan reclamation. Nodes attached to a User are never deleted.
const (
	ReclaimGenresQuery = `
MATCH (g:Genre)
WHERE NOT (g)<-[:BELONGS_TO_GENRE]-(:Movie) AND NOT (g)--(:User)
DETACH DELETE g`

	ReclaimDirectorsQuery = `
MATCH (d:Director)
WHERE NOT (d)-[:DIRECTED]->(:Movie) AND NOT (d)--(:User)
DETACH DELETE d`

	ReclaimActorsQuery = `
MATCH (a:Actor)
WHERE NOT (a)-[:ACTED_IN]->(:Movie) AND NOT (a)--(:User)
DETACH DELETE a`
)

// TopMoviesQuery returns the best rated movies for the post-import check.
const TopMoviesQuery = `
MATCH (m:Movie)
RETURN m.title AS title, m.releaseYear AS year, m.imdbRating AS rating, m.imdbVotes AS votes
ORDER BY m.imdbRating DESC, m.imdbVotes DESC, m.title
LIMIT $limit`
