package exporter

// MoviesQuery reads every movie with its genres and people. Aggregation is
// staged so the three OPTIONAL MATCH clauses never multiply each other.
const MoviesQuery = `
MATCH (m:Movie)
OPTIONAL MATCH (m)-[:BELONGS_TO_GENRE]->(g:Genre)
WITH m, collect(DISTINCT g.name) AS genres
OPTIONAL MATCH (d:Director)-[:DIRECTED]->(m)
WITH m, genres, collect(DISTINCT {id: d.id, name: d.name}) AS directors
OPTIONAL MATCH (a:Actor)-[:ACTED_IN]->(m)
WITH m, genres, directors, collect(DISTINCT {id: a.id, name: a.name}) AS actors
RETURN m.id AS id,
       m.title AS title,
       m.plot AS plot,
       m.releaseYear AS releaseYear,
       m.duration AS runtime,
       m.imdbRating AS imdbRating,
       m.imdbVotes AS imdbVotes,
       m.posterUrl AS posterUrl,
       m.backdropUrl AS backdropUrl,
       genres, directors, actors
ORDER BY m.title, m.id`

// GenresQuery reads the distinct genre names.
const GenresQuery = `
MATCH (g:Genre)
RETURN DISTINCT g.name AS name
ORDER BY name`
