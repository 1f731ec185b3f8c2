package neo4flix

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mousdieng/neo4flix/pkg/driver"
	"github.com/mousdieng/neo4flix/pkg/exporter"
	"github.com/mousdieng/neo4flix/pkg/importer"
	"github.com/mousdieng/neo4flix/pkg/types"
)

// memGraph is an in-memory driver.GraphStore that understands exactly the
// statements issued by the importer and exporter.
type memGraph struct {
	mu sync.Mutex

	movies    map[string]map[string]any
	genres    map[string]string // name -> description
	directors map[string]string // id -> name
	actors    map[string]string

	inGenre  map[string]map[string]bool // movie -> genre names
	directed map[string]map[string]bool // movie -> director ids
	actedIn  map[string]map[string]bool // movie -> actor ids

	users     map[string]bool
	userLinks map[string]bool // "<Label>:<key>" linked to some user

	schema map[string]bool

	// failBatch, when set, fails the upsert whose rows contain this movie id.
	failBatch string
	writes    int
}

func newMemGraph() *memGraph {
	return &memGraph{
		movies:    map[string]map[string]any{},
		genres:    map[string]string{},
		directors: map[string]string{},
		actors:    map[string]string{},
		inGenre:   map[string]map[string]bool{},
		directed:  map[string]map[string]bool{},
		actedIn:   map[string]map[string]bool{},
		users:     map[string]bool{},
		userLinks: map[string]bool{},
		schema:    map[string]bool{},
	}
}

func (g *memGraph) addUser(id string, links ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.users[id] = true
	for _, l := range links {
		g.userLinks[l] = true
	}
}

func (g *memGraph) addGenre(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.genres[name] = name + " movies"
}

func (g *memGraph) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (driver.Counters, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.writes++

	switch cypher {
	case importer.UpsertMoviesQuery:
		return g.upsert(params["movies"].([]map[string]any))
	case importer.ResetChunkQuery:
		return g.resetChunk(params["limit"].(int)), nil
	case importer.ReclaimGenresQuery:
		return g.reclaim(types.LabelGenre, g.genres, g.inGenre), nil
	case importer.ReclaimDirectorsQuery:
		return g.reclaim(types.LabelDirector, g.directors, g.directed), nil
	case importer.ReclaimActorsQuery:
		return g.reclaim(types.LabelActor, g.actors, g.actedIn), nil
	}
	return driver.Counters{}, fmt.Errorf("memGraph: unexpected write %q", cypher)
}

func (g *memGraph) upsert(rows []map[string]any) (driver.Counters, error) {
	for _, row := range rows {
		if row["id"] == g.failBatch {
			return driver.Counters{}, &driver.StoreError{Op: "write", Code: "Neo.TransientError.Transaction.DeadlockDetected", Err: fmt.Errorf("deadlock")}
		}
	}

	var c driver.Counters
	for _, row := range rows {
		id := row["id"].(string)
		if _, ok := g.movies[id]; !ok {
			c.NodesCreated++
		}
		props := map[string]any{}
		for k, v := range row["props"].(map[string]any) {
			if v != nil {
				props[k] = v
			}
		}
		g.movies[id] = props

		g.inGenre[id] = map[string]bool{}
		for _, v := range row["genres"].([]any) {
			name := v.(string)
			if _, ok := g.genres[name]; !ok {
				g.genres[name] = name + " movies"
				c.NodesCreated++
			}
			g.inGenre[id][name] = true
		}
		g.directed[id] = linkPeople(row["directors"].([]any), g.directors, &c)
		g.actedIn[id] = linkPeople(row["actors"].([]any), g.actors, &c)
	}
	return c, nil
}

func linkPeople(list []any, nodes map[string]string, c *driver.Counters) map[string]bool {
	out := map[string]bool{}
	for _, v := range list {
		p := v.(map[string]any)
		id := p["id"].(string)
		if _, ok := nodes[id]; !ok {
			nodes[id] = p["name"].(string)
			c.NodesCreated++
		}
		out[id] = true
	}
	return out
}

func (g *memGraph) resetChunk(limit int) driver.Counters {
	ids := make([]string, 0, len(g.movies))
	for id := range g.movies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	for _, id := range ids {
		delete(g.movies, id)
		delete(g.inGenre, id)
		delete(g.directed, id)
		delete(g.actedIn, id)
	}
	return driver.Counters{NodesDeleted: len(ids)}
}

func (g *memGraph) reclaim(label string, nodes map[string]string, links map[string]map[string]bool) driver.Counters {
	used := map[string]bool{}
	for _, set := range links {
		for k := range set {
			used[k] = true
		}
	}
	var c driver.Counters
	for k := range nodes {
		if used[k] || g.userLinks[label+":"+k] {
			continue
		}
		delete(nodes, k)
		c.NodesDeleted++
	}
	return c
}

func (g *memGraph) ExecuteRead(_ context.Context, cypher string, _ map[string]any) ([]driver.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	counts := map[string]int{
		types.LabelMovie:    len(g.movies),
		types.LabelGenre:    len(g.genres),
		types.LabelDirector: len(g.directors),
		types.LabelActor:    len(g.actors),
		types.LabelUser:     len(g.users),
	}
	for label, n := range counts {
		if q, _ := driver.CountNodesQuery(label); q == cypher {
			return []driver.Record{{"count": int64(n)}}, nil
		}
	}
	rels := map[string]map[string]map[string]bool{
		types.RelBelongsToGenre: g.inGenre,
		types.RelDirected:       g.directed,
		types.RelActedIn:        g.actedIn,
	}
	for rel, links := range rels {
		if q, _ := driver.CountRelationshipsQuery(rel); q == cypher {
			n := 0
			for _, set := range links {
				n += len(set)
			}
			return []driver.Record{{"count": int64(n)}}, nil
		}
	}

	switch cypher {
	case importer.TopMoviesQuery:
		return g.topMovies(), nil
	case exporter.MoviesQuery:
		return g.exportMovies(), nil
	case exporter.GenresQuery:
		names := make([]string, 0, len(g.genres))
		for n := range g.genres {
			names = append(names, n)
		}
		sort.Strings(names)
		out := make([]driver.Record, len(names))
		for i, n := range names {
			out[i] = driver.Record{"name": n}
		}
		return out, nil
	}
	return nil, fmt.Errorf("memGraph: unexpected read %q", cypher)
}

func (g *memGraph) topMovies() []driver.Record {
	var out []driver.Record
	for _, p := range g.movies {
		out = append(out, driver.Record{
			"title":  p["title"],
			"year":   p["releaseYear"],
			"rating": p["imdbRating"],
			"votes":  p["imdbVotes"],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i]["rating"].(float64), out[j]["rating"].(float64)
		if ri != rj {
			return ri > rj
		}
		return out[i]["title"].(string) < out[j]["title"].(string)
	})
	if len(out) > importer.DefaultSampleSize {
		out = out[:importer.DefaultSampleSize]
	}
	return out
}

// exportMovies returns rows in map iteration order with unsorted lists, so
// the exporter's own ordering is what the tests observe.
func (g *memGraph) exportMovies() []driver.Record {
	var out []driver.Record
	for id, p := range g.movies {
		var genres []any
		for name := range g.inGenre[id] {
			genres = append(genres, name)
		}
		rec := driver.Record{
			"id":          id,
			"title":       p["title"],
			"plot":        p["plot"],
			"releaseYear": p["releaseYear"],
			"runtime":     p["duration"],
			"imdbRating":  p["imdbRating"],
			"imdbVotes":   p["imdbVotes"],
			"posterUrl":   p["posterUrl"],
			"backdropUrl": p["backdropUrl"],
			"genres":      genres,
			"directors":   people(g.directed[id], g.directors),
			"actors":      people(g.actedIn[id], g.actors),
		}
		out = append(out, rec)
	}
	return out
}

func people(ids map[string]bool, names map[string]string) []any {
	if len(ids) == 0 {
		// An unmatched OPTIONAL MATCH collects one all-null map.
		return []any{map[string]any{"id": nil, "name": nil}}
	}
	var out []any
	for id := range ids {
		out = append(out, map[string]any{"id": id, "name": names[id]})
	}
	return out
}

func (g *memGraph) RunSchema(_ context.Context, cypher string) (driver.Counters, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.schema[cypher] {
		return driver.Counters{}, nil
	}
	g.schema[cypher] = true
	return driver.Counters{ConstraintsAdded: 1}, nil
}

func (g *memGraph) Provider() driver.GraphProvider { return driver.GraphProviderNeo4j }

func (g *memGraph) VerifyConnectivity(context.Context) error { return nil }

func (g *memGraph) Close(context.Context) error { return nil }

var _ driver.GraphStore = (*memGraph)(nil)
