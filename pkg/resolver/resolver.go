package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mousdieng/neo4flix/pkg/dataset"
	"github.com/mousdieng/neo4flix/pkg/ranking"
	"github.com/mousdieng/neo4flix/pkg/types"
)

// DefaultTopCast is the number of billed actors kept per movie.
const DefaultTopCast = 5

// Tables streams the reference tables needed for resolution.
// dataset.Catalog implements it.
type Tables interface {
	ScanCrew(ctx context.Context, fn func(dataset.Crew) error) error
	ScanPrincipals(ctx context.Context, fn func(dataset.Principal) error) error
	ScanNames(ctx context.Context, fn func(dataset.Name) error) error
}

// Params controls resolution.
type Params struct {
	TopCast int
	Logger  *slog.Logger
}

// Stats counts what resolution kept and dropped.
type Stats struct {
	Movies           int
	DirectorLinks    int
	CastLinks        int
	PeopleReferenced int
	PeopleNamed      int
	// UnnamedLinks counts director/actor links dropped for lack of a name.
	UnnamedLinks int
	Genres       int
}

// Resolve turns ranked movies into records carrying their genres,
// directors and top-billed actors. Output order follows movies.
func Resolve(ctx context.Context, movies []ranking.Movie, tables Tables, p Params) ([]types.MovieRecord, Stats, error) {
	if p.TopCast <= 0 {
		p.TopCast = DefaultTopCast
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var stats Stats
	wanted := make(map[string]struct{}, len(movies))
	for _, m := range movies {
		wanted[m.ID] = struct{}{}
	}

	directors, err := loadDirectors(ctx, tables, wanted)
	if err != nil {
		return nil, stats, err
	}
	cast, err := loadCast(ctx, tables, wanted, p.TopCast)
	if err != nil {
		return nil, stats, err
	}

	people := make(map[string]struct{})
	for _, ids := range directors {
		for _, id := range ids {
			people[id] = struct{}{}
		}
	}
	for _, ids := range cast {
		for _, id := range ids {
			people[id] = struct{}{}
		}
	}
	stats.PeopleReferenced = len(people)

	names, err := loadNames(ctx, tables, people)
	if err != nil {
		return nil, stats, err
	}
	stats.PeopleNamed = len(names)
	logger.Debug("Loaded people",
		"referenced", stats.PeopleReferenced,
		"named", stats.PeopleNamed)

	genreSet := make(map[string]struct{})
	records := make([]types.MovieRecord, 0, len(movies))
	for _, m := range movies {
		rec := types.MovieRecord{
			Movie: types.Movie{
				ID:          m.ID,
				Title:       m.Title,
				ReleaseYear: m.Year,
				Runtime:     m.Runtime,
				Rating:      m.Rating,
				Votes:       m.Votes,
			},
			Genres: SplitGenres(m.Genres),
		}
		for _, g := range rec.Genres {
			genreSet[g] = struct{}{}
		}

		var dropped int
		rec.Directors, dropped = attach(directors[m.ID], names)
		stats.UnnamedLinks += dropped
		stats.DirectorLinks += len(rec.Directors)

		rec.Actors, dropped = attach(cast[m.ID], names)
		stats.UnnamedLinks += dropped
		stats.CastLinks += len(rec.Actors)

		records = append(records, rec)
	}
	stats.Movies = len(records)
	stats.Genres = len(genreSet)

	logger.Info("Resolved movie records",
		"movies", stats.Movies,
		"genres", stats.Genres,
		"director_links", stats.DirectorLinks,
		"cast_links", stats.CastLinks,
		"unnamed_links", stats.UnnamedLinks)
	return records, stats, nil
}

func loadDirectors(ctx context.Context, tables Tables, wanted map[string]struct{}) (map[string][]string, error) {
	directors := make(map[string][]string)
	err := tables.ScanCrew(ctx, func(c dataset.Crew) error {
		if _, ok := wanted[c.ID]; !ok {
			return nil
		}
		if _, seen := directors[c.ID]; seen {
			return nil
		}
		directors[c.ID] = c.Directors
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load crew: %w", err)
	}
	return directors, nil
}

func loadCast(ctx context.Context, tables Tables, wanted map[string]struct{}, topCast int) (map[string][]string, error) {
	byMovie := make(map[string][]dataset.Principal)
	err := tables.ScanPrincipals(ctx, func(p dataset.Principal) error {
		if !p.IsCast() {
			return nil
		}
		if _, ok := wanted[p.MovieID]; !ok {
			return nil
		}
		byMovie[p.MovieID] = append(byMovie[p.MovieID], p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load principals: %w", err)
	}

	cast := make(map[string][]string, len(byMovie))
	for id, ps := range byMovie {
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Ordering < ps[j].Ordering })
		if len(ps) > topCast {
			ps = ps[:topCast]
		}
		ids := make([]string, len(ps))
		for i, p := range ps {
			ids[i] = p.PersonID
		}
		cast[id] = ids
	}
	return cast, nil
}

func loadNames(ctx context.Context, tables Tables, people map[string]struct{}) (map[string]string, error) {
	names := make(map[string]string, len(people))
	err := tables.ScanNames(ctx, func(n dataset.Name) error {
		if _, ok := people[n.ID]; !ok {
			return nil
		}
		if _, seen := names[n.ID]; seen {
			return nil
		}
		if n.PrimaryName == nil {
			return nil
		}
		if name := strings.TrimSpace(*n.PrimaryName); name != "" {
			names[n.ID] = name
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load names: %w", err)
	}
	return names, nil
}

// attach resolves ids to people, dropping blank, unnamed and repeated ids.
// It returns the number of ids dropped for lack of a name.
func attach(ids []string, names map[string]string) ([]types.Person, int) {
	if len(ids) == 0 {
		return nil, 0
	}
	out := make([]types.Person, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	dropped := 0
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || id == dataset.NA {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		name, ok := names[id]
		if !ok {
			dropped++
			continue
		}
		out = append(out, types.Person{ID: id, Name: name})
	}
	return out, dropped
}

// SplitGenres splits a comma-delimited genre list, trimming tokens and
// dropping empty, missing and repeated ones.
func SplitGenres(raw string) []string {
	if raw == "" || raw == dataset.NA {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, g := range strings.Split(raw, ",") {
		g = strings.TrimSpace(g)
		if g == "" || g == dataset.NA {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}
