package dataset

import "context"

// Title is a row of title.basics.
type Title struct {
	ID             string
	TitleType      string
	PrimaryTitle   string
	StartYear      *int
	RuntimeMinutes *int
	// Genres is the raw comma-delimited genre list, empty when absent.
	Genres string
}

// Rating is a row of title.ratings.
type Rating struct {
	ID            string
	AverageRating float64
	NumVotes      int
}

// Crew is a row of title.crew.
type Crew struct {
	ID        string
	Directors []string
}

// Principal is a row of title.principals.
type Principal struct {
	MovieID  string
	Ordering int
	PersonID string
	Category string
}

// IsCast reports whether the principal is billed as an actor or actress.
func (p Principal) IsCast() bool {
	return p.Category == "actor" || p.Category == "actress"
}

// Name is a row of name.basics. PrimaryName is nil when absent.
type Name struct {
	ID          string
	PrimaryName *string
}

var titleLayout = layout[Title]{
	table:   TitleBasics,
	columns: []string{"tconst", "titleType", "primaryTitle", "startYear", "runtimeMinutes", "genres"},
	decode: func(r *row) Title {
		t := Title{
			ID:             r.str("tconst"),
			TitleType:      r.raw("titleType"),
			StartYear:      r.optInt("startYear"),
			RuntimeMinutes: r.optInt("runtimeMinutes"),
		}
		if v := r.optStr("primaryTitle"); v != nil {
			t.PrimaryTitle = *v
		}
		if v := r.optStr("genres"); v != nil {
			t.Genres = *v
		}
		return t
	},
}

var ratingLayout = layout[Rating]{
	table:   TitleRatings,
	columns: []string{"tconst", "averageRating", "numVotes"},
	decode: func(r *row) Rating {
		return Rating{
			ID:            r.str("tconst"),
			AverageRating: r.float("averageRating"),
			NumVotes:      r.integer("numVotes"),
		}
	},
}

var crewLayout = layout[Crew]{
	table:   TitleCrew,
	columns: []string{"tconst", "directors"},
	decode: func(r *row) Crew {
		return Crew{ID: r.str("tconst"), Directors: r.list("directors")}
	},
}

var principalLayout = layout[Principal]{
	table:   TitlePrincipals,
	columns: []string{"tconst", "ordering", "nconst", "category"},
	decode: func(r *row) Principal {
		p := Principal{
			MovieID:  r.str("tconst"),
			Ordering: r.integer("ordering"),
			Category: r.raw("category"),
		}
		if v := r.optStr("nconst"); v != nil {
			p.PersonID = *v
		}
		return p
	},
}

var nameLayout = layout[Name]{
	table:   NameBasics,
	columns: []string{"nconst", "primaryName"},
	decode: func(r *row) Name {
		return Name{ID: r.str("nconst"), PrimaryName: r.optStr("primaryName")}
	},
}

// ScanTitles streams title.basics.
func ScanTitles(ctx context.Context, src Source, fn func(Title) error) error {
	return scan(ctx, src, titleLayout, fn)
}

// ScanRatings streams title.ratings.
func ScanRatings(ctx context.Context, src Source, fn func(Rating) error) error {
	return scan(ctx, src, ratingLayout, fn)
}

// ScanCrew streams title.crew.
func ScanCrew(ctx context.Context, src Source, fn func(Crew) error) error {
	return scan(ctx, src, crewLayout, fn)
}

// ScanPrincipals streams title.principals.
func ScanPrincipals(ctx context.Context, src Source, fn func(Principal) error) error {
	return scan(ctx, src, principalLayout, fn)
}

// ScanNames streams name.basics.
func ScanNames(ctx context.Context, src Source, fn func(Name) error) error {
	return scan(ctx, src, nameLayout, fn)
}
