package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/mousdieng/neo4flix/pkg/dataset"
)

// Defaults used when a Params field is zero.
const (
	DefaultLimit      = 10000
	DefaultMinVotes   = 10000
	DefaultYearMin    = 1900
	DefaultYearMax    = 2030
	DefaultPercentile = 0.9
)

// Params controls the selection.
type Params struct {
	// Limit is the number of top-scored movies kept before the year filter.
	Limit int
	// MinVotes excludes movies with fewer votes.
	MinVotes int
	// YearMin and YearMax bound the accepted release year, inclusive.
	YearMin int
	YearMax int
	// Percentile of the vote distribution used as the prior weight m.
	Percentile float64
}

// WithDefaults returns p with zero fields replaced by defaults.
func (p Params) WithDefaults() Params {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.MinVotes < 0 {
		p.MinVotes = 0
	}
	if p.YearMin == 0 {
		p.YearMin = DefaultYearMin
	}
	if p.YearMax == 0 {
		p.YearMax = DefaultYearMax
	}
	if p.Percentile <= 0 || p.Percentile > 1 {
		p.Percentile = DefaultPercentile
	}
	return p
}

// DefaultParams returns the parameters of a standard import.
func DefaultParams() Params {
	return Params{MinVotes: DefaultMinVotes}.WithDefaults()
}

// Movie is a ranked feature film.
type Movie struct {
	ID      string
	Title   string
	Year    int
	Runtime *int
	// Genres is the raw genre list from title.basics.
	Genres string
	Rating float64
	Votes  int
	Score  float64
}

// Stats summarises a ranking run.
type Stats struct {
	Titles        int
	Features      int
	Joined        int
	AboveMinVotes int
	Selected      int
	Returned      int
	// DroppedYear counts selected movies removed by the year filter.
	DroppedYear int
	// DroppedTitle counts selected movies removed for a missing title.
	DroppedTitle int

	MeanRating float64 // C
	VoteWeight float64 // m

	YearMin, YearMax     int
	RatingMin, RatingMax float64
	VotesMin, VotesMax   int
}

type candidate struct {
	title  dataset.Title
	rating dataset.Rating
	score  float64
}

// Rank selects the top movies by weighted rating:
//
//	score = v/(v+m)*R + m/(v+m)*C
//
// where R is the movie's average rating, v its vote count, C the mean
// rating and m the vote percentile over all movies that passed MinVotes.
// Ties keep title table order. The result never holds a duplicate id.
func Rank(titles []dataset.Title, ratings []dataset.Rating, p Params) ([]Movie, Stats) {
	p = p.WithDefaults()
	stats := Stats{Titles: len(titles)}

	byID := make(map[string]dataset.Rating, len(ratings))
	for _, r := range ratings {
		if _, ok := byID[r.ID]; !ok {
			byID[r.ID] = r
		}
	}

	seen := make(map[string]struct{})
	var pool []candidate
	for _, t := range titles {
		if t.TitleType != dataset.FeatureType {
			continue
		}
		stats.Features++
		if _, dup := seen[t.ID]; dup {
			continue
		}
		r, ok := byID[t.ID]
		if !ok {
			continue
		}
		seen[t.ID] = struct{}{}
		stats.Joined++
		if r.NumVotes < p.MinVotes {
			continue
		}
		pool = append(pool, candidate{title: t, rating: r})
	}
	stats.AboveMinVotes = len(pool)
	if len(pool) == 0 {
		return nil, stats
	}

	votes := make([]float64, len(pool))
	var sum float64
	for i, c := range pool {
		sum += c.rating.AverageRating
		votes[i] = float64(c.rating.NumVotes)
	}
	C := sum / float64(len(pool))
	m := Quantile(votes, p.Percentile)
	stats.MeanRating = C
	stats.VoteWeight = m

	for i := range pool {
		pool[i].score = WeightedScore(pool[i].rating.AverageRating, float64(pool[i].rating.NumVotes), C, m)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].score > pool[j].score
	})
	if len(pool) > p.Limit {
		pool = pool[:p.Limit]
	}
	stats.Selected = len(pool)

	movies := make([]Movie, 0, len(pool))
	for _, c := range pool {
		y := c.title.StartYear
		if y == nil || *y < p.YearMin || *y > p.YearMax {
			stats.DroppedYear++
			continue
		}
		if strings.TrimSpace(c.title.PrimaryTitle) == "" {
			stats.DroppedTitle++
			continue
		}
		movies = append(movies, Movie{
			ID:      c.title.ID,
			Title:   c.title.PrimaryTitle,
			Year:    *y,
			Runtime: c.title.RuntimeMinutes,
			Genres:  c.title.Genres,
			Rating:  c.rating.AverageRating,
			Votes:   c.rating.NumVotes,
			Score:   c.score,
		})
	}
	stats.Returned = len(movies)
	stats.fillRanges(movies)
	return movies, stats
}

// WeightedScore returns the Bayesian average of rating R with v votes
// against prior mean C with weight m.
func WeightedScore(R, v, C, m float64) float64 {
	if v+m == 0 {
		return C
	}
	return v/(v+m)*R + m/(v+m)*C
}

// Quantile returns the q-quantile of values using linear interpolation
// between closest ranks. values is not modified.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func (s *Stats) fillRanges(movies []Movie) {
	for i, mv := range movies {
		if i == 0 {
			s.YearMin, s.YearMax = mv.Year, mv.Year
			s.RatingMin, s.RatingMax = mv.Rating, mv.Rating
			s.VotesMin, s.VotesMax = mv.Votes, mv.Votes
			continue
		}
		s.YearMin = min(s.YearMin, mv.Year)
		s.YearMax = max(s.YearMax, mv.Year)
		s.RatingMin = math.Min(s.RatingMin, mv.Rating)
		s.RatingMax = math.Max(s.RatingMax, mv.Rating)
		s.VotesMin = min(s.VotesMin, mv.Votes)
		s.VotesMax = max(s.VotesMax, mv.Votes)
	}
}
