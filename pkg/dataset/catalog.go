package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// FeatureType is the titleType of feature films.
const FeatureType = "movie"

// Catalog loads the IMDb tables from a Source.
type Catalog struct {
	src    Source
	logger *slog.Logger
}

// NewCatalog creates a Catalog. A nil logger falls back to slog.Default().
func NewCatalog(src Source, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{src: src, logger: logger}
}

// LoadFeatureTitles returns the title.basics rows whose type is "movie",
// in file order.
func (c *Catalog) LoadFeatureTitles(ctx context.Context) ([]Title, error) {
	start := time.Now()
	var (
		titles []Title
		total  int
	)
	err := ScanTitles(ctx, c.src, func(t Title) error {
		total++
		if t.TitleType == FeatureType {
			titles = append(titles, t)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load titles: %w", err)
	}
	c.logger.Info("Loaded titles",
		"dataset", TitleBasics,
		"rows", total,
		"movies", len(titles),
		"duration", time.Since(start))
	return titles, nil
}

// LoadRatings returns every title.ratings row in file order.
func (c *Catalog) LoadRatings(ctx context.Context) ([]Rating, error) {
	start := time.Now()
	var ratings []Rating
	err := ScanRatings(ctx, c.src, func(r Rating) error {
		ratings = append(ratings, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}
	c.logger.Info("Loaded ratings",
		"dataset", TitleRatings,
		"rows", len(ratings),
		"duration", time.Since(start))
	return ratings, nil
}

// ScanCrew streams title.crew.
func (c *Catalog) ScanCrew(ctx context.Context, fn func(Crew) error) error {
	return ScanCrew(ctx, c.src, fn)
}

// ScanPrincipals streams title.principals.
func (c *Catalog) ScanPrincipals(ctx context.Context, fn func(Principal) error) error {
	return ScanPrincipals(ctx, c.src, fn)
}

// ScanNames streams name.basics.
func (c *Catalog) ScanNames(ctx context.Context, fn func(Name) error) error {
	return ScanNames(ctx, c.src, fn)
}

// Check opens every dataset once so that a missing file is reported before
// any work starts.
func (c *Catalog) Check(ctx context.Context) error {
	for _, t := range Tables {
		rc, err := c.src.Open(ctx, t)
		if err != nil {
			return err
		}
		rc.Close()
	}
	return nil
}
