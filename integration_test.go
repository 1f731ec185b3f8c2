package neo4flix

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mousdieng/neo4flix/pkg/driver"
	"github.com/mousdieng/neo4flix/pkg/exporter"
	"github.com/mousdieng/neo4flix/pkg/logger"
)

// liveStore connects to the graph named by NEO4J_URI. The test is skipped
// when the variable is unset or the server is unreachable. It deletes every
// Movie in the target database.
func liveStore(t *testing.T) driver.GraphStore {
	t.Helper()
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set")
	}

	opts := driver.DefaultOptions()
	opts.URI = uri
	if d := os.Getenv("DB_DRIVER"); d != "" {
		p, err := driver.ParseProvider(d)
		require.NoError(t, err)
		opts.Provider = p
	}
	if u := os.Getenv("NEO4J_USER"); u != "" {
		opts.Username = u
	}
	if p := os.Getenv("NEO4J_PASSWORD"); p != "" {
		opts.Password = p
	}
	opts.Database = os.Getenv("NEO4J_DATABASE")

	log := logger.NewDefaultLogger(logger.ParseLevel("warn"))
	store, err := driver.NewStore(opts, log)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.VerifyConnectivity(ctx); err != nil {
		_ = store.Close(context.Background())
		t.Skipf("graph at %s unreachable: %v", uri, err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func TestIntegrationImportExport(t *testing.T) {
	store := liveStore(t)
	ctx := context.Background()

	c, err := NewClient(store, fixtureSource(), &Config{
		CheckpointDir: t.TempDir(),
		Clock:         fixedClock,
	}, logger.NewDefaultLogger(logger.ParseLevel("warn")))
	require.NoError(t, err)

	summary, err := c.Import(ctx, importOptions(10))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Import.Imported)
	assert.EqualValues(t, 2, summary.Verification.Movies())

	// A second run finds the schema in place.
	summary, err = c.Import(ctx, importOptions(1))
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.Reset.MoviesDeleted)
	assert.EqualValues(t, 1, summary.Verification.Movies())

	out := filepath.Join(t.TempDir(), "seed.json")
	_, err = c.Export(ctx, exporter.Options{Output: out})
	require.NoError(t, err)

	snap := readSnapshot(t, out)
	require.Len(t, snap.Movies, 1)
	assert.Equal(t, "t1", snap.Movies[0].ID)
	assert.Equal(t, []string{"Crime", "Drama"}, snap.Movies[0].Genres)
	assert.Len(t, snap.Movies[0].Directors, 1)
}
