package dataset

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basicsTSV = "tconst\ttitleType\tprimaryTitle\toriginalTitle\tisAdult\tstartYear\tendYear\truntimeMinutes\tgenres\n" +
	"t1\tmovie\tThe \"Quoted\" One\tThe One\t0\t1994\t\\N\t142\tDrama,Crime\n" +
	"t2\ttvSeries\tA Show\tA Show\t0\t2001\t2005\t\\N\tComedy\n" +
	"t3\tmovie\tNo Year\tNo Year\t0\t\\N\t\\N\t90\t\\N\n"

func memSource(files map[string]string) *DirSource {
	m := fstest.MapFS{}
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return &DirSource{FS: m}
}

func TestScanTitles(t *testing.T) {
	src := memSource(map[string]string{"title_basics.tsv": basicsTSV})

	var titles []Title
	err := ScanTitles(context.Background(), src, func(tt Title) error {
		titles = append(titles, tt)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, titles, 3)

	assert.Equal(t, "t1", titles[0].ID)
	assert.Equal(t, `The "Quoted" One`, titles[0].PrimaryTitle)
	require.NotNil(t, titles[0].StartYear)
	assert.Equal(t, 1994, *titles[0].StartYear)
	require.NotNil(t, titles[0].RuntimeMinutes)
	assert.Equal(t, 142, *titles[0].RuntimeMinutes)
	assert.Equal(t, "Drama,Crime", titles[0].Genres)

	assert.Nil(t, titles[1].RuntimeMinutes)
	assert.Nil(t, titles[2].StartYear)
	assert.Equal(t, "", titles[2].Genres)
}

func TestScanStop(t *testing.T) {
	src := memSource(map[string]string{"title_basics.tsv": basicsTSV})

	count := 0
	err := ScanTitles(context.Background(), src, func(Title) error {
		count++
		return ErrStop
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestScanCallbackError(t *testing.T) {
	src := memSource(map[string]string{"title_basics.tsv": basicsTSV})
	boom := errors.New("boom")

	err := ScanTitles(context.Background(), src, func(Title) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "missing column",
			content: "tconst\taverageRating\nt1\t7.5\n",
			check: func(t *testing.T, err error) {
				var se *SchemaError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, []string{"numVotes"}, se.Missing)
			},
		},
		{
			name:    "empty file",
			content: "",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, &SchemaError{})
			},
		},
		{
			name:    "field count",
			content: "tconst\taverageRating\tnumVotes\nt1\t7.5\n",
			check: func(t *testing.T, err error) {
				var re *RowError
				require.ErrorAs(t, err, &re)
				assert.Equal(t, 2, re.Line)
				assert.ErrorIs(t, err, ErrFieldCount)
			},
		},
		{
			name:    "non numeric votes",
			content: "tconst\taverageRating\tnumVotes\nt1\t7.5\t100\nt2\t8.0\tmany\n",
			check: func(t *testing.T, err error) {
				var re *RowError
				require.ErrorAs(t, err, &re)
				assert.Equal(t, 3, re.Line)
				assert.Equal(t, "numVotes", re.Column)
			},
		},
		{
			name:    "missing rating",
			content: "tconst\taverageRating\tnumVotes\nt1\t\\N\t100\n",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMissingValue)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := memSource(map[string]string{"title_ratings.tsv": tt.content})
			err := ScanRatings(context.Background(), src, func(Rating) error { return nil })
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestDirSourceMissing(t *testing.T) {
	src := memSource(map[string]string{})

	err := ScanNames(context.Background(), src, func(Name) error { return nil })
	var acq *AcquisitionError
	require.ErrorAs(t, err, &acq)
	assert.Equal(t, NameBasics, acq.Dataset)
	assert.Equal(t, "name_basics.tsv", acq.Path)
}

func TestDirSourceGzipFallback(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("nconst\tprimaryName\tbirthYear\nnm1\tAda\t\\N\nnm2\t\\N\t1950\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	src := &DirSource{FS: fstest.MapFS{
		"name_basics.tsv.gz": &fstest.MapFile{Data: buf.Bytes()},
	}}

	var names []Name
	err = ScanNames(context.Background(), src, func(n Name) error {
		names = append(names, n)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, names, 2)
	require.NotNil(t, names[0].PrimaryName)
	assert.Equal(t, "Ada", *names[0].PrimaryName)
	assert.Nil(t, names[1].PrimaryName)
}

func TestScanCrewAndPrincipals(t *testing.T) {
	src := memSource(map[string]string{
		"title_crew.tsv":       "tconst\tdirectors\twriters\nt1\tnm1,nm2\tnm3\nt2\t\\N\t\\N\n",
		"title_principals.tsv": "tconst\tordering\tnconst\tcategory\tjob\tcharacters\nt1\t2\tnm5\tactress\t\\N\t\\N\nt1\t1\tnm4\tactor\t\\N\t\\N\nt1\t3\tnm1\tdirector\t\\N\t\\N\n",
	})
	ctx := context.Background()

	var crew []Crew
	require.NoError(t, ScanCrew(ctx, src, func(c Crew) error {
		crew = append(crew, c)
		return nil
	}))
	require.Len(t, crew, 2)
	assert.Equal(t, []string{"nm1", "nm2"}, crew[0].Directors)
	assert.Nil(t, crew[1].Directors)

	var cast []Principal
	require.NoError(t, ScanPrincipals(ctx, src, func(p Principal) error {
		if p.IsCast() {
			cast = append(cast, p)
		}
		return nil
	}))
	require.Len(t, cast, 2)
	assert.Equal(t, 2, cast[0].Ordering)
	assert.Equal(t, "nm4", cast[1].PersonID)
}

func TestCatalogLoad(t *testing.T) {
	src := memSource(map[string]string{
		"title_basics.tsv":  basicsTSV,
		"title_ratings.tsv": "tconst\taverageRating\tnumVotes\nt1\t9.3\t2000000\nt2\t8.1\t500\n",
	})
	c := NewCatalog(src, nil)
	ctx := context.Background()

	titles, err := c.LoadFeatureTitles(ctx)
	require.NoError(t, err)
	require.Len(t, titles, 2)
	assert.Equal(t, "t1", titles[0].ID)
	assert.Equal(t, "t3", titles[1].ID)

	ratings, err := c.LoadRatings(ctx)
	require.NoError(t, err)
	require.Len(t, ratings, 2)
	assert.InDelta(t, 9.3, ratings[0].AverageRating, 1e-9)

	err = c.Check(ctx)
	assert.ErrorIs(t, err, &AcquisitionError{})
}

func TestScanCancelled(t *testing.T) {
	src := memSource(map[string]string{"title_basics.tsv": basicsTSV})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ScanTitles(ctx, src, func(Title) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTableFileName(t *testing.T) {
	assert.Equal(t, "title_basics.tsv", TitleBasics.FileName())
	assert.Equal(t, "name_basics.tsv", NameBasics.FileName())
}
