// Package dataset reads the IMDb tab-separated dumps.
//
// Five datasets are used: title.basics, title.ratings, title.crew,
// title.principals and name.basics. They are expected in a local directory
// as title_basics.tsv (or title_basics.tsv.gz) and so on. The first line of
// every file is a header and `\N` marks a missing value.
//
// Rows are decoded into typed records and streamed to a callback:
//
//	src := dataset.NewDirSource("./imdb_data")
//	err := dataset.ScanRatings(ctx, src, func(r dataset.Rating) error {
//	    if r.NumVotes > 1_000_000 {
//	        return dataset.ErrStop
//	    }
//	    return nil
//	})
//
// Lines are split on tabs only. The dumps do not quote fields, and titles
// routinely contain quote characters.
package dataset
