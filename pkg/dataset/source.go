package dataset

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Table names one of the IMDb datasets.
type Table string

const (
	TitleBasics     Table = "title.basics"
	TitleRatings    Table = "title.ratings"
	TitleCrew       Table = "title.crew"
	TitlePrincipals Table = "title.principals"
	NameBasics      Table = "name.basics"
)

// Tables lists every dataset used by an import, in load order.
var Tables = []Table{TitleBasics, TitleRatings, TitleCrew, TitlePrincipals, NameBasics}

// FileName returns the local file name of the dataset, e.g. title_basics.tsv.
func (t Table) FileName() string {
	return strings.ReplaceAll(string(t), ".", "_") + ".tsv"
}

// Source opens datasets by name. Callers must close the returned reader.
type Source interface {
	Open(ctx context.Context, table Table) (io.ReadCloser, error)
}

// DirSource serves datasets from a directory. A dataset is looked up as
// <file>.tsv first, then as <file>.tsv.gz.
type DirSource struct {
	FS   fs.FS
	Root string
}

// NewDirSource creates a DirSource rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{FS: os.DirFS(dir), Root: dir}
}

// Open implements Source.
func (s *DirSource) Open(ctx context.Context, table Table) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := table.FileName()
	f, err := s.FS.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, &AcquisitionError{Dataset: table, Path: s.path(name), Err: err}
	}

	gzName := name + ".gz"
	gf, gzErr := s.FS.Open(gzName)
	if gzErr != nil {
		if errors.Is(gzErr, fs.ErrNotExist) {
			// Report the plain file name, it is the canonical location.
			return nil, &AcquisitionError{Dataset: table, Path: s.path(name), Err: err}
		}
		return nil, &AcquisitionError{Dataset: table, Path: s.path(gzName), Err: gzErr}
	}

	zr, err := gzip.NewReader(gf)
	if err != nil {
		gf.Close()
		return nil, &AcquisitionError{Dataset: table, Path: s.path(gzName), Err: err}
	}
	return &gzipFile{Reader: zr, file: gf}, nil
}

func (s *DirSource) path(name string) string {
	if s.Root == "" {
		return name
	}
	return path.Join(s.Root, name)
}

type gzipFile struct {
	*gzip.Reader
	file fs.File
}

func (g *gzipFile) Close() error {
	zerr := g.Reader.Close()
	ferr := g.file.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}
