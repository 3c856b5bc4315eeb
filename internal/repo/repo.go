// internal/repo/repo.go
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hgdump/internal/dirstate"
	"hgdump/internal/errors"
	"hgdump/internal/revlog"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const metaDir = ".hg"

// Reader opens and decodes metadata files. It does not need a repository
// around them.
type Reader struct {
	Logger *zap.Logger

	cache *lru.Cache[cacheKey, *revlog.Revlog]
}

// Repo gives read-only access to the metadata files of one repository.
type Repo struct {
	Root string
	*Reader
}

type cacheKey struct {
	path  string
	size  int64
	mtime time.Time
}

// Options configures a Repo.
type Options struct {
	CacheSize int
	Logger    *zap.Logger
}

// Find walks up from start to the first directory holding a .hg directory.
func Find(start string, opts Options) (*Repo, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for %s: %w", start, err)
	}

	for {
		if isRepo(dir) {
			return newRepo(dir, opts)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, errors.NotFound(fmt.Sprintf("no repository found in %s or any parent", start))
		}
		dir = parent
	}
}

// Open uses root as the repository root without searching.
func Open(root string, opts Options) (*Repo, error) {
	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}
	if !isRepo(absPath) {
		return nil, errors.NotFound(fmt.Sprintf("repository %s not found", root))
	}
	return newRepo(absPath, opts)
}

func isRepo(dir string) bool {
	fi, err := os.Stat(filepath.Join(dir, metaDir))
	return err == nil && fi.IsDir()
}

func newRepo(root string, opts Options) (*Repo, error) {
	reader, err := NewReader(opts)
	if err != nil {
		return nil, err
	}
	return &Repo{Root: root, Reader: reader}, nil
}

func NewReader(opts Options) (*Reader, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 16
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	cache, err := lru.New[cacheKey, *revlog.Revlog](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	return &Reader{
		Logger: opts.Logger,
		cache:  cache,
	}, nil
}

func (r *Repo) ChangelogPath() string {
	return filepath.Join(r.Root, metaDir, "store", "00changelog.i")
}

func (r *Repo) ManifestPath() string {
	return filepath.Join(r.Root, metaDir, "store", "00manifest.i")
}

func (r *Repo) DirstatePath() string {
	return filepath.Join(r.Root, metaDir, "dirstate")
}

func openSource(path string) (*os.File, os.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.NotFound(fmt.Sprintf("%s does not exist", path))
		}
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return f, fi, nil
}

// ReadRevlog decodes the index at path. A relative path is taken relative to
// the working directory, like any other command-line file argument.
// Successful decodes are cached until the file's size or mtime changes; on
// a decode error the partial result is returned with the error.
func (r *Reader) ReadRevlog(path string) (*revlog.Revlog, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for %s: %w", path, err)
	}

	f, fi, err := openSource(absPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	key := cacheKey{path: absPath, size: fi.Size(), mtime: fi.ModTime()}
	if rl, ok := r.cache.Get(key); ok {
		r.Logger.Debug("revlog cache hit", zap.String("path", absPath))
		return rl, nil
	}

	rl, err := revlog.Read(f)
	if err != nil {
		r.Logger.Warn("revlog decode failed",
			zap.String("path", absPath),
			zap.Int("decoded", rl.Len()),
			zap.Error(err))
		return rl, fmt.Errorf("decoding %s: %w", absPath, err)
	}

	r.Logger.Debug("decoded revlog",
		zap.String("path", absPath),
		zap.Int("entries", rl.Len()),
		zap.Uint32("version", rl.Version))
	r.cache.Add(key, rl)

	return rl, nil
}

// Dirstate decodes the repository's dirstate.
func (r *Repo) Dirstate() (*dirstate.Dirstate, error) {
	return r.ReadDirstate(r.DirstatePath())
}

// ReadDirstate decodes the dirstate at path. Dirstates are read from disk on
// every call.
func (r *Reader) ReadDirstate(path string) (*dirstate.Dirstate, error) {
	f, _, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := dirstate.Read(f)
	if err != nil {
		r.Logger.Warn("dirstate decode failed",
			zap.String("path", path),
			zap.Int("decoded", len(ds.Entries)),
			zap.Error(err))
		return ds, fmt.Errorf("decoding %s: %w", path, err)
	}

	r.Logger.Debug("decoded dirstate", zap.String("path", path), zap.Int("entries", len(ds.Entries)))
	return ds, nil
}
