package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"hgdump/internal/chunk"
	"hgdump/internal/errors"
	"hgdump/internal/render"
	"hgdump/internal/repo"
	"hgdump/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) repoOptions() repo.Options {
	return repo.Options{CacheSize: a.cfg.CacheSize, Logger: a.logger.Logger}
}

// openRepo locates the repository from --repository, the config, or the
// working directory, in that order.
func (a *app) openRepo() (*repo.Repo, error) {
	if a.repoRoot != "" {
		return repo.Open(a.repoRoot, a.repoOptions())
	}
	if a.cfg.Repository != "" {
		return repo.Open(a.cfg.Repository, a.repoOptions())
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	return repo.Find(cwd, a.repoOptions())
}

// indexSource picks the revlog named by -c, -m or a file argument. Exactly
// one of them must be given.
type indexSource struct {
	changelog bool
	manifest  bool
}

func (s *indexSource) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&s.changelog, "changelog", "c", false, "Use the changelog index")
	cmd.Flags().BoolVarP(&s.manifest, "manifest", "m", false, "Use the manifest index")
}

func (s *indexSource) resolve(a *app, file string) (string, *repo.Reader, error) {
	chosen := 0
	for _, set := range []bool{s.changelog, s.manifest, file != ""} {
		if set {
			chosen++
		}
	}
	if chosen != 1 {
		return "", nil, errors.ValidationError("specify exactly one of --changelog, --manifest or FILE", nil)
	}

	if file != "" {
		reader, err := repo.NewReader(a.repoOptions())
		if err != nil {
			return "", nil, err
		}
		return file, reader, nil
	}

	r, err := a.openRepo()
	if err != nil {
		return "", nil, err
	}
	if s.changelog {
		return r.ChangelogPath(), r.Reader, nil
	}
	return r.ManifestPath(), r.Reader, nil
}

func newDebugIndexCmd(a *app) *cobra.Command {
	var src indexSource

	cmd := &cobra.Command{
		Use:   "debugindex [-c|-m|FILE]",
		Short: "Dump the contents of an index file",
		Example: `  hgdump debugindex -c
  hgdump debugindex .hg/store/data/README.i`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 1 {
				file = args[0]
			}

			path, reader, err := src.resolve(a, file)
			if err != nil {
				return err
			}

			rl, decodeErr := reader.ReadRevlog(path)
			if rl == nil {
				return decodeErr
			}

			p, err := a.printer(render.Options{})
			if err != nil {
				return err
			}
			// Entries decoded before a truncation are still worth showing.
			if err := p.Revlog(rl); err != nil {
				return fmt.Errorf("printing %s: %w", path, err)
			}
			return decodeErr
		},
	}
	src.register(cmd)

	return cmd
}

func newDebugDirstateCmd(a *app) *cobra.Command {
	var opts render.Options
	var follow bool

	cmd := &cobra.Command{
		Use:   "debugdirstate",
		Short: "Show the contents of the current dirstate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}

			p, err := a.printer(opts)
			if err != nil {
				return err
			}

			dump := func() error {
				ds, err := r.Dirstate()
				if err != nil {
					return err
				}
				return p.Dirstate(ds)
			}

			if !follow {
				return dump()
			}

			if err := dump(); err != nil {
				a.logger.Error("dumping dirstate", zap.Error(err))
			}

			w, err := watch.New(r.DirstatePath(), watch.DefaultDebounce, a.logger.Logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			err = w.Run(ctx, func() error {
				fmt.Fprintln(a.out)
				return dump()
			})
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.NoSort, "no-sort", false, "Print entries in file order instead of sorting by name")
	cmd.Flags().BoolVar(&opts.Human, "human", false, "Print sizes in human-readable units")
	cmd.Flags().BoolVarP(&follow, "watch", "w", false, "Print the dirstate again whenever it changes")

	return cmd
}

func newDebugChunkCmd(a *app) *cobra.Command {
	var src indexSource
	var human bool

	cmd := &cobra.Command{
		Use:   "debugchunk [-c|-m|FILE] REV",
		Short: "Describe the stored payload of one revision",
		Long: `Describe how one revision's payload is stored: its compression engine,
stored size and decompressed chunk size. Deltas are not applied.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 2 {
				file = args[0]
			}

			rev, err := strconv.Atoi(args[len(args)-1])
			if err != nil {
				return errors.ValidationError(fmt.Sprintf("invalid revision %q", args[len(args)-1]), nil)
			}

			path, reader, err := src.resolve(a, file)
			if err != nil {
				return err
			}

			rl, err := reader.ReadRevlog(path)
			if err != nil {
				return err
			}

			e, ok := rl.Entry(rev)
			if !ok {
				return errors.NotFound(fmt.Sprintf("revision %d not found (%s has %d revisions)", rev, path, rl.Len()))
			}

			d, err := chunk.NewDecompressor()
			if err != nil {
				return err
			}
			defer d.Close()

			info, err := d.Inspect(e.Payload)
			if err != nil {
				return errors.ValidationError(fmt.Sprintf("revision %d: %v", rev, err), nil)
			}

			p, err := a.printer(render.Options{Human: human})
			if err != nil {
				return err
			}
			return p.Chunk(rev, e, info)
		},
	}
	src.register(cmd)
	cmd.Flags().BoolVar(&human, "human", false, "Print sizes in human-readable units")

	return cmd
}
