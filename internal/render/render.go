// Package render prints decoded revlogs and dirstates as text tables.
package render

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"hgdump/internal/chunk"
	"hgdump/internal/config"
	"hgdump/internal/dirstate"
	"hgdump/internal/errors"
	"hgdump/internal/revlog"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

const unsetMtime = "unset"

// Options controls how tables are printed.
type Options struct {
	Color      bool
	Location   *time.Location
	TimeFormat string
	Human      bool
	NoSort     bool
}

// Printer writes tables to w.
type Printer struct {
	w    io.Writer
	opts Options

	header *color.Color
	states map[byte]*color.Color
	plain  *color.Color
}

func New(w io.Writer, opts Options) *Printer {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.TimeFormat == "" {
		opts.TimeFormat = config.DefaultTimeFormat
	}

	p := &Printer{
		w:      w,
		opts:   opts,
		header: color.New(color.Bold),
		plain:  color.New(),
		states: map[byte]*color.Color{
			dirstate.Normal:  color.New(color.FgGreen),
			dirstate.Added:   color.New(color.FgBlue),
			dirstate.Removed: color.New(color.FgRed),
			dirstate.Merged:  color.New(color.FgYellow),
		},
	}

	all := []*color.Color{p.header, p.plain}
	for _, c := range p.states {
		all = append(all, c)
	}
	for _, c := range all {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

// Revlog prints one row per revision. Parent columns show the parent's
// short id, or the null id for -1.
func (p *Printer) Revlog(rl *revlog.Revlog) error {
	head := fmt.Sprintf("%6s%10s%8s%7s%8s %-12s %-12s %-12s",
		"rev", "offset", "length", "base", "linkrev", "nodeid", "p1", "p2")
	if _, err := fmt.Fprintln(p.w, p.header.Sprint(head)); err != nil {
		return err
	}

	for rev, e := range rl.Entries {
		p1, err := rl.ParentShortID(e.Parent1)
		if err != nil {
			return fmt.Errorf("revision %d: %w", rev, err)
		}
		p2, err := rl.ParentShortID(e.Parent2)
		if err != nil {
			return fmt.Errorf("revision %d: %w", rev, err)
		}

		_, err = fmt.Fprintf(p.w, "%6d%10d%8d%7d%8d %12s %12s %12s\n",
			rev, e.Offset, e.CompressedLength, e.BaseRevision, e.LinkRevision,
			e.ShortID(), p1, p2)
		if err != nil {
			return err
		}
	}

	return nil
}

// Dirstate prints one row per entry, sorted by name unless NoSort is set.
// Names that are not valid UTF-8 are reported as a validation error.
func (p *Printer) Dirstate(ds *dirstate.Dirstate) error {
	if !p.opts.NoSort {
		ds.SortByName()
	}

	for i, e := range ds.Entries {
		if !utf8.Valid(e.Name) {
			return errors.ValidationError(fmt.Sprintf("entry %d: name %q is not valid UTF-8", i, e.Name), e.Name)
		}

		_, err := fmt.Fprintf(p.w, "%s %o %10s %-19s %s\n",
			p.state(e.State), uint32(e.Perm()), p.size(e.Size), p.mtime(e), e.Name)
		if err != nil {
			return err
		}
	}

	return nil
}

func (p *Printer) state(s byte) string {
	c, ok := p.states[s]
	if !ok {
		c = p.plain
	}
	return c.Sprint(string(rune(s)))
}

func (p *Printer) size(n uint32) string {
	if p.opts.Human {
		return humanize.IBytes(uint64(n))
	}
	return fmt.Sprint(n)
}

func (p *Printer) mtime(e *dirstate.Entry) string {
	t, ok := e.ModTime()
	if !ok {
		return unsetMtime
	}
	return t.In(p.opts.Location).Format(p.opts.TimeFormat)
}

// Chunk describes the payload of a single revision.
func (p *Printer) Chunk(rev int, e *revlog.Entry, info chunk.Info) error {
	rows := []struct {
		key   string
		value string
	}{
		{"revision", fmt.Sprint(rev)},
		{"node", e.ShortID()},
		{"base", fmt.Sprint(e.BaseRevision)},
		{"snapshot", fmt.Sprint(e.IsSnapshot())},
		{"engine", string(info.Engine)},
		{"stored", p.size(uint32(info.StoredSize))},
		{"chunk", p.size(uint32(info.DecompressedSize))},
		{"uncompressed", p.size(e.UncompressedLength)},
	}

	for _, r := range rows {
		if _, err := fmt.Fprintf(p.w, "%s %s\n", p.header.Sprintf("%-13s", r.key+":"), r.value); err != nil {
			return err
		}
	}
	return nil
}
