package dirstate

import (
	"fmt"
	"io"

	"hgdump/internal/binio"
	"hgdump/internal/errors"
)

// A Decoder reads a dirstate from an input stream.
type Decoder struct {
	r *binio.Reader
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: binio.NewReader(r)}
}

// Decode reads the parent hashes and every entry into ds. The hashes are
// mandatory; after them, end of input is only accepted in place of a state
// byte. Entries decoded before an error are left in ds.
func (d *Decoder) Decode(ds *Dirstate) error {
	if err := d.r.ReadArray(ds.Parent1[:]); err != nil {
		return truncated("parent 1 hash", 0, err)
	}
	if err := d.r.ReadArray(ds.Parent2[:]); err != nil {
		return truncated("parent 2 hash", HashSize, err)
	}

	for {
		state, err := d.r.ReadUint8()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return truncated(fmt.Sprintf("state of entry %d", len(ds.Entries)), d.r.Pos(), err)
		}

		e, err := d.readEntry(len(ds.Entries), state)
		if err != nil {
			return err
		}
		ds.Entries = append(ds.Entries, e)
	}
}

func (d *Decoder) readEntry(n int, state byte) (*Entry, error) {
	e := &Entry{State: state}

	fields := []struct {
		name string
		dst  *uint32
	}{
		{"mode", &e.Mode},
		{"size", &e.Size},
		{"mtime", &e.Mtime},
		{"name length", &e.NameLength},
	}
	for _, f := range fields {
		pos := d.r.Pos()
		v, err := d.r.ReadUint32()
		if err != nil {
			return nil, truncated(fmt.Sprintf("%s of entry %d", f.name, n), pos, err)
		}
		*f.dst = v
	}

	pos := d.r.Pos()
	name, err := d.r.ReadBytes(e.NameLength)
	if err != nil {
		return nil, truncated(fmt.Sprintf("name of entry %d", n), pos, err)
	}
	e.Name = name

	return e, nil
}

func truncated(field string, pos int64, err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return errors.Truncated(field, pos, err)
}

// Read decodes a whole dirstate from r. On error the entries decoded so far
// are returned alongside it.
func Read(r io.Reader) (*Dirstate, error) {
	ds := &Dirstate{}
	err := NewDecoder(r).Decode(ds)
	return ds, err
}
