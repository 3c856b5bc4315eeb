package revlog

import (
	"fmt"
	"io"

	"hgdump/internal/binio"
	"hgdump/internal/errors"
)

// A Decoder reads revlog index entries from an input stream.
type Decoder struct {
	r *binio.Reader
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: binio.NewReader(r)}
}

// Decode reads entries until the input ends and appends them to rl. End of
// input is only accepted before a header; anywhere else it is a truncation
// error. Entries decoded before an error are left in rl.
func (d *Decoder) Decode(rl *Revlog) error {
	for {
		start := d.r.Pos()
		header, err := d.r.ReadUint64()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return d.truncated(len(rl.Entries), "header", start, err)
		}

		e, err := d.readEntry(len(rl.Entries), header)
		if err != nil {
			return err
		}

		if len(rl.Entries) == 0 {
			rl.Version = uint32(header>>32) & 0xffff
			rl.FormatFlags = uint16(header >> 48)
		}
		rl.Entries = append(rl.Entries, e)
	}
}

func (d *Decoder) readEntry(rev int, header uint64) (*Entry, error) {
	e := &Entry{Flags: uint16(header)}
	if rev > 0 {
		e.Offset = header >> 16
	}

	u32s := []struct {
		name string
		dst  *uint32
	}{
		{"compressed length", &e.CompressedLength},
		{"uncompressed length", &e.UncompressedLength},
	}
	for _, f := range u32s {
		pos := d.r.Pos()
		v, err := d.r.ReadUint32()
		if err != nil {
			return nil, d.truncated(rev, f.name, pos, err)
		}
		*f.dst = v
	}

	i32s := []struct {
		name string
		dst  *int32
	}{
		{"base revision", &e.BaseRevision},
		{"link revision", &e.LinkRevision},
		{"parent 1", &e.Parent1},
		{"parent 2", &e.Parent2},
	}
	for _, f := range i32s {
		pos := d.r.Pos()
		v, err := d.r.ReadInt32()
		if err != nil {
			return nil, d.truncated(rev, f.name, pos, err)
		}
		*f.dst = v
	}

	pos := d.r.Pos()
	if err := d.r.ReadArray(e.NodeID[:]); err != nil {
		return nil, d.truncated(rev, "node id", pos, err)
	}

	pos = d.r.Pos()
	payload, err := d.r.ReadBytes(e.CompressedLength)
	if err != nil {
		return nil, d.truncated(rev, "payload", pos, err)
	}
	e.Payload = payload

	return e, nil
}

func (d *Decoder) truncated(rev int, field string, pos int64, err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return errors.Truncated(fmt.Sprintf("%s of revision %d", field, rev), pos, err)
}

// Read decodes a whole index from r. On error the entries decoded so far
// are returned alongside it.
func Read(r io.Reader) (*Revlog, error) {
	rl := &Revlog{}
	err := NewDecoder(r).Decode(rl)
	return rl, err
}
