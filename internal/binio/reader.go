// Package binio reads the fixed-width big-endian fields used by the revlog
// and dirstate formats.
package binio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
)

// Reader is a sequential byte source that remembers how far it has read.
//
// Every Read method returns io.EOF when the source ended before the first
// byte of the field and io.ErrUnexpectedEOF when it ended part-way through.
type Reader struct {
	r   *bufio.Reader
	pos int64
	buf [8]byte
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Pos returns the number of bytes consumed so far.
func (r *Reader) Pos() int64 {
	return r.pos
}

func (r *Reader) fill(n int) ([]byte, error) {
	b := r.buf[:n]
	read, err := io.ReadFull(r.r, b)
	r.pos += int64(read)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.fill(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.fill(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadBytes reads exactly n bytes. The buffer grows with the data actually
// read, so a bogus length does not allocate more than the source holds.
func (r *Reader) ReadBytes(n uint32) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	read, err := io.CopyN(&buf, r.r, int64(n))
	r.pos += read
	if err == io.EOF {
		if read == 0 {
			return nil, io.EOF
		}
		return nil, io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadArray fills dst completely.
func (r *Reader) ReadArray(dst []byte) error {
	read, err := io.ReadFull(r.r, dst)
	r.pos += int64(read)
	return err
}
