package binio

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_Integers(t *testing.T) {
	src := []byte{
		0x7f,
		0x01, 0x02,
		0xff, 0xfe,
		0x00, 0x00, 0x03, 0xe8,
		0xff, 0xff, 0xff, 0xff,
		0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	r := NewReader(bytes.NewReader(src))

	u8, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x7f), u8)

	u16, err := r.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0102), u16)

	i16, err := r.ReadInt16()
	require.NoError(t, err)
	assert.Equal(t, int16(-2), i16)

	u32, err := r.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), u32)

	i32, err := r.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-1), i32)

	u64, err := r.ReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1)<<48, u64)

	assert.Equal(t, int64(len(src)), r.Pos())

	_, err = r.ReadUint8()
	assert.Equal(t, io.EOF, err)
}

func TestReader_ShortReads(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01, 0x02, 0x03}))

	_, err := r.ReadUint32()
	assert.Equal(t, io.ErrUnexpectedEOF, err)
	assert.Equal(t, int64(3), r.Pos())

	r = NewReader(bytes.NewReader(nil))
	_, err = r.ReadUint64()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, int64(0), r.Pos())
}

func TestReader_ReadBytes(t *testing.T) {
	tests := []struct {
		name    string
		src     []byte
		n       uint32
		want    []byte
		wantErr error
	}{
		{name: "exact", src: []byte("abcdef"), n: 6, want: []byte("abcdef")},
		{name: "prefix", src: []byte("abcdef"), n: 2, want: []byte("ab")},
		{name: "zero", src: nil, n: 0, want: []byte{}},
		{name: "empty source", src: nil, n: 4, wantErr: io.EOF},
		{name: "cut short", src: []byte("ab"), n: 4, wantErr: io.ErrUnexpectedEOF},
		{name: "huge length", src: []byte("ab"), n: 0xffffffff, wantErr: io.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tt.src))
			got, err := r.ReadBytes(tt.n)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, int64(tt.n), r.Pos())
		})
	}
}

func TestReader_ReadArray(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte("0123456789")))

	var dst [4]byte
	require.NoError(t, r.ReadArray(dst[:]))
	assert.Equal(t, "0123", string(dst[:]))

	var big [10]byte
	err := r.ReadArray(big[:])
	assert.Equal(t, io.ErrUnexpectedEOF, err)
	assert.Equal(t, int64(10), r.Pos())
}
