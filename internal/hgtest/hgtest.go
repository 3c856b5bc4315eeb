// Package hgtest builds synthetic repositories for tests.
package hgtest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Revision is one revlog index record. CompressedLength is taken from
// len(Payload).
type Revision struct {
	Header             uint64
	UncompressedLength uint32
	Base               int32
	Link               int32
	P1, P2             int32
	Node               [32]byte
	Payload            []byte
}

// VersionHeader builds the first record's header.
func VersionHeader(version uint16, formatFlags uint16) uint64 {
	return uint64(formatFlags)<<48 | uint64(version)<<32
}

// OffsetHeader builds the header of every later record.
func OffsetHeader(offset uint64) uint64 {
	return offset << 16
}

// Node returns a node id whose bytes count up from seed.
func Node(seed byte) [32]byte {
	var n [32]byte
	for i := range n {
		n[i] = seed + byte(i)
	}
	return n
}

func EncodeRevlog(tb testing.TB, revs ...Revision) []byte {
	tb.Helper()

	var buf bytes.Buffer
	for _, r := range revs {
		fields := []interface{}{
			r.Header,
			uint32(len(r.Payload)),
			r.UncompressedLength,
			r.Base,
			r.Link,
			r.P1,
			r.P2,
			r.Node,
		}
		for _, f := range fields {
			require.NoError(tb, binary.Write(&buf, binary.BigEndian, f))
		}
		buf.Write(r.Payload)
	}
	return buf.Bytes()
}

// FileEntry is one dirstate record.
type FileEntry struct {
	State byte
	Mode  uint32
	Size  uint32
	Mtime uint32
	Name  string
}

func EncodeDirstate(tb testing.TB, p1, p2 [20]byte, entries ...FileEntry) []byte {
	tb.Helper()

	var buf bytes.Buffer
	buf.Write(p1[:])
	buf.Write(p2[:])
	for _, e := range entries {
		buf.WriteByte(e.State)
		for _, v := range []uint32{e.Mode, e.Size, e.Mtime, uint32(len(e.Name))} {
			require.NoError(tb, binary.Write(&buf, binary.BigEndian, v))
		}
		buf.WriteString(e.Name)
	}
	return buf.Bytes()
}

// InitRepo creates an empty .hg/store layout under a fresh temp dir and
// returns the root.
func InitRepo(tb testing.TB) string {
	tb.Helper()
	root := tb.TempDir()
	require.NoError(tb, os.MkdirAll(filepath.Join(root, ".hg", "store"), 0755))
	return root
}

// WriteFile writes data below root, creating directories as needed.
func WriteFile(tb testing.TB, root, rel string, data []byte) string {
	tb.Helper()
	path := filepath.Join(root, rel)
	require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(tb, os.WriteFile(path, data, 0644))
	return path
}

// SampleRevlog is a three revision changelog: a root, a child and a merge.
func SampleRevlog(tb testing.TB) []byte {
	return EncodeRevlog(tb,
		Revision{Header: VersionHeader(1, 1), UncompressedLength: 5, Base: -1, Link: 0, P1: -1, P2: -1, Node: Node(0x10), Payload: []byte("uroot")},
		Revision{Header: OffsetHeader(52), UncompressedLength: 6, Base: 0, Link: 1, P1: 0, P2: -1, Node: Node(0x20), Payload: []byte("uchild")},
		Revision{Header: OffsetHeader(110), UncompressedLength: 6, Base: 1, Link: 2, P1: 1, P2: 0, Node: Node(0x30), Payload: []byte("umerge")},
	)
}
