package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hgdump/internal/errors"
	"hgdump/internal/hgtest"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfg := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{"time_zone": "utc", "color": "never"}`), 0644))

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func sampleRepo(t *testing.T) string {
	root := hgtest.InitRepo(t)
	hgtest.WriteFile(t, root, ".hg/store/00changelog.i", hgtest.SampleRevlog(t))

	var p1 [20]byte
	p1[0] = 1
	hgtest.WriteFile(t, root, ".hg/dirstate", hgtest.EncodeDirstate(t, p1, [20]byte{},
		hgtest.FileEntry{State: 'n', Mode: 0o100644, Size: 4, Mtime: 1700000000, Name: "b.txt"},
		hgtest.FileEntry{State: 'a', Mode: 0o100755, Size: 1024, Mtime: 0xffffffff, Name: "a.sh"},
	))
	return root
}

func TestDebugIndex_Changelog(t *testing.T) {
	root := sampleRepo(t)

	out, err := run(t, "-R", root, "debugindex", "-c")
	require.NoError(t, err)

	got := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, got, 4)
	assert.Equal(t, "     2       110       6      1       2 303132333435 202122232425 101112131415", got[3])
}

func TestDebugIndex_File(t *testing.T) {
	path := hgtest.WriteFile(t, t.TempDir(), "loose.i", hgtest.SampleRevlog(t))

	out, err := run(t, "debugindex", path)
	require.NoError(t, err)
	assert.Contains(t, out, "000000000000 000000000000")
}

func TestDebugIndex_SourceSelection(t *testing.T) {
	root := sampleRepo(t)

	_, err := run(t, "-R", root, "debugindex")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = run(t, "-R", root, "debugindex", "-c", "-m")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = run(t, "-R", root, "debugindex", "-m")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	assert.Equal(t, 2, errors.ExitCode(err))
}

func TestDebugIndex_TruncatedShowsPartial(t *testing.T) {
	data := hgtest.SampleRevlog(t)
	path := hgtest.WriteFile(t, t.TempDir(), "broken.i", data[:len(data)-1])

	out, err := run(t, "debugindex", path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTruncated))
	assert.Equal(t, 4, errors.ExitCode(err))
	assert.Len(t, strings.Split(strings.TrimSuffix(out, "\n"), "\n"), 3)
}

func TestDebugDirstate(t *testing.T) {
	root := sampleRepo(t)

	out, err := run(t, "-R", root, "debugdirstate")
	require.NoError(t, err)
	assert.Equal(t,
		"a 755       1024 unset               a.sh\n"+
			"n 644          4 2023-11-14 22:13:20 b.txt\n",
		out)

	out, err = run(t, "-R", root, "debugdirstate", "--no-sort", "--human")
	require.NoError(t, err)
	got := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, got, 2)
	assert.True(t, strings.HasSuffix(got[0], "b.txt"))
	assert.Contains(t, got[1], "1.0 KiB")
}

func TestDebugDirstate_NoRepository(t *testing.T) {
	_, err := run(t, "-R", t.TempDir(), "debugdirstate")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestDebugChunk(t *testing.T) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(bytes.Repeat([]byte("line\n"), 100))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := hgtest.WriteFile(t, t.TempDir(), "data.i", hgtest.EncodeRevlog(t,
		hgtest.Revision{Header: hgtest.VersionHeader(1, 1), UncompressedLength: 500, Base: -1, P1: -1, P2: -1, Node: hgtest.Node(1), Payload: buf.Bytes()},
	))

	out, err := run(t, "debugchunk", path, "0")
	require.NoError(t, err)
	assert.Contains(t, out, "engine:       zlib\n")
	assert.Contains(t, out, "chunk:        500\n")
	assert.Contains(t, out, "snapshot:     true\n")

	_, err = run(t, "debugchunk", path, "3")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	_, err = run(t, "debugchunk", path, "tip")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestDebugChunk_Changelog(t *testing.T) {
	root := sampleRepo(t)

	out, err := run(t, "-R", root, "debugchunk", "-c", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "engine:       uncompressed\n")
	assert.Contains(t, out, "chunk:        5\n")
}

func TestBadColorFlag(t *testing.T) {
	_, err := run(t, "--color", "sometimes", "debugdirstate")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}
