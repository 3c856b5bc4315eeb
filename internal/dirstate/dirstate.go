// Package dirstate decodes the working-copy tracking table.
//
// The file starts with the two 20-byte parent hashes, followed by records of
// the form state(1) mode(4) size(4) mtime(4) length(4) name(length), all
// integers big-endian.
package dirstate

import (
	"bytes"
	"os"
	"sort"
	"time"
)

const HashSize = 20

// MtimeUnset is the mtime bit pattern recorded when the modification time
// is unknown. Read as a signed 32-bit value it is -1.
const MtimeUnset = 0xffffffff

// Entry states.
const (
	Normal  byte = 'n'
	Added   byte = 'a'
	Removed byte = 'r'
	Merged  byte = 'm'
)

// Entry is one tracked path. Name is raw bytes and need not be valid UTF-8.
type Entry struct {
	State      byte
	Mode       uint32
	Size       uint32
	Mtime      uint32
	NameLength uint32
	Name       []byte
}

// MtimeSet reports whether the entry carries a real modification time.
func (e *Entry) MtimeSet() bool {
	return int32(e.Mtime) != -1
}

// ModTime returns the recorded modification time, or false if unset.
func (e *Entry) ModTime() (time.Time, bool) {
	if !e.MtimeSet() {
		return time.Time{}, false
	}
	return time.Unix(int64(e.Mtime), 0), true
}

// Perm returns the permission bits of the entry's mode.
func (e *Entry) Perm() os.FileMode {
	return os.FileMode(e.Mode & 0o777)
}

type Dirstate struct {
	Parent1 [HashSize]byte
	Parent2 [HashSize]byte
	Entries []*Entry
}

// SortByName orders the entries by raw name bytes. Entries with equal names
// keep their relative order.
func (ds *Dirstate) SortByName() {
	sort.SliceStable(ds.Entries, func(i, j int) bool {
		return bytes.Compare(ds.Entries[i].Name, ds.Entries[j].Name) < 0
	})
}

// StateName describes a state code for display.
func StateName(state byte) string {
	switch state {
	case Normal:
		return "normal"
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Merged:
		return "merged"
	default:
		return "unknown"
	}
}
