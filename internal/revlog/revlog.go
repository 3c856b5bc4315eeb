// Package revlog decodes revlog index files.
//
// An index is a flat sequence of records:
//
//	8 bytes   header: offset (48 bits) and flags (16 bits)
//	4 bytes   compressed length
//	4 bytes   uncompressed length
//	4 bytes   base revision
//	4 bytes   link revision
//	4 bytes   parent 1
//	4 bytes   parent 2
//	32 bytes  node id
//	n bytes   payload, n being the compressed length
//
// The first record's header carries no offset. Its upper 32 bits hold the
// format version (bits 32-47) and the format feature flags (bits 48-63).
package revlog

import (
	"encoding/hex"
	"fmt"

	"hgdump/internal/errors"
)

const (
	// NullRevision is the parent value meaning "no parent".
	NullRevision = -1
	// NullShortID is the short id printed for the null revision.
	NullShortID = "000000000000"

	NodeIDSize  = 32
	ShortIDSize = 6
)

// Format feature flags, as found in Revlog.FormatFlags.
const (
	FlagInlineData   = 1 << 0
	FlagGeneralDelta = 1 << 1
)

// Entry is one revision of the index. Parent1, Parent2 and BaseRevision are
// positions in the Revlog's Entries, or -1.
type Entry struct {
	Offset             uint64
	CompressedLength   uint32
	UncompressedLength uint32
	BaseRevision       int32
	LinkRevision       int32
	Parent1            int32
	Parent2            int32
	NodeID             [NodeIDSize]byte
	Flags              uint16
	Payload            []byte
}

// ShortID returns the first six bytes of the node id in lowercase hex.
func (e *Entry) ShortID() string {
	return hex.EncodeToString(e.NodeID[:ShortIDSize])
}

// IsSnapshot reports whether the revision is stored in full rather than as
// a delta.
func (e *Entry) IsSnapshot() bool {
	return e.BaseRevision == NullRevision
}

// Revlog is a decoded index. Version is only meaningful once at least one
// entry has been decoded.
type Revlog struct {
	Version     uint32
	FormatFlags uint16
	Entries     []*Entry
}

func (rl *Revlog) Len() int {
	return len(rl.Entries)
}

// Entry returns the entry at position rev.
func (rl *Revlog) Entry(rev int) (*Entry, bool) {
	if rev < 0 || rev >= len(rl.Entries) {
		return nil, false
	}
	return rl.Entries[rev], true
}

// ParentShortID resolves a parent reference to a short id. The null
// revision renders as NullShortID without looking at the entries.
func (rl *Revlog) ParentShortID(parent int32) (string, error) {
	if parent == NullRevision {
		return NullShortID, nil
	}
	e, ok := rl.Entry(int(parent))
	if !ok {
		return "", errors.ValidationError(
			fmt.Sprintf("parent revision %d out of range (revlog has %d entries)", parent, len(rl.Entries)),
			parent,
		)
	}
	return e.ShortID(), nil
}

func (rl *Revlog) Inline() bool {
	return rl.FormatFlags&FlagInlineData != 0
}

func (rl *Revlog) GeneralDelta() bool {
	return rl.FormatFlags&FlagGeneralDelta != 0
}
