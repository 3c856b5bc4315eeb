// Package chunk identifies and decompresses individual revlog payloads.
//
// Payloads are self-describing by their first byte. This package never
// applies deltas: a decompressed chunk may itself be a delta against the
// entry's base revision.
package chunk

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

type Engine string

const (
	EngineNone         Engine = "none"
	EngineRaw          Engine = "raw"
	EngineUncompressed Engine = "uncompressed"
	EngineZlib         Engine = "zlib"
	EngineZstd         Engine = "zstd"
	EngineUnknown      Engine = "unknown"
)

// zstdMagic is the first byte of a zstd frame (0x28 b5 2f fd).
const zstdMagic = 0x28

// Detect returns the engine a payload was stored with.
func Detect(payload []byte) Engine {
	if len(payload) == 0 {
		return EngineNone
	}
	switch payload[0] {
	case 0:
		return EngineRaw
	case 'u':
		return EngineUncompressed
	case 'x':
		return EngineZlib
	case zstdMagic:
		return EngineZstd
	default:
		return EngineUnknown
	}
}

// Info describes one decompressed payload.
type Info struct {
	Engine           Engine
	StoredSize       int
	DecompressedSize int
}

// Decompressor pools zlib and zstd readers across calls.
type Decompressor struct {
	zstdDecoders sync.Pool
	buffers      sync.Pool
}

func NewDecompressor() (*Decompressor, error) {
	// Create a decoder up front so configuration errors surface here.
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	d := &Decompressor{
		buffers: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 32*1024)) // 32KB
			},
		},
	}
	d.zstdDecoders.Put(dec)
	d.zstdDecoders.New = func() interface{} {
		dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		return dec
	}

	return d, nil
}

// Decompress returns the chunk stored in payload.
func (d *Decompressor) Decompress(payload []byte) ([]byte, Engine, error) {
	engine := Detect(payload)
	switch engine {
	case EngineNone:
		return []byte{}, engine, nil
	case EngineRaw:
		return payload, engine, nil
	case EngineUncompressed:
		return payload[1:], engine, nil
	case EngineZlib:
		out, err := d.inflate(payload)
		return out, engine, err
	case EngineZstd:
		out, err := d.unzstd(payload)
		return out, engine, err
	default:
		return nil, engine, fmt.Errorf("unknown compression marker %#x", payload[0])
	}
}

// Inspect decompresses payload and reports its sizes.
func (d *Decompressor) Inspect(payload []byte) (Info, error) {
	out, engine, err := d.Decompress(payload)
	info := Info{Engine: engine, StoredSize: len(payload)}
	if err != nil {
		return info, err
	}
	info.DecompressedSize = len(out)
	return info, nil
}

func (d *Decompressor) inflate(payload []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("opening zlib stream: %w", err)
	}
	defer zr.Close()

	buf := d.buffers.Get().(*bytes.Buffer)
	defer d.buffers.Put(buf)
	buf.Reset()

	if _, err := io.Copy(buf, zr); err != nil {
		return nil, fmt.Errorf("inflating chunk: %w", err)
	}

	// buf goes back to the pool
	return bytes.Clone(buf.Bytes()), nil
}

func (d *Decompressor) unzstd(payload []byte) ([]byte, error) {
	dec := d.zstdDecoders.Get().(*zstd.Decoder)
	defer d.zstdDecoders.Put(dec)

	out, err := dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("decoding zstd chunk: %w", err)
	}
	return out, nil
}

// Close releases pooled decoders. The Decompressor must not be used
// afterwards.
func (d *Decompressor) Close() {
	d.zstdDecoders.New = nil
	for {
		dec, ok := d.zstdDecoders.Get().(*zstd.Decoder)
		if !ok || dec == nil {
			break
		}
		dec.Close()
	}
}
