package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncated(t *testing.T) {
	err := Truncated("node id", 42, io.ErrUnexpectedEOF)

	assert.Equal(t, ErrorTypeTruncated, err.Type)
	assert.Equal(t, "node id", err.Field)
	assert.Equal(t, int64(42), err.Offset)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "truncated node id at byte 42")
}

func TestIsType(t *testing.T) {
	wrapped := fmt.Errorf("reading index: %w", Truncated("header", 0, io.ErrUnexpectedEOF))

	assert.True(t, IsType(wrapped, ErrorTypeTruncated))
	assert.False(t, IsType(wrapped, ErrorTypeNotFound))
	assert.False(t, IsType(io.EOF, ErrorTypeTruncated))

	nested := Internal("decoding", NotFound("no repository"))
	assert.True(t, IsType(nested, ErrorTypeNotFound))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain", err: io.EOF, want: 1},
		{name: "not found", err: NotFound("missing"), want: 2},
		{name: "validation", err: fmt.Errorf("rendering: %w", ValidationError("bad name", nil)), want: 3},
		{name: "truncated", err: Truncated("mode", 7, io.EOF), want: 4},
		{name: "internal", err: Internal("boom", nil), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
