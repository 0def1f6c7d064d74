package storage

import (
	"math"
	"testing"

	"github.com/poiesic/assessrec/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalEmbeddingRecord(t *testing.T) {
	tests := []struct {
		name   string
		record *EmbeddingRecord
	}{
		{
			name: "typical vector",
			record: &EmbeddingRecord{
				ID:     core.IDFromContent("Java 8 (New) Multi-choice test"),
				Model:  "onnx:all-MiniLM-L6-v2",
				Vector: []float32{0.1, -0.2, 0.3, 0},
			},
		},
		{
			name:   "empty vector",
			record: &EmbeddingRecord{ID: 7, Model: "mock", Vector: []float32{}},
		},
		{
			name: "extreme values",
			record: &EmbeddingRecord{
				ID:     math.MaxUint64,
				Model:  "",
				Vector: []float32{math.MaxFloat32, -math.MaxFloat32, math.SmallestNonzeroFloat32},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalEmbeddingRecord(tt.record)
			assert.Len(t, data, EmbeddingRecordMUS.Size(*tt.record))

			decoded, err := UnmarshalEmbeddingRecord(data)
			require.NoError(t, err)
			assert.Equal(t, tt.record.ID, decoded.ID)
			assert.Equal(t, tt.record.Model, decoded.Model)
			assert.Equal(t, tt.record.Vector, decoded.Vector)
		})
	}
}

func TestUnmarshalEmbeddingRecord_Invalid(t *testing.T) {
	valid := MarshalEmbeddingRecord(&EmbeddingRecord{ID: 1, Model: "m", Vector: []float32{1, 2, 3}})

	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"truncated vector", valid[:len(valid)-2]},
		{"truncated header", valid[:2]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalEmbeddingRecord(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}
