package embedding

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// The wire payload for GetEmbeddings is an Arrow IPC stream holding a single
// record batch with one list<float32> column named "embeddings", one row per
// input text. Columnar encoding avoids per-element serialization overhead on
// large batches.

var matrixSchema = arrow.NewSchema([]arrow.Field{
	{Name: "embeddings", Type: arrow.ListOf(arrow.PrimitiveTypes.Float32)},
}, nil)

// EncodeMatrix serializes a 2-D float32 array into an Arrow IPC stream.
func EncodeMatrix(vectors [][]float32) ([]byte, error) {
	pool := memory.NewGoAllocator()

	builder := array.NewListBuilder(pool, arrow.PrimitiveTypes.Float32)
	defer builder.Release()
	values := builder.ValueBuilder().(*array.Float32Builder)

	for _, vec := range vectors {
		builder.Append(true)
		values.AppendValues(vec, nil)
	}

	list := builder.NewListArray()
	defer list.Release()

	rec := array.NewRecord(matrixSchema, []arrow.Array{list}, int64(len(vectors)))
	defer rec.Release()

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(matrixSchema), ipc.WithAllocator(pool))
	if err := writer.Write(rec); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write record batch: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close IPC stream: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodeMatrix deserializes an Arrow IPC stream back into one vector per row.
func DecodeMatrix(blob []byte) ([][]float32, error) {
	reader, err := ipc.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to open IPC stream: %w", err)
	}
	defer reader.Release()

	var vectors [][]float32
	for reader.Next() {
		rec := reader.Record()
		if rec.NumCols() < 1 {
			return nil, fmt.Errorf("record batch has no columns")
		}
		list, ok := rec.Column(0).(*array.List)
		if !ok {
			return nil, fmt.Errorf("unexpected column type %T", rec.Column(0))
		}
		values, ok := list.ListValues().(*array.Float32)
		if !ok {
			return nil, fmt.Errorf("unexpected list value type %T", list.ListValues())
		}
		offsets := list.Offsets()
		data := values.Float32Values()
		for i := 0; i < list.Len(); i++ {
			row := make([]float32, offsets[i+1]-offsets[i])
			copy(row, data[offsets[i]:offsets[i+1]])
			vectors = append(vectors, row)
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read IPC stream: %w", err)
	}

	return vectors, nil
}
