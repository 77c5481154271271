package dataset

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/reprojection.view/internal/patch"
	"gonum.org/v1/gonum/spatial/r3"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformedBlob reports a BLOB column whose protobuf payload cannot be
// decoded or whose declared row count disagrees with its data length.
var ErrMalformedBlob = errors.New("malformed blob")

// Field numbers of the serialized matrices. Matrices are stored column-major
// with an explicit row count, so an N×2 array holds all x values then all y.
const (
	arrayRowsField = 1
	arrayDataField = 2

	bundlePixelRowsField = 1
	bundlePixelDataField = 2
	bundlePointRowsField = 3
	bundlePointDataField = 4

	targetBundleField      = 1
	targetIndicesRowsField = 2
	targetIndicesDataField = 3
)

// EncodeArrayX2 serializes an N×2 array (reprojection errors, pixels).
func EncodeArrayX2(rows []patch.Vec2) []byte {
	var b []byte
	b = appendInt(b, arrayRowsField, len(rows))
	b = appendDoubles(b, arrayDataField, flattenVec2(rows))
	return b
}

// DecodeArrayX2 parses a blob written by EncodeArrayX2.
func DecodeArrayX2(blob []byte) ([]patch.Vec2, error) {
	var (
		rows int
		data []float64
	)
	err := walkFields(blob, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case arrayRowsField:
			return consumeInt(typ, b, &rows)
		case arrayDataField:
			return consumeDoubles(typ, b, &data)
		}
		return -1, nil
	})
	if err != nil {
		return nil, err
	}
	return unflattenVec2(rows, data)
}

// EncodeExtractedTarget serializes a detected calibration target.
func EncodeExtractedTarget(t ExtractedTarget) []byte {
	var bundle []byte
	bundle = appendInt(bundle, bundlePixelRowsField, len(t.Pixels))
	bundle = appendDoubles(bundle, bundlePixelDataField, flattenVec2(t.Pixels))
	bundle = appendInt(bundle, bundlePointRowsField, len(t.Points))
	bundle = appendDoubles(bundle, bundlePointDataField, flattenVec3(t.Points))

	var b []byte
	b = protowire.AppendTag(b, targetBundleField, protowire.BytesType)
	b = protowire.AppendBytes(b, bundle)
	b = appendInt(b, targetIndicesRowsField, len(t.Indices))

	indices := make([]int32, 0, 2*len(t.Indices))
	for c := 0; c < 2; c++ {
		for _, ix := range t.Indices {
			indices = append(indices, ix[c])
		}
	}
	var packed []byte
	for _, v := range indices {
		packed = protowire.AppendVarint(packed, uint64(int64(v)))
	}
	b = protowire.AppendTag(b, targetIndicesDataField, protowire.BytesType)
	b = protowire.AppendBytes(b, packed)
	return b
}

// DecodeExtractedTarget parses a blob written by EncodeExtractedTarget.
func DecodeExtractedTarget(blob []byte) (ExtractedTarget, error) {
	var (
		pixelRows, pointRows, indexRows int
		pixelData, pointData            []float64
		indexData                       []int32
	)
	err := walkFields(blob, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case targetBundleField:
			if typ != protowire.BytesType {
				return 0, fmt.Errorf("bundle has wire type %d: %w", typ, ErrMalformedBlob)
			}
			bundle, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, fmt.Errorf("bundle: %v: %w", protowire.ParseError(n), ErrMalformedBlob)
			}
			err := walkFields(bundle, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
				switch num {
				case bundlePixelRowsField:
					return consumeInt(typ, b, &pixelRows)
				case bundlePixelDataField:
					return consumeDoubles(typ, b, &pixelData)
				case bundlePointRowsField:
					return consumeInt(typ, b, &pointRows)
				case bundlePointDataField:
					return consumeDoubles(typ, b, &pointData)
				}
				return -1, nil
			})
			return n, err
		case targetIndicesRowsField:
			return consumeInt(typ, b, &indexRows)
		case targetIndicesDataField:
			return consumeInt32s(typ, b, &indexData)
		}
		return -1, nil
	})
	if err != nil {
		return ExtractedTarget{}, err
	}

	var t ExtractedTarget
	if t.Pixels, err = unflattenVec2(pixelRows, pixelData); err != nil {
		return ExtractedTarget{}, fmt.Errorf("pixels: %w", err)
	}
	if err := checkDims(pointRows, 3, len(pointData)); err != nil {
		return ExtractedTarget{}, fmt.Errorf("points: %w", err)
	}
	t.Points = make([]r3.Vec, pointRows)
	for r := range t.Points {
		t.Points[r] = r3.Vec{X: pointData[r], Y: pointData[pointRows+r], Z: pointData[2*pointRows+r]}
	}
	if err := checkDims(indexRows, 2, len(indexData)); err != nil {
		return ExtractedTarget{}, fmt.Errorf("indices: %w", err)
	}
	t.Indices = make([][2]int32, indexRows)
	for r := range t.Indices {
		t.Indices[r] = [2]int32{indexData[r], indexData[indexRows+r]}
	}
	return t, nil
}

// walkFields calls fn for every field in b. fn returns the number of bytes
// it consumed, or -1 to have an unknown field skipped.
func walkFields(b []byte, fn func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("tag: %v: %w", protowire.ParseError(n), ErrMalformedBlob)
		}
		b = b[n:]

		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m < 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return fmt.Errorf("field %d: %v: %w", num, protowire.ParseError(m), ErrMalformedBlob)
			}
		}
		b = b[m:]
	}
	return nil
}

func appendInt(b []byte, num protowire.Number, v int) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func appendDoubles(b []byte, num protowire.Number, vs []float64) []byte {
	if len(vs) == 0 {
		return b
	}
	packed := make([]byte, 0, 8*len(vs))
	for _, v := range vs {
		packed = protowire.AppendFixed64(packed, math.Float64bits(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func consumeInt(typ protowire.Type, b []byte, out *int) (int, error) {
	if typ != protowire.VarintType {
		return 0, fmt.Errorf("row count has wire type %d: %w", typ, ErrMalformedBlob)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, fmt.Errorf("row count: %v: %w", protowire.ParseError(n), ErrMalformedBlob)
	}
	if v > math.MaxInt32 {
		return 0, fmt.Errorf("row count %d out of range: %w", v, ErrMalformedBlob)
	}
	*out = int(v)
	return n, nil
}

// consumeDoubles accepts both packed and unpacked repeated doubles.
func consumeDoubles(typ protowire.Type, b []byte, out *[]float64) (int, error) {
	switch typ {
	case protowire.Fixed64Type:
		v, n := protowire.ConsumeFixed64(b)
		if n < 0 {
			return 0, fmt.Errorf("double: %v: %w", protowire.ParseError(n), ErrMalformedBlob)
		}
		*out = append(*out, math.Float64frombits(v))
		return n, nil
	case protowire.BytesType:
		packed, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return 0, fmt.Errorf("packed doubles: %v: %w", protowire.ParseError(n), ErrMalformedBlob)
		}
		if len(packed)%8 != 0 {
			return 0, fmt.Errorf("packed doubles length %d: %w", len(packed), ErrMalformedBlob)
		}
		for len(packed) > 0 {
			v, m := protowire.ConsumeFixed64(packed)
			*out = append(*out, math.Float64frombits(v))
			packed = packed[m:]
		}
		return n, nil
	}
	return 0, fmt.Errorf("doubles have wire type %d: %w", typ, ErrMalformedBlob)
}

func consumeInt32s(typ protowire.Type, b []byte, out *[]int32) (int, error) {
	switch typ {
	case protowire.VarintType:
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return 0, fmt.Errorf("int32: %v: %w", protowire.ParseError(n), ErrMalformedBlob)
		}
		*out = append(*out, int32(v))
		return n, nil
	case protowire.BytesType:
		packed, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return 0, fmt.Errorf("packed int32: %v: %w", protowire.ParseError(n), ErrMalformedBlob)
		}
		for len(packed) > 0 {
			v, m := protowire.ConsumeVarint(packed)
			if m < 0 {
				return 0, fmt.Errorf("packed int32: %v: %w", protowire.ParseError(m), ErrMalformedBlob)
			}
			*out = append(*out, int32(v))
			packed = packed[m:]
		}
		return n, nil
	}
	return 0, fmt.Errorf("int32s have wire type %d: %w", typ, ErrMalformedBlob)
}

func checkDims(rows, cols, n int) error {
	if rows < 0 || rows*cols != n {
		return fmt.Errorf("%d rows of %d columns but %d values: %w", rows, cols, n, ErrMalformedBlob)
	}
	return nil
}

func flattenVec2(rows []patch.Vec2) []float64 {
	out := make([]float64, 2*len(rows))
	for r, v := range rows {
		out[r] = v[0]
		out[len(rows)+r] = v[1]
	}
	return out
}

func unflattenVec2(rows int, data []float64) ([]patch.Vec2, error) {
	if err := checkDims(rows, 2, len(data)); err != nil {
		return nil, err
	}
	out := make([]patch.Vec2, rows)
	for r := range out {
		out[r] = patch.Vec2{data[r], data[rows+r]}
	}
	return out, nil
}

func flattenVec3(rows []r3.Vec) []float64 {
	n := len(rows)
	out := make([]float64, 3*n)
	for r, v := range rows {
		out[r] = v.X
		out[n+r] = v.Y
		out[2*n+r] = v.Z
	}
	return out
}
