// Package codec хранит массивы отсчётов в самоописываемом контейнере, сжатом gzip.
//
// Контейнер: CBOR с тегами типизированных массивов RFC 8746:
//
//	tag 40 [ [count], tag 64 h'...' ]
//
// Тег 64 означает массив uint8, размерность несёт число элементов.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/yigitozgenc/image-api/internal/domain"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/gzip"
)

const (
	tagMultiDimArray = 40
	tagUint8         = 64

	// DefaultLevel максимальное сжатие
	DefaultLevel = gzip.BestCompression

	// верхняя граница распакованного контейнера
	maxContainerSize = 64 << 20
)

type Codec struct {
	level int
}

func New(level int) (*Codec, error) {
	if level < gzip.BestSpeed || level > gzip.BestCompression {
		return nil, fmt.Errorf("invalid compression level %d: expected %d..%d", level, gzip.BestSpeed, gzip.BestCompression)
	}
	return &Codec{level: level}, nil
}

func (c *Codec) Level() int {
	return c.level
}

var defaultCodec = &Codec{level: DefaultLevel}

// Default кодек с уровнем DefaultLevel
func Default() *Codec {
	return defaultCodec
}

func Encode(samples []uint8) ([]byte, error) {
	return defaultCodec.Encode(samples)
}

func Decode(data []byte) ([]uint8, error) {
	return defaultCodec.Decode(data)
}

// Encode упаковывает отсчёты в контейнер и сжимает его. Пустой массив допустим.
func (c *Codec) Encode(samples []uint8) ([]byte, error) {
	payload := samples
	if payload == nil {
		// nil ушёл бы в CBOR как null
		payload = []byte{}
	}

	container, err := cbor.Marshal(cbor.Tag{
		Number: tagMultiDimArray,
		Content: []any{
			[]uint64{uint64(len(payload))},
			cbor.Tag{Number: tagUint8, Content: payload},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build container: %w", err)
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	if _, err := zw.Write(container); err != nil {
		return nil, fmt.Errorf("failed to compress container: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish compression: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode распаковывает блоб и проверяет, что внутри ровно массив uint8 заявленной длины
func (c *Codec) Decode(data []byte) ([]uint8, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt compression framing: %v", domain.ErrDecode, err)
	}
	defer zr.Close()

	container, err := io.ReadAll(io.LimitReader(zr, maxContainerSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decompress: %v", domain.ErrDecode, err)
	}
	if len(container) > maxContainerSize {
		return nil, fmt.Errorf("%w: container exceeds %d bytes", domain.ErrDecode, maxContainerSize)
	}

	var outer cbor.Tag
	if err := cbor.Unmarshal(container, &outer); err != nil {
		return nil, fmt.Errorf("%w: failed to parse container: %v", domain.ErrDecode, err)
	}

	samples, err := decodeTypedArray(outer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return samples, nil
}

func decodeTypedArray(outer cbor.Tag) ([]uint8, error) {
	if outer.Number != tagMultiDimArray {
		return nil, fmt.Errorf("expected multidim tag %d, got %d", tagMultiDimArray, outer.Number)
	}

	items, ok := outer.Content.([]any)
	if !ok || len(items) != 2 {
		return nil, errors.New("invalid multidim array content")
	}

	dims, ok := items[0].([]any)
	if !ok || len(dims) != 1 {
		return nil, errors.New("expected one-dimensional array")
	}
	count, err := toCount(dims[0])
	if err != nil {
		return nil, err
	}

	inner, ok := items[1].(cbor.Tag)
	if !ok {
		return nil, fmt.Errorf("expected typed array tag, got %T", items[1])
	}
	if inner.Number != tagUint8 {
		return nil, fmt.Errorf("unexpected element type tag %d, expected uint8 (%d)", inner.Number, tagUint8)
	}

	payload, ok := inner.Content.([]byte)
	if !ok {
		return nil, fmt.Errorf("unsupported typed array content %T", inner.Content)
	}
	if uint64(len(payload)) != count {
		return nil, fmt.Errorf("dimension mismatch: declared %d elements, payload has %d", count, len(payload))
	}

	return payload, nil
}

func toCount(v any) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case int64:
		if n < 0 {
			return 0, fmt.Errorf("negative element count %d", n)
		}
		return uint64(n), nil
	default:
		return 0, fmt.Errorf("unsupported element count type %T", v)
	}
}

// CompressionRatio original/compressed; 0 при нулевом сжатом размере
func CompressionRatio(originalSize, compressedSize int) float64 {
	if compressedSize == 0 {
		return 0.0
	}
	return float64(originalSize) / float64(compressedSize)
}
