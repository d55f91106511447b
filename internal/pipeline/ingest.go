package pipeline

import (
	"fmt"

	"github.com/yigitozgenc/image-api/internal/codec"
	"github.com/yigitozgenc/image-api/internal/domain"
	"github.com/yigitozgenc/image-api/internal/imaging"

	"github.com/shopspring/decimal"
)

const (
	DefaultOriginalWidth = 200
	DefaultResizedWidth  = 150
)

// Ingester строит хранимый кадр из сырой строки
type Ingester struct {
	OriginalWidth int
	ResizedWidth  int
	Codec         *codec.Codec
}

func NewIngester(originalWidth, resizedWidth int, c *codec.Codec) *Ingester {
	if c == nil {
		c = codec.Default()
	}
	return &Ingester{
		OriginalWidth: originalWidth,
		ResizedWidth:  resizedWidth,
		Codec:         c,
	}
}

// IngestError ошибка обработки одной строки пакета
type IngestError struct {
	Index int
	Depth decimal.Decimal
	Err   error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("row %d (depth=%s): %v", e.Index, e.Depth.String(), e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// Ingest: проверка ширины → статистика → превью → сжатие обеих версий → метаданные
func (g *Ingester) Ingest(row domain.RawSampleRow) (*domain.FrameRecord, error) {
	if len(row.Samples) != g.OriginalWidth {
		return nil, fmt.Errorf("depth=%s: %w: expected %d samples, got %d",
			row.Depth.String(), domain.ErrValidation, g.OriginalWidth, len(row.Samples))
	}

	stats, err := imaging.Statistics(row.Samples)
	if err != nil {
		return nil, fmt.Errorf("depth=%s: failed to calculate statistics: %w", row.Depth.String(), err)
	}

	preview, err := imaging.Resample(row.Samples, g.ResizedWidth)
	if err != nil {
		return nil, fmt.Errorf("depth=%s: failed to resample: %w", row.Depth.String(), err)
	}

	originalBlob, err := g.Codec.Encode(row.Samples)
	if err != nil {
		return nil, fmt.Errorf("depth=%s: failed to encode original: %w", row.Depth.String(), err)
	}

	previewBlob, err := g.Codec.Encode(preview)
	if err != nil {
		return nil, fmt.Errorf("depth=%s: failed to encode preview: %w", row.Depth.String(), err)
	}

	metadata := stats.AsMetadata()
	metadata[domain.MetaCompressionRatioOriginal] = codec.CompressionRatio(len(row.Samples), len(originalBlob))
	metadata[domain.MetaCompressionRatioPreview] = codec.CompressionRatio(len(preview), len(previewBlob))

	return &domain.FrameRecord{
		Depth:        row.Depth,
		OriginalData: originalBlob,
		PreviewData:  previewBlob,
		Metadata:     metadata,
	}, nil
}

// IngestBatch обрабатывает строки независимо: ошибка одной строки не останавливает остальные
func (g *Ingester) IngestBatch(rows []domain.RawSampleRow) ([]*domain.FrameRecord, []*IngestError) {
	records := make([]*domain.FrameRecord, 0, len(rows))
	var failures []*IngestError

	for i, row := range rows {
		record, err := g.Ingest(row)
		if err != nil {
			failures = append(failures, &IngestError{Index: i, Depth: row.Depth, Err: err})
			continue
		}
		records = append(records, record)
	}

	return records, failures
}
