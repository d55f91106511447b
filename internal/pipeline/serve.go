package pipeline

import (
	"fmt"

	"github.com/yigitozgenc/image-api/internal/codec"
	"github.com/yigitozgenc/image-api/internal/domain"
	"github.com/yigitozgenc/image-api/internal/imaging"

	"github.com/shopspring/decimal"
)

// Server превращает хранимый кадр в готовый к отрисовке ответ
type Server struct {
	Codec *codec.Codec
}

func NewServer(c *codec.Codec) *Server {
	if c == nil {
		c = codec.Default()
	}
	return &Server{Codec: c}
}

// ServeError ошибка обработки одного кадра
type ServeError struct {
	Depth decimal.Decimal
	Err   error
}

func (e *ServeError) Error() string {
	return fmt.Sprintf("frame depth=%s: %v", e.Depth.String(), e.Err)
}

func (e *ServeError) Unwrap() error {
	return e.Err
}

// Serve: распаковка превью → палитра → base64
func (s *Server) Serve(record *domain.FrameRecord, colormap string) (*domain.ResponseItem, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: nil frame record", domain.ErrValidation)
	}

	grayscale, err := s.Codec.Decode(record.PreviewData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode preview: %w", err)
	}
	if len(grayscale) == 0 {
		return nil, fmt.Errorf("%w: decoded preview is empty", domain.ErrValidation)
	}

	rgb, err := imaging.ApplyColormap(grayscale, colormap)
	if err != nil {
		return nil, fmt.Errorf("failed to apply colormap: %w", err)
	}

	flat := imaging.Flatten(rgb)
	if len(flat) != len(grayscale)*3 {
		return nil, fmt.Errorf("%w: invalid RGB shape: %d bytes for %d pixels", domain.ErrValidation, len(flat), len(grayscale))
	}

	data, err := imaging.EncodeBase64(flat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode RGB: %w", err)
	}
	if data == "" {
		return nil, fmt.Errorf("%w: base64 encoding returned empty result", domain.ErrEncoding)
	}

	metadata := make(map[string]float64, len(record.Metadata))
	for k, v := range record.Metadata {
		metadata[k] = v
	}

	return &domain.ResponseItem{
		Depth:    record.Depth.InexactFloat64(),
		Data:     data,
		Metadata: metadata,
	}, nil
}

// ServeBatch сохраняет порядок входа; битые кадры просто не попадают в результат
func (s *Server) ServeBatch(records []*domain.FrameRecord, colormap string) ([]*domain.ResponseItem, []*ServeError) {
	items := make([]*domain.ResponseItem, 0, len(records))
	var failures []*ServeError

	for _, record := range records {
		item, err := s.Serve(record, colormap)
		if err != nil {
			var depth decimal.Decimal
			if record != nil {
				depth = record.Depth
			}
			failures = append(failures, &ServeError{Depth: depth, Err: err})
			continue
		}
		items = append(items, item)
	}

	return items, failures
}
