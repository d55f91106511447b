package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Ключи метаданных кадра
const (
	MetaMin                      = "min"
	MetaMax                      = "max"
	MetaMean                     = "mean"
	MetaStd                      = "std"
	MetaCompressionRatioOriginal = "compression_ratio_original"
	MetaCompressionRatioPreview  = "compression_ratio_preview"
)

const (
	DefaultColormap = "viridis"
	MaxFrameLimit   = 10000
)

// RawSampleRow одна строка исходных данных: глубина и сырые отсчёты
type RawSampleRow struct {
	Depth   decimal.Decimal
	Samples []uint8
}

// FrameRecord хранимый кадр. После создания не изменяется.
type FrameRecord struct {
	ID           int64              `json:"id" db:"id"`
	Depth        decimal.Decimal    `json:"depth" db:"depth"`
	OriginalData []byte             `json:"-" db:"original_data"`
	PreviewData  []byte             `json:"-" db:"resized_data"`
	Metadata     map[string]float64 `json:"metadata" db:"metadata"`
}

// ResponseItem один кадр в ответе API
type ResponseItem struct {
	Depth    float64            `json:"depth"`
	Data     string             `json:"data"`
	Metadata map[string]float64 `json:"metadata"`
}

// Statistics сводная статистика по отсчётам кадра
type Statistics struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

func (s Statistics) AsMetadata() map[string]float64 {
	return map[string]float64{
		MetaMin:  s.Min,
		MetaMax:  s.Max,
		MetaMean: s.Mean,
		MetaStd:  s.Std,
	}
}

// FrameQuery параметры выборки кадров по диапазону глубин.
// Limit == 0 означает отсутствие ограничения.
type FrameQuery struct {
	DepthMin decimal.Decimal
	DepthMax decimal.Decimal
	Colormap string
	Limit    int
}

// Validate проверяет всё, кроме имени палитры: реестр палитр живёт в imaging,
// и имя проверяется на границе HTTP.
func (q FrameQuery) Validate() error {
	if q.DepthMin.IsNegative() || q.DepthMax.IsNegative() {
		return fmt.Errorf("%w: depth values must be non-negative", ErrValidation)
	}
	if q.DepthMin.GreaterThan(q.DepthMax) {
		return fmt.Errorf("%w: depth_min must be less than or equal to depth_max", ErrValidation)
	}
	if q.Limit < 0 || q.Limit > MaxFrameLimit {
		return fmt.Errorf("%w: limit must be between 0 and %d (0 means no limit)", ErrValidation, MaxFrameLimit)
	}
	return nil
}

// Readiness состояние хранилища для проб готовности
type Readiness struct {
	Connected   bool `json:"connected"`
	TablesExist bool `json:"tables_exist"`
}

func (r Readiness) Ready() bool {
	return r.Connected && r.TablesExist
}
