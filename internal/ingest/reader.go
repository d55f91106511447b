package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yigitozgenc/image-api/internal/domain"

	"github.com/shopspring/decimal"
)

const depthColumn = "depth"

// Row строка источника. Err != nil, если строку не удалось разобрать; остальные строки это не затрагивает.
type Row struct {
	Number int
	Sample domain.RawSampleRow
	Err    error
}

// RowSource отдаёт строки по одной и io.EOF в конце
type RowSource interface {
	Next() (*Row, error)
}

// RowError ошибка разбора одной строки CSV
type RowError struct {
	Line  int
	Depth string
	Err   error
}

func (e *RowError) Error() string {
	if e.Depth == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d (depth=%s): %v", e.Line, e.Depth, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// CSVReader читает CSV с заголовком depth,col1..colN. Порядок колонок любой, лишние игнорируются.
type CSVReader struct {
	reader     *csv.Reader
	depthIndex int
	colIndexes []int
	rows       int
}

func NewCSVReader(r io.Reader, width int) (*CSVReader, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: width must be positive, got %d", domain.ErrValidation, width)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty CSV input", domain.ErrValidation)
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.ToLower(strings.TrimSpace(name))] = i
	}

	depthIndex, ok := positions[depthColumn]
	if !ok {
		return nil, fmt.Errorf("%w: missing column %q", domain.ErrValidation, depthColumn)
	}

	colIndexes := make([]int, width)
	for i := range colIndexes {
		name := "col" + strconv.Itoa(i+1)
		index, ok := positions[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", domain.ErrValidation, name)
		}
		colIndexes[i] = index
	}

	return &CSVReader{
		reader:     reader,
		depthIndex: depthIndex,
		colIndexes: colIndexes,
	}, nil
}

// Next возвращает следующую строку. Ошибка чтения самого потока возвращается вторым значением.
func (c *CSVReader) Next() (*Row, error) {
	record, err := c.reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}

	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		c.rows++
		return &Row{
			Number: c.rows,
			Err:    &RowError{Line: parseErr.StartLine, Err: fmt.Errorf("%w: %v", domain.ErrValidation, parseErr.Err)},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	c.rows++
	row := &Row{Number: c.rows}

	sample, err := c.parse(record)
	if err != nil {
		line, _ := c.reader.FieldPos(0)
		depth := ""
		if c.depthIndex < len(record) {
			depth = strings.TrimSpace(record[c.depthIndex])
		}
		row.Err = &RowError{Line: line, Depth: depth, Err: err}
		return row, nil
	}
	row.Sample = sample

	return row, nil
}

func (c *CSVReader) parse(record []string) (domain.RawSampleRow, error) {
	if c.depthIndex >= len(record) {
		return domain.RawSampleRow{}, fmt.Errorf("%w: missing depth value", domain.ErrValidation)
	}

	depth, err := decimal.NewFromString(strings.TrimSpace(record[c.depthIndex]))
	if err != nil {
		return domain.RawSampleRow{}, fmt.Errorf("%w: invalid depth %q", domain.ErrValidation, record[c.depthIndex])
	}

	samples := make([]uint8, len(c.colIndexes))
	for i, index := range c.colIndexes {
		if index >= len(record) {
			return domain.RawSampleRow{}, fmt.Errorf("%w: missing value for col%d", domain.ErrValidation, i+1)
		}

		value, err := strconv.Atoi(strings.TrimSpace(record[index]))
		if err != nil {
			return domain.RawSampleRow{}, fmt.Errorf("%w: col%d is not an integer: %q", domain.ErrValidation, i+1, record[index])
		}
		if value < 0 || value > 255 {
			return domain.RawSampleRow{}, fmt.Errorf("%w: col%d out of range 0..255: %d", domain.ErrValidation, i+1, value)
		}
		samples[i] = uint8(value)
	}

	return domain.RawSampleRow{Depth: depth, Samples: samples}, nil
}
