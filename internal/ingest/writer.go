package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/yigitozgenc/image-api/internal/domain"
)

// CSVWriter пишет строки в формате, который читает CSVReader
type CSVWriter struct {
	writer *csv.Writer
	width  int
	record []string
}

func NewCSVWriter(w io.Writer, width int) (*CSVWriter, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: width must be positive, got %d", domain.ErrValidation, width)
	}

	header := make([]string, width+1)
	header[0] = depthColumn
	for i := 1; i <= width; i++ {
		header[i] = "col" + strconv.Itoa(i)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	return &CSVWriter{
		writer: writer,
		width:  width,
		record: make([]string, width+1),
	}, nil
}

func (c *CSVWriter) Write(row domain.RawSampleRow) error {
	if len(row.Samples) != c.width {
		return fmt.Errorf("%w: expected %d samples, got %d", domain.ErrValidation, c.width, len(row.Samples))
	}

	c.record[0] = row.Depth.StringFixed(2)
	for i, sample := range row.Samples {
		c.record[i+1] = strconv.Itoa(int(sample))
	}

	if err := c.writer.Write(c.record); err != nil {
		return fmt.Errorf("failed to write CSV row depth=%s: %w", row.Depth.String(), err)
	}
	return nil
}

func (c *CSVWriter) Flush() error {
	c.writer.Flush()
	return c.writer.Error()
}
