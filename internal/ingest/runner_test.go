package ingest

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/yigitozgenc/image-api/internal/domain"
	"github.com/yigitozgenc/image-api/internal/pipeline"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testWidth        = 8
	testResizedWidth = 6
)

type sliceSource struct {
	rows []*Row
	next int
	err  error
}

func (s *sliceSource) Next() (*Row, error) {
	if s.next >= len(s.rows) {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	row := s.rows[s.next]
	s.next++
	return row, nil
}

type fakeSaver struct {
	mu      sync.Mutex
	calls   int
	failOn  map[int]bool
	batches [][]*domain.FrameRecord
}

func (f *fakeSaver) SaveFrames(ctx context.Context, frames []*domain.FrameRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.failOn[f.calls] {
		return errors.New("insert failed")
	}
	f.batches = append(f.batches, frames)
	return nil
}

func (f *fakeSaver) saved() []*domain.FrameRecord {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []*domain.FrameRecord
	for _, batch := range f.batches {
		all = append(all, batch...)
	}
	return all
}

func makeRows(n int) []*Row {
	rows := make([]*Row, n)
	for i := range rows {
		samples := make([]uint8, testWidth)
		for j := range samples {
			samples[j] = uint8(i * 10)
		}
		rows[i] = &Row{
			Number: i + 1,
			Sample: domain.RawSampleRow{
				Depth:   decimal.NewFromInt(int64(100 + i)),
				Samples: samples,
			},
		}
	}
	return rows
}

func newTestRunner(saver FrameSaver, workers, batchSize int) *Runner {
	builder := pipeline.NewIngester(testWidth, testResizedWidth, nil)
	return NewRunner(builder, saver, workers, batchSize, zap.NewNop())
}

func TestRunner_Run_IsolatesBadRows(t *testing.T) {
	rows := makeRows(10)
	rows[4].Sample.Samples = rows[4].Sample.Samples[:3]

	saver := &fakeSaver{}
	summary, err := newTestRunner(saver, 3, 4).Run(context.Background(), &sliceSource{rows: rows})

	require.NoError(t, err)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 10, summary.RowsRead)
	assert.Equal(t, 9, summary.Ingested)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 9, summary.Saved)
	assert.Equal(t, 3, summary.Batches)
	assert.Equal(t, 0, summary.BatchFailures)

	depths := make(map[string]bool)
	for _, frame := range saver.saved() {
		depths[frame.Depth.String()] = true
	}
	assert.Len(t, depths, 9)
	assert.False(t, depths["104"])
}

func TestRunner_Run_CountsUnparseableRows(t *testing.T) {
	rows := makeRows(3)
	rows = append(rows, &Row{Number: 4, Err: &RowError{Line: 5, Err: domain.ErrValidation}})

	summary, err := newTestRunner(&fakeSaver{}, 2, 100).Run(context.Background(), &sliceSource{rows: rows})

	require.NoError(t, err)
	assert.Equal(t, 4, summary.RowsRead)
	assert.Equal(t, 3, summary.Ingested)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 3, summary.Saved)
	assert.Equal(t, 1, summary.Batches)
}

func TestRunner_Run_BatchFailureDoesNotStopRun(t *testing.T) {
	saver := &fakeSaver{failOn: map[int]bool{1: true}}

	summary, err := newTestRunner(saver, 1, 4).Run(context.Background(), &sliceSource{rows: makeRows(9)})

	require.NoError(t, err)
	assert.Equal(t, 9, summary.Ingested)
	assert.Equal(t, 3, summary.Batches)
	assert.Equal(t, 1, summary.BatchFailures)
	assert.Equal(t, 5, summary.Saved)
	assert.Len(t, saver.saved(), 5)
}

func TestRunner_Run_EmptySource(t *testing.T) {
	saver := &fakeSaver{}

	summary, err := newTestRunner(saver, 4, 10).Run(context.Background(), &sliceSource{})

	require.NoError(t, err)
	assert.Equal(t, 0, summary.RowsRead)
	assert.Equal(t, 0, summary.Batches)
	assert.Equal(t, 0, saver.calls)
}

func TestRunner_Run_SourceError(t *testing.T) {
	sourceErr := errors.New("disk read failed")

	summary, err := newTestRunner(&fakeSaver{}, 2, 10).Run(context.Background(), &sliceSource{rows: makeRows(2), err: sourceErr})

	assert.ErrorIs(t, err, sourceErr)
	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.RowsRead)
	assert.Equal(t, 2, summary.Saved)
}

func TestRunner_Run_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newTestRunner(&fakeSaver{}, 2, 10).Run(ctx, &sliceSource{rows: makeRows(50)})

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Equal(t, 0, summary.Saved)
}

// gatedBuilder держит каждую строку до закрытия gate
type gatedBuilder struct {
	inner FrameBuilder
	gate  chan struct{}
}

func (g *gatedBuilder) Ingest(row domain.RawSampleRow) (*domain.FrameRecord, error) {
	<-g.gate
	return g.inner.Ingest(row)
}

// signallingSource закрывает reached, когда отдана строка номер at
type signallingSource struct {
	sliceSource
	at      int
	reached chan struct{}
}

func (s *signallingSource) Next() (*Row, error) {
	row, err := s.sliceSource.Next()
	if s.next == s.at && err == nil {
		close(s.reached)
	}
	return row, err
}

func TestRunner_Run_CancelAccountsBufferedRows(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gate := make(chan struct{})
	builder := &gatedBuilder{inner: pipeline.NewIngester(testWidth, testResizedWidth, nil), gate: gate}
	// один воркер занят первой строкой, вторая и третья в буфере, четвёртая ждёт отправки
	source := &signallingSource{sliceSource: sliceSource{rows: makeRows(20)}, at: 4, reached: make(chan struct{})}
	runner := NewRunner(builder, &fakeSaver{}, 1, 10, zap.NewNop())

	var (
		summary *Summary
		err     error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		summary, err = runner.Run(ctx, source)
	}()

	<-source.reached
	cancel()
	close(gate)
	<-done

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Equal(t, 4, summary.RowsRead)
	assert.Equal(t, summary.RowsRead, summary.Ingested+summary.Failed)
	assert.GreaterOrEqual(t, summary.Ingested, 1)
	assert.GreaterOrEqual(t, summary.Failed, 1)
}

func TestNewRunner_Defaults(t *testing.T) {
	runner := NewRunner(nil, nil, 0, 0, zap.NewNop())

	assert.Equal(t, 1, runner.workers)
	assert.Equal(t, DefaultBatchSize, runner.batchSize)
}
