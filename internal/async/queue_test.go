package async

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/certificate-verifier/constants"
	"github.com/joseph-ayodele/certificate-verifier/internal/common"
	"github.com/joseph-ayodele/certificate-verifier/internal/extract"
	"github.com/joseph-ayodele/certificate-verifier/internal/ocr"
)

type runFunc func(ctx context.Context, path string, kind constants.DocumentKind) (extract.Result, error)

func (f runFunc) Run(ctx context.Context, path string, kind constants.DocumentKind) (extract.Result, error) {
	return f(ctx, path, kind)
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestExtractionQueue_ReturnsResult(t *testing.T) {
	var gotID string
	q := NewExtractionQueue(runFunc(func(ctx context.Context, path string, kind constants.DocumentKind) (extract.Result, error) {
		gotID = common.RequestIDFromContext(ctx)
		return extract.Result{RawText: path + ":" + string(kind)}, nil
	}), discard(), WithWorkers(1))
	defer q.Shutdown(context.Background())

	ctx := common.WithRequestID(context.Background(), "req-1")
	res, err := q.Run(ctx, "a.pdf", constants.PDF)
	require.NoError(t, err)
	assert.Equal(t, "a.pdf:PDF", res.RawText)
	assert.Equal(t, "req-1", gotID, "context values reach the worker")
}

func TestExtractionQueue_PropagatesError(t *testing.T) {
	q := NewExtractionQueue(runFunc(func(context.Context, string, constants.DocumentKind) (extract.Result, error) {
		return extract.Result{}, &ocr.AcquisitionError{}
	}), discard())
	defer q.Shutdown(context.Background())

	_, err := q.Run(context.Background(), "blank.png", constants.IMAGE)
	assert.ErrorIs(t, err, ocr.ErrNoText)
}

func TestExtractionQueue_BoundsConcurrency(t *testing.T) {
	var running, peak int32
	q := NewExtractionQueue(runFunc(func(context.Context, string, constants.DocumentKind) (extract.Result, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return extract.Result{}, nil
	}), discard(), WithWorkers(2), WithQueueSize(1))
	defer q.Shutdown(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := q.Run(context.Background(), "x.pdf", constants.PDF)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.Positive(t, atomic.LoadInt32(&peak))
}

func TestExtractionQueue_ShutdownDrainsAndRejects(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var done int32
	q := NewExtractionQueue(runFunc(func(context.Context, string, constants.DocumentKind) (extract.Result, error) {
		close(started)
		<-release
		atomic.AddInt32(&done, 1)
		return extract.Result{}, nil
	}), discard(), WithWorkers(1))

	errs := make(chan error, 1)
	go func() {
		_, err := q.Run(context.Background(), "slow.pdf", constants.PDF)
		errs <- err
	}()
	<-started

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	q.Shutdown(context.Background())
	assert.EqualValues(t, 1, atomic.LoadInt32(&done), "in-flight job finished before shutdown returned")
	require.NoError(t, <-errs)

	_, err := q.Run(context.Background(), "late.pdf", constants.PDF)
	assert.ErrorIs(t, err, ErrQueueClosed)
}
