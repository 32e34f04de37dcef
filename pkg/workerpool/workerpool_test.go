package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAllItems(t *testing.T) {
	t.Parallel()

	var sum int64
	err := Process(context.Background(), 3, []int{1, 2, 3, 4, 5}, func(_ context.Context, v int) error {
		atomic.AddInt64(&sum, int64(v))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(15), sum)
}

func TestProcessStopsOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var processed int64
	err := Process(context.Background(), 2, []int{1, 2, 3, 4, 5, 6, 7, 8}, func(_ context.Context, v int) error {
		if v == 3 {
			return boom
		}
		atomic.AddInt64(&processed, 1)
		return nil
	})

	require.ErrorIs(t, err, boom)
	assert.Less(t, processed, int64(8), "error should stop remaining work")
}

func TestProcessCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Process(ctx, 2, []int{1, 2}, func(context.Context, int) error {
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestProcessEmptyItems(t *testing.T) {
	t.Parallel()

	err := Process(context.Background(), 4, nil, func(context.Context, int) error {
		t.Fatal("process should not be called")
		return nil
	})
	require.NoError(t, err)
}

func TestProcessSingleWorkerKeepsOrder(t *testing.T) {
	t.Parallel()

	var got []int
	err := Process(context.Background(), 1, []int{3, 1, 2}, func(_ context.Context, v int) error {
		got = append(got, v)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, got)
}
