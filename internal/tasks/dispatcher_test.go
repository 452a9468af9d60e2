package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDispatcherRunsTasks(t *testing.T) {
	d := NewDispatcher(time.Second)

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		d.Go("test.increment", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Drain(ctx))
	require.Equal(t, int32(5), ran.Load())
}

func TestDispatcherSurvivesFailureAndPanic(t *testing.T) {
	d := NewDispatcher(time.Second)

	d.Go("test.fail", func(ctx context.Context) error {
		return errors.New("boom")
	})
	d.Go("test.panic", func(ctx context.Context) error {
		panic("boom")
	})

	var ran atomic.Bool
	d.Go("test.after", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Drain(ctx))
	require.True(t, ran.Load())
}

func TestDrainHonorsContext(t *testing.T) {
	d := NewDispatcher(time.Minute)

	release := make(chan struct{})
	d.Go("test.slow", func(ctx context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, d.Drain(ctx), context.DeadlineExceeded)

	close(release)
}
