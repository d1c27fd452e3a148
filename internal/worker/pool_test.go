package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ExecutesSubmittedJobs(t *testing.T) {
	ctx := context.Background()
	p := NewPool(3)
	p.Start(ctx)
	defer p.Stop()

	var done sync.WaitGroup
	var executed int64
	for i := 0; i < 5; i++ {
		done.Add(1)
		err := p.Submit(ctx, func(context.Context) error {
			atomic.AddInt64(&executed, 1)
			done.Done()
			return nil
		})
		require.NoError(t, err)
	}

	done.Wait()
	assert.Equal(t, int64(5), atomic.LoadInt64(&executed))
}

func TestPool_SubmitAfterStop(t *testing.T) {
	ctx := context.Background()
	p := NewPool(1)
	p.Start(ctx)
	p.Stop()

	err := p.Submit(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrPoolStopped)
}

func TestPool_StopIsIdempotent(t *testing.T) {
	p := NewPool(1)
	p.Start(context.Background())

	p.Stop()
	p.Stop()
}

func TestPool_ConcurrentSubmitAndStop(t *testing.T) {
	ctx := context.Background()
	p := NewPool(1)
	p.Start(ctx)

	// A producer mid-Submit while the pool shuts down must get
	// ErrPoolStopped back, not a send on a closed channel.
	producerDone := make(chan struct{})
	go func() {
		defer close(producerDone)
		for i := 0; i < 100; i++ {
			if err := p.Submit(ctx, func(context.Context) error {
				time.Sleep(time.Millisecond)
				return nil
			}); err != nil {
				assert.ErrorIs(t, err, ErrPoolStopped)
				return
			}
		}
	}()

	time.Sleep(5 * time.Millisecond)
	p.Stop()

	select {
	case <-producerDone:
	case <-time.After(5 * time.Second):
		t.Fatal("producer still blocked after pool stop")
	}
}
