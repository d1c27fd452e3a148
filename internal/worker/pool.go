package worker

import (
	"context"
	"errors"
	"sync"

	"gestion-notas/internal/logger"

	"github.com/rs/zerolog"
)

// ErrPoolStopped is returned by Submit once Stop has been called.
var ErrPoolStopped = errors.New("worker pool stopped")

type Pool struct {
	workerCount int
	jobChan     chan func(context.Context) error
	quit        chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
	log         zerolog.Logger
}

func NewPool(workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		workerCount: workerCount,
		jobChan:     make(chan func(context.Context) error, workerCount*2),
		quit:        make(chan struct{}),
		log:         logger.Get(),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.log.Info().Int("worker_count", p.workerCount).Msg("Starting worker pool")

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop signals the workers via the quit channel and waits for them. The
// job channel is never closed: a concurrent blocked Submit must fail
// with ErrPoolStopped, not panic on a send to a closed channel.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.log.Info().Msg("Stopping worker pool")
		close(p.quit)
		p.wg.Wait()
		p.log.Info().Msg("Worker pool stopped")
	})
}

// Submit blocks until a worker frees up; an import job is never dropped
// once its message was taken off the queue.
func (p *Pool) Submit(ctx context.Context, job func(context.Context) error) error {
	select {
	case <-p.quit:
		// Checked up front so a buffered slot cannot accept work after
		// shutdown.
		return ErrPoolStopped
	default:
	}

	select {
	case p.jobChan <- job:
		return nil
	case <-p.quit:
		return ErrPoolStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	log := p.log.With().Int("worker_id", id).Logger()
	log.Debug().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Worker stopping due to context cancellation")
			return
		case <-p.quit:
			log.Debug().Msg("Worker stopping due to pool shutdown")
			return
		case job := <-p.jobChan:
			if err := job(ctx); err != nil {
				log.Error().Err(err).Msg("Job execution failed")
			}
		}
	}
}
