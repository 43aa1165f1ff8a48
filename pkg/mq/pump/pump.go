package pump

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/breutil/go-common/pkg/datastructs/blockqueue"
	"github.com/breutil/go-common/pkg/settings"
)

// Pump drains a BlockQueue with a pool of worker goroutines and hands the
// items to a Consumer in batches.
//
// Behavior:
//   - Each worker blocks for one item, then tops the batch up with whatever
//     is already buffered. With Config.PopTimeout set it also lingers that
//     long for stragglers, so light traffic still forms fuller batches.
//   - Consume errors are logged and the batch is dropped; the pump keeps
//     running. Consumers needing retries or dead-lettering implement them
//     inside Consume.
//   - Run returns once the queue is closed and drained, or when the context
//     is canceled.
type Pump[T any] struct {
	queue *blockqueue.BlockQueue[T]
	cons  Consumer[T]
	cfg   Config
	log   *zap.Logger
}

// New creates a Pump draining queue into cons.
// A nil logger falls back to zap.NewNop.
func New[T any](queue *blockqueue.BlockQueue[T], cons Consumer[T], cfg Config, log *zap.Logger) *Pump[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pump[T]{
		queue: queue,
		cons:  cons,
		cfg:   cfg.withDefaults(),
		log:   log,
	}
}

// FromSettings builds a queue sized by the settings and a Pump draining it
// into cons. The queue is returned so producers can push to it.
func FromSettings[T any](qc settings.Queue, cons Consumer[T], log *zap.Logger) (*Pump[T], *blockqueue.BlockQueue[T]) {
	queue := blockqueue.New[T](qc.Capacity)
	return New(queue, cons, ConfigFrom(qc), log), queue
}

// Run starts the workers and blocks until all of them exit.
// It returns nil after a clean drain (queue closed and emptied) and the
// context error when canceled.
func (p *Pump[T]) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.cfg.Workers; i++ {
		worker := i
		g.Go(func() error {
			return p.drain(ctx, worker)
		})
	}
	return g.Wait()
}

// Stop closes the underlying queue. Workers finish the remaining items and
// Run returns. Safe to call more than once.
func (p *Pump[T]) Stop() {
	p.queue.Close()
}

func (p *Pump[T]) drain(ctx context.Context, worker int) error {
	batch := make([]T, 0, p.cfg.BatchSize)

	for {
		item, err := p.queue.PopContext(ctx)
		if err != nil {
			if errors.Is(err, blockqueue.ErrClosed) {
				p.log.Debug("pump worker drained", zap.Int("worker", worker))
				return nil
			}
			return err
		}

		batch = append(batch[:0], item)
		p.fill(&batch)

		if err := p.cons.Consume(batch); err != nil {
			p.log.Error("consume batch failed",
				zap.Int("worker", worker),
				zap.Int("batch_size", len(batch)),
				zap.Error(err))
		}
	}
}

// fill tops batch up to BatchSize. It takes whatever is already buffered,
// then, when PopTimeout is set, keeps waiting for stragglers until the
// linger budget runs out or the queue closes.
func (p *Pump[T]) fill(batch *[]T) {
	var deadline time.Time
	if p.cfg.PopTimeout > 0 {
		deadline = time.Now().Add(p.cfg.PopTimeout)
	}
	for len(*batch) < p.cfg.BatchSize {
		next, ok := p.queue.TryPop()
		if ok {
			*batch = append(*batch, next)
			continue
		}
		if p.cfg.PopTimeout <= 0 {
			return
		}
		wait := time.Until(deadline)
		if wait <= 0 {
			return
		}
		next, ok, err := p.queue.PopTimeout(wait)
		if err != nil || !ok {
			return
		}
		*batch = append(*batch, next)
	}
}
