package main

import "context"

// BlockingPool hands out a fixed set of preallocated objects. GetContext
// blocks until one is returned, which bounds how many frames are in flight.
type BlockingPool[T any] struct {
	pool chan T
}

func NewBlockingPool[T any](capacity int) BlockingPool[T] {
	return BlockingPool[T]{pool: make(chan T, capacity)}
}

func (p *BlockingPool[T]) Put(obj T) { p.pool <- obj }

// GetContext waits for a free object, giving up when ctx is canceled.
func (p *BlockingPool[T]) GetContext(ctx context.Context) (T, error) {
	select {
	case obj := <-p.pool:
		return obj, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// withContext forwards values from ch. The returned channel is closed once ch
// is closed, or at the first value received after ctx is canceled.
func withContext[T any](ctx context.Context, ch <-chan T) <-chan T {
	out := make(chan T, 1)

	go func() {
		defer close(out)
		for val := range ch {
			select {
			case out <- val:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
