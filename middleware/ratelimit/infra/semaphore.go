package infra

import (
	"context"
	"sync"
	"sync/atomic"

	"izakaya/middleware/ratelimit/domain"

	"golang.org/x/sync/semaphore"
)

type semaphorePool struct {
	sem   *semaphore.Weighted
	max   int
	inUse atomic.Int64
}

// NewSemaphorePool cria um SlotPool com `max` vagas sobre semaphore.Weighted.
func NewSemaphorePool(max int) domain.SlotPool {
	if max < 1 {
		max = 1
	}
	return &semaphorePool{sem: semaphore.NewWeighted(int64(max)), max: max}
}

func (p *semaphorePool) Acquire(ctx context.Context) (func(), bool) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, false
	}
	p.inUse.Add(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.inUse.Add(-1)
			p.sem.Release(1)
		})
	}, true
}

func (p *semaphorePool) InUse() int { return int(p.inUse.Load()) }
func (p *semaphorePool) Cap() int   { return p.max }
