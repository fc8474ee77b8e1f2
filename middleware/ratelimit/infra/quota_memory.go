package infra

import (
	"context"
	"sync"
)

// MemoryQuotaCounter é o contador diário global local ao processo.
type MemoryQuotaCounter struct {
	mu    sync.Mutex
	day   string
	count int
}

func NewMemoryQuotaCounter() *MemoryQuotaCounter {
	return &MemoryQuotaCounter{}
}

func (c *MemoryQuotaCounter) Take(_ context.Context, day string, limit int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.day != day {
		c.day = day
		c.count = 0
	}
	if c.count >= limit {
		return false, nil
	}
	c.count++
	return true, nil
}

func (c *MemoryQuotaCounter) Used(_ context.Context, day string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.day != day {
		return 0, nil
	}
	return c.count, nil
}
