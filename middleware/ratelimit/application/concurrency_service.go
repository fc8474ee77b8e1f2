package application

import (
	"context"
	"time"

	"izakaya/middleware/ratelimit/domain"
)

// ConcurrencyService aplica o timeout de espera sobre um SlotPool. É usado pelo
// middleware HTTP e, do lado do answer, para limitar chamadas ao modelo.
type ConcurrencyService struct {
	Pool domain.SlotPool
	// AcquireTimeout <= 0 espera até o ctx cancelar.
	AcquireTimeout time.Duration
}

// Acquire retorna (release, ok). Sem Pool tudo passa; ok=false não adquiriu nada.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), bool) {
	if s.Pool == nil {
		return func() {}, true
	}
	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}
	return s.Pool.Acquire(ctx)
}

// InFlight informa (em uso, capacidade). Sem Pool devolve (0, 0).
func (s ConcurrencyService) InFlight() (int, int) {
	if s.Pool == nil {
		return 0, 0
	}
	return s.Pool.InUse(), s.Pool.Cap()
}
