package ratelimit

import (
	"net/http"
	"time"

	"izakaya/middleware/ratelimit/application"
	"izakaya/middleware/ratelimit/domain"
	"izakaya/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	Max int
	// Pool permite compartilhar as vagas (ex: para expor em /api/stats).
	// Quando nil, um semáforo com Max vagas é criado.
	Pool           domain.SlotPool
	RejectStatus   int
	AcquireTimeout time.Duration
	OnReject       RejectFunc
}

// ConcurrencyMiddleware limita quantas requisições rodam ao mesmo tempo.
// Max <= 0 sem Pool desliga o limite.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Pool == nil {
		if opts.Max <= 0 {
			return func(next http.Handler) http.Handler { return next }
		}
		opts.Pool = infra.NewSemaphorePool(opts.Max)
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.OnReject == nil {
		opts.OnReject = func(w http.ResponseWriter, _ *http.Request, status int) {
			http.Error(w, http.StatusText(status), status)
		}
	}

	svc := application.ConcurrencyService{Pool: opts.Pool, AcquireTimeout: opts.AcquireTimeout}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				opts.OnReject(w, r, opts.RejectStatus)
				return
			}
			defer release()
			next.ServeHTTP(w, r)
		})
	}
}
