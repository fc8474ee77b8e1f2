package infra

import (
	"context"
	"sync"
	"time"

	"izakaya/middleware/ratelimit/domain"
)

// WindowStore é uma janela deslizante em memória: guarda os instantes das
// requisições aceitas de cada chave dentro da janela e poda os antigos a cada
// verificação.
//
// Invariante: depois da poda, len(timestamps) <= max. Uma requisição que
// estouraria o limite é rejeitada e não é registrada.
type WindowStore struct {
	mu      sync.Mutex
	entries map[string][]time.Time
	max     int
	window  time.Duration
	now     func() time.Time

	cleanupEvery time.Duration
}

type WindowOption func(*WindowStore)

// WithWindowClock troca o relógio (útil em testes).
func WithWindowClock(now func() time.Time) WindowOption {
	return func(s *WindowStore) { s.now = now }
}

func WithWindowCleanupEvery(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.cleanupEvery = d }
}

func NewWindowStore(max int, window time.Duration, opts ...WindowOption) *WindowStore {
	s := &WindowStore{
		entries:      make(map[string][]time.Time),
		max:          max,
		window:       window,
		now:          time.Now,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *WindowStore) Max() int               { return s.max }
func (s *WindowStore) Window() time.Duration { return s.window }

// Get implementa domain.LimiterStore.
func (s *WindowStore) Get(key domain.Key) domain.Limiter {
	return windowLimiter{store: s, key: string(key)}
}

func (s *WindowStore) allow(key string) bool {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	recent := prune(s.entries[key], now, s.window)
	if len(recent) >= s.max {
		s.entries[key] = recent
		return false
	}
	s.entries[key] = append(recent, now)
	return true
}

// Len retorna quantas requisições de key ainda estão dentro da janela.
func (s *WindowStore) Len(key domain.Key) int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	return len(prune(s.entries[string(key)], now, s.window))
}

// Cleanup remove chaves sem nenhuma requisição dentro da janela. Sem ele o mapa
// cresce com cada cliente distinto visto desde o início do processo.
func (s *WindowStore) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ts := range s.entries {
		recent := prune(ts, now, s.window)
		if len(recent) == 0 {
			delete(s.entries, k)
			continue
		}
		s.entries[k] = recent
	}
}

func (s *WindowStore) StartJanitor(ctx DoneContext) {
	startJanitor(ctx, s.cleanupEvery, s.Cleanup)
}

// prune mantém apenas os instantes t com now - t < window. ts está em ordem
// crescente, então basta achar o primeiro ainda válido.
func prune(ts []time.Time, now time.Time, window time.Duration) []time.Time {
	i := 0
	for i < len(ts) && now.Sub(ts[i]) >= window {
		i++
	}
	if i == 0 {
		return ts
	}
	out := make([]time.Time, len(ts)-i)
	copy(out, ts[i:])
	return out
}

type windowLimiter struct {
	store *WindowStore
	key   string
}

func (w windowLimiter) Allow(context.Context) bool { return w.store.allow(w.key) }
