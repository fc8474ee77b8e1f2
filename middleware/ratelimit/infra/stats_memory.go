package infra

import (
	"context"
	"sync"

	"izakaya/middleware/ratelimit/domain"
)

type Counters struct {
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}

// StatsSnapshot é a cópia exposta em GET /api/stats.
type StatsSnapshot struct {
	Total    Counters            `json:"total"`
	ByRoute  map[string]Counters `json:"routes"`
	Outcomes map[string]int64    `json:"outcomes"`
}

// MemoryStatsStore é uma implementação simples em memória, usada quando o Redis
// de estatísticas não está habilitado.
//
// Não faz expiração.
type MemoryStatsStore struct {
	mu        sync.Mutex
	total     Counters
	byRoute   map[string]Counters
	byKey     map[string]Counters
	byOutcome map[string]int64

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byRoute:   make(map[string]Counters),
		byKey:     make(map[string]Counters),
		byOutcome: make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// eventos de desfecho não contam como decisão de rate limit
	if ev.Outcome != "" {
		s.byOutcome[ev.Outcome]++
		return nil
	}

	route := ev.Method + " " + ev.Path
	c := s.byRoute[route]
	k := s.byKey[string(ev.Key)]
	if ev.Allowed {
		s.total.Allowed++
		c.Allowed++
		k.Allowed++
	} else {
		s.total.Denied++
		c.Denied++
		k.Denied++
	}
	s.byRoute[route] = c
	if s.trackKeys {
		s.byKey[string(ev.Key)] = k
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByKey() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}

// Read implementa StatsReader.
func (s *MemoryStatsStore) Read(context.Context) (StatsSnapshot, error) {
	return s.Snapshot(), nil
}

func (s *MemoryStatsStore) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		Total:    s.total,
		ByRoute:  make(map[string]Counters, len(s.byRoute)),
		Outcomes: make(map[string]int64, len(s.byOutcome)),
	}
	for k, v := range s.byRoute {
		snap.ByRoute[k] = v
	}
	for k, v := range s.byOutcome {
		snap.Outcomes[k] = v
	}
	return snap
}
