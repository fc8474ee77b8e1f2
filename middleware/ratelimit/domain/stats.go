package domain

import (
	"context"
	"time"
)

// Outcomes registrados pelo endpoint de perguntas além de allow/deny.
const (
	OutcomeModel       = "model"
	OutcomeFallback    = "fallback"
	OutcomeRateLimited = "rate_limited"
	OutcomeInvalid     = "invalid"
	OutcomeError       = "error"
)

// StatsEvent representa um evento de decisão do rate limit ou o desfecho de uma
// pergunta.
//
// Ele é propositalmente "agnóstico de HTTP": Method/Path são strings genéricas.
// Outcome é opcional; o middleware de rate limit deixa vazio.
//
// Observação: cuidado com cardinalidade (ex.: salvar Key/Path sem controle pode
// explodir o número de chaves no Redis).
type StatsEvent struct {
	Key     Key
	Allowed bool
	Outcome string

	Method string
	Path   string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas.
//
// O chamador deve tratar erro como best-effort (não derrubar request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
