package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

type Key string

// Limiter decide se uma ação é permitida agora para uma chave já resolvida.
//
// A implementação pode ser token-bucket (x/time/rate), janela deslizante em
// memória ou janela deslizante no Redis. Quando bloqueia, a tentativa não é
// registrada.
type Limiter interface {
	Allow(ctx context.Context) bool
}

// LimiterStore obtém um limiter por chave (ex: IP, API key, "unknown").
type LimiterStore interface {
	Get(Key) Limiter
}

type Decision struct {
	Allowed bool
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
