package domain

import "context"

// Source diz de onde veio o texto devolvido ao cliente.
type Source string

const (
	SourceModel       Source = "model"
	SourceFallback    Source = "fallback"
	SourceRateLimited Source = "rate_limited"
)

type Result struct {
	Answer string `json:"answer"`
	Source Source `json:"source"`
}

// Completer é a porta para o provedor de chat-completion.
//
// Uma única tentativa por chamada; o chamador controla o timeout pelo ctx.
type Completer interface {
	Complete(ctx context.Context, system, question string) (string, error)
}

// Quota consome a cota diária global. Implementado por
// ratelimit/application.QuotaService.
type Quota interface {
	Take(ctx context.Context) (bool, error)
}

// Slots limita chamadas simultâneas ao modelo. Implementado por
// ratelimit/application.ConcurrencyService.
type Slots interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}

// ValidationError é uma pergunta rejeitada antes de chegar ao modelo (HTTP 400).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }
