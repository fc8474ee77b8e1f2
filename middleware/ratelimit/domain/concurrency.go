package domain

import "context"

// SlotPool é uma capacidade finita: requisições em voo no servidor ou chamadas
// simultâneas ao modelo.
//
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar. O release
// devolvido deve ser chamado exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
	// InUse e Cap alimentam /api/stats.
	InUse() int
	Cap() int
}
