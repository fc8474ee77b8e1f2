package domain

import "context"

// QuotaCounter guarda o contador global de uso diário.
//
// Day é a data de calendário (ex: "2026-10-17"). O contador volta a zero na
// primeira chamada com uma data diferente da armazenada (virada preguiçosa,
// sem timer).
type QuotaCounter interface {
	// Take consome uma unidade se count < limit. Quando a cota estourou,
	// retorna false e não incrementa.
	Take(ctx context.Context, day string, limit int) (bool, error)
	// Used retorna quantas unidades já foram consumidas em day.
	Used(ctx context.Context, day string) (int, error)
}
