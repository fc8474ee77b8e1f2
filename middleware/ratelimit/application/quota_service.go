package application

import (
	"context"
	"time"

	"izakaya/middleware/ratelimit/domain"
)

const DayLayout = "2006-01-02"

// QuotaService aplica a cota diária global sobre um domain.QuotaCounter.
//
// A data é sempre calculada em UTC, para que réplicas em fusos diferentes
// concordem sobre a virada do dia.
type QuotaService struct {
	Counter domain.QuotaCounter
	Limit   int
	Now     func() time.Time
}

// Day retorna a chave de data usada pelo contador para o instante t.
func Day(t time.Time) string { return t.UTC().Format(DayLayout) }

func (s QuotaService) today() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return Day(now())
}

// Take retorna true e consome uma unidade se ainda houver cota hoje.
// Sem contador ou com Limit <= 0 a cota é ilimitada.
func (s QuotaService) Take(ctx context.Context) (bool, error) {
	if s.Counter == nil || s.Limit <= 0 {
		return true, nil
	}
	return s.Counter.Take(ctx, s.today(), s.Limit)
}

// Usage retorna (dia, usado, limite) para exibição.
func (s QuotaService) Usage(ctx context.Context) (string, int, int, error) {
	day := s.today()
	if s.Counter == nil {
		return day, 0, s.Limit, nil
	}
	used, err := s.Counter.Used(ctx, day)
	return day, used, s.Limit, err
}
