package application

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"izakaya/answer/domain"

	"github.com/rs/zerolog"
)

const DefaultUpstreamTimeout = 15 * time.Second

// Service responde perguntas já liberadas pelo rate limit por cliente.
type Service struct {
	Quota    domain.Quota
	Upstream domain.Completer
	// Slots, quando definido, limita chamadas simultâneas ao modelo; sem vaga
	// a resposta vira fallback.
	Slots     domain.Slots
	Validator Validator
	Timeout   time.Duration
	// Pick escolhe um índice em [0, n). Padrão: math/rand/v2.
	Pick func(n int) int
	Log  zerolog.Logger
}

// Answer executa cota -> validação -> modelo. O erro retornado é
// *domain.ValidationError (400) ou um erro inesperado (500); falhas do modelo
// viram SourceFallback.
func (s Service) Answer(ctx context.Context, question string) (domain.Result, error) {
	if res, ok := s.Admit(ctx); !ok {
		return res, nil
	}
	return s.Reply(ctx, question)
}

// Admit consome uma unidade da cota diária. Com a cota esgotada devolve a
// resposta de limite e false. Roda antes de ler o corpo da requisição, então
// um corpo inválido também conta.
func (s Service) Admit(ctx context.Context) (domain.Result, bool) {
	if s.Quota == nil {
		return domain.Result{}, true
	}
	ok, err := s.Quota.Take(ctx)
	switch {
	case err != nil:
		// contador indisponível: segue sem cota em vez de derrubar a conversa
		Logger(ctx, s.Log).Warn().Err(err).Msg("daily quota check failed; continuing")
	case !ok:
		Logger(ctx, s.Log).Info().Msg("daily limit reached, using flavour response")
		return domain.Result{Answer: s.pick(DailyLimitLines), Source: domain.SourceRateLimited}, false
	}
	return domain.Result{}, true
}

// Reply valida a pergunta e consulta o modelo, sem passar pela cota.
func (s Service) Reply(ctx context.Context, question string) (domain.Result, error) {
	if err := s.Validator.Validate(question); err != nil {
		return domain.Result{}, err
	}

	log := Logger(ctx, s.Log)
	log.Debug().Int("question_chars", len([]rune(question))).Msg("generating answer")

	text, err := s.complete(ctx, question)
	if err != nil {
		log.Warn().Err(err).Msg("upstream failed, using fallback")
		return domain.Result{Answer: s.pick(FallbackLines), Source: domain.SourceFallback}, nil
	}
	return domain.Result{Answer: text, Source: domain.SourceModel}, nil
}

// Logger devolve o logger da requisição (zerolog.Ctx) ou fallback quando o
// contexto não carrega um.
func Logger(ctx context.Context, fallback zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &fallback
}

var (
	errNoUpstream   = errors.New("no upstream configured")
	errUpstreamBusy = errors.New("upstream busy")
)

func (s Service) complete(ctx context.Context, question string) (string, error) {
	if s.Upstream == nil {
		return "", errNoUpstream
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultUpstreamTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if s.Slots != nil {
		release, ok := s.Slots.Acquire(ctx)
		if !ok {
			return "", errUpstreamBusy
		}
		defer release()
	}

	text, err := s.Upstream.Complete(ctx, SystemPrompt, question)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty completion")
	}
	return text, nil
}

func (s Service) pick(lines []string) string {
	pick := s.Pick
	if pick == nil {
		pick = rand.IntN
	}
	return lines[pick(len(lines))]
}
