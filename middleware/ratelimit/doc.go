// Package ratelimit fornece adapters HTTP (net/http) para rate limit e limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, cota diária, acquire/timeout) sem net/http
//   - infra: implementações concretas (token bucket, janela deslizante, Redis, semáforo)
//   - ratelimit (este pacote): middlewares HTTP + extração de chave + tradução para status/headers
//
// Fluxo no servidor:
//
//  1. Extrai a chave do cliente (IP/header/XFF/X-Real-IP)
//  2. Chama a camada application para obter a decisão
//  3. Se bloqueado, responde 429 (rate limit) ou 503 (concorrência)
//  4. Se permitido, chama o próximo handler
//
// O servidor usa duas instâncias de Middleware: uma de borda (token bucket, todas as
// rotas) e outra só para POST /api/generate-answer (janela deslizante de 5/min).
package ratelimit
