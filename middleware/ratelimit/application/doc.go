// Package application contém os casos de uso para rate limit, cota diária e
// limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Decide(ctx, key) retorna uma Decision (allow/deny + retry-after)
// e QuotaService.Take(ctx) consome a cota global do dia corrente (UTC).
package application
