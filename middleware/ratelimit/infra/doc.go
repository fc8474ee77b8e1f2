// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - Store: token bucket por chave usando golang.org/x/time/rate (borda)
//   - WindowStore / RedisWindowStore: janela deslizante por cliente
//   - MemoryQuotaCounter / RedisQuotaCounter: cota diária global
//   - MemoryStatsStore / RedisStatsStore: estatísticas best-effort
//   - SemaphorePool: vagas de concorrência (servidor e chamadas ao modelo)
//
// As variantes em memória são locais ao processo; com várias réplicas cada uma
// tem seus próprios contadores. As variantes Redis são opt-in.
package infra
