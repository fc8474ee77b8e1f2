// Package application implementa o fluxo de uma pergunta:
//
//	cota diária -> validação -> modelo (timeout) -> resposta ou fallback
//
// O rate limit por cliente acontece antes, no middleware HTTP. Falhas do modelo
// nunca viram erro para o cliente: são trocadas por uma das falas de reserva.
package application
