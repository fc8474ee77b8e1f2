// Package domain define os tipos do endpoint de perguntas: a origem da resposta,
// o resultado devolvido ao cliente, o erro de validação e a porta para o modelo
// de linguagem externo.
package domain
