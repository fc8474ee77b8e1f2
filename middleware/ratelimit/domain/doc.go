// Package domain define contratos e tipos de domínio para rate limit, cota diária
// e concorrência.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar as regras do
// endpoint de perguntas dos detalhes de infraestrutura (memória, Redis).
package domain
