// Package domain define as portas de reprodução (Playback/Track), os dois slots
// de trilha e a tabela de volumes por padrão de URI.
package domain
