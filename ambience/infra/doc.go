// Package infra é o backend de áudio do motor: saída via oto v2, mp3 e wav
// decodificados pelos pacotes audio/mp3 e audio/wav do ebiten (sem contexto de
// áudio do ebiten). Todo áudio vira PCM 16-bit estéreo a 44.1 kHz e fica em
// cache por URI.
package infra
