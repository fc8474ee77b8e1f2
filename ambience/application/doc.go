// Package application implementa o motor de áudio em camadas.
//
// O Engine mantém dois slots (base e layer). Cada troca de trilha abre uma nova
// instância em volume 0, faz fade-in até o volume alvo e, ao mesmo tempo,
// fade-out da instância antiga (crossfade). Antes do primeiro gesto do usuário
// nada toca: o último pedido fica pendente e é aplicado uma única vez em
// Interact.
//
// Todo fade é uma tarefa cancelável, uma por instância; um pedido novo cancela
// o fade em curso antes de começar o seu. Playback.Open roda sem o lock do
// motor; uma abertura que termina depois de um pedido mais novo é descartada.
package application
