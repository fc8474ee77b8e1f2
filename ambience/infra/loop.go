package infra

import (
	"io"
	"sync/atomic"
)

// loopReader entrega o clip em loop infinito para o player do oto. O total de
// bytes entregues é atômico porque Position é lido de outra goroutine.
type loopReader struct {
	pcm  []byte
	pos  int
	read atomic.Int64
}

func (r *loopReader) Read(p []byte) (int, error) {
	if len(r.pcm) == 0 {
		return 0, io.EOF
	}
	n := 0
	for n < len(p) {
		c := copy(p[n:], r.pcm[r.pos:])
		n += c
		r.pos += c
		if r.pos >= len(r.pcm) {
			r.pos = 0
		}
	}
	r.read.Add(int64(n))
	return n, nil
}

// position é a posição audível dentro do loop: bytes entregues menos os que
// ainda estão no buffer do player.
func (r *loopReader) position(unplayed int) int64 {
	if len(r.pcm) == 0 {
		return 0
	}
	played := r.read.Load() - int64(unplayed)
	if played < 0 {
		played = 0
	}
	return played % int64(len(r.pcm))
}
