package infra

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

const (
	SampleRate   = 44100
	ChannelCount = 2
	// bytes por frame: 2 canais x 16 bits
	frameBytes = 4

	// maxAssetBytes limita o arquivo em disco; maxPCMBytes o áudio decodificado
	// (~50 min a 44.1 kHz estéreo).
	maxAssetBytes = 64 << 20
	maxPCMBytes   = 512 << 20
)

var (
	ErrUnsupportedFormat = errors.New("audio: unsupported file format")
	ErrAssetTooLarge     = errors.New("audio: asset too large")
	ErrCorruptWAV        = errors.New("wav: chunk larger than file")
)

// clip é áudio já decodificado em PCM 16-bit LE estéreo a SampleRate.
type clip struct {
	pcm []byte
}

func (c *clip) duration() time.Duration {
	return bytesToDuration(int64(len(c.pcm)))
}

func bytesToDuration(n int64) time.Duration {
	frames := n / frameBytes
	return time.Duration(frames) * time.Second / SampleRate
}

// decode devolve PCM 16-bit estéreo já reamostrado para SampleRate. src
// precisa de Seek: o resampling do ebiten relê a fonte. size é o tamanho do
// arquivo.
func decode(src io.ReadSeeker, size int64, ext string) ([]byte, error) {
	if size > maxAssetBytes {
		return nil, ErrAssetTooLarge
	}

	var stream io.Reader
	switch ext {
	case ".mp3":
		s, err := mp3.DecodeWithSampleRate(SampleRate, src)
		if err != nil {
			return nil, err
		}
		stream = s
	case ".wav":
		if err := checkWAVChunks(src, size); err != nil {
			return nil, err
		}
		s, err := wav.DecodeWithSampleRate(SampleRate, src)
		if err != nil {
			return nil, err
		}
		stream = s
	default:
		return nil, ErrUnsupportedFormat
	}

	pcm, err := io.ReadAll(io.LimitReader(stream, maxPCMBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read pcm: %w", err)
	}
	if len(pcm) > maxPCMBytes {
		return nil, ErrAssetTooLarge
	}
	return pcm[:len(pcm)/frameBytes*frameBytes], nil
}

// checkWAVChunks confere que nenhum chunk antes de "data" declara mais bytes
// do que o arquivo tem. O decoder aloca esses chunks pelo tamanho do
// cabeçalho; "data" é lido em stream e pode vir truncado.
func checkWAVChunks(r io.ReadSeeker, size int64) error {
	var hdr [8]byte
	pos := int64(12) // RIFF + tamanho + WAVE
	for {
		if _, err := r.Seek(pos, io.SeekStart); err != nil {
			return err
		}
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return fmt.Errorf("wav: missing data chunk: %w", err)
		}
		if string(hdr[0:4]) == "data" {
			break
		}
		pos += 8 + int64(binary.LittleEndian.Uint32(hdr[4:8]))
		if pos > size {
			return ErrCorruptWAV
		}
	}
	_, err := r.Seek(0, io.SeekStart)
	return err
}
