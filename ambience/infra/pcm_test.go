package infra

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

func wavBytes(t *testing.T, channels, bits, rate int, data []byte, extra bool) []byte {
	t.Helper()
	var b bytes.Buffer
	w := func(v any) {
		if err := binary.Write(&b, binary.LittleEndian, v); err != nil {
			t.Fatal(err)
		}
	}
	b.WriteString("RIFF")
	w(uint32(0))
	b.WriteString("WAVE")
	if extra {
		b.WriteString("LIST")
		w(uint32(4))
		b.Write([]byte{1, 2, 3, 4})
	}
	b.WriteString("fmt ")
	w(uint32(16))
	w(uint16(1))
	w(uint16(channels))
	w(uint32(rate))
	w(uint32(rate * channels * bits / 8))
	w(uint16(channels * bits / 8))
	w(uint16(bits))
	b.WriteString("data")
	w(uint32(len(data)))
	b.Write(data)
	return b.Bytes()
}

func samples16(v ...int16) []byte {
	out := make([]byte, 2*len(v))
	for i, s := range v {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

func decodeBytes(b []byte, ext string) ([]byte, error) {
	return decode(bytes.NewReader(b), int64(len(b)), ext)
}

func TestDecodeWAV_StereoPassThrough(t *testing.T) {
	data := samples16(100, -100, 200, -200)
	pcm, err := decodeBytes(wavBytes(t, 2, 16, SampleRate, data, true), ".wav")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !bytes.Equal(pcm, data) {
		t.Fatalf("pcm=%v", pcm)
	}
}

func TestDecodeWAV_MonoIsDuplicated(t *testing.T) {
	pcm, err := decodeBytes(wavBytes(t, 1, 16, SampleRate, samples16(7, -9), false), ".wav")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if want := samples16(7, 7, -9, -9); !bytes.Equal(pcm, want) {
		t.Fatalf("pcm=%v want=%v", pcm, want)
	}
}

func TestDecodeWAV_EightBit(t *testing.T) {
	pcm, err := decodeBytes(wavBytes(t, 1, 8, SampleRate, []byte{128, 255, 0}, false), ".wav")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	// 8-bit é unsigned: 0 vira o mínimo e 255 o máximo
	if want := samples16(128, 128, 32767, 32767, -32768, -32768); !bytes.Equal(pcm, want) {
		t.Fatalf("pcm=%v want=%v", pcm, want)
	}
}

func TestDecodeWAV_ResamplesToOutputRate(t *testing.T) {
	data := make([]byte, 100*2) // 100 frames mono
	pcm, err := decodeBytes(wavBytes(t, 1, 16, SampleRate/2, data, false), ".wav")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	// 100 frames a 22.05 kHz viram 200 frames estéreo a 44.1 kHz
	if len(pcm) != 200*frameBytes {
		t.Fatalf("len=%d", len(pcm))
	}
}

func TestDecodeWAV_Rejects(t *testing.T) {
	if _, err := decodeBytes([]byte("not a wav file at all"), ".wav"); err == nil {
		t.Fatalf("esperava erro para arquivo inválido")
	}
	if _, err := decodeBytes(wavBytes(t, 2, 24, SampleRate, make([]byte, 12), false), ".wav"); err == nil {
		t.Fatalf("esperava erro para 24-bit")
	}
}

func TestDecodeWAV_ChunkLargerThanFile(t *testing.T) {
	var b bytes.Buffer
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, uint32(0))
	b.WriteString("WAVE")
	b.WriteString("LIST")
	// ~4 GiB declarados num arquivo de poucos bytes
	_ = binary.Write(&b, binary.LittleEndian, uint32(0xFFFFFFF0))
	b.Write([]byte{1, 2, 3, 4})

	if _, err := decodeBytes(b.Bytes(), ".wav"); !errors.Is(err, ErrCorruptWAV) {
		t.Fatalf("err=%v", err)
	}
}

func TestDecode_LimitsAndFormats(t *testing.T) {
	if _, err := decode(bytes.NewReader(nil), maxAssetBytes+1, ".wav"); !errors.Is(err, ErrAssetTooLarge) {
		t.Fatalf("err=%v", err)
	}
	if _, err := decodeBytes([]byte("OggS"), ".ogg"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err=%v", err)
	}
	if _, err := decodeBytes([]byte("definitely not mpeg"), ".mp3"); err == nil {
		t.Fatalf("esperava erro para mp3 inválido")
	}
}

func TestBytesToDuration(t *testing.T) {
	if d := bytesToDuration(SampleRate * frameBytes); d != time.Second {
		t.Fatalf("d=%v", d)
	}
}
