package infra

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestResolve_StaysInsideRoot(t *testing.T) {
	p := &OtoPlayback{root: "/srv/sounds"}
	cases := []struct{ uri, want string }{
		{"/sounds/click.wav", "/srv/sounds/click.wav"},
		{"/sounds/ambient/a.mp3", "/srv/sounds/ambient/a.mp3"},
		{"/sounds/../../etc/passwd", "/srv/sounds/etc/passwd"},
		{"type.wav", "/srv/sounds/type.wav"},
	}
	for _, tc := range cases {
		if got := p.resolve(tc.uri); got != filepath.FromSlash(tc.want) {
			t.Fatalf("%s => %s, want %s", tc.uri, got, tc.want)
		}
	}
}

// load e o cache não precisam do dispositivo de áudio.
func TestLoad_CachesDecodedClip(t *testing.T) {
	dir := t.TempDir()
	data := wavBytes(t, 2, 16, SampleRate, samples16(1, 2, 3, 4), false)
	if err := os.WriteFile(filepath.Join(dir, "click.wav"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	p := &OtoPlayback{root: dir, log: zerolog.Nop(), cache: make(map[string]*clip)}

	c1, err := p.load("/sounds/click.wav")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	c2, _ := p.load("/sounds/click.wav")
	if c1 != c2 || len(c1.pcm) != 8 {
		t.Fatalf("cache falhou: %p %p len=%d", c1, c2, len(c1.pcm))
	}

	if _, err := p.load("/sounds/missing.wav"); err == nil {
		t.Fatalf("esperava erro de arquivo ausente")
	}

	if err := os.WriteFile(filepath.Join(dir, "x.ogg"), []byte("OggS"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := p.load("/sounds/x.ogg"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err=%v", err)
	}
}

func TestPreload_DecodesAllOrFails(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.wav", "b.wav"} {
		data := wavBytes(t, 1, 16, SampleRate, samples16(5, 6), false)
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	p := &OtoPlayback{root: dir, log: zerolog.Nop(), cache: make(map[string]*clip)}

	if err := p.Preload(context.Background(), "/sounds/a.wav", "", "/sounds/b.wav"); err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(p.cache) != 2 {
		t.Fatalf("cache=%d", len(p.cache))
	}
	if err := p.Preload(context.Background(), "/sounds/a.wav", "/sounds/nope.wav"); err == nil {
		t.Fatalf("esperava erro")
	}
}
