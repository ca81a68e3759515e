package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type captureDest struct {
	chunks [][]byte
}

func (c *captureDest) Write(p []byte) error {
	cp := make([]byte, len(p))
	copy(cp, p)
	c.chunks = append(c.chunks, cp)
	return nil
}

func TestFileSourceOneShot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stream.ts")
	want := []byte("hello transport stream")
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatal(err)
	}

	dest := &captureDest{}
	src := NewFileSource(path, false, zerolog.Nop())
	src.Connect(dest)
	if err := src.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !src.Completed() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !src.Completed() {
		t.Fatal("file source never completed")
	}

	var got []byte
	for _, c := range dest.chunks {
		got = append(got, c...)
	}
	if string(got) != string(want) {
		t.Errorf("got %q, want %q", got, want)
	}
	if src.Progress() != 1 {
		t.Errorf("Progress() = %v, want 1", src.Progress())
	}
	src.Destroy()
}
