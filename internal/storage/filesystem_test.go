package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteCreatesDirectoryOnDemand(t *testing.T) {
	base := filepath.Join(t.TempDir(), "videos")
	store := NewFileStore(base)

	name, err := store.Write("veo31_123.mp4", []byte("payload"))
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if name != "veo31_123.mp4" {
		t.Fatalf("name = %q", name)
	}
	data, err := os.ReadFile(filepath.Join(base, name))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("payload mismatch: %q", data)
	}
}

func TestWriteRejectsTraversal(t *testing.T) {
	store := NewFileStore(t.TempDir())
	for _, name := range []string{"", "../escape.mp4", "..", "a/../../b.mp4"} {
		if _, err := store.Write(name, []byte("x")); err == nil {
			t.Fatalf("Write(%q) should fail", name)
		}
	}
}

func TestWriteNormalizesLeadingSlash(t *testing.T) {
	store := NewFileStore(t.TempDir())
	name, err := store.Write("/sora2_1.mp4", []byte("x"))
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if name != "sora2_1.mp4" {
		t.Fatalf("name = %q", name)
	}
}
