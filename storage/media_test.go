package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"testing"
)

func TestSaveEvidenceFileStreamsAndHashes(t *testing.T) {
	t.Setenv("MEDIA_ROOT", t.TempDir())
	InitializeMedia()

	content := bytes.Repeat([]byte("evidence bytes "), 4096)
	ref, hash, err := SaveEvidenceFile("doc firmado.pdf", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	sum := sha256.Sum256(content)
	if hash != hex.EncodeToString(sum[:]) {
		t.Errorf("hash = %s, want digest of the exact bytes", hash)
	}

	// The stored bytes are exactly what was hashed.
	f, err := OpenEvidenceFile(ref)
	if err != nil {
		t.Fatalf("open %s: %v", ref, err)
	}
	defer f.Close()
	stored, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(stored, content) {
		t.Error("stored bytes differ from input")
	}
}

func TestSaveEvidenceFileRefsNeverCollide(t *testing.T) {
	t.Setenv("MEDIA_ROOT", t.TempDir())
	InitializeMedia()

	ref1, _, err := SaveEvidenceFile("foto.jpg", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("save 1: %v", err)
	}
	ref2, _, err := SaveEvidenceFile("foto.jpg", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("save 2: %v", err)
	}
	if ref1 == ref2 {
		t.Error("same filename produced the same ref")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd":  "passwd",
		"foto frente.jpg":   "foto_frente.jpg",
		"dni#titular?.png":  "dni_titular_.png",
		"":                  "file",
		"contrato-v2_1.pdf": "contrato-v2_1.pdf",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
