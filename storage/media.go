package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local media store for evidence files. Files are written once and never
// rewritten; the SHA-256 content hash is computed while streaming so large
// documents never sit wholly in memory.

var mediaRoot string

func InitializeMedia() {
	mediaRoot = os.Getenv("MEDIA_ROOT")
	if mediaRoot == "" {
		mediaRoot = "./media"
	}
	if err := os.MkdirAll(filepath.Join(mediaRoot, "evidences"), 0o755); err != nil {
		log.Panic("error creating media root: " + err.Error())
	}
	log.Println("Media store initialized at", mediaRoot)
}

// SaveEvidenceFile streams src into the evidence store and returns the
// file reference (relative to the media root) and the hex SHA-256 of the
// bytes written. I/O errors surface to the caller untouched.
func SaveEvidenceFile(filename string, src io.Reader) (ref string, hash string, err error) {
	name := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(filename))
	ref = filepath.Join("evidences", name)

	dst, err := os.OpenFile(filepath.Join(mediaRoot, ref), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", "", err
	}

	h := sha256.New()
	_, err = io.Copy(io.MultiWriter(dst, h), src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", "", err
	}

	return ref, hex.EncodeToString(h.Sum(nil)), nil
}

// OpenEvidenceFile returns the stored bytes for a previously saved ref.
func OpenEvidenceFile(ref string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(mediaRoot, ref))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." {
		name = "file"
	}
	return name
}
