package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// KnowledgeStore holds the process-wide knowledge blob. Reads are frequent
// (every business query), writes are admin-only and replace the whole value,
// so a plain RWMutex whole-value swap gives the replace-then-visible
// guarantee. The blob is mirrored to disk with a tmp+rename write so readers
// of the file never see a partial blob either.
type KnowledgeStore struct {
	mu       sync.RWMutex
	blob     string
	path     string
	maxChars int
}

// NewKnowledgeStore loads any existing blob from path, truncating it to
// maxChars. A missing file is an empty blob, not an error.
func NewKnowledgeStore(path string, maxChars int) (*KnowledgeStore, error) {
	k := &KnowledgeStore{path: path, maxChars: maxChars}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return k, nil
		}
		return nil, err
	}
	k.blob = truncateRunes(string(b), maxChars)
	return k, nil
}

func (k *KnowledgeStore) Get() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.blob
}

// Set replaces the blob wholesale, truncated to the configured cap, and
// persists it. The in-memory value is swapped only after the file write
// succeeds.
func (k *KnowledgeStore) Set(text string) error {
	text = truncateRunes(text, k.maxChars)
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.path != "" {
		if err := writeFileAtomic(k.path, []byte(text)); err != nil {
			return err
		}
	}
	k.blob = text
	return nil
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func writeFileAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
