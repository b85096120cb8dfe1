// Package store implements the content-addressed mirror for plugin
// resources. Identity is the sha256 digest of the stored bytes, so the same
// resource referenced by any number of documents occupies exactly one slot.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/chanforge/chanforge/internal/document"
)

const (
	// lockFileName guards the store directory against concurrent builds
	lockFileName = ".chanforge.lock"

	// hashPrefixLen is how much of the digest ends up in mirrored filenames.
	// 16 hex chars keep paths readable while making collisions implausible
	// for the store sizes involved.
	hashPrefixLen = 16
)

// Store is a content-addressed resource mirror rooted at a local directory.
// Put is idempotent and safe for concurrent use; writes to the same content
// hash land on identical bytes so ordering does not matter.
type Store struct {
	root string
	lock *flock.Flock

	mu    sync.RWMutex
	paths map[string]string // content hash -> store-relative path
}

// Open creates (if needed) and locks a store directory. The directory lock
// is advisory and protects against a second build process interleaving
// partial writes; within one process the store is already safe.
func Open(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	lock := flock.New(filepath.Join(root, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire store lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("store directory %s is locked by another build", root)
	}

	return &Store{
		root:  root,
		lock:  lock,
		paths: make(map[string]string),
	}, nil
}

// Close releases the store directory lock
func (s *Store) Close() error {
	return s.lock.Unlock()
}

// Root returns the store root directory
func (s *Store) Root() string {
	return s.root
}

// Hash returns the content hash the store would assign to data
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Put stores data under its content hash and returns (hash, relative path).
// Storing identical bytes twice is a no-op that returns the existing path.
func (s *Store) Put(data []byte, kind document.SiteKind) (string, string, error) {
	hash := Hash(data)

	s.mu.RLock()
	if rel, ok := s.paths[hash]; ok {
		s.mu.RUnlock()
		return hash, rel, nil
	}
	s.mu.RUnlock()

	rel := filepath.Join(subdirFor(kind), hash[:hashPrefixLen]+extFor(kind))
	absPath := filepath.Join(s.root, rel)

	if err := os.MkdirAll(filepath.Dir(absPath), 0750); err != nil {
		return "", "", fmt.Errorf("failed to create mirror subdirectory: %w", err)
	}

	// Write to a uniquely named temporary file first for atomic placement.
	// Concurrent writers for the same hash each get their own temp file and
	// rename identical bytes, so last rename wins without corruption.
	tmp, err := os.CreateTemp(filepath.Dir(absPath), "."+hash[:hashPrefixLen]+"-*.tmp")
	if err != nil {
		return "", "", fmt.Errorf("failed to create temporary mirror file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", "", fmt.Errorf("failed to write temporary mirror file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", "", fmt.Errorf("failed to close temporary mirror file: %w", err)
	}
	if err := os.Rename(tmp.Name(), absPath); err != nil {
		_ = os.Remove(tmp.Name())
		return "", "", fmt.Errorf("failed to place mirror file: %w", err)
	}

	s.mu.Lock()
	s.paths[hash] = rel
	s.mu.Unlock()

	return hash, rel, nil
}

// Has reports whether a resource with the given content hash is stored
func (s *Store) Has(hash string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.paths[hash]
	return ok
}

// PathFor returns the store-relative path for a content hash
func (s *Store) PathFor(hash string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rel, ok := s.paths[hash]
	return rel, ok
}

// Count returns the number of distinct resources stored
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.paths)
}

func subdirFor(kind document.SiteKind) string {
	switch kind {
	case document.KindScript:
		return "js"
	case document.KindInterpreted:
		return "py"
	case document.KindCompiled:
		return "jar"
	default:
		return "res"
	}
}

func extFor(kind document.SiteKind) string {
	switch kind {
	case document.KindScript:
		return ".js"
	case document.KindInterpreted:
		return ".py"
	case document.KindCompiled:
		return ".jar"
	default:
		return ""
	}
}
