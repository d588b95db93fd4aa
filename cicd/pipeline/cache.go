// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package pipeline

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"cloudeng.io/algo/digests"
)

const (
	cacheDigestAlgo = "sha256"
	cacheDigestFile = "lockfile.sha256"
)

// CacheEntry represents the cache directory for a specific version of
// the lock file.
type CacheEntry struct {
	Key string // hex encoded sha256 of the lock file.
	Dir string // absolute path of the cache directory.
	Hit bool   // true if the entry existed and was valid.
}

// Env returns the environment variables that direct the go command to
// use the cache entry for its build and module caches.
func (ce CacheEntry) Env() []string {
	return []string{
		"GOCACHE=" + filepath.Join(ce.Dir, "build"),
		"GOMODCACHE=" + filepath.Join(ce.Dir, "mod"),
	}
}

func hashFile(filename string, h digests.Hash) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(h, f)
	return err
}

// CacheKey returns the hex encoded sha256 digest of the lock file.
func CacheKey(lockfile string) (string, error) {
	h, err := digests.New(cacheDigestAlgo, nil)
	if err != nil {
		return "", err
	}
	if err := hashFile(lockfile, h); err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	return digests.ToHex(h.Sum(nil)), nil
}

// PrepareCache locates or creates the cache entry for the current
// contents of the configured lock file, relative paths are interpreted
// relative to root. An entry is a hit if it exists and records a digest
// that matches the lock file, otherwise it is (re)populated.
func PrepareCache(cfg CacheConfig, root string) (CacheEntry, error) {
	lockfile := resolve(root, cfg.LockFile)
	key, err := CacheKey(lockfile)
	if err != nil {
		return CacheEntry{}, err
	}
	dir, err := filepath.Abs(filepath.Join(resolve(root, cfg.Dir), key))
	if err != nil {
		return CacheEntry{}, err
	}
	entry := CacheEntry{Key: key, Dir: dir}
	entry.Hit, err = validEntry(dir, lockfile)
	if err != nil || entry.Hit {
		return entry, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return CacheEntry{}, err
	}
	err = os.WriteFile(filepath.Join(dir, cacheDigestFile), []byte(key), 0o644)
	return entry, err
}

func validEntry(dir, lockfile string) (bool, error) {
	recorded, err := os.ReadFile(filepath.Join(dir, cacheDigestFile))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	digest, err := digests.FromHex(string(recorded))
	if err != nil {
		return false, nil
	}
	h, err := digests.New(cacheDigestAlgo, digest)
	if err != nil {
		return false, err
	}
	if err := hashFile(lockfile, h); err != nil {
		return false, err
	}
	return h.Validate(), nil
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
