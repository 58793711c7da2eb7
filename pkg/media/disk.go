package media

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskStore keeps media as content-addressed files in a local directory.
// The file name is the SHA-256 of the content plus the original extension,
// so duplicate uploads collapse to one file.
type DiskStore struct {
	dir     string
	baseURL string
	config  Config
}

// NewDiskStore creates the directory if needed. baseURL is the public
// prefix the files are served under, e.g. "http://localhost:8080/media".
func NewDiskStore(dir, baseURL string, config Config) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		config:  config,
	}, nil
}

// Save writes the content through a temp file, renames it to its hash, and
// returns the hosted URL.
func (s *DiskStore) Save(_ context.Context, filename, contentType string, size int64, r io.Reader) (string, error) {
	if !s.config.allows(contentType) {
		return "", ErrUnsupportedType
	}
	if s.config.MaxFileSize > 0 && size > s.config.MaxFileSize {
		return "", ErrTooLarge
	}

	tmp := filepath.Join(s.dir, tempName())
	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}

	hash := sha256.New()
	var reader io.Reader = r
	if s.config.MaxFileSize > 0 {
		reader = io.LimitReader(r, s.config.MaxFileSize+1)
	}
	written, err := io.Copy(io.MultiWriter(f, hash), reader)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return "", err
	}
	if s.config.MaxFileSize > 0 && written > s.config.MaxFileSize {
		os.Remove(tmp)
		return "", ErrTooLarge
	}

	name := hex.EncodeToString(hash.Sum(nil)) + strings.ToLower(filepath.Ext(filename))
	if err := os.Rename(tmp, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return s.baseURL + "/" + name, nil
}

// Path maps a Save URL back to the local file, for serving.
func (s *DiskStore) Path(url string) (string, bool) {
	name, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Cleanup removes temp files left behind by interrupted writes. Stored
// media is content-addressed and never expires.
func (s *DiskStore) Cleanup() error {
	cutoff := time.Now().Add(-s.config.TempExpiry)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(s.dir, entry.Name()))
		}
	}
	return nil
}

const tempPrefix = ".tmp-"

func tempName() string {
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("%s%s", tempPrefix, hex.EncodeToString(b))
}
