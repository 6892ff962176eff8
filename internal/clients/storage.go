package clients

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// StorageClient keeps collect attachments in a local directory served under PublicPrefix.
type StorageClient struct {
	BaseDir      string
	PublicPrefix string
	BaseURL      string // optional scheme+host[:port] for absolute URLs
}

// NewLocalStorage creates a storage client; baseDir will be created if missing.
func NewLocalStorage(baseDir, publicPrefix, baseURL string) (*StorageClient, error) {
	if baseDir == "" {
		baseDir = "./collects"
	}
	if publicPrefix == "" {
		publicPrefix = "/files"
	}
	if !strings.HasPrefix(publicPrefix, "/") {
		publicPrefix = "/" + publicPrefix
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure storage dir %q: %w", baseDir, err)
	}

	return &StorageClient{
		BaseDir:      baseDir,
		PublicPrefix: strings.TrimSuffix(publicPrefix, "/"),
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save writes data under a unique name that keeps fileName as suffix and returns that name.
func (s *StorageClient) Save(ctx context.Context, fileName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fileName = filepath.Base(fileName)

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}
	final := fmt.Sprintf("%s_%s", hex.EncodeToString(randBytes), fileName)

	path := filepath.Join(s.BaseDir, final)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize file: %w", err)
	}

	return final, nil
}

// URL returns the public URL of a saved file, absolute when BaseURL is set.
func (s *StorageClient) URL(_ context.Context, key string) (string, error) {
	return s.BaseURL + s.PublicPrefix + "/" + key, nil
}

// Path resolves a public file name to a path inside BaseDir.
func (s *StorageClient) Path(key string) (string, error) {
	name := filepath.Base(key)
	if name != key || name == "." || name == ".." {
		return "", errors.New("invalid file name")
	}
	return filepath.Join(s.BaseDir, name), nil
}

// OriginalName strips the random prefix added by Save.
func OriginalName(key string) string {
	if idx := strings.IndexByte(key, '_'); idx >= 0 {
		return key[idx+1:]
	}
	return key
}

// CleanupOlderThan deletes files older than d in the base dir.
func (s *StorageClient) CleanupOlderThan(d time.Duration) error {
	now := time.Now()
	return filepath.WalkDir(s.BaseDir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		info, err := de.Info()
		if err != nil {
			return nil
		}
		if now.Sub(info.ModTime()) > d {
			_ = os.Remove(path)
		}
		return nil
	})
}
