package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalStore writes uploaded files to a directory on disk. Stored names are a
// unix-millisecond timestamp plus a random suffix so concurrent uploads of
// identically-named files never collide.
type LocalStore struct {
	root   string
	logger zerolog.Logger
	now    func() time.Time
}

// NewLocalStore builds a disk-backed store rooted at the given directory.
func NewLocalStore(root string, logger zerolog.Logger) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root must not be empty")
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	return &LocalStore{
		root:   root,
		logger: logger.With().Str("component", "local_store").Logger(),
		now:    time.Now,
	}, nil
}

// Upload persists the file under a collision-free name inside the subdirectory
// given by the first path segment of name, and returns the relative path that
// should be recorded on the owning row.
func (s *LocalStore) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir, original := filepath.Split(filepath.Clean(name))
	dir = strings.Trim(dir, "/"+string(filepath.Separator))

	stored := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), shortSuffix(), strings.ToLower(filepath.Ext(original)))

	targetDir := s.root
	relative := stored
	if dir != "" {
		targetDir = filepath.Join(s.root, dir)
		relative = dir + "/" + stored
		if err := os.MkdirAll(targetDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create upload directory: %w", err)
		}
	}

	target := filepath.Join(targetDir, stored)
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		os.Remove(target)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	if err := out.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	s.logger.Debug().Str("path", relative).Msg("file stored")

	return "/" + relative, nil
}

func shortSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}
