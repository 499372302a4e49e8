// Package store is the artifact store adapter: uniform read/write/list/sign
// operations over a hierarchical blob namespace.
//
// All pipeline state lives here. Writes are whole-object overwrites with no
// optimistic concurrency — the pipeline guarantees at most one writer per
// path at a time, and every stage reloads its inputs from the store, so a
// process restart between any two stages loses nothing.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// ErrNotFound reports that no object exists at the requested path.
var ErrNotFound = errors.New("object not found")

// Store is the blob store contract the pipeline depends on.
type Store interface {
	// Read returns the full object at key, or ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write stores data at key, overwriting any existing object.
	Write(ctx context.Context, key string, data []byte, contentType string) error

	// List returns the keys of all objects under prefix, from a single
	// snapshot of the namespace.
	List(ctx context.Context, prefix string) ([]string, error)

	// Sign issues a time-limited GET URL for key. Used only for handing
	// results to callers, never for internal stage chaining.
	Sign(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Download copies the object at key to a local file, for handing to
	// external tools that work with file paths (ffmpeg).
	Download(ctx context.Context, key, localPath string) error

	// Upload stores a local file at key.
	Upload(ctx context.Context, localPath, key string) error
}

// ReadJSON reads the object at key and unmarshals it into v.
func ReadJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Read(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// ContentTypeFor maps a key's extension to a MIME type, defaulting to
// application/octet-stream.
func ContentTypeFor(key string) string {
	switch filepath.Ext(key) {
	case ".json":
		return "application/json"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".mp4":
		return "video/mp4"
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}
