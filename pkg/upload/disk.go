package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DiskStore keeps temp files in a directory, one data file plus one
// ".meta" JSON sidecar per upload. The sidecars let a restarted
// process pick up files saved by its predecessor.
type DiskStore struct {
	dir     string
	maxSize int64

	mu    sync.RWMutex
	files map[string]*diskMeta
}

type diskMeta struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	SavedAt     time.Time `json:"saved_at"`
}

// NewDiskStore creates dir if needed and loads metadata for files
// already present. maxSize caps a single upload; zero or negative
// means unlimited.
func NewDiskStore(dir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: create dir: %w", err)
	}
	ds := &DiskStore{
		dir:     dir,
		maxSize: maxSize,
		files:   make(map[string]*diskMeta),
	}
	if err := ds.loadExisting(); err != nil {
		return nil, err
	}
	return ds, nil
}

func (ds *DiskStore) loadExisting() error {
	entries, err := os.ReadDir(ds.dir)
	if err != nil {
		return fmt.Errorf("upload: read dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".meta") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(ds.dir, e.Name()))
		if err != nil {
			continue
		}
		var meta diskMeta
		if err := json.Unmarshal(data, &meta); err != nil || meta.ID == "" {
			continue
		}
		ds.files[meta.ID] = &meta
	}
	return nil
}

func (ds *DiskStore) dataPath(id string) string {
	return filepath.Join(ds.dir, id)
}

func (ds *DiskStore) metaPath(id string) string {
	return filepath.Join(ds.dir, id+".meta")
}

// Save writes the stream to disk and records its metadata. Streams
// that run past maxSize are removed and rejected with ErrTooLarge.
func (ds *DiskStore) Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ds.maxSize > 0 && size > ds.maxSize {
		return "", ErrTooLarge
	}

	id, err := generateTempID()
	if err != nil {
		return "", err
	}

	dst, err := os.Create(ds.dataPath(id))
	if err != nil {
		return "", fmt.Errorf("upload: create file: %w", err)
	}

	// Read one byte past the limit so an understated size is caught.
	src := r
	if ds.maxSize > 0 {
		src = io.LimitReader(r, ds.maxSize+1)
	}
	written, err := io.Copy(dst, src)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(ds.dataPath(id))
		return "", fmt.Errorf("upload: write file: %w", err)
	}
	if ds.maxSize > 0 && written > ds.maxSize {
		os.Remove(ds.dataPath(id))
		return "", ErrTooLarge
	}

	meta := &diskMeta{
		ID:          id,
		Filename:    filename,
		ContentType: contentType,
		Size:        written,
		SavedAt:     time.Now(),
	}
	data, err := json.Marshal(meta)
	if err == nil {
		err = os.WriteFile(ds.metaPath(id), data, 0o644)
	}
	if err != nil {
		os.Remove(ds.dataPath(id))
		return "", fmt.Errorf("upload: write metadata: %w", err)
	}

	ds.mu.Lock()
	ds.files[id] = meta
	ds.mu.Unlock()
	return id, nil
}

// Open returns the stored file for reading. It does not consume the
// entry.
func (ds *DiskStore) Open(ctx context.Context, tempID string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds.mu.RLock()
	meta, ok := ds.files[tempID]
	ds.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	f, err := os.Open(ds.dataPath(meta.ID))
	if err != nil {
		if os.IsNotExist(err) {
			// Tracked but the bytes are gone: reclaimed underneath us.
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("upload: open file: %w", err)
	}

	return &File{
		ID:          meta.ID,
		Filename:    meta.Filename,
		ContentType: meta.ContentType,
		Size:        meta.Size,
		Reader:      f,
	}, nil
}

// Cleanup removes entries saved before now-maxAge, then sweeps
// untracked files in the directory whose mtime is past the same
// cutoff. The mtime check keeps uploads that are mid-write safe.
func (ds *DiskStore) Cleanup(ctx context.Context, maxAge time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cutoff := time.Now().Add(-maxAge)

	ds.mu.Lock()
	var expired []string
	for id, meta := range ds.files {
		if meta.SavedAt.Before(cutoff) {
			expired = append(expired, id)
			delete(ds.files, id)
		}
	}
	ds.mu.Unlock()

	var firstErr error
	for _, id := range expired {
		if err := os.Remove(ds.dataPath(id)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
		os.Remove(ds.metaPath(id))
	}

	entries, err := os.ReadDir(ds.dir)
	if err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("upload: read dir: %w", err)
		}
		return firstErr
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".meta")
		ds.mu.RLock()
		_, tracked := ds.files[id]
		ds.mu.RUnlock()
		if tracked {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		os.Remove(filepath.Join(ds.dir, e.Name()))
	}
	return firstErr
}
