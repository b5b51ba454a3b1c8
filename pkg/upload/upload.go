package upload

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a temp ID does not exist.
	ErrNotFound = errors.New("upload: file not found")

	// ErrExpired is returned when a temp ID is still tracked but its
	// bytes have already been reclaimed.
	ErrExpired = errors.New("upload: file expired")

	// ErrTooLarge is returned when an upload exceeds the store's size
	// limit.
	ErrTooLarge = errors.New("upload: file too large")
)

// File is a stored temp file opened for reading. The caller owns the
// Reader and must Close it.
type File struct {
	ID          string
	Filename    string
	ContentType string
	Size        int64
	Reader      io.ReadCloser
}

// Close closes the underlying reader.
func (f *File) Close() error {
	if f.Reader == nil {
		return nil
	}
	return f.Reader.Close()
}

// Store holds uploaded files under server-generated temp IDs.
type Store interface {
	// Save stores the stream and returns its temp ID. The size is the
	// byte count the caller measured; stores may reject streams that
	// exceed their limit with ErrTooLarge.
	Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (string, error)

	// Open opens a stored file for reading. Opening does not consume
	// the entry: the same ID can be opened any number of times until
	// Cleanup reclaims it.
	Open(ctx context.Context, tempID string) (*File, error)

	// Cleanup removes entries older than maxAge. Expiry is the only
	// reclamation path; saving a new file never removes an old one.
	Cleanup(ctx context.Context, maxAge time.Duration) error
}

// Config bounds what the intake handler accepts.
type Config struct {
	// MaxFileSize caps a single upload, in bytes.
	MaxFileSize int64

	// AllowedTypes restricts uploads to content types matching one of
	// these prefixes, e.g. "image/". Empty means no restriction.
	AllowedTypes []string

	// TempExpiry is how long stored files live before a Cleanup pass
	// reclaims them.
	TempExpiry time.Duration
}

// DefaultConfig allows any content type up to 10 MiB, kept for an
// hour.
func DefaultConfig() Config {
	return Config{
		MaxFileSize: 10 << 20,
		TempExpiry:  time.Hour,
	}
}

// Handler returns the intake endpoint. It accepts a multipart POST
// with the file in form field "file" and responds with
// {"temp_id": "..."} on success. Errors are JSON objects with an
// "error" field.
func Handler(store Store, cfg Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxFileSize)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				writeError(w, http.StatusRequestEntityTooLarge, "file too large")
				return
			}
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !typeAllowed(cfg.AllowedTypes, contentType) {
			writeError(w, http.StatusUnsupportedMediaType, "content type not allowed")
			return
		}

		tempID, err := store.Save(r.Context(), header.Filename, contentType, header.Size, file)
		if err != nil {
			if errors.Is(err, ErrTooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "file too large")
				return
			}
			writeError(w, http.StatusInternalServerError, "upload failed")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"temp_id": tempID})
	})
}

// ServeFile returns the preview endpoint. It streams a stored file by
// the temp ID in the request path: the "id" path value when the mux
// provides one, otherwise the last path element.
func ServeFile(store Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		id := r.PathValue("id")
		if id == "" {
			id = path.Base(r.URL.Path)
		}
		if id == "" || id == "." || id == "/" {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}

		f, err := store.Open(r.Context(), id)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrExpired) {
				writeError(w, http.StatusNotFound, "file not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "open failed")
			return
		}
		defer f.Close()

		if f.ContentType != "" {
			w.Header().Set("Content-Type", f.ContentType)
		}
		if f.Size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(f.Size, 10))
		}
		w.Header().Set("Cache-Control", "private, max-age=3600")
		if r.Method == http.MethodHead {
			return
		}
		io.Copy(w, f.Reader)
	})
}

func typeAllowed(allowed []string, contentType string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, prefix := range allowed {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// generateTempID returns 32 hex characters from crypto/rand.
func generateTempID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("upload: generate id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
