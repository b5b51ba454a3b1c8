package upload_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/weft-dev/weft/pkg/upload"
)

// multipartBody builds a multipart form with a single file part.
func multipartBody(t *testing.T, field, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func postUpload(t *testing.T, handler http.Handler, field, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, bodyType := multipartBody(t, field, filename, contentType, content)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", bodyType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func errorField(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error response is not JSON: %v (%q)", err, rec.Body.String())
	}
	return resp["error"]
}

func TestHandler_Upload(t *testing.T) {
	store, _ := upload.NewDiskStore(t.TempDir(), 0)
	handler := upload.Handler(store, upload.DefaultConfig())

	content := []byte("fake png bytes")
	rec := postUpload(t, handler, "file", "cat.png", "image/png", content)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	tempID := resp["temp_id"]
	if !tempIDPattern.MatchString(tempID) {
		t.Fatalf("temp_id %q is not 32 hex chars", tempID)
	}

	file, err := store.Open(context.Background(), tempID)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	defer file.Close()
	if file.Filename != "cat.png" || file.ContentType != "image/png" {
		t.Errorf("metadata wrong: %q %q", file.Filename, file.ContentType)
	}
	data, _ := io.ReadAll(file.Reader)
	if !bytes.Equal(data, content) {
		t.Error("stored content mismatch")
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	store, _ := upload.NewDiskStore(t.TempDir(), 0)
	handler := upload.Handler(store, upload.DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/upload", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHandler_MissingFileField(t *testing.T) {
	store, _ := upload.NewDiskStore(t.TempDir(), 0)
	handler := upload.Handler(store, upload.DefaultConfig())

	rec := postUpload(t, handler, "attachment", "cat.png", "image/png", []byte("data"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := errorField(t, rec); msg != "missing file field" {
		t.Errorf("expected %q, got %q", "missing file field", msg)
	}
}

func TestHandler_NotMultipart(t *testing.T) {
	store, _ := upload.NewDiskStore(t.TempDir(), 0)
	handler := upload.Handler(store, upload.DefaultConfig())

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("just text"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_TypeNotAllowed(t *testing.T) {
	store, _ := upload.NewDiskStore(t.TempDir(), 0)
	cfg := upload.DefaultConfig()
	cfg.AllowedTypes = []string{"image/"}
	handler := upload.Handler(store, cfg)

	rec := postUpload(t, handler, "file", "notes.txt", "text/plain", []byte("text"))

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
	if msg := errorField(t, rec); msg != "content type not allowed" {
		t.Errorf("expected %q, got %q", "content type not allowed", msg)
	}

	rec = postUpload(t, handler, "file", "cat.webp", "image/webp", []byte("webp"))
	if rec.Code != http.StatusOK {
		t.Errorf("image/webp should pass the image/ prefix, got %d", rec.Code)
	}
}

func TestHandler_TooLarge(t *testing.T) {
	store, _ := upload.NewDiskStore(t.TempDir(), 0)
	cfg := upload.DefaultConfig()
	cfg.MaxFileSize = 16
	handler := upload.Handler(store, cfg)

	rec := postUpload(t, handler, "file", "big.bin", "application/octet-stream", make([]byte, 1024))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
	if msg := errorField(t, rec); msg != "file too large" {
		t.Errorf("expected %q, got %q", "file too large", msg)
	}
}

func TestHandler_StoreTooLarge(t *testing.T) {
	// The store's own limit can be tighter than the handler's.
	store, _ := upload.NewDiskStore(t.TempDir(), 4)
	handler := upload.Handler(store, upload.DefaultConfig())

	rec := postUpload(t, handler, "file", "big.bin", "application/octet-stream", make([]byte, 64))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestServeFile_ByPathValue(t *testing.T) {
	store, _ := upload.NewDiskStore(t.TempDir(), 0)
	content := []byte("preview bytes")
	tempID, _ := store.Save(context.Background(), "cat.png", "image/png", int64(len(content)), bytes.NewReader(content))

	mux := http.NewServeMux()
	mux.Handle("GET /uploads/{id}", upload.ServeFile(store))

	req := httptest.NewRequest(http.MethodGet, "/uploads/"+tempID, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %s", ct)
	}
	if cl := rec.Header().Get("Content-Length"); cl != "13" {
		t.Errorf("expected Content-Length 13, got %s", cl)
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Error("body mismatch")
	}
}

func TestServeFile_ByPathBase(t *testing.T) {
	store, _ := upload.NewDiskStore(t.TempDir(), 0)
	tempID, _ := store.Save(context.Background(), "cat.png", "image/png", 3, strings.NewReader("png"))

	// Mounted without a pattern, the handler falls back to the last
	// path element.
	req := httptest.NewRequest(http.MethodGet, "/_weft/uploads/"+tempID, nil)
	rec := httptest.NewRecorder()
	upload.ServeFile(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "png" {
		t.Errorf("body mismatch: %q", rec.Body.String())
	}
}

func TestServeFile_Unknown(t *testing.T) {
	store, _ := upload.NewDiskStore(t.TempDir(), 0)

	req := httptest.NewRequest(http.MethodGet, "/uploads/deadbeefdeadbeefdeadbeefdeadbeef", nil)
	rec := httptest.NewRecorder()
	upload.ServeFile(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestServeFile_Head(t *testing.T) {
	store, _ := upload.NewDiskStore(t.TempDir(), 0)
	tempID, _ := store.Save(context.Background(), "cat.png", "image/png", 3, strings.NewReader("png"))

	req := httptest.NewRequest(http.MethodHead, "/uploads/"+tempID, nil)
	rec := httptest.NewRecorder()
	upload.ServeFile(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD must not carry a body, got %d bytes", rec.Body.Len())
	}
}
