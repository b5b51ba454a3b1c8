package product_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/weft-dev/weft/pkg/product"
	"github.com/weft-dev/weft/pkg/upload"
)

func imageFile(name, contentType, content string) *upload.File {
	return &upload.File{
		ID:          "deadbeefdeadbeefdeadbeefdeadbeef",
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(content)),
		Reader:      io.NopCloser(strings.NewReader(content)),
	}
}

func TestUploadImage_Success(t *testing.T) {
	var (
		gotMethod   string
		gotPath     string
		gotReqID    string
		gotField    string
		gotFilename string
		gotPartType string
		gotBody     []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotReqID = r.Header.Get("X-Request-ID")

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("request is not multipart: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		for field, headers := range r.MultipartForm.File {
			gotField = field
			gotFilename = headers[0].Filename
			gotPartType = headers[0].Header.Get("Content-Type")
			f, _ := headers[0].Open()
			gotBody, _ = io.ReadAll(f)
			f.Close()
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	// Trailing slash on the base URL must not double up.
	client := product.NewClient(srv.URL + "/")
	err := client.UploadImage(context.Background(), "p42", imageFile("cat.png", "image/png", "fake png bytes"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if gotPath != "/api/products/p42/image" {
		t.Errorf("wrong path: %s", gotPath)
	}
	if gotReqID == "" {
		t.Error("X-Request-ID header missing")
	}
	if gotField != "image" {
		t.Errorf("expected field image, got %q", gotField)
	}
	if gotFilename != "cat.png" {
		t.Errorf("expected filename cat.png, got %q", gotFilename)
	}
	if gotPartType != "image/png" {
		t.Errorf("expected part content type image/png, got %q", gotPartType)
	}
	if !bytes.Equal(gotBody, []byte("fake png bytes")) {
		t.Error("uploaded bytes mismatch")
	}
}

func TestUploadImage_ErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"json message field", http.StatusNotFound, `{"message":"not found"}`, "not found"},
		{"raw body text", http.StatusInternalServerError, "server exploded", "server exploded"},
		{"json without message field", http.StatusBadRequest, `{"error":"nope"}`, `{"error":"nope"}`},
		{"body whitespace trimmed", http.StatusForbidden, "  denied \n", "denied"},
		{"empty body", http.StatusBadGateway, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client := product.NewClient(srv.URL)
			err := client.UploadImage(context.Background(), "p1", imageFile("a.png", "image/png", "x"))

			var apiErr *product.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T: %v", err, err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, apiErr.Message)
			}
			if apiErr.Error() != tt.wantMessage {
				t.Errorf("Error() should return the message, got %q", apiErr.Error())
			}
		})
	}
}

func TestUploadImage_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	client := product.NewClient(srv.URL)
	err := client.UploadImage(context.Background(), "p1", imageFile("a.png", "image/png", "x"))
	if err == nil {
		t.Fatal("expected a transport error")
	}
	var apiErr *product.APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("transport failure must not be an APIError: %v", err)
	}
	if err.Error() == "" {
		t.Error("transport error should carry a message")
	}
}

func TestUploadImage_RequestIDOverride(t *testing.T) {
	var gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReqID = r.Header.Get("X-Request-ID")
	}))
	defer srv.Close()

	client := product.NewClient(srv.URL, product.WithRequestID(func() string { return "req-7" }))
	if err := client.UploadImage(context.Background(), "p1", imageFile("a.png", "image/png", "x")); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if gotReqID != "req-7" {
		t.Errorf("expected request ID req-7, got %q", gotReqID)
	}
}

func TestUploadImage_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client := product.NewClient(srv.URL)
	err := client.UploadImage(ctx, "p1", imageFile("a.png", "image/png", "x"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}
