package middleware

import "net/http"

// Upload outcomes as recorded by InstrumentUploads.
const (
	UploadAccepted = "accepted"
	UploadRejected = "rejected"
	UploadFailed   = "failed"
)

// InstrumentUploads wraps an upload intake handler, counting requests
// by outcome: "accepted" for 2xx, "rejected" for 4xx, "failed"
// otherwise. Accepted requests also add their body size to
// weft_upload_bytes_total. No-op until Prometheus() has run.
func InstrumentUploads(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		var bytes int64
		if sw.status < 300 && r.ContentLength > 0 {
			bytes = r.ContentLength
		}
		RecordUpload(uploadOutcome(sw.status), bytes)
	})
}

func uploadOutcome(status int) string {
	switch {
	case status < 300:
		return UploadAccepted
	case status >= 400 && status < 500:
		return UploadRejected
	default:
		return UploadFailed
	}
}

// statusWriter records the status code the wrapped handler writes.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
