// Package middleware provides event middleware for weft servers:
// OpenTelemetry tracing and Prometheus metrics.
//
// Both wrap the server's event handling chain:
//
//	srv.Use(
//	    middleware.OpenTelemetry(),
//	    middleware.Prometheus(),
//	)
//
// # Tracing
//
// OpenTelemetry starts a span per event, named weft.{event}, carrying
// the session, target element, and hook. The span's context is
// threaded through ctx.StdContext(), so HTTP clients and stores called
// from handlers inherit the trace:
//
//	req, _ := http.NewRequestWithContext(ctx.StdContext(), "GET", url, nil)
//
// The tracer comes from the global provider, which defaults to a noop;
// install a real one in main() to turn tracing on.
//
// # Metrics
//
// Prometheus registers, under the weft namespace by default:
//   - weft_events_total: events processed, by event name
//   - weft_event_duration_seconds: event handling duration
//   - weft_event_errors_total: handling failures, by event name and kind
//   - weft_active_sessions: live sessions
//   - weft_patches_sent_total: patches sent to clients
//   - weft_uploads_total, weft_upload_bytes_total: upload intake traffic
//
// The session gauge and patch counter record through the package-level
// Record functions; wire them to the server callbacks:
//
//	cfg.OnSessionStart = func(*server.Session) { middleware.RecordSessionStart() }
//	cfg.OnSessionClose = func(*server.Session) { middleware.RecordSessionClose() }
//	cfg.OnPatchesSent = middleware.RecordPatches
//
// Upload traffic records through InstrumentUploads wrapping the intake
// handler. Expose the scrape endpoint with promhttp:
//
//	http.Handle("/metrics", promhttp.Handler())
package middleware
