package uploader

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/weft-dev/weft/pkg/hooks"
	"github.com/weft-dev/weft/pkg/product"
	"github.com/weft-dev/weft/pkg/reactive"
	"github.com/weft-dev/weft/pkg/server"
	"github.com/weft-dev/weft/pkg/upload"
)

// Status is the widget's visible upload state.
type Status uint8

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Selection mirrors what the picker reported for the current file.
type Selection struct {
	TempID      string
	Filename    string
	ContentType string
	Size        int64
}

// Config wires a Widget to its product and storage.
type Config struct {
	// Product is the upload subject; a nil product or empty ID fails
	// the send guard.
	Product *product.Product

	// Client posts the image to the product API.
	Client *product.Client

	// Store resolves temp IDs to stored files at send time.
	Store upload.Store

	// IntakePath is where the picker hook POSTs chosen files.
	// Defaults to "/_weft/upload".
	IntakePath string

	// PreviewPath is the base of preview URLs. Defaults to
	// "/_weft/uploads".
	PreviewPath string

	Logger *slog.Logger
}

// Widget is the upload component. Create it with New inside a runtime
// scope (page build, render, or an event handler); its signals belong
// to the owner active at that point.
type Widget struct {
	cfg Config

	enabled *reactive.Signal[bool]
	message *reactive.Signal[string]
	pending *reactive.Signal[*Selection]
	preview *reactive.Signal[string]

	// override pins the visible status; nil follows the send action.
	// Guards pin Error, lifecycle controls pin Idle, a starting send
	// pins Loading, and completions unpin.
	override *reactive.Signal[*Status]

	send *reactive.Action[*Selection, string]
}

// New builds the widget. It panics outside a runtime scope, the same
// way reactive.NewAction does.
func New(cfg Config) *Widget {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.IntakePath == "" {
		cfg.IntakePath = "/_weft/upload"
	}
	if cfg.PreviewPath == "" {
		cfg.PreviewPath = "/_weft/uploads"
	}

	w := &Widget{
		cfg:      cfg,
		enabled:  reactive.NewSignal(true),
		message:  reactive.NewSignal(""),
		pending:  reactive.NewSignal[*Selection](nil),
		preview:  reactive.NewSignal(""),
		override: reactive.NewSignal[*Status](nil),
	}
	w.send = reactive.NewAction(w.doSend).
		WithPolicy(reactive.PolicyDrop).
		OnSuccess(w.sendSucceeded).
		OnError(w.sendFailed)
	return w
}

// Status derives the visible state from the override pin and the send
// action.
func (w *Widget) Status() Status {
	if pinned := w.override.Get(); pinned != nil {
		return *pinned
	}
	switch w.send.State() {
	case reactive.StateRunning:
		return StatusLoading
	case reactive.StateSuccess:
		return StatusSuccess
	case reactive.StateError:
		return StatusError
	default:
		return StatusIdle
	}
}

// Enabled reports whether the widget accepts interaction.
func (w *Widget) Enabled() bool { return w.enabled.Get() }

// Message returns the banner text, "" when no banner shows.
func (w *Widget) Message() string { return w.message.Get() }

// PreviewURL returns the current preview URL, "" when there is none.
func (w *Widget) PreviewURL() string { return w.preview.Get() }

// Pending returns the current selection, nil when nothing is chosen.
func (w *Widget) Pending() *Selection { return w.pending.Get() }

// Enable turns interaction back on, clears the banner, and returns the
// status to idle. An in-flight send is not touched; its completion
// still lands.
func (w *Widget) Enable() {
	w.enabled.Set(true)
	w.message.Set("")
	w.pin(StatusIdle)
}

// Disable blocks interaction, clears the banner, and returns the
// status to idle. An in-flight send is not touched; its completion
// still lands.
func (w *Widget) Disable() {
	w.enabled.Set(false)
	w.message.Set("")
	w.pin(StatusIdle)
}

func (w *Widget) pin(s Status) {
	w.override.Set(&s)
}

func (w *Widget) unpin() {
	w.override.Set(nil)
}

// handleFiles processes the picker hook's files event: it records the
// selection and derives the preview URL from the temp ID.
func (w *Widget) handleFiles(ev hooks.HookEvent) {
	w.message.Set("")
	w.pin(StatusIdle)

	if ev.Int("count") == 0 {
		w.pending.Set(nil)
		w.preview.Set("")
		return
	}

	sel := &Selection{
		TempID:      ev.String("temp_id"),
		Filename:    ev.String("filename"),
		ContentType: ev.String("content_type"),
		Size:        ev.Int64("size"),
	}
	w.pending.Set(sel)

	if sel.TempID == "" {
		// Intake failed; keep the selection but there is nothing to
		// preview.
		w.preview.Set("")
		w.cfg.Logger.Warn("file selected without temp id", "filename", sel.Filename)
		return
	}
	w.preview.Set(strings.TrimRight(w.cfg.PreviewPath, "/") + "/" + sel.TempID)
}

// handleSend runs the guard sequence and starts the upload.
func (w *Widget) handleSend() {
	if w.Status() == StatusLoading {
		return
	}
	w.message.Set("")

	if !w.enabled.Get() {
		w.guardFail("upload disabled")
		return
	}
	if w.cfg.Product == nil || w.cfg.Product.ID == "" {
		w.guardFail("invalid product: missing id")
		return
	}
	sel := w.pending.Get()
	if sel == nil {
		w.guardFail("no file selected")
		return
	}

	w.pin(StatusLoading)
	w.send.Run(sel)
	w.cfg.Logger.Debug("image upload started",
		"product_id", w.cfg.Product.ID,
		"temp_id", sel.TempID,
		"filename", sel.Filename)
}

func (w *Widget) guardFail(msg string) {
	w.message.Set(msg)
	w.pin(StatusError)
}

// handleClear drops the selection and banner. It is inert while a send
// is loading.
func (w *Widget) handleClear(ctx server.Ctx) {
	if w.Status() == StatusLoading {
		return
	}
	w.message.Set("")
	w.pin(StatusIdle)
	w.pending.Set(nil)
	w.preview.Set("")
	ctx.Emit(hooks.PickerClearEvent, nil)
}

// doSend runs off the event loop: it opens the stored temp file and
// posts it to the product API. Opening never consumes the file, so a
// failed attempt can be retried with the same selection.
func (w *Widget) doSend(ctx context.Context, sel *Selection) (string, error) {
	file, err := w.cfg.Store.Open(ctx, sel.TempID)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := w.cfg.Client.UploadImage(ctx, w.cfg.Product.ID, file); err != nil {
		return "", err
	}
	return sel.TempID, nil
}

// sendSucceeded applies a successful completion on the event loop. It
// runs regardless of what happened to the widget since the send
// started; a Disable during flight does not block it.
func (w *Widget) sendSucceeded(tempID string) {
	w.message.Set("image uploaded successfully")
	w.pending.Set(nil)
	w.preview.Set("")
	w.emitPickerClear()
	w.unpin()
	w.cfg.Logger.Debug("image upload succeeded", "temp_id", tempID)
}

// sendFailed applies a failed completion on the event loop, same
// unconditional terms as sendSucceeded.
func (w *Widget) sendFailed(err error) {
	var apiErr *product.APIError
	var msg string
	switch {
	case errors.As(err, &apiErr):
		msg = "Error: " + apiErr.Message
	case err.Error() != "":
		msg = err.Error()
	default:
		msg = "error sending image"
	}
	w.message.Set(msg)
	w.unpin()
	w.cfg.Logger.Debug("image upload failed", "error", err)
}

func (w *Widget) emitPickerClear() {
	if ctx, ok := reactive.UseCtx().(server.Ctx); ok {
		ctx.Emit(hooks.PickerClearEvent, nil)
	}
}
