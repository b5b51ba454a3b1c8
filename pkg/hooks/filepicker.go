package hooks

import "github.com/weft-dev/weft/pkg/vdom"

// PickerClearEvent is the emit name the FilePicker hook listens for;
// emitting it empties the input and fires a count-0 files event.
const PickerClearEvent = "weft:picker:clear"

// FilePickerConfig configures the FilePicker hook.
type FilePickerConfig struct {
	// Intake is the endpoint the hook POSTs the chosen file to,
	// multipart field "file". Required.
	Intake string `json:"intake"`

	// Accept narrows the native picker dialog, e.g. "image/*". The
	// value is applied to the input's accept attribute; it is a dialog
	// filter, not validation.
	Accept string `json:"accept,omitempty"`

	// MaxSize, when positive, makes the hook skip the intake POST for
	// larger files and report the selection with an empty temp_id.
	MaxSize int64 `json:"max_size,omitempty"`
}

// FilePicker binds the standard file-picker hook to an <input
// type="file">. On selection the hook uploads the file to the intake
// endpoint and fires a "files" event:
//
//	count        selected file count (0 when the selection was cleared)
//	temp_id      intake ID for the stored file ("" when intake failed)
//	filename     client-reported name
//	content_type client-reported MIME type
//	size         bytes
//
// The hook also listens for the PickerClearEvent emit and empties the
// input, firing a count-0 files event.
func FilePicker(cfg FilePickerConfig) vdom.Attr {
	return Hook("FilePicker", cfg)
}
