package uploader

import (
	"github.com/weft-dev/weft/pkg/hooks"
	"github.com/weft-dev/weft/pkg/vdom"
)

// acceptTypes narrows the picker dialog to images. It filters the
// dialog only; the intake endpoint does the actual type check.
const acceptTypes = "image/*"

// Render produces the widget tree. Reading the signals here is what
// subscribes the component to them.
func (w *Widget) Render() *vdom.VNode {
	enabled := w.enabled.Get()
	status := w.Status()
	message := w.message.Get()
	previewURL := w.preview.Get()
	sel := w.pending.Get()

	loading := status == StatusLoading
	blocked := !enabled || loading

	return vdom.Div(vdom.Class("weft-uploader"),
		vdom.When(!enabled, func() *vdom.VNode {
			return vdom.Div(vdom.Class("weft-uploader-notice"),
				vdom.Text("Uploads are disabled"))
		}),

		vdom.Div(vdom.Class("weft-uploader-picker"),
			vdom.Input(
				vdom.Type("file"),
				vdom.Accept(acceptTypes),
				vdom.AttrIf(blocked, vdom.Disabled()),
				hooks.FilePicker(hooks.FilePickerConfig{
					Intake: w.cfg.IntakePath,
					Accept: acceptTypes,
				}),
				hooks.OnEvent("files", w.handleFiles),
			),
		),

		vdom.When(previewURL != "", func() *vdom.VNode {
			alt := "selected image"
			if sel != nil && sel.Filename != "" {
				alt = sel.Filename
			}
			return vdom.Figure(vdom.Class("weft-uploader-preview"),
				vdom.Img(vdom.Class("weft-uploader-thumb"),
					vdom.Src(previewURL),
					vdom.Alt(alt)),
				vdom.When(sel != nil && sel.Filename != "", func() *vdom.VNode {
					return vdom.Figcaption(vdom.Text(sel.Filename))
				}),
			)
		}),

		vdom.Div(vdom.Class("weft-uploader-actions"),
			vdom.Button(
				vdom.Type("button"),
				vdom.Class("weft-btn", "weft-btn-primary"),
				vdom.AttrIf(blocked, vdom.Disabled()),
				vdom.OnClick(w.handleSend),
				vdom.IfElse(loading,
					vdom.Fragment(
						vdom.Span(vdom.Class("weft-spinner"), vdom.AriaHidden(true)),
						vdom.Text("Sending..."),
					),
					vdom.Text("Send image"),
				),
			),
			vdom.Button(
				vdom.Type("button"),
				vdom.Class("weft-btn", "weft-btn-secondary"),
				vdom.AttrIf(blocked, vdom.Disabled()),
				vdom.OnClick(w.handleClear),
				vdom.Text("Clear"),
			),
		),

		vdom.When(message != "", func() *vdom.VNode {
			tone := "weft-alert-danger"
			if status == StatusSuccess {
				tone = "weft-alert-success"
			}
			return vdom.Div(vdom.Class("weft-alert", tone),
				vdom.Role("alert"),
				vdom.Text(message))
		}),
	)
}
