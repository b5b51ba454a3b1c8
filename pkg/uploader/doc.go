// Package uploader is the single-image product upload widget.
//
// The widget pairs a file picker with a send button: choosing a file
// stores it through the intake endpoint and shows a preview, Send
// forwards the stored bytes to the product image API, and a banner
// reports the outcome. A parent can Enable and Disable the whole
// widget.
//
// The send runs as a reactive Action with no timeout and no
// cancellation path: once started, the attempt resolves on its own
// terms, and its completion is applied even if the widget was disabled
// mid-flight.
package uploader
