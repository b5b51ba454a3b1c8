package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Frame type discriminators.
const (
	TypeEvent = "event"
	TypePatch = "patch"
	TypeEmit  = "emit"
	TypeError = "error"
)

// ErrUnknownFrame is returned when a message's type field is missing or
// not a known frame type.
var ErrUnknownFrame = errors.New("protocol: unknown frame type")

// EventFrame is a browser event forwarded to the session.
//
// HID addresses the element the event fired on. Event is the DOM event
// name ("click", "change") or "hook:{name}" for hook-originated events.
// Value carries the input value for form events; Fields carries any
// additional named values; Hook is set only on hook events.
type EventFrame struct {
	Type   string            `json:"type"`
	HID    string            `json:"hid"`
	Event  string            `json:"event"`
	Value  string            `json:"value,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Hook   *HookPayload      `json:"hook,omitempty"`
}

// HookPayload is the raw data a client hook attached to its event.
// Values are whatever JSON decoding produced; pkg/hooks wraps this in
// typed accessors.
type HookPayload struct {
	Name string         `json:"name"`
	Data map[string]any `json:"data,omitempty"`
}

// Patch replaces the subtree rooted at HID with new HTML.
type Patch struct {
	HID  string `json:"hid"`
	HTML string `json:"html"`
}

// PatchFrame carries the subtree replacements produced by one event.
type PatchFrame struct {
	Type    string  `json:"type"`
	Patches []Patch `json:"patches"`
}

// NewPatchFrame builds a patch frame.
func NewPatchFrame(patches []Patch) *PatchFrame {
	return &PatchFrame{Type: TypePatch, Patches: patches}
}

// EmitFrame delivers a named notification to the browser runtime, used
// for client-side effects like clearing a file picker.
type EmitFrame struct {
	Type string         `json:"type"`
	Name string         `json:"name"`
	Data map[string]any `json:"data,omitempty"`
}

// NewEmitFrame builds an emit frame.
func NewEmitFrame(name string, data map[string]any) *EmitFrame {
	return &EmitFrame{Type: TypeEmit, Name: name, Data: data}
}

// ErrorFrame reports a session-level failure to the client.
type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewErrorFrame builds an error frame.
func NewErrorFrame(message string) *ErrorFrame {
	return &ErrorFrame{Type: TypeError, Message: message}
}

// DecodeEvent parses a client message. Only event frames are valid in
// the client-to-server direction.
func DecodeEvent(data []byte) (*EventFrame, error) {
	var frame EventFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("protocol: decode event: %w", err)
	}
	if frame.Type != TypeEvent {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrame, frame.Type)
	}
	if frame.HID == "" {
		return nil, errors.New("protocol: event frame missing hid")
	}
	if frame.Event == "" {
		return nil, errors.New("protocol: event frame missing event")
	}
	return &frame, nil
}

// Encode serializes a server frame for the wire.
func Encode(frame any) ([]byte, error) {
	data, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode frame: %w", err)
	}
	return data, nil
}
