package protocol

import (
	"strings"
	"testing"
)

func TestDecodeEvent(t *testing.T) {
	t.Run("dom event", func(t *testing.T) {
		frame, err := DecodeEvent([]byte(`{"type":"event","hid":"c1e2","event":"click"}`))
		if err != nil {
			t.Fatalf("DecodeEvent: %v", err)
		}
		if frame.HID != "c1e2" || frame.Event != "click" {
			t.Errorf("frame = %+v", frame)
		}
	})

	t.Run("input event with value", func(t *testing.T) {
		frame, err := DecodeEvent([]byte(`{"type":"event","hid":"h3","event":"input","value":"abc"}`))
		if err != nil {
			t.Fatalf("DecodeEvent: %v", err)
		}
		if frame.Value != "abc" {
			t.Errorf("Value = %q, want abc", frame.Value)
		}
	})

	t.Run("hook event", func(t *testing.T) {
		raw := `{"type":"event","hid":"c1e1","event":"hook:files","hook":{"name":"files","data":{"count":1,"temp_id":"abc"}}}`
		frame, err := DecodeEvent([]byte(raw))
		if err != nil {
			t.Fatalf("DecodeEvent: %v", err)
		}
		if frame.Hook == nil {
			t.Fatal("Hook = nil")
		}
		if frame.Hook.Name != "files" {
			t.Errorf("Hook.Name = %q, want files", frame.Hook.Name)
		}
		// JSON numbers decode as float64.
		if frame.Hook.Data["count"] != float64(1) {
			t.Errorf("count = %v (%T), want 1", frame.Hook.Data["count"], frame.Hook.Data["count"])
		}
		if frame.Hook.Data["temp_id"] != "abc" {
			t.Errorf("temp_id = %v", frame.Hook.Data["temp_id"])
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := DecodeEvent([]byte(`{nope`)); err == nil {
			t.Fatal("expected error for invalid JSON")
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := DecodeEvent([]byte(`{"type":"patch","hid":"x","event":"click"}`))
		if err == nil {
			t.Fatal("expected error for non-event frame")
		}
	})

	t.Run("missing hid", func(t *testing.T) {
		if _, err := DecodeEvent([]byte(`{"type":"event","event":"click"}`)); err == nil {
			t.Fatal("expected error for missing hid")
		}
	})

	t.Run("missing event", func(t *testing.T) {
		if _, err := DecodeEvent([]byte(`{"type":"event","hid":"h1"}`)); err == nil {
			t.Fatal("expected error for missing event name")
		}
	})
}

func TestEncodeFrames(t *testing.T) {
	t.Run("patch frame", func(t *testing.T) {
		data, err := Encode(NewPatchFrame([]Patch{{HID: "c1", HTML: "<div data-hid=\"c1\"></div>"}}))
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		s := string(data)
		if !strings.Contains(s, `"type":"patch"`) || !strings.Contains(s, `"hid":"c1"`) {
			t.Errorf("encoded = %s", s)
		}
	})

	t.Run("emit frame", func(t *testing.T) {
		data, err := Encode(NewEmitFrame("weft:picker:clear", nil))
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		s := string(data)
		if !strings.Contains(s, `"type":"emit"`) || !strings.Contains(s, `"name":"weft:picker:clear"`) {
			t.Errorf("encoded = %s", s)
		}
		if strings.Contains(s, `"data"`) {
			t.Errorf("nil data should be omitted: %s", s)
		}
	})

	t.Run("error frame", func(t *testing.T) {
		data, err := Encode(NewErrorFrame("boom"))
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if !strings.Contains(string(data), `"message":"boom"`) {
			t.Errorf("encoded = %s", data)
		}
	})
}
