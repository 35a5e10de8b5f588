package handlers

import (
	"net/http"
	"strings"
	"testing"
)

func TestEditorOpenLoadsDefaultTemplate(t *testing.T) {
	h := NewEditorHandler(testLogger())
	state := newTestState(t)
	vars := map[string]string{"key": "new"}

	w := doRequest(t, h.Open, "POST", "/api/editor/new", nil, vars, state)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decodeResponse(t, w)
	if resp["mode"] != "structural" {
		t.Errorf("new editor must start structural, got %v", resp["mode"])
	}
	text, _ := resp["text"].(string)
	if !strings.Contains(text, "extraction_config") || !strings.Contains(text, "search_limit") {
		t.Errorf("default template missing expected sections:\n%s", text)
	}
}

func TestEditorOpenRejectsBadJSON(t *testing.T) {
	h := NewEditorHandler(testLogger())
	state := newTestState(t)
	vars := map[string]string{"key": "new"}

	w := doRequest(t, h.Open, "POST", "/api/editor/new",
		map[string]any{"config_json": []any{1, 2}}, vars, state)
	if w.Code != http.StatusBadRequest {
		t.Errorf("non-object config must be rejected, got %d", w.Code)
	}
}

func TestEditorModeSwitchFailureKeepsState(t *testing.T) {
	h := NewEditorHandler(testLogger())
	state := newTestState(t)
	vars := map[string]string{"key": "cfg"}

	doRequest(t, h.Open, "POST", "/api/editor/cfg",
		map[string]any{"config_json": map[string]any{"search_limit": 3}}, vars, state)

	doRequest(t, h.SetMode, "PUT", "/api/editor/cfg/mode",
		map[string]any{"mode": "textual"}, vars, state)
	doRequest(t, h.SetText, "PUT", "/api/editor/cfg/text",
		map[string]any{"text": `{"search_limit": broken`}, vars, state)

	w := doRequest(t, h.SetMode, "PUT", "/api/editor/cfg/mode",
		map[string]any{"mode": "structural"}, vars, state)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("switch over invalid JSON must fail, got %d", w.Code)
	}
	resp := decodeResponse(t, w)
	msg, _ := resp["error"].(string)
	if !strings.HasPrefix(msg, "Cannot switch: Invalid JSON") {
		t.Errorf("unexpected error message: %q", msg)
	}

	// The editor stays textual with the broken text still editable.
	w = doRequest(t, h.Get, "GET", "/api/editor/cfg", nil, vars, state)
	resp = decodeResponse(t, w)
	if resp["mode"] != "textual" {
		t.Errorf("failed switch must keep textual mode, got %v", resp["mode"])
	}
	if text, _ := resp["text"].(string); !strings.Contains(text, "broken") {
		t.Errorf("failed switch must keep the edited text, got %q", text)
	}
}

func TestEditorSetTextRequiresTextualMode(t *testing.T) {
	h := NewEditorHandler(testLogger())
	state := newTestState(t)
	vars := map[string]string{"key": "cfg"}

	doRequest(t, h.Open, "POST", "/api/editor/cfg", nil, vars, state)

	w := doRequest(t, h.SetText, "PUT", "/api/editor/cfg/text",
		map[string]any{"text": "{}"}, vars, state)
	if w.Code != http.StatusConflict {
		t.Errorf("text edits outside textual mode must be refused, got %d", w.Code)
	}
}

func TestEditorApplyOneShotStaleSubmission(t *testing.T) {
	h := NewEditorHandler(testLogger())
	state := newTestState(t)
	vars := map[string]string{"key": "cfg"}

	doRequest(t, h.Open, "POST", "/api/editor/cfg",
		map[string]any{"config_json": map[string]any{"tags": []any{"first"}}}, vars, state)

	// First submission appends and advances the sequence.
	w := doRequest(t, h.Apply, "POST", "/api/editor/cfg/apply",
		map[string]any{"op": "add_list_item", "section": "tags", "value": "second", "submission_seq": 0},
		vars, state)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	if resp["submission_seq"] != float64(1) {
		t.Fatalf("expected sequence 1, got %v", resp["submission_seq"])
	}

	// A replay of the same form submission is dropped, not applied twice.
	w = doRequest(t, h.Apply, "POST", "/api/editor/cfg/apply",
		map[string]any{"op": "add_list_item", "section": "tags", "value": "second", "submission_seq": 0},
		vars, state)
	if w.Code != http.StatusOK {
		t.Fatalf("stale submission must not error, got %d", w.Code)
	}
	resp = decodeResponse(t, w)
	if strings.Count(resp["text"].(string), "second") != 1 {
		t.Errorf("stale submission must not append again:\n%s", resp["text"])
	}
}

func TestEditorApplyDuplicateProperty(t *testing.T) {
	h := NewEditorHandler(testLogger())
	state := newTestState(t)
	vars := map[string]string{"key": "cfg"}

	doRequest(t, h.Open, "POST", "/api/editor/cfg",
		map[string]any{"config_json": map[string]any{"section": map[string]any{"existing": 1}}},
		vars, state)

	w := doRequest(t, h.Apply, "POST", "/api/editor/cfg/apply",
		map[string]any{"op": "add_property", "section": "section", "key": "existing", "value": "x"},
		vars, state)
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate key must be rejected, got %d", w.Code)
	}
}

func TestEditorApplyRequiresStructuralMode(t *testing.T) {
	h := NewEditorHandler(testLogger())
	state := newTestState(t)
	vars := map[string]string{"key": "cfg"}

	doRequest(t, h.Open, "POST", "/api/editor/cfg", nil, vars, state)
	doRequest(t, h.SetMode, "PUT", "/api/editor/cfg/mode",
		map[string]any{"mode": "textual"}, vars, state)

	w := doRequest(t, h.Apply, "POST", "/api/editor/cfg/apply",
		map[string]any{"op": "delete_section", "key": "search_limit"}, vars, state)
	if w.Code != http.StatusConflict {
		t.Errorf("structural ops in textual mode must be refused, got %d", w.Code)
	}
}

func TestEditorCloseDropsSession(t *testing.T) {
	h := NewEditorHandler(testLogger())
	state := newTestState(t)
	vars := map[string]string{"key": "cfg"}

	doRequest(t, h.Open, "POST", "/api/editor/cfg", nil, vars, state)
	doRequest(t, h.Close, "DELETE", "/api/editor/cfg", nil, vars, state)

	w := doRequest(t, h.Get, "GET", "/api/editor/cfg", nil, vars, state)
	if w.Code != http.StatusNotFound {
		t.Errorf("closed editor must be gone, got %d", w.Code)
	}
}
