package handlers

import (
	"net/http"
	"strings"
	"testing"
)

func TestProcessingConfigSaveBlockedByValidation(t *testing.T) {
	q := &fakeQuerier{replies: map[string][]map[string]any{
		"CALL PROCESSING_CONFIGS_VALIDATE": callReply(t, "PROCESSING_CONFIGS_VALIDATE",
			map[string]any{"is_valid": false, "errors": []any{"extraction_config is required"}}),
	}}
	h := NewProcessingConfigHandler(testGateway(q), testLogger())

	w := doRequest(t, h.Create, "POST", "/api/processing-configs", map[string]any{
		"config_name":     "broken",
		"processing_type": "CORTEX_SEARCH",
		"config_model":    "claude-4-sonnet",
		"config_json":     map[string]any{"wrong": true},
	}, nil, newTestState(t))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if q.sawStatement("CALL PROCESSING_CONFIGS_CREATE") {
		t.Fatal("a config that failed validation must never be saved")
	}

	resp := decodeResponse(t, w)
	if resp["error"] != "Configuration validation failed" {
		t.Errorf("unexpected error: %v", resp["error"])
	}
	if resp["validation"] == nil {
		t.Error("response must carry the validator's findings")
	}
}

func TestProcessingConfigSaveValidatesThenCreates(t *testing.T) {
	q := &fakeQuerier{replies: map[string][]map[string]any{
		"CALL PROCESSING_CONFIGS_VALIDATE": callReply(t, "PROCESSING_CONFIGS_VALIDATE",
			map[string]any{"is_valid": true, "warnings": []any{"search_limit missing, defaulting to 3"}}),
		"CALL PROCESSING_CONFIGS_CREATE": callReply(t, "PROCESSING_CONFIGS_CREATE",
			map[string]any{"success": true}),
	}}
	h := NewProcessingConfigHandler(testGateway(q), testLogger())

	w := doRequest(t, h.Create, "POST", "/api/processing-configs", map[string]any{
		"config_name":     "msa_sow",
		"processing_type": "CORTEX_SEARCH",
		"config_model":    "claude-4-sonnet",
		"config_json":     map[string]any{"extraction_config": map[string]any{"q1": "question"}},
	}, nil, newTestState(t))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(q.statements) != 2 {
		t.Fatalf("expected validate then create, got %v", q.statements)
	}
	if !strings.HasPrefix(q.statements[0], "CALL PROCESSING_CONFIGS_VALIDATE") {
		t.Errorf("validation must run first, got %s", q.statements[0])
	}
	if !strings.HasPrefix(q.statements[1], "CALL PROCESSING_CONFIGS_CREATE('msa_sow', 'CORTEX_SEARCH'") {
		t.Errorf("unexpected create statement: %s", q.statements[1])
	}

	resp := decodeResponse(t, w)
	if resp["validation"] == nil {
		t.Error("successful save must still surface warnings")
	}
}

func TestProcessingConfigSaveFromEditorSession(t *testing.T) {
	q := &fakeQuerier{replies: map[string][]map[string]any{
		"CALL PROCESSING_CONFIGS_VALIDATE": callReply(t, "PROCESSING_CONFIGS_VALIDATE",
			map[string]any{"is_valid": true}),
		"CALL PROCESSING_CONFIGS_UPDATE": callReply(t, "PROCESSING_CONFIGS_UPDATE",
			map[string]any{"success": true}),
	}}
	configs := NewProcessingConfigHandler(testGateway(q), testLogger())
	editors := NewEditorHandler(testLogger())
	state := newTestState(t)

	doRequest(t, editors.Open, "POST", "/api/editor/msa_sow",
		map[string]any{"config_json": map[string]any{"search_limit": 5}},
		map[string]string{"key": "msa_sow"}, state)

	w := doRequest(t, configs.Update, "PUT", "/api/processing-configs/msa_sow", map[string]any{
		"processing_type": "AI_EXTRACT",
		"config_model":    "llama3-8b",
		"editor_key":      "msa_sow",
	}, map[string]string{"name": "msa_sow"}, state)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updateStmt string
	for _, stmt := range q.statements {
		if strings.HasPrefix(stmt, "CALL PROCESSING_CONFIGS_UPDATE") {
			updateStmt = stmt
		}
	}
	if updateStmt == "" {
		t.Fatalf("no update statement issued: %v", q.statements)
	}
	if !strings.Contains(updateStmt, "search_limit") {
		t.Errorf("update must carry the editor's document: %s", updateStmt)
	}
}

func TestProcessingConfigSaveUnknownEditor(t *testing.T) {
	q := &fakeQuerier{}
	h := NewProcessingConfigHandler(testGateway(q), testLogger())

	w := doRequest(t, h.Create, "POST", "/api/processing-configs", map[string]any{
		"config_name":     "msa_sow",
		"processing_type": "CORTEX_SEARCH",
		"config_model":    "claude-4-sonnet",
		"editor_key":      "never-opened",
	}, nil, newTestState(t))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a missing editor session, got %d", w.Code)
	}
	if len(q.statements) != 0 {
		t.Error("missing editor session must not reach the warehouse")
	}
}

func TestProcessingConfigRequestChecks(t *testing.T) {
	h := NewProcessingConfigHandler(testGateway(&fakeQuerier{}), testLogger())

	cases := []map[string]any{
		{"processing_type": "CORTEX_SEARCH", "config_model": "m", "config_json": map[string]any{}},
		{"config_name": "a", "processing_type": "WRONG", "config_model": "m", "config_json": map[string]any{}},
		{"config_name": "a", "processing_type": "CORTEX_SEARCH", "config_json": map[string]any{}},
	}
	for i, body := range cases {
		w := doRequest(t, h.Create, "POST", "/api/processing-configs", body, nil, newTestState(t))
		if w.Code != http.StatusBadRequest {
			t.Errorf("case %d: expected 400, got %d", i, w.Code)
		}
	}
}

func TestProcessingConfigDeleteTwoStep(t *testing.T) {
	q := &fakeQuerier{replies: map[string][]map[string]any{
		"CALL PROCESSING_CONFIGS_DELETE": callReply(t, "PROCESSING_CONFIGS_DELETE",
			map[string]any{"success": true}),
	}}
	h := NewProcessingConfigHandler(testGateway(q), testLogger())
	state := newTestState(t)
	vars := map[string]string{"name": "msa_sow"}

	w := doRequest(t, h.ConfirmDelete, "POST", "/api/processing-configs/msa_sow/delete/confirm",
		nil, vars, state)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 before arming, got %d", w.Code)
	}

	doRequest(t, h.ArmDelete, "POST", "/api/processing-configs/msa_sow/delete", nil, vars, state)
	w = doRequest(t, h.ConfirmDelete, "POST", "/api/processing-configs/msa_sow/delete/confirm",
		nil, vars, state)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	want := "CALL PROCESSING_CONFIGS_DELETE('msa_sow')"
	if len(q.statements) != 1 || q.statements[0] != want {
		t.Errorf("statement %v, want %q", q.statements, want)
	}
}
