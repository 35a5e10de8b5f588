package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/docedit"
)

// defaultConfigTemplate seeds a brand-new processing configuration.
const defaultConfigTemplate = `{
  "extraction_config": {
    "effective_date": "What is the effective date or start date of this agreement?",
    "agreement_duration": "What is the duration or term of this agreement?",
    "payment_terms": "What are the payment terms?"
  },
  "evaluation_config": {
    "effective_date": "Does the SOW start date fall within the MSA effective period?",
    "agreement_duration": "Is the SOW duration within the MSA term limits?",
    "payment_terms": "Do the SOW payment terms comply with MSA requirements?"
  },
  "search_limit": 3
}`

// EditorHandler drives the dual-mode configuration editor over the session
// store. Each editor key (one per config being edited, plus one for the
// new-config form) owns an independent editing session.
type EditorHandler struct {
	logger *slog.Logger
}

func NewEditorHandler(logger *slog.Logger) *EditorHandler {
	return &EditorHandler{logger: logger}
}

type editorStateResponse struct {
	Success       bool            `json:"success"`
	Mode          docedit.Mode    `json:"mode"`
	Text          string          `json:"text"`
	Document      json.RawMessage `json:"document"`
	SubmissionSeq int             `json:"submission_seq"`
}

func editorState(e *docedit.Editor) editorStateResponse {
	doc, _ := e.Document().Serialize()
	return editorStateResponse{
		Success:       true,
		Mode:          e.Mode(),
		Text:          e.Text(),
		Document:      json.RawMessage(doc),
		SubmissionSeq: e.SubmissionSeq(),
	}
}

// Open starts (or restarts) an editing session. Without a body the default
// configuration template is loaded.
func (h *EditorHandler) Open(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	state := sessionState(r)

	var req struct {
		ConfigJSON json.RawMessage `json:"config_json"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if len(req.ConfigJSON) == 0 {
		req.ConfigJSON = json.RawMessage(defaultConfigTemplate)
	}

	editor, err := docedit.NewEditorFromJSON(req.ConfigJSON)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	state.Lock()
	state.Editors[key] = editor
	state.Unlock()

	writeJSON(w, http.StatusOK, editorState(editor))
}

func (h *EditorHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	state := sessionState(r)

	state.Lock()
	defer state.Unlock()
	editor, ok := state.Editors[key]
	if !ok {
		writeError(w, http.StatusNotFound, "No editor session for "+key)
		return
	}
	writeJSON(w, http.StatusOK, editorState(editor))
}

// Close drops an editing session without saving anything.
func (h *EditorHandler) Close(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	state := sessionState(r)

	state.Lock()
	delete(state.Editors, key)
	state.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// SetMode switches between the structural and textual views. Switching to
// structural parses the text buffer first; on parse failure the switch is
// discarded and the previous document and mode are both kept.
func (h *EditorHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	state := sessionState(r)

	var req struct {
		Mode docedit.Mode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state.Lock()
	defer state.Unlock()
	editor, ok := state.Editors[key]
	if !ok {
		writeError(w, http.StatusNotFound, "No editor session for "+key)
		return
	}

	switch req.Mode {
	case docedit.ModeTextual:
		editor.SwitchToTextual()
	case docedit.ModeStructural:
		if err := editor.SwitchToStructural(); err != nil {
			writeError(w, http.StatusBadRequest, "Cannot switch: Invalid JSON - "+err.Error())
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "Unknown editor mode")
		return
	}
	writeJSON(w, http.StatusOK, editorState(editor))
}

// SetText replaces the text buffer while the textual view is active.
func (h *EditorHandler) SetText(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	state := sessionState(r)

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state.Lock()
	defer state.Unlock()
	editor, ok := state.Editors[key]
	if !ok {
		writeError(w, http.StatusNotFound, "No editor session for "+key)
		return
	}
	if editor.Mode() != docedit.ModeTextual {
		writeError(w, http.StatusConflict, "Editor is not in text mode")
		return
	}

	editor.SetText(req.Text)
	writeJSON(w, http.StatusOK, editorState(editor))
}

// Validate parses the text buffer and commits it on success. Failure
// reports the decode error and leaves the document untouched.
func (h *EditorHandler) Validate(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	state := sessionState(r)

	state.Lock()
	defer state.Unlock()
	editor, ok := state.Editors[key]
	if !ok {
		writeError(w, http.StatusNotFound, "No editor session for "+key)
		return
	}

	if err := editor.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, editorState(editor))
}

type editorOpRequest struct {
	Op            string `json:"op"`
	Section       string `json:"section,omitempty"`
	Key           string `json:"key,omitempty"`
	NewKey        string `json:"new_key,omitempty"`
	Index         int    `json:"index,omitempty"`
	Value         string `json:"value,omitempty"`
	SectionType   string `json:"section_type,omitempty"`
	SubmissionSeq *int   `json:"submission_seq,omitempty"`
}

// Apply performs one structural mutation. One-shot adds carry the
// submission sequence they were rendered with; a stale sequence means the
// form already submitted once, so the request is dropped and the fresh
// state returned instead of adding twice.
func (h *EditorHandler) Apply(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	state := sessionState(r)

	var req editorOpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state.Lock()
	defer state.Unlock()
	editor, ok := state.Editors[key]
	if !ok {
		writeError(w, http.StatusNotFound, "No editor session for "+key)
		return
	}
	if editor.Mode() != docedit.ModeStructural {
		writeError(w, http.StatusConflict, "Editor is not in structural mode")
		return
	}

	if isOneShotOp(req.Op) && req.SubmissionSeq != nil && *req.SubmissionSeq != editor.SubmissionSeq() {
		writeJSON(w, http.StatusOK, editorState(editor))
		return
	}

	var err error
	switch req.Op {
	case "rename_section":
		editor.RenameSection(req.Key, req.NewKey)
	case "rename_property":
		editor.RenameProperty(req.Section, req.Key, req.NewKey)
	case "set_section_value":
		err = editor.SetSectionValue(req.Section, req.Value)
	case "set_property":
		err = editor.SetProperty(req.Section, req.Key, req.Value)
	case "set_list_item":
		err = editor.SetListItem(req.Section, req.Index, req.Value)
	case "add_property":
		err = editor.AddProperty(req.Section, req.Key, req.Value)
	case "add_list_item":
		err = editor.AddListItem(req.Section, req.Value)
	case "add_section":
		err = editor.AddSection(req.Key, req.SectionType)
	case "delete_section":
		editor.DeleteSection(req.Key)
	case "delete_property":
		editor.DeleteProperty(req.Section, req.Key)
	case "delete_list_item":
		editor.DeleteListItem(req.Section, req.Index)
	default:
		writeError(w, http.StatusBadRequest, "Unknown editor operation: "+req.Op)
		return
	}

	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, editorState(editor))
}

func isOneShotOp(op string) bool {
	switch op {
	case "add_property", "add_list_item", "add_section":
		return true
	}
	return false
}
