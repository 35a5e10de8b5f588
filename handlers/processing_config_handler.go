package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/gateway"
	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/sessionstore"
)

// ProcessingConfigHandler manages AI processing configurations. Saves are
// always gated on the warehouse-side validator: a rejected config is never
// sent to create/update.
type ProcessingConfigHandler struct {
	gw     *gateway.Gateway
	logger *slog.Logger
}

func NewProcessingConfigHandler(gw *gateway.Gateway, logger *slog.Logger) *ProcessingConfigHandler {
	return &ProcessingConfigHandler{gw: gw, logger: logger}
}

type processingConfigRequest struct {
	ConfigName     string          `json:"config_name"`
	ProcessingType string          `json:"processing_type"`
	ConfigModel    string          `json:"config_model"`
	ConfigJSON     json.RawMessage `json:"config_json,omitempty"`
	EditorKey      string          `json:"editor_key,omitempty"`
}

// resolveBody picks the config body: an open editor session when an editor
// key is given (the editor always yields the authoritative structural
// document regardless of its active mode), else the inline payload.
func resolveBody(state *sessionstore.State, req *processingConfigRequest) (json.RawMessage, string) {
	if req.EditorKey != "" {
		state.Lock()
		editor, ok := state.Editors[req.EditorKey]
		state.Unlock()
		if !ok {
			return nil, "No editor session for " + req.EditorKey
		}
		doc, err := editor.Document().Serialize()
		if err != nil {
			return nil, err.Error()
		}
		return json.RawMessage(doc), ""
	}
	if len(req.ConfigJSON) == 0 {
		return nil, "Configuration body is required"
	}
	return req.ConfigJSON, ""
}

func (h *ProcessingConfigHandler) checkRequest(req *processingConfigRequest) string {
	switch {
	case req.ConfigName == "":
		return "Please enter a configuration name"
	case req.ProcessingType != gateway.ProcessingTypeCortexSearch &&
		req.ProcessingType != gateway.ProcessingTypeAIExtract:
		return "Unknown processing type: " + req.ProcessingType
	case req.ConfigModel == "":
		return "Please choose an AI model"
	}
	return ""
}

func (h *ProcessingConfigHandler) List(w http.ResponseWriter, r *http.Request) {
	configs, err := h.gw.ProcessingConfigs(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "configs": configs})
}

func (h *ProcessingConfigHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

func (h *ProcessingConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, mux.Vars(r)["name"])
}

// save handles both create and update: resolve the body, validate it
// remotely, then persist. A failed validation blocks the save entirely.
func (h *ProcessingConfigHandler) save(w http.ResponseWriter, r *http.Request, configName string) {
	state := sessionState(r)

	var req processingConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if configName != "" {
		req.ConfigName = configName
	}
	if msg := h.checkRequest(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	body, msg := resolveBody(state, &req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	validation := h.gw.ValidateProcessingConfig(r.Context(), body)
	if !validation.IsValid {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success":    false,
			"error":      "Configuration validation failed",
			"validation": validation,
		})
		return
	}

	cfg := gateway.ProcessingConfig{
		ConfigName:     req.ConfigName,
		ProcessingType: req.ProcessingType,
		ConfigModel:    req.ConfigModel,
		ConfigJSON:     body,
	}

	var env gateway.Envelope
	if configName == "" {
		env = h.gw.CreateProcessingConfig(r.Context(), cfg)
	} else {
		env = h.gw.UpdateProcessingConfig(r.Context(), cfg)
	}

	status := http.StatusOK
	if !env.Success() {
		status = http.StatusBadGateway
	}
	if env.Success() {
		env["validation"] = validation
	}
	writeJSON(w, status, env)
}

// Validate runs the warehouse validator without saving, mirroring the test
// button on a stored configuration.
func (h *ProcessingConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	state := sessionState(r)

	var req processingConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	body, msg := resolveBody(state, &req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	validation := h.gw.ValidateProcessingConfig(r.Context(), body)
	writeJSON(w, http.StatusOK, validation)
}

func (h *ProcessingConfigHandler) ArmDelete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	state := sessionState(r)

	state.Lock()
	state.ArmedDeletes["config:"+name] = true
	state.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "armed": true})
}

func (h *ProcessingConfigHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	state := sessionState(r)

	state.Lock()
	delete(state.ArmedDeletes, "config:"+name)
	state.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "armed": false})
}

func (h *ProcessingConfigHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	state := sessionState(r)

	state.Lock()
	armed := state.ArmedDeletes["config:"+name]
	state.Unlock()
	if !armed {
		writeError(w, http.StatusConflict, "Deletion has not been confirmed")
		return
	}

	h.logger.Info("Deleting processing configuration", slog.String("config_name", name))
	env := h.gw.DeleteProcessingConfig(r.Context(), name)

	state.Lock()
	delete(state.ArmedDeletes, "config:"+name)
	state.Unlock()

	status := http.StatusOK
	if !env.Success() {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, env)
}
