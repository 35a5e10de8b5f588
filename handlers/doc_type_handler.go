package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/gateway"
)

// DocTypeHandler manages document-type configurations. All checks here are
// client-side preconditions; the warehouse procedures remain the authority.
type DocTypeHandler struct {
	gw     *gateway.Gateway
	logger *slog.Logger
}

func NewDocTypeHandler(gw *gateway.Gateway, logger *slog.Logger) *DocTypeHandler {
	return &DocTypeHandler{gw: gw, logger: logger}
}

type docTypeRequest struct {
	FileType        string `json:"file_type"`
	FileDescription string `json:"file_description"`
	ChunkSize       int    `json:"chunk_size"`
	ChunkOverlap    int    `json:"chunk_overlap"`
	TargetLag       string `json:"target_lag"`
}

func (req *docTypeRequest) toConfig() gateway.FileTypeConfig {
	return gateway.FileTypeConfig{
		FileType:        strings.ToUpper(req.FileType),
		FileDescription: req.FileDescription,
		ChunkSize:       req.ChunkSize,
		ChunkOverlap:    req.ChunkOverlap,
		TargetLag:       req.TargetLag,
	}
}

func validTypeIdentifier(fileType string) bool {
	if fileType == "" {
		return false
	}
	for _, r := range fileType {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}

func validTargetLag(lag string) bool {
	for _, option := range gateway.TargetLagOptions {
		if lag == option {
			return true
		}
	}
	return false
}

func (h *DocTypeHandler) checkRequest(req *docTypeRequest) string {
	switch {
	case req.FileType == "" || req.FileDescription == "":
		return "Please fill in all required fields"
	case !validTypeIdentifier(req.FileType):
		return "File type must contain only letters, numbers, hyphens, and underscores"
	case req.ChunkSize < 100 || req.ChunkSize > 5000:
		return "Chunk size must be between 100 and 5000"
	case req.ChunkOverlap < 0 || req.ChunkOverlap > 1000:
		return "Chunk overlap must be between 0 and 1000"
	case req.ChunkOverlap >= req.ChunkSize:
		return "Chunk overlap must be smaller than chunk size"
	case !validTargetLag(req.TargetLag):
		return "Invalid target lag"
	}
	return ""
}

func (h *DocTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	configs, err := h.gw.FileTypeConfigs(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "configs": configs})
}

func (h *DocTypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req docTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := h.checkRequest(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	env := h.gw.CreateFileTypeConfig(r.Context(), req.toConfig())
	status := http.StatusOK
	if !env.Success() {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, env)
}

func (h *DocTypeHandler) Update(w http.ResponseWriter, r *http.Request) {
	fileType := mux.Vars(r)["type"]

	var req docTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.FileType = fileType
	if msg := h.checkRequest(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	env := h.gw.UpdateFileTypeConfig(r.Context(), req.toConfig())
	status := http.StatusOK
	if !env.Success() {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, env)
}

// ArmDelete records the first step of the two-step delete. No remote call
// happens until the confirmation arrives.
func (h *DocTypeHandler) ArmDelete(w http.ResponseWriter, r *http.Request) {
	fileType := mux.Vars(r)["type"]
	state := sessionState(r)

	state.Lock()
	state.ArmedDeletes["doctype:"+fileType] = true
	state.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "armed": true})
}

// CancelDelete clears the armed flag without issuing any remote call.
func (h *DocTypeHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	fileType := mux.Vars(r)["type"]
	state := sessionState(r)

	state.Lock()
	delete(state.ArmedDeletes, "doctype:"+fileType)
	state.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "armed": false})
}

// ConfirmDelete issues the destructive call, but only when the session has
// armed it first. dropData cascades into the processed chunks and files.
func (h *DocTypeHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	fileType := mux.Vars(r)["type"]
	state := sessionState(r)

	var req struct {
		DropData bool `json:"drop_data"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	state.Lock()
	armed := state.ArmedDeletes["doctype:"+fileType]
	state.Unlock()
	if !armed {
		writeError(w, http.StatusConflict, "Deletion has not been confirmed")
		return
	}

	h.logger.Info("Deleting document type",
		slog.String("file_type", fileType),
		slog.Bool("drop_data", req.DropData))

	env := h.gw.DeleteFileTypeConfig(r.Context(), fileType, req.DropData)

	state.Lock()
	delete(state.ArmedDeletes, "doctype:"+fileType)
	state.Unlock()

	status := http.StatusOK
	if !env.Success() {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, env)
}
