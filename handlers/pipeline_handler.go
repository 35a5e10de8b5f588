package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/gateway"
)

// PipelineHandler serves the pipeline dashboard: provisioning, status
// snapshots and manual file sync. Status is polled synchronously per
// request; nothing is cached or refreshed in the background.
type PipelineHandler struct {
	gw     *gateway.Gateway
	logger *slog.Logger
}

func NewPipelineHandler(gw *gateway.Gateway, logger *slog.Logger) *PipelineHandler {
	return &PipelineHandler{gw: gw, logger: logger}
}

type pipelineOverviewRow struct {
	FileType      string `json:"file_type"`
	Stage         bool   `json:"stage"`
	Stream        bool   `json:"stream"`
	Task          bool   `json:"task"`
	SearchService bool   `json:"search_service"`
	TaskState     string `json:"task_state,omitempty"`
	PendingFiles  bool   `json:"pending_files"`
	TotalFiles    int    `json:"total_files"`
	TotalChunks   int    `json:"total_chunks"`
	LastProcessed string `json:"last_processed,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Overview reports one status row per registered document type.
func (h *PipelineHandler) Overview(w http.ResponseWriter, r *http.Request) {
	configs, err := h.gw.FileTypeConfigs(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	rows := make([]pipelineOverviewRow, 0, len(configs))
	for _, cfg := range configs {
		status := h.gw.PipelineStatus(r.Context(), cfg.FileType)
		row := pipelineOverviewRow{FileType: cfg.FileType}
		if status.Error != "" {
			row.Error = status.Error
		} else {
			row.Stage = status.Objects["stage"].Exists
			row.Stream = status.Objects["stream"].Exists
			row.Task = status.Objects["task"].Exists
			row.SearchService = status.Objects["search_service"].Exists
			row.TaskState = status.Objects["task"].State
			row.PendingFiles = status.Objects["stream"].HasData
			row.TotalFiles = status.Data.TotalFiles
			row.TotalChunks = status.Data.TotalChunks
			row.LastProcessed = status.Data.LastProcessed
		}
		rows = append(rows, row)
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "pipelines": rows})
}

// Status returns the full snapshot for one document type.
func (h *PipelineHandler) Status(w http.ResponseWriter, r *http.Request) {
	fileType := mux.Vars(r)["type"]
	status := h.gw.PipelineStatus(r.Context(), fileType)
	if status.Error != "" {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": status.Error})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// Setup provisions the stage/stream/task/search-service quartet using the
// type's stored chunking parameters.
func (h *PipelineHandler) Setup(w http.ResponseWriter, r *http.Request) {
	fileType := mux.Vars(r)["type"]

	cfg, ok, err := h.findConfig(r, fileType)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown document type: "+fileType)
		return
	}

	h.logger.Info("Setting up processing pipeline", slog.String("file_type", fileType))
	result, env := h.gw.SetupPipeline(r.Context(), cfg)
	if !env.Success() {
		writeJSON(w, http.StatusBadGateway, env)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Sync manually processes staged files into chunks, reporting per-file
// outcomes. Chunk parameters default to the type's configuration.
func (h *PipelineHandler) Sync(w http.ResponseWriter, r *http.Request) {
	fileType := mux.Vars(r)["type"]

	var req struct {
		ChunkSize      int  `json:"chunk_size"`
		ChunkOverlap   int  `json:"chunk_overlap"`
		ForceReprocess bool `json:"force_reprocess"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	if req.ChunkSize == 0 {
		cfg, ok, err := h.findConfig(r, fileType)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "Unknown document type: "+fileType)
			return
		}
		req.ChunkSize = cfg.ChunkSize
		req.ChunkOverlap = cfg.ChunkOverlap
	}

	h.logger.Info("Syncing files from stage",
		slog.String("file_type", fileType),
		slog.Int("chunk_size", req.ChunkSize),
		slog.Int("chunk_overlap", req.ChunkOverlap),
		slog.Bool("force_reprocess", req.ForceReprocess))

	result := h.gw.SyncFiles(r.Context(), fileType, req.ChunkSize, req.ChunkOverlap, req.ForceReprocess)
	if result.Error != "" && !result.Success {
		writeJSON(w, http.StatusBadGateway, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Files lists processed files for a type, each with its stage-qualified
// path.
func (h *PipelineHandler) Files(w http.ResponseWriter, r *http.Request) {
	fileType := mux.Vars(r)["type"]

	files, err := h.gw.FilesByType(r.Context(), fileType)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "files": files})
}

// StageFiles browses the raw stage contents for a type.
func (h *PipelineHandler) StageFiles(w http.ResponseWriter, r *http.Request) {
	fileType := mux.Vars(r)["type"]

	exists, err := h.gw.StageExists(r.Context(), fileType)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound,
			"Stage "+gateway.StageName(fileType)+" not found. Please set up the pipeline first.")
		return
	}

	files, err := h.gw.ListStageFiles(r.Context(), fileType)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "files": files})
}

// Pipeline cleanup reuses the document-type delete procedure and carries
// the same two-step confirmation.

func (h *PipelineHandler) ArmCleanup(w http.ResponseWriter, r *http.Request) {
	fileType := mux.Vars(r)["type"]
	state := sessionState(r)

	state.Lock()
	state.ArmedDeletes["pipeline:"+fileType] = true
	state.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "armed": true})
}

func (h *PipelineHandler) CancelCleanup(w http.ResponseWriter, r *http.Request) {
	fileType := mux.Vars(r)["type"]
	state := sessionState(r)

	state.Lock()
	delete(state.ArmedDeletes, "pipeline:"+fileType)
	state.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "armed": false})
}

func (h *PipelineHandler) ConfirmCleanup(w http.ResponseWriter, r *http.Request) {
	fileType := mux.Vars(r)["type"]
	state := sessionState(r)

	var req struct {
		DropData bool `json:"drop_data"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	state.Lock()
	armed := state.ArmedDeletes["pipeline:"+fileType]
	state.Unlock()
	if !armed {
		writeError(w, http.StatusConflict, "Cleanup has not been confirmed")
		return
	}

	h.logger.Info("Cleaning up pipeline",
		slog.String("file_type", fileType),
		slog.Bool("drop_data", req.DropData))

	env := h.gw.DeleteFileTypeConfig(r.Context(), fileType, req.DropData)

	state.Lock()
	delete(state.ArmedDeletes, "pipeline:"+fileType)
	state.Unlock()

	status := http.StatusOK
	if !env.Success() {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, env)
}

func (h *PipelineHandler) findConfig(r *http.Request, fileType string) (gateway.FileTypeConfig, bool, error) {
	configs, err := h.gw.FileTypeConfigs(r.Context())
	if err != nil {
		return gateway.FileTypeConfig{}, false, err
	}
	for _, cfg := range configs {
		if cfg.FileType == fileType {
			return cfg, true, nil
		}
	}
	return gateway.FileTypeConfig{}, false, nil
}
