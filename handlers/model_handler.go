package handlers

import (
	"log/slog"
	"net/http"

	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/gateway"
)

// ModelHandler serves the AI model catalog for the configuration forms.
type ModelHandler struct {
	gw     *gateway.Gateway
	logger *slog.Logger
}

func NewModelHandler(gw *gateway.Gateway, logger *slog.Logger) *ModelHandler {
	return &ModelHandler{gw: gw, logger: logger}
}

func (h *ModelHandler) List(w http.ResponseWriter, r *http.Request) {
	catalog := h.gw.AvailableModels(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"supported_models":   catalog.SupportedModels,
		"default_model":      catalog.DefaultModel,
		"recommended_models": catalog.RecommendedModels,
	})
}

// AvailableFileTypes lists the document types that currently have
// processed files, for the comparison page selectors.
func (h *ModelHandler) AvailableFileTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.gw.AvailableFileTypes(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "file_types": types})
}
