package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/gateway"
)

// ComparisonHandler runs ad-hoc AI comparisons of 1-2 staged documents
// under a chosen processing configuration, and serves the result table,
// chart data and exports. Results live only in session state.
type ComparisonHandler struct {
	gw     *gateway.Gateway
	logger *slog.Logger
}

func NewComparisonHandler(gw *gateway.Gateway, logger *slog.Logger) *ComparisonHandler {
	return &ComparisonHandler{gw: gw, logger: logger}
}

type comparisonRequest struct {
	Documents  []gateway.FileRef `json:"documents"`
	ConfigName string            `json:"config_name"`
	Model      string            `json:"model,omitempty"`
}

type comparisonResponse struct {
	gateway.ComparisonResult
	ModelOverridden bool       `json:"model_overridden,omitempty"`
	Charts          *chartData `json:"charts,omitempty"`
}

// Run invokes the comparison procedure for the selected documents. The
// model defaults to the configuration's model and may be overridden per
// run.
func (h *ComparisonHandler) Run(w http.ResponseWriter, r *http.Request) {
	state := sessionState(r)

	var req comparisonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Documents) < 1 || len(req.Documents) > 2 {
		writeError(w, http.StatusBadRequest, "Select 1 or 2 documents to analyze")
		return
	}
	for _, doc := range req.Documents {
		if doc.FileName == "" || doc.FileType == "" {
			writeError(w, http.StatusBadRequest, "Every document needs a file and a document type")
			return
		}
	}
	if req.ConfigName == "" {
		writeError(w, http.StatusBadRequest, "Select a processing configuration")
		return
	}

	configs, err := h.gw.ProcessingConfigs(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	var selected *gateway.ProcessingConfig
	for i := range configs {
		if configs[i].ConfigName == req.ConfigName {
			selected = &configs[i]
			break
		}
	}
	if selected == nil {
		writeError(w, http.StatusNotFound, "Unknown processing configuration: "+req.ConfigName)
		return
	}

	model := req.Model
	if model == "" {
		model = selected.ConfigModel
	}

	h.logger.Info("Running document comparison",
		slog.String("config_name", selected.ConfigName),
		slog.String("processing_type", selected.ProcessingType),
		slog.String("model", model),
		slog.Int("documents", len(req.Documents)))

	result := h.gw.CompareFiles(r.Context(), selected.ProcessingType, req.Documents, selected.ConfigJSON, model)

	state.Lock()
	state.LastComparison = &result
	state.Unlock()

	if result.Error != "" && !result.Success {
		writeJSON(w, http.StatusBadGateway, map[string]any{"success": false, "error": result.Error})
		return
	}

	writeJSON(w, http.StatusOK, comparisonResponse{
		ComparisonResult: result,
		ModelOverridden:  model != selected.ConfigModel,
		Charts:           buildCharts(&result),
	})
}

// Results replays the session's last comparison, if any.
func (h *ComparisonHandler) Results(w http.ResponseWriter, r *http.Request) {
	state := sessionState(r)

	state.Lock()
	result := state.LastComparison
	state.Unlock()

	if result == nil {
		writeError(w, http.StatusNotFound, "No comparison results available")
		return
	}
	writeJSON(w, http.StatusOK, comparisonResponse{
		ComparisonResult: *result,
		Charts:           buildCharts(result),
	})
}

// Clear drops the session's stored results.
func (h *ComparisonHandler) Clear(w http.ResponseWriter, r *http.Request) {
	state := sessionState(r)

	state.Lock()
	state.LastComparison = nil
	state.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ExportJSON downloads the raw result document.
func (h *ComparisonHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	state := sessionState(r)

	state.Lock()
	result := state.LastComparison
	state.Unlock()

	if result == nil {
		writeError(w, http.StatusNotFound, "No comparison results available")
		return
	}

	filename := fmt.Sprintf("frostlogic_results_%s.json", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(result)
}

// ExportCSV downloads the result table: one row per category with the
// extraction question, per-file answers and evaluation columns.
func (h *ComparisonHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	state := sessionState(r)

	state.Lock()
	result := state.LastComparison
	state.Unlock()

	if result == nil {
		writeError(w, http.StatusNotFound, "No comparison results available")
		return
	}

	filename := fmt.Sprintf("frostlogic_results_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	files := make([]string, 0, len(result.FilesAnalyzed))
	for _, ref := range result.FilesAnalyzed {
		files = append(files, ref.FileName)
	}

	header := []string{"Category", "Extraction Question"}
	for _, file := range files {
		header = append(header, "Answer ("+cleanFileName(file)+")")
	}
	header = append(header, "Evaluation Score", "Evaluation Explanation")

	cw := csv.NewWriter(w)
	cw.Write(header)
	for _, category := range sortedCategories(result) {
		data := result.Results[category]
		row := []string{displayCategory(category), data.ExtractionQuestion}
		for _, file := range files {
			row = append(row, data.FileAnswers[file])
		}
		if data.Evaluation != nil {
			row = append(row,
				fmt.Sprintf("%.2f", data.Evaluation.EvaluationScore),
				data.Evaluation.EvaluationExplanation)
		} else {
			row = append(row, "", "")
		}
		cw.Write(row)
	}
	cw.Flush()
}

func sortedCategories(result *gateway.ComparisonResult) []string {
	categories := make([]string, 0, len(result.Results))
	for category := range result.Results {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// cleanFileName strips the stage qualifier from a path for display:
// @MSA_STAGE/contract1.pdf -> contract1.pdf.
func cleanFileName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return strings.TrimPrefix(path, "@")
}

// displayCategory turns snake_case category keys into titles the way the
// result table shows them.
func displayCategory(category string) string {
	words := strings.Split(category, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
