package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// StageName derives the stage holding a document type's uploads.
func StageName(fileType string) string {
	return fileType + "_STAGE"
}

// StagePath builds the stage-qualified path the procedures parse
// positionally: @{STAGE_NAME}/{FULL_PATH}, or @{STAGE_NAME} when no
// relative path is present. The concatenation rule is exact.
func StagePath(stageName, fullPath string) string {
	if fullPath == "" {
		return "@" + stageName
	}
	return "@" + stageName + "/" + fullPath
}

// fallbackModels mirrors the catalog served when GET_AVAILABLE_MODELS is
// unreachable, so the console stays usable.
func fallbackModels() ModelCatalog {
	return ModelCatalog{
		SupportedModels: []string{
			"claude-4-sonnet",
			"claude-3-5-sonnet",
			"claude-3-7-sonnet",
			"llama3-8b",
			"mixtral-8x7b",
			"snowflake-llama-3.1-405b",
		},
		DefaultModel: "claude-4-sonnet",
		RecommendedModels: map[string]string{
			"quality":  "claude-4-sonnet",
			"balanced": "mixtral-8x7b",
			"speed":    "llama3-8b",
		},
	}
}

// AvailableModels returns the supported model identifiers plus recommended
// subsets, falling back to a static catalog when the procedure fails.
func (g *Gateway) AvailableModels(ctx context.Context) ModelCatalog {
	env := g.Call(ctx, "GET_AVAILABLE_MODELS")
	if msg := env.ErrorMessage(); msg != "" {
		g.logger.Warn("Falling back to static model catalog",
			slog.String("error", msg))
		return fallbackModels()
	}

	var catalog ModelCatalog
	if err := env.Decode(&catalog); err != nil || len(catalog.SupportedModels) == 0 {
		return fallbackModels()
	}
	return catalog
}

// FileTypeConfigs lists every registered document type. This procedure
// replies with a row set rather than the single-cell convention.
func (g *Gateway) FileTypeConfigs(ctx context.Context) ([]FileTypeConfig, error) {
	rows, err := g.queryRows(ctx, "CALL FILE_TYPE_CONFIGS_GET()")
	if err != nil {
		return nil, err
	}

	configs := make([]FileTypeConfig, 0, len(rows))
	for _, row := range rows {
		configs = append(configs, FileTypeConfig{
			FileType:        rowString(row, "FILE_TYPE"),
			FileDescription: rowString(row, "FILE_DESCRIPTION"),
			ChunkSize:       rowInt(row, "CHUNK_SIZE"),
			ChunkOverlap:    rowInt(row, "CHUNK_OVERLAP"),
			TargetLag:       rowString(row, "TARGET_LAG"),
		})
	}
	return configs, nil
}

func (g *Gateway) CreateFileTypeConfig(ctx context.Context, cfg FileTypeConfig) Envelope {
	return g.Call(ctx, "FILE_TYPE_CONFIGS_CREATE",
		cfg.FileType, cfg.FileDescription, cfg.ChunkSize, cfg.ChunkOverlap, cfg.TargetLag)
}

func (g *Gateway) UpdateFileTypeConfig(ctx context.Context, cfg FileTypeConfig) Envelope {
	return g.Call(ctx, "FILE_TYPE_CONFIGS_UPDATE",
		cfg.FileType, cfg.FileDescription, cfg.ChunkSize, cfg.ChunkOverlap, cfg.TargetLag)
}

// DeleteFileTypeConfig removes a document type and cleans up its pipeline.
// dropData additionally deletes all processed chunks and file records.
func (g *Gateway) DeleteFileTypeConfig(ctx context.Context, fileType string, dropData bool) Envelope {
	return g.Call(ctx, "FILE_TYPE_CONFIGS_DELETE", fileType, dropData)
}

// SetupPipeline provisions stage, stream, task and search service for a type.
func (g *Gateway) SetupPipeline(ctx context.Context, cfg FileTypeConfig) (PipelineSetupResult, Envelope) {
	env := g.Call(ctx, "SETUP_FILE_PROCESSING_PIPELINE",
		cfg.FileType, cfg.ChunkSize, cfg.ChunkOverlap, cfg.TargetLag)

	var result PipelineSetupResult
	if err := env.Decode(&result); err != nil {
		result.Error = err.Error()
	}
	return result, env
}

// PipelineStatus snapshots the provisioned objects and data counts for one
// document type.
func (g *Gateway) PipelineStatus(ctx context.Context, fileType string) PipelineStatus {
	env := g.Call(ctx, "CHECK_PIPELINE_STATUS", fileType)

	var status PipelineStatus
	if err := env.Decode(&status); err != nil {
		return PipelineStatus{Error: err.Error()}
	}
	if status.Error == "" {
		if msg := env.ErrorMessage(); msg != "" {
			status.Error = msg
		}
	}
	return status
}

// SyncFiles reprocesses staged files into chunks outside the stream/task
// path. forceReprocess truncates the chunks table and reloads everything.
func (g *Gateway) SyncFiles(ctx context.Context, fileType string, chunkSize, chunkOverlap int, forceReprocess bool) SyncResult {
	env := g.Call(ctx, "PROCESS_FILES_SYNC", fileType, chunkSize, chunkOverlap, forceReprocess)

	var result SyncResult
	if err := env.Decode(&result); err != nil {
		return SyncResult{Error: err.Error()}
	}
	if result.Error == "" {
		result.Error = env.ErrorMessage()
	}
	return result
}

// ProcessingConfigs lists every processing configuration; CONFIG_JSON may
// arrive pre-parsed or as text and is preserved verbatim either way.
func (g *Gateway) ProcessingConfigs(ctx context.Context) ([]ProcessingConfig, error) {
	rows, err := g.queryRows(ctx, "CALL PROCESSING_CONFIGS_GET()")
	if err != nil {
		return nil, err
	}

	configs := make([]ProcessingConfig, 0, len(rows))
	for _, row := range rows {
		body, err := rowJSON(row, "CONFIG_JSON")
		if err != nil {
			return nil, fmt.Errorf("config %s has malformed CONFIG_JSON: %w",
				rowString(row, "CONFIG_NAME"), err)
		}
		configs = append(configs, ProcessingConfig{
			ConfigName:     rowString(row, "CONFIG_NAME"),
			ProcessingType: rowString(row, "PROCESSING_TYPE"),
			ConfigModel:    rowString(row, "CONFIG_MODEL"),
			ConfigJSON:     body,
			CreatedAt:      rowString(row, "CREATED_AT"),
			UpdatedAt:      rowString(row, "UPDATED_AT"),
		})
	}
	return configs, nil
}

func (g *Gateway) CreateProcessingConfig(ctx context.Context, cfg ProcessingConfig) Envelope {
	return g.Call(ctx, "PROCESSING_CONFIGS_CREATE",
		cfg.ConfigName, cfg.ProcessingType, cfg.ConfigJSON, cfg.ConfigModel)
}

func (g *Gateway) UpdateProcessingConfig(ctx context.Context, cfg ProcessingConfig) Envelope {
	return g.Call(ctx, "PROCESSING_CONFIGS_UPDATE",
		cfg.ConfigName, cfg.ProcessingType, cfg.ConfigJSON, cfg.ConfigModel)
}

func (g *Gateway) DeleteProcessingConfig(ctx context.Context, configName string) Envelope {
	return g.Call(ctx, "PROCESSING_CONFIGS_DELETE", configName)
}

// ValidateProcessingConfig asks the warehouse-side validator to check a
// config body. The validator is authoritative; saves are blocked on failure.
func (g *Gateway) ValidateProcessingConfig(ctx context.Context, body json.RawMessage) ValidationResult {
	env := g.Call(ctx, "PROCESSING_CONFIGS_VALIDATE", body)
	if msg := env.ErrorMessage(); msg != "" && env["is_valid"] == nil {
		return ValidationResult{IsValid: false, Errors: []string{msg}}
	}

	var result ValidationResult
	if err := env.Decode(&result); err != nil {
		return ValidationResult{IsValid: false, Errors: []string{err.Error()}}
	}
	return result
}

// AvailableFileTypes lists registered type identifiers, in warehouse order.
func (g *Gateway) AvailableFileTypes(ctx context.Context) ([]string, error) {
	rows, err := g.queryRows(ctx, "CALL AVAILABLE_FILE_TYPES_GET()")
	if err != nil {
		return nil, err
	}

	types := make([]string, 0, len(rows))
	for _, row := range rows {
		types = append(types, rowString(row, "FILE_TYPE"))
	}
	return types, nil
}

// FilesByType lists processed files for a document type, attaching the
// stage-qualified path each downstream call expects.
func (g *Gateway) FilesByType(ctx context.Context, fileType string) ([]FileRecord, error) {
	stmt, err := BuildCall("FILES_GET_BY_TYPE", fileType)
	if err != nil {
		return nil, err
	}
	rows, err := g.queryRows(ctx, stmt)
	if err != nil {
		return nil, err
	}

	files := make([]FileRecord, 0, len(rows))
	for _, row := range rows {
		record := FileRecord{
			FileName:      rowString(row, "FILE_NAME"),
			ChunkCount:    rowInt(row, "CHUNK_COUNT"),
			LastProcessed: rowString(row, "LAST_PROCESSED"),
			StageName:     rowString(row, "STAGE_NAME"),
			FullPath:      rowString(row, "FULL_PATH"),
		}
		record.StagePath = StagePath(record.StageName, record.FullPath)
		files = append(files, record)
	}
	return files, nil
}

// CompareFiles runs extraction (plus evaluation for multi-file requests)
// over 1-2 files under a chosen config and model. The processing type picks
// the downstream procedure.
func (g *Gateway) CompareFiles(ctx context.Context, processingType string, files []FileRef, configBody json.RawMessage, model string) ComparisonResult {
	var procedure string
	switch processingType {
	case ProcessingTypeCortexSearch:
		procedure = "COMPARE_FILES"
	case ProcessingTypeAIExtract:
		procedure = "COMPARE_FILES_AISQL"
	default:
		return ComparisonResult{Error: "Unknown processing type: " + processingType}
	}

	fileArg, err := ParseJSON(files)
	if err != nil {
		return ComparisonResult{Error: err.Error()}
	}
	configArg, err := ParseJSON(json.RawMessage(configBody))
	if err != nil {
		return ComparisonResult{Error: err.Error()}
	}

	env := g.Call(ctx, procedure, fileArg, configArg, model)

	var result ComparisonResult
	if err := env.Decode(&result); err != nil {
		return ComparisonResult{Error: err.Error()}
	}
	if result.Error == "" {
		result.Error = env.ErrorMessage()
	}
	return result
}

// StageExists reports whether the stage backing a document type is present.
func (g *Gateway) StageExists(ctx context.Context, fileType string) (bool, error) {
	stmt := "SHOW STAGES LIKE '" + escapeQuotes(StageName(fileType)) + "'"
	rows, err := g.queryRows(ctx, stmt)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// ListStageFiles enumerates the raw contents of a type's stage.
func (g *Gateway) ListStageFiles(ctx context.Context, fileType string) ([]StageFile, error) {
	stmt := "LIST @" + StageName(fileType)
	rows, err := g.queryRows(ctx, stmt)
	if err != nil {
		return nil, err
	}

	files := make([]StageFile, 0, len(rows))
	for _, row := range rows {
		files = append(files, StageFile{
			Name:         rowString(row, "name"),
			Size:         int64(rowInt(row, "size")),
			LastModified: rowString(row, "last_modified"),
			MD5:          rowString(row, "md5"),
		})
	}
	return files, nil
}

func rowString(row map[string]any, column string) string {
	switch v := row[column].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func rowInt(row map[string]any, column string) int {
	switch v := row[column].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func rowJSON(row map[string]any, column string) (json.RawMessage, error) {
	switch v := row[column].(type) {
	case string:
		var probe any
		if err := json.Unmarshal([]byte(v), &probe); err != nil {
			return nil, err
		}
		return json.RawMessage(v), nil
	case nil:
		return json.RawMessage("{}"), nil
	default:
		return json.Marshal(v)
	}
}
