package gateway

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestFileTypeConfigsMapsRows(t *testing.T) {
	q := &fakeQuerier{replies: map[string][]map[string]any{
		"CALL FILE_TYPE_CONFIGS_GET()": {
			{
				"FILE_TYPE":        "MSA",
				"FILE_DESCRIPTION": "Master service agreements",
				"CHUNK_SIZE":       float64(1500),
				"CHUNK_OVERLAP":    "200",
				"TARGET_LAG":       "1 minute",
			},
		},
	}}
	g := New(q, testLogger())

	configs, err := g.FileTypeConfigs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(configs) != 1 {
		t.Fatalf("expected 1 config, got %d", len(configs))
	}
	cfg := configs[0]
	if cfg.FileType != "MSA" || cfg.ChunkSize != 1500 || cfg.ChunkOverlap != 200 {
		t.Errorf("row mapped incorrectly: %+v", cfg)
	}
}

func TestProcessingConfigsPreservesConfigJSON(t *testing.T) {
	body := `{"zebra": 1, "apple": {"nested": true}}`
	q := &fakeQuerier{replies: map[string][]map[string]any{
		"CALL PROCESSING_CONFIGS_GET()": {
			{
				"CONFIG_NAME":     "msa_sow",
				"PROCESSING_TYPE": ProcessingTypeCortexSearch,
				"CONFIG_MODEL":    "claude-4-sonnet",
				"CONFIG_JSON":     body,
			},
		},
	}}
	g := New(q, testLogger())

	configs, err := g.ProcessingConfigs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(configs[0].ConfigJSON) != body {
		t.Errorf("CONFIG_JSON not preserved verbatim: %s", configs[0].ConfigJSON)
	}
}

func TestProcessingConfigsRejectsMalformedJSON(t *testing.T) {
	q := &fakeQuerier{replies: map[string][]map[string]any{
		"CALL PROCESSING_CONFIGS_GET()": {
			{"CONFIG_NAME": "broken", "CONFIG_JSON": "{not json"},
		},
	}}
	g := New(q, testLogger())

	if _, err := g.ProcessingConfigs(context.Background()); err == nil {
		t.Error("expected error for malformed CONFIG_JSON")
	}
}

func TestCompareFilesUsesVariantArgs(t *testing.T) {
	reply := map[string]any{
		"success":        true,
		"files_analyzed": []any{},
		"results":        map[string]any{},
	}
	q := &fakeQuerier{replies: map[string][]map[string]any{
		"CALL COMPARE_FILES(": callReply(t, "COMPARE_FILES", reply),
	}}
	g := New(q, testLogger())

	files := []FileRef{
		{FileName: "@MSA_STAGE/contract1.pdf", FileType: "MSA"},
		{FileName: "@SOW_STAGE/sow1.pdf", FileType: "SOW"},
	}
	result := g.CompareFiles(context.Background(), ProcessingTypeCortexSearch,
		files, json.RawMessage(`{"search_limit":3}`), "claude-4-sonnet")
	if result.Error != "" {
		t.Fatalf("unexpected error: %s", result.Error)
	}

	stmt := q.statements[0]
	if !strings.HasPrefix(stmt, "CALL COMPARE_FILES(PARSE_JSON('") {
		t.Errorf("file list must be passed as PARSE_JSON: %s", stmt)
	}
	if !strings.Contains(stmt, `@MSA_STAGE/contract1.pdf`) {
		t.Errorf("statement missing stage path: %s", stmt)
	}
	if !strings.Contains(stmt, `PARSE_JSON('{"search_limit":3}')`) {
		t.Errorf("config body must be passed as PARSE_JSON: %s", stmt)
	}
	if !strings.HasSuffix(stmt, ", 'claude-4-sonnet')") {
		t.Errorf("model must be the final plain argument: %s", stmt)
	}
}

func TestCompareFilesPicksProcedureByType(t *testing.T) {
	q := &fakeQuerier{replies: map[string][]map[string]any{
		"CALL COMPARE_FILES_AISQL(": callReply(t, "COMPARE_FILES_AISQL",
			map[string]any{"success": true}),
	}}
	g := New(q, testLogger())

	g.CompareFiles(context.Background(), ProcessingTypeAIExtract,
		[]FileRef{{FileName: "@MSA_STAGE/a.pdf", FileType: "MSA"}},
		json.RawMessage(`{}`), "llama3-8b")

	if !strings.HasPrefix(q.statements[0], "CALL COMPARE_FILES_AISQL(") {
		t.Errorf("AI_EXTRACT must route to COMPARE_FILES_AISQL: %s", q.statements[0])
	}

	result := g.CompareFiles(context.Background(), "BOGUS", nil, nil, "m")
	if result.Error == "" {
		t.Error("unknown processing type must fail before any call")
	}
}

func TestAvailableModelsFallsBack(t *testing.T) {
	g := New(&fakeQuerier{}, testLogger())

	catalog := g.AvailableModels(context.Background())
	if len(catalog.SupportedModels) == 0 {
		t.Fatal("fallback catalog must not be empty")
	}
	if catalog.DefaultModel == "" {
		t.Error("fallback catalog must name a default model")
	}
}

func TestFilesByTypeAttachesStagePath(t *testing.T) {
	q := &fakeQuerier{replies: map[string][]map[string]any{
		"CALL FILES_GET_BY_TYPE": {
			{
				"FILE_NAME":   "contract1.pdf",
				"CHUNK_COUNT": float64(12),
				"STAGE_NAME":  "MSA_STAGE",
				"FULL_PATH":   "contract1.pdf",
			},
			{
				"FILE_NAME":  "empty.pdf",
				"STAGE_NAME": "MSA_STAGE",
				"FULL_PATH":  "",
			},
		},
	}}
	g := New(q, testLogger())

	files, err := g.FilesByType(context.Background(), "MSA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if files[0].StagePath != "@MSA_STAGE/contract1.pdf" {
		t.Errorf("got %s, want @MSA_STAGE/contract1.pdf", files[0].StagePath)
	}
	if files[1].StagePath != "@MSA_STAGE" {
		t.Errorf("empty path must yield the bare stage, got %s", files[1].StagePath)
	}
}

func TestStageExists(t *testing.T) {
	q := &fakeQuerier{replies: map[string][]map[string]any{
		"SHOW STAGES LIKE 'MSA_STAGE'": {{"name": "MSA_STAGE"}},
	}}
	g := New(q, testLogger())

	exists, err := g.StageExists(context.Background(), "MSA")
	if err != nil || !exists {
		t.Errorf("expected stage to exist, got %v %v", exists, err)
	}

	exists, err = g.StageExists(context.Background(), "INVOICE")
	if err != nil || exists {
		t.Errorf("expected stage to be absent, got %v %v", exists, err)
	}
}

func TestListStageFiles(t *testing.T) {
	q := &fakeQuerier{replies: map[string][]map[string]any{
		"LIST @MSA_STAGE": {
			{"name": "msa_stage/contract1.pdf", "size": float64(52100), "last_modified": "Mon, 1 Jul 2024", "md5": "abc"},
		},
	}}
	g := New(q, testLogger())

	files, err := g.ListStageFiles(context.Background(), "MSA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || files[0].Size != 52100 || files[0].Name != "msa_stage/contract1.pdf" {
		t.Errorf("unexpected listing: %+v", files)
	}
}

func TestValidateProcessingConfigNormalizesFailure(t *testing.T) {
	g := New(&fakeQuerier{}, testLogger())

	result := g.ValidateProcessingConfig(context.Background(), json.RawMessage(`{}`))
	if result.IsValid {
		t.Fatal("transport failure must come back invalid")
	}
	if len(result.Errors) == 0 {
		t.Error("transport failure must carry an error message")
	}
}
