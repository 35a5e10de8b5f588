package gateway

import "encoding/json"

// Processing types determine which comparison procedure runs downstream.
const (
	ProcessingTypeCortexSearch = "CORTEX_SEARCH"
	ProcessingTypeAIExtract    = "AI_EXTRACT"
)

// Target lag values accepted by the pipeline procedures.
var TargetLagOptions = []string{"1 minute", "2 minutes", "5 minutes", "10 minutes"}

// ModelCatalog lists the AI models the warehouse supports.
type ModelCatalog struct {
	SupportedModels   []string          `json:"supported_models"`
	DefaultModel      string            `json:"default_model"`
	RecommendedModels map[string]string `json:"recommended_models"`
}

// FileTypeConfig is a registered document type with its chunking parameters.
type FileTypeConfig struct {
	FileType        string `json:"file_type"`
	FileDescription string `json:"file_description"`
	ChunkSize       int    `json:"chunk_size"`
	ChunkOverlap    int    `json:"chunk_overlap"`
	TargetLag       string `json:"target_lag"`
}

// ProcessingConfig is a named bundle of extraction/evaluation prompts, model
// choice and search parameters. ConfigJSON has no fixed schema and must
// round-trip losslessly.
type ProcessingConfig struct {
	ConfigName     string          `json:"config_name"`
	ProcessingType string          `json:"processing_type"`
	ConfigModel    string          `json:"config_model"`
	ConfigJSON     json.RawMessage `json:"config_json"`
	CreatedAt      string          `json:"created_at,omitempty"`
	UpdatedAt      string          `json:"updated_at,omitempty"`
}

// FileRecord is a processed file as reported by FILES_GET_BY_TYPE.
type FileRecord struct {
	FileName      string `json:"file_name"`
	ChunkCount    int    `json:"chunk_count"`
	LastProcessed string `json:"last_processed"`
	StageName     string `json:"stage_name"`
	FullPath      string `json:"full_path"`
	StagePath     string `json:"stage_path"`
}

// StageFile is a raw stage listing entry (LIST @stage).
type StageFile struct {
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
	MD5          string `json:"md5"`
}

// FileRef is the per-file element of a comparison request. FileName carries
// the stage-qualified path, e.g. @MSA_STAGE/contract1.pdf.
type FileRef struct {
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
}

// ValidationResult is the reply of PROCESSING_CONFIGS_VALIDATE.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// PipelineStatus is a point-in-time snapshot of the four provisioned objects
// plus aggregate data counts. Fetched on demand, never cached.
type PipelineStatus struct {
	Objects map[string]PipelineObject `json:"objects"`
	Data    PipelineData              `json:"data"`
	Error   string                    `json:"error,omitempty"`
}

type PipelineObject struct {
	Exists  bool   `json:"exists"`
	Name    string `json:"name,omitempty"`
	State   string `json:"state,omitempty"`
	LastRun string `json:"last_run,omitempty"`
	HasData bool   `json:"has_data,omitempty"`
}

type PipelineData struct {
	TotalFiles     int    `json:"total_files"`
	TotalChunks    int    `json:"total_chunks"`
	FirstProcessed string `json:"first_processed,omitempty"`
	LastProcessed  string `json:"last_processed,omitempty"`
}

// PipelineSetupResult is the reply of SETUP_FILE_PROCESSING_PIPELINE.
type PipelineSetupResult struct {
	Success                 bool     `json:"success"`
	StageName               string   `json:"stage_name"`
	StreamName              string   `json:"stream_name"`
	TaskName                string   `json:"task_name"`
	CortexSearchServiceName string   `json:"cortex_search_service_name"`
	ChunksTableName         string   `json:"chunks_table_name"`
	NextSteps               []string `json:"next_steps"`
	Error                   string   `json:"error,omitempty"`
}

// SyncResult is the reply of PROCESS_FILES_SYNC.
type SyncResult struct {
	Success                bool             `json:"success"`
	FilesFound             int              `json:"files_found"`
	FilesProcessed         int              `json:"files_processed"`
	FilesSkipped           int              `json:"files_skipped"`
	ChunksCreated          int              `json:"chunks_created"`
	Message                string           `json:"message,omitempty"`
	SearchServiceRefreshed bool             `json:"search_service_refreshed,omitempty"`
	ProcessingDetails      []SyncFileDetail `json:"processing_details,omitempty"`
	Error                  string           `json:"error,omitempty"`
}

type SyncFileDetail struct {
	FileName      string `json:"file_name"`
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
	Error         string `json:"error,omitempty"`
	ChunksCreated int    `json:"chunks_created,omitempty"`
	FileSize      int64  `json:"file_size,omitempty"`
}

// ComparisonResult is the reply of COMPARE_FILES / COMPARE_FILES_AISQL.
type ComparisonResult struct {
	Success          bool                      `json:"success"`
	FilesAnalyzed    []FileRef                 `json:"files_analyzed"`
	AnalysisType     string                    `json:"analysis_type"`
	Summary          ComparisonSummary         `json:"summary"`
	Results          map[string]CategoryResult `json:"results"`
	ModelUsed        string                    `json:"model_used"`
	Timestamp        string                    `json:"timestamp"`
	ExtractionMethod string                    `json:"extraction_method,omitempty"`
	Error            string                    `json:"error,omitempty"`
}

type ComparisonSummary struct {
	AverageEvaluationScore float64 `json:"average_evaluation_score"`
	HighEvaluationMatches  int     `json:"high_evaluation_matches"`
}

type CategoryResult struct {
	ExtractionQuestion string            `json:"extraction_question"`
	FileAnswers        map[string]string `json:"file_answers"`
	Evaluation         *Evaluation       `json:"evaluation,omitempty"`
}

type Evaluation struct {
	EvaluationScore       float64 `json:"evaluation_score"`
	EvaluationExplanation string  `json:"evaluation_explanation"`
}
