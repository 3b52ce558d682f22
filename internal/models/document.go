package models

import "time"

// Document lifecycle status values
const (
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusError      = "error"
)

// DocumentDescriptor represents one discoverable source file in the documents
// folder. It is a view over the filesystem, not a persisted record: the scanner
// creates descriptors on enumeration and they disappear when the file does.
type DocumentDescriptor struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`  // Display name (original name recovered from upload convention)
	FilePath   string    `json:"file_path"` // Absolute path in the documents folder
	Status     string    `json:"status"`    // processing | ready | error
	CreatedAt  time.Time `json:"created_at"`
	ChunkCount int       `json:"chunk_count"`
}

// UploadedFileInfo describes a file saved through the upload path.
type UploadedFileInfo struct {
	OriginalFilename string    `json:"original_filename"`
	SavedFilename    string    `json:"saved_filename"`
	FileSize         int64     `json:"file_size"`
	ContentType      string    `json:"content_type"`
	UploadTimestamp  time.Time `json:"upload_timestamp"`
	DocumentID       string    `json:"document_id"`
}

// UploadValidationError describes why an uploaded file was rejected.
type UploadValidationError struct {
	Filename  string `json:"filename"`
	ErrorType string `json:"error_type"` // size, type, filename, read_error, processing
	Message   string `json:"message"`
}

// UploadStats summarizes the documents folder by origin.
type UploadStats struct {
	TotalFiles    int `json:"total_files"`
	UploadedFiles int `json:"uploaded_files"`
	OriginalFiles int `json:"original_files"`
}

// FailedDocument records a single document failure during batch processing.
type FailedDocument struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
}

// FileTypeStats aggregates per-extension processing counters.
type FileTypeStats struct {
	Count int `json:"count"`
	Words int `json:"words"`
	Chars int `json:"chars"`
}

// ProcessingResult aggregates a full-corpus processing run. One document's
// failure never aborts the batch; it is recorded here instead.
type ProcessingResult struct {
	TotalDocuments  int                       `json:"total_documents"`
	ProcessedCount  int                       `json:"processed_count"`
	FailedCount     int                       `json:"failed_count"`
	TotalCharacters int                       `json:"total_characters"`
	TotalWords      int                       `json:"total_words"`
	FileTypes       map[string]*FileTypeStats `json:"file_types"`
	FailedDocuments []FailedDocument          `json:"failed_documents"`
	StartTime       time.Time                 `json:"start_time"`
	Duration        time.Duration             `json:"duration"`
}
