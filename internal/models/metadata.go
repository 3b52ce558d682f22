package models

import "time"

// ExtractionMetadata records everything learned about a file during one
// extraction attempt. It is mutated only during that call and owned
// exclusively by the caller afterwards; never shared across extractions.
type ExtractionMetadata struct {
	FilePath            string        `json:"file_path"`
	FileSize            int64         `json:"file_size"`
	FileType            string        `json:"file_type"` // Extension without the dot
	WordCount           int           `json:"word_count"`
	CharacterCount      int           `json:"character_count"`
	LineCount           int           `json:"line_count"`
	PageCount           int           `json:"page_count"`
	Language            string        `json:"language"` // "unknown" when detection fails
	Encoding            string        `json:"encoding"`
	EncodingConfidence  float64       `json:"encoding_confidence"`
	HasTables           bool          `json:"has_tables"`
	TableCount          int           `json:"table_count"`
	HasImages           bool          `json:"has_images"`
	ImageCount          int           `json:"image_count"`
	IsPasswordProtected bool          `json:"is_password_protected"`
	ExtractionMethod    string        `json:"extraction_method"`
	ProcessingDuration  time.Duration `json:"processing_duration"`
	Warnings            []string      `json:"warnings"`
	Errors              []string      `json:"errors"`
}

// NewExtractionMetadata creates a metadata record with defaults matching an
// attempt that has learned nothing yet.
func NewExtractionMetadata(filePath string, fileSize int64) *ExtractionMetadata {
	return &ExtractionMetadata{
		FilePath: filePath,
		FileSize: fileSize,
		Language: "unknown",
		Warnings: []string{},
		Errors:   []string{},
	}
}

// AddWarning appends a non-fatal observation.
func (m *ExtractionMetadata) AddWarning(msg string) {
	m.Warnings = append(m.Warnings, msg)
}

// AddError appends a failure recorded in metadata mode instead of propagating.
func (m *ExtractionMetadata) AddError(msg string) {
	m.Errors = append(m.Errors, msg)
}

// ToMap converts the metadata into the free-form map merged into chunk
// metadata at indexing time.
func (m *ExtractionMetadata) ToMap() map[string]any {
	return map[string]any{
		"file_path":             m.FilePath,
		"file_size":             m.FileSize,
		"file_type":             m.FileType,
		"word_count":            m.WordCount,
		"character_count":       m.CharacterCount,
		"line_count":            m.LineCount,
		"page_count":            m.PageCount,
		"language":              m.Language,
		"encoding":              m.Encoding,
		"has_tables":            m.HasTables,
		"table_count":           m.TableCount,
		"has_images":            m.HasImages,
		"image_count":           m.ImageCount,
		"is_password_protected": m.IsPasswordProtected,
		"extraction_method":     m.ExtractionMethod,
	}
}
