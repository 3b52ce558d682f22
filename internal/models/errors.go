package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies document processing failures so callers can
// pattern-match on the reason (e.g. password-protected vs. generic failure)
// and render precise user-facing messages.
type ErrorKind string

const (
	KindUnsupportedFileType ErrorKind = "unsupported_file_type"
	KindFileAccess          ErrorKind = "file_access"
	KindFileSizeExceeded    ErrorKind = "file_size_exceeded"
	KindPDFExtraction       ErrorKind = "pdf_extraction"
	KindDOCXExtraction      ErrorKind = "docx_extraction"
	KindTextExtraction      ErrorKind = "text_extraction"
	KindPasswordProtected   ErrorKind = "password_protected"
	KindCorruptedFile       ErrorKind = "corrupted_file"
	KindMetadataExtraction  ErrorKind = "metadata_extraction"
	KindEmptyDocument       ErrorKind = "empty_document"
	KindDocumentProcessing  ErrorKind = "document_processing"
)

// ProcessingError is the structured error for every document processing
// failure mode. It carries the failure kind, the file it concerns and
// kind-specific details, wrapping the original cause.
type ProcessingError struct {
	Kind    ErrorKind
	Path    string
	Message string
	Details map[string]any
	Cause   error
}

func (e *ProcessingError) Error() string {
	return e.Message
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// KindOf returns the processing error kind, or "" for other errors.
func KindOf(err error) ErrorKind {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsKind reports whether err is a ProcessingError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

func causeText(cause error) string {
	if cause == nil {
		return "Unknown error"
	}
	return cause.Error()
}

// NewUnsupportedFileTypeError reports an extension outside the allow-list.
func NewUnsupportedFileTypeError(path, fileType string, supported []string) *ProcessingError {
	return &ProcessingError{
		Kind:    KindUnsupportedFileType,
		Path:    path,
		Message: fmt.Sprintf("Unsupported file type '%s'. Supported types: %s", fileType, strings.Join(supported, ", ")),
		Details: map[string]any{"file_type": fileType, "supported_types": supported},
	}
}

// NewFileAccessError reports a missing or unreadable path.
func NewFileAccessError(path string, cause error) *ProcessingError {
	return &ProcessingError{
		Kind:    KindFileAccess,
		Path:    path,
		Message: fmt.Sprintf("Failed to access file: %s", causeText(cause)),
		Cause:   cause,
	}
}

// NewFileSizeError reports a file over the configured size cap.
func NewFileSizeError(path string, fileSize, maxSize int64) *ProcessingError {
	return &ProcessingError{
		Kind:    KindFileSizeExceeded,
		Path:    path,
		Message: fmt.Sprintf("File size (%d bytes) exceeds maximum allowed size (%d bytes)", fileSize, maxSize),
		Details: map[string]any{"file_size": fileSize, "max_size": maxSize},
	}
}

// NewPDFExtractionError reports PDF extraction failure after both engines.
func NewPDFExtractionError(path string, cause error) *ProcessingError {
	return &ProcessingError{
		Kind:    KindPDFExtraction,
		Path:    path,
		Message: fmt.Sprintf("Failed to extract text from PDF: %s", causeText(cause)),
		Cause:   cause,
	}
}

// NewDOCXExtractionError reports DOCX extraction failure.
func NewDOCXExtractionError(path string, cause error) *ProcessingError {
	return &ProcessingError{
		Kind:    KindDOCXExtraction,
		Path:    path,
		Message: fmt.Sprintf("Failed to extract text from DOCX: %s", causeText(cause)),
		Cause:   cause,
	}
}

// NewTextExtractionError reports text decoding failure, optionally naming
// the encoding that was attempted.
func NewTextExtractionError(path, encoding string, cause error) *ProcessingError {
	msg := fmt.Sprintf("Failed to extract text: %s", causeText(cause))
	details := map[string]any{}
	if encoding != "" {
		msg = fmt.Sprintf("Failed to extract text using encoding '%s': %s", encoding, causeText(cause))
		details["encoding"] = encoding
	}
	return &ProcessingError{
		Kind:    KindTextExtraction,
		Path:    path,
		Message: msg,
		Details: details,
		Cause:   cause,
	}
}

// NewPasswordProtectedError reports an encrypted source document.
func NewPasswordProtectedError(path string) *ProcessingError {
	return &ProcessingError{
		Kind:    KindPasswordProtected,
		Path:    path,
		Message: "File is password-protected and cannot be processed",
	}
}

// NewCorruptedFileError reports a file that cannot be parsed at all.
func NewCorruptedFileError(path, details string) *ProcessingError {
	if details == "" {
		details = "Unknown corruption"
	}
	return &ProcessingError{
		Kind:    KindCorruptedFile,
		Path:    path,
		Message: fmt.Sprintf("File appears to be corrupted: %s", details),
		Details: map[string]any{"corruption_details": details},
	}
}

// NewMetadataExtractionError reports a metadata analysis failure.
func NewMetadataExtractionError(path, metadataType string, cause error) *ProcessingError {
	return &ProcessingError{
		Kind:    KindMetadataExtraction,
		Path:    path,
		Message: fmt.Sprintf("Failed to extract %s metadata: %s", metadataType, causeText(cause)),
		Details: map[string]any{"metadata_type": metadataType},
		Cause:   cause,
	}
}

// NewEmptyDocumentError reports a document with no extractable text.
func NewEmptyDocumentError(path string) *ProcessingError {
	return &ProcessingError{
		Kind:    KindEmptyDocument,
		Path:    path,
		Message: "Document contains no extractable text content",
	}
}

// NewDocumentProcessingError wraps an unexpected failure in the catch-all kind.
func NewDocumentProcessingError(path string, cause error) *ProcessingError {
	return &ProcessingError{
		Kind:    KindDocumentProcessing,
		Path:    path,
		Message: fmt.Sprintf("Document processing failed: %s", causeText(cause)),
		Cause:   cause,
	}
}
