package migrate

// Sentinel errors for per-document failures. They are wrapped with the document
// path and counted in the run summary; they never abort a run.

import "errors"

var (
	// ErrReadDocument indicates the source document could not be read.
	ErrReadDocument = errors.New("document read failed")

	// ErrConvertDocument indicates the document content could not be converted.
	ErrConvertDocument = errors.New("document conversion failed")

	// ErrWriteDocument indicates the converted page could not be written.
	ErrWriteDocument = errors.New("document write failed")

	// ErrDocumentPanic indicates converting the document panicked.
	ErrDocumentPanic = errors.New("document conversion panicked")
)
