package service

import "errors"

var (
	// ErrEngineMissing means the OCR engine was needed but is not installed
	ErrEngineMissing = errors.New("OCR engine unavailable")

	// ErrExtractionFailed means no usable text came out of the document
	ErrExtractionFailed = errors.New("no text could be extracted from the document")

	// ErrTranslationFailed means the translation engine produced no output
	ErrTranslationFailed = errors.New("Translation failed.")

	// ErrForbidden means the caller does not own the requested job
	ErrForbidden = errors.New("access denied")
)
