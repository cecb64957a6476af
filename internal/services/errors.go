package services

import "fmt"

// ConversionError signals that the PDF could not be rasterized. It aborts
// the whole verification run before any analysis step.
type ConversionError struct {
	Err error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("PDF conversion failed: %v", e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// VisionServiceError signals that the vision model call failed or its reply
// carried no parsable fact sheet. It aborts the run after the analysis step.
type VisionServiceError struct {
	Err error
}

func (e *VisionServiceError) Error() string {
	return fmt.Sprintf("AI analysis failed: %v", e.Err)
}

func (e *VisionServiceError) Unwrap() error {
	return e.Err
}
