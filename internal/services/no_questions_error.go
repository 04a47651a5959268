package services

import (
	"fmt"

	contextutils "triviaapi/internal/utils"
)

// NoQuestionsAvailableError is returned when every candidate question for a quiz has been played.
type NoQuestionsAvailableError struct {
	CategoryID    int
	PreviousCount int
}

func (e *NoQuestionsAvailableError) Error() string {
	return fmt.Sprintf("no questions available for quiz (category=%d previous_count=%d)", e.CategoryID, e.PreviousCount)
}

// Unwrap allows errors.Is(..., contextutils.ErrNoQuestionsAvailable) to work.
func (e *NoQuestionsAvailableError) Unwrap() error {
	return contextutils.ErrNoQuestionsAvailable
}

// InvalidPageError is returned when a page lies beyond a non-empty result set.
type InvalidPageError struct {
	Page  int
	Total int
}

func (e *InvalidPageError) Error() string {
	return fmt.Sprintf("page %d is out of range for %d results", e.Page, e.Total)
}

// Unwrap allows errors.Is(..., contextutils.ErrInvalidPage) to work.
func (e *InvalidPageError) Unwrap() error {
	return contextutils.ErrInvalidPage
}

// storeError wraps a database failure so handlers answer 422
func storeError(err error, message string) error {
	return contextutils.NewAppErrorWithCause(contextutils.ErrorCodeDatabaseQuery, contextutils.SeverityError,
		message, err.Error(), err)
}
