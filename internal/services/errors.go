package services

import (
	"errors"
	"fmt"

	apperrors "github.com/surveycraft/survey-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")
	ErrInvalidState     = errors.New("operation not valid in current state")

	// Survey specific errors
	ErrSurveyNotFound       = errors.New("survey not found")
	ErrSurveyAccessDenied   = errors.New("access denied to survey")
	ErrSurveyDuplicateTitle = errors.New("survey title already exists")
	ErrSurveyArchived       = errors.New("survey is archived")
	ErrSurveyHasNoQuestions = errors.New("survey has no questions")
	ErrInvalidQuestionOrder = errors.New("invalid question order provided")

	// Question specific errors
	ErrQuestionNotFound     = errors.New("question not found in this survey")
	ErrQuestionInvalidType  = errors.New("invalid response type")
	ErrQuestionInvalidMove  = errors.New("cannot move question in that direction")
	ErrQuestionAccessDenied = errors.New("access denied to question")

	// Answer specific errors
	ErrAnswerNotFound     = errors.New("answer not found")
	ErrAnswerInvalidValue = errors.New("invalid answer value for response type")

	// Progress specific errors
	ErrProgressNotFound = errors.New("survey progress not found")

	// User/Permission errors
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("invalid user role")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func (pe *PermissionError) Unwrap() error {
	return ErrForbidden
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSurveyNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAnswerNotFound) ||
		errors.Is(err, ErrProgressNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsForbidden checks if error represents an authorization failure
func IsForbidden(err error) bool {
	if errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrSurveyAccessDenied) ||
		errors.Is(err, ErrQuestionAccessDenied) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrAnswerInvalidValue) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsInvalidState checks if error represents a defined state-rule violation
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrSurveyHasNoQuestions) ||
		errors.Is(err, ErrSurveyArchived) ||
		errors.Is(err, ErrQuestionInvalidMove)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSurveyDuplicateTitle)
}
