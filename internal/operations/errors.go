package operations

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of operation error
type ErrorType string

const (
	ErrorTypeMissingInput          ErrorType = "missing_input"
	ErrorTypeCleaning              ErrorType = "cleaning"
	ErrorTypeValidationGate        ErrorType = "validation_gate"
	ErrorTypeExpectationEvaluation ErrorType = "expectation_evaluation"
	ErrorTypePromotionIO           ErrorType = "promotion_io"
	ErrorTypeCancellation          ErrorType = "cancellation"
	ErrorTypeInvalidState          ErrorType = "invalid_state"
)

// OperationError represents a pipeline run failure
type OperationError struct {
	Type    ErrorType              `json:"type"`
	Stage   string                 `json:"stage,omitempty"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Stage != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewMissingInputError reports raw inputs still absent after regeneration
func NewMissingInputError(missing []string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeMissingInput,
		Stage:   StageIDInputs,
		Message: fmt.Sprintf("could not generate or find raw data files: %v", missing),
		Context: map[string]interface{}{
			"missing": missing,
		},
	}
}

// NewCleaningError wraps a failure raised while cleaning dataset
func NewCleaningError(dataset string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeCleaning,
		Stage:   StageIDCleaning,
		Message: fmt.Sprintf("cleaning %s failed", dataset),
		Cause:   cause,
		Context: map[string]interface{}{
			"dataset": dataset,
		},
	}
}

// NewValidationGateError reports a failure rate above what the gate tolerates
func NewValidationGateError(failureRate, threshold float64) *OperationError {
	return &OperationError{
		Type:    ErrorTypeValidationGate,
		Stage:   StageIDValidation,
		Message: fmt.Sprintf("too many validation failures (%.1f%%)", failureRate),
		Context: map[string]interface{}{
			"failure_rate": failureRate,
			"threshold":    threshold,
		},
	}
}

// NewPromotionError wraps a failure writing processed or live outputs
func NewPromotionError(cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypePromotionIO,
		Stage:   StageIDPromotion,
		Message: "promotion failed",
		Cause:   cause,
	}
}

// NewCancellationError creates a new cancellation error
func NewCancellationError(stage string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeCancellation,
		Stage:   stage,
		Message: "operation was cancelled",
		Cause:   cause,
	}
}

// stagePanicTypes classifies a panic by the stage it escaped from
var stagePanicTypes = map[string]ErrorType{
	StageIDInputs:     ErrorTypeMissingInput,
	StageIDCleaning:   ErrorTypeCleaning,
	StageIDValidation: ErrorTypeExpectationEvaluation,
	StageIDPromotion:  ErrorTypePromotionIO,
	StageIDReport:     ErrorTypePromotionIO,
}

// NewStagePanicError converts a value recovered from a stage into an error typed for that stage
func NewStagePanicError(stage string, recovered any) *OperationError {
	errType, ok := stagePanicTypes[stage]
	if !ok {
		errType = ErrorTypeInvalidState
	}
	return &OperationError{
		Type:    errType,
		Stage:   stage,
		Message: fmt.Sprintf("stage panicked: %v", recovered),
		Context: map[string]interface{}{
			"panic": fmt.Sprint(recovered),
		},
	}
}

// NewInvalidTransitionError reports a state change the run state machine forbids
func NewInvalidTransitionError(from, to RunState) *OperationError {
	return &OperationError{
		Type:    ErrorTypeInvalidState,
		Message: fmt.Sprintf("invalid transition %s -> %s", from, to),
	}
}

// GetErrorType returns the type of the first OperationError in err's chain
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type
	}
	return ""
}

// IsType reports whether err carries an OperationError of type t
func IsType(err error, t ErrorType) bool {
	return err != nil && GetErrorType(err) == t
}
