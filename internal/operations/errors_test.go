package operations

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      *OperationError
		wantType ErrorType
		wantMsg  string
	}{
		{
			name:     "missing input",
			err:      NewMissingInputError([]string{"magasins"}),
			wantType: ErrorTypeMissingInput,
			wantMsg:  "[missing_input] inputs: could not generate or find raw data files: [magasins]",
		},
		{
			name:     "cleaning",
			err:      NewCleaningError("transactions", errors.New("missing column montant")),
			wantType: ErrorTypeCleaning,
			wantMsg:  "[cleaning] cleaning: cleaning transactions failed: missing column montant",
		},
		{
			name:     "validation gate",
			err:      NewValidationGateError(25, 80),
			wantType: ErrorTypeValidationGate,
			wantMsg:  "[validation_gate] validation: too many validation failures (25.0%)",
		},
		{
			name:     "promotion",
			err:      NewPromotionError(errors.New("disk full")),
			wantType: ErrorTypePromotionIO,
			wantMsg:  "[promotion_io] promotion: promotion failed: disk full",
		},
		{
			name:     "invalid transition",
			err:      NewInvalidTransitionError(StateDone, StateCleaning),
			wantType: ErrorTypeInvalidState,
			wantMsg:  "[invalid_state] invalid transition done -> cleaning",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.Equal(t, tt.wantType, GetErrorType(tt.err))
		})
	}
}

func TestErrorTypeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("run failed: %w", NewCancellationError(StageIDCleaning, context.Canceled))

	assert.Equal(t, ErrorTypeCancellation, GetErrorType(err))
	assert.True(t, IsType(err, ErrorTypeCancellation))
	assert.False(t, IsType(err, ErrorTypeCleaning))
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
	assert.Equal(t, ErrorType(""), GetErrorType(nil))
}

func TestStagePanicErrorTypes(t *testing.T) {
	tests := []struct {
		stage    string
		wantType ErrorType
	}{
		{StageIDInputs, ErrorTypeMissingInput},
		{StageIDCleaning, ErrorTypeCleaning},
		{StageIDValidation, ErrorTypeExpectationEvaluation},
		{StageIDPromotion, ErrorTypePromotionIO},
		{StageIDReport, ErrorTypePromotionIO},
		{"unknown", ErrorTypeInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			err := NewStagePanicError(tt.stage, "index out of range")
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.stage, err.Stage)
			assert.Contains(t, err.Error(), "stage panicked: index out of range")
		})
	}
}
