package core

import (
	"errors"
	"testing"
)

func TestValidateAssessment(t *testing.T) {
	tests := []struct {
		name       string
		assessment *Assessment
		wantErr    error
	}{
		{
			name: "valid assessment",
			assessment: &Assessment{
				Name:     "Java 8 (New)",
				Duration: 18,
			},
			wantErr: nil,
		},
		{
			name: "zero duration is valid",
			assessment: &Assessment{
				Name:     "Untimed questionnaire",
				Duration: 0,
			},
			wantErr: nil,
		},
		{
			name:       "empty assessment is valid",
			assessment: &Assessment{},
			wantErr:    nil,
		},
		{
			name:       "nil assessment",
			assessment: nil,
			wantErr:    ErrInvalidAssessment,
		},
		{
			name: "negative duration",
			assessment: &Assessment{
				Name:     "Broken row",
				Duration: -5,
			},
			wantErr: ErrNegativeDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAssessment(tt.assessment)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateAssessment() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateAssessment() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAssessment() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAssessment_WrapsInvalidAssessment(t *testing.T) {
	err := ValidateAssessment(&Assessment{Duration: -1})
	if !errors.Is(err, ErrInvalidAssessment) {
		t.Errorf("ValidateAssessment() error = %v, want wrapped %v", err, ErrInvalidAssessment)
	}
}

func TestValidateDuration(t *testing.T) {
	if err := ValidateDuration(0); err != nil {
		t.Errorf("ValidateDuration(0) error = %v, want nil", err)
	}
	if err := ValidateDuration(120); err != nil {
		t.Errorf("ValidateDuration(120) error = %v, want nil", err)
	}
	if err := ValidateDuration(-1); !errors.Is(err, ErrNegativeDuration) {
		t.Errorf("ValidateDuration(-1) error = %v, want %v", err, ErrNegativeDuration)
	}
}
