// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
)

// ValidateAssessment validates an Assessment according to domain rules.
//
// Validation rules:
//   - Duration must not be negative
//
// NOT validated (defaulted to empty strings at load time):
//   - Name, Description, URL, TestType, RemoteTestingSupport
func ValidateAssessment(a *Assessment) error {
	if a == nil {
		return fmt.Errorf("%w: assessment is nil", ErrInvalidAssessment)
	}

	if err := ValidateDuration(a.Duration); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAssessment, err)
	}

	return nil
}

// ValidateDuration validates that a duration in minutes is non-negative.
func ValidateDuration(minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("%w: value %d", ErrNegativeDuration, minutes)
	}
	return nil
}
