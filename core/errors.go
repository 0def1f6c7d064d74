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

import "errors"

// Startup errors. These are fatal: the service must not serve traffic after either.
var (
	// ErrCatalogLoad indicates the catalog source is missing, unreadable or malformed,
	// or that a record's duration is not a non-negative integer.
	ErrCatalogLoad = errors.New("catalog load failed")

	// ErrModelUnavailable indicates the semantic encoder could not be initialized
	// or failed while embedding the catalog.
	ErrModelUnavailable = errors.New("embedding model unavailable")
)

// Per-request errors. These are reported to the caller and do not affect other requests.
var (
	// ErrMalformedRequest indicates the request body is missing or has a non-string query.
	ErrMalformedRequest = errors.New("malformed request")

	// ErrInternalScoring indicates an unexpected failure while scoring or fusing one query.
	ErrInternalScoring = errors.New("internal scoring error")
)

// Domain validation errors
var (
	// ErrInvalidAssessment indicates an Assessment failed validation.
	ErrInvalidAssessment = errors.New("invalid assessment")

	// ErrNegativeDuration indicates a duration below zero minutes.
	ErrNegativeDuration = errors.New("duration cannot be negative")
)
