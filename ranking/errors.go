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


package ranking

import "errors"

var (
	// ErrLexicalScorerRequired is returned when a lexical scorer is not provided.
	ErrLexicalScorerRequired = errors.New("lexical scorer required")

	// ErrSemanticScorerRequired is returned when a semantic scorer is not provided.
	ErrSemanticScorerRequired = errors.New("semantic scorer required")

	// ErrCatalogRequired is returned when a catalog is not provided.
	ErrCatalogRequired = errors.New("catalog required")

	// ErrInvalidWeights is returned for negative, non-finite or all-zero signal weights.
	ErrInvalidWeights = errors.New("invalid signal weights")

	// ErrInvalidTopN is returned when the result limit is not positive.
	ErrInvalidTopN = errors.New("top-n must be positive")

	// ErrScoreLengthMismatch indicates a scorer returned a vector not aligned with the catalog.
	ErrScoreLengthMismatch = errors.New("score vector length does not match catalog")
)
