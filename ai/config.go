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


package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Supported embedding providers.
const (
	// ProviderOpenAI talks to an OpenAI-compatible embeddings endpoint (Ollama, LocalAI, vLLM...).
	ProviderOpenAI = "openai"

	// ProviderONNX runs a sentence-transformer model in-process through ONNX Runtime.
	ProviderONNX = "onnx"
)

// Config holds configuration for the embedding provider.
type Config struct {
	// Provider selects the embedding backend: ProviderOpenAI or ProviderONNX.
	Provider string

	// EmbeddingHost is the base URL for the embedding service API.
	// Only used by ProviderOpenAI.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// For ProviderONNX it only labels cached vectors.
	// Example: "all-minilm", "text-embedding-3-small"
	EmbeddingModel string

	// ModelPath is the path to the ONNX model file.
	ModelPath string

	// TokenizerPath is the path to the HuggingFace tokenizer.json matching ModelPath.
	TokenizerPath string

	// SharedLibraryPath locates the onnxruntime shared library.
	// Empty means the platform default search path.
	SharedLibraryPath string

	// MaxSeqLen caps the number of tokens fed to the ONNX model per text.
	// Default: 256
	MaxSeqLen int

	// Dimensions is the width of the model's hidden state.
	// Default: 384 (all-MiniLM-L6-v2)
	Dimensions int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider selects the embedding backend.
func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithONNXModel sets the ONNX model and tokenizer paths.
func WithONNXModel(modelPath, tokenizerPath string) ConfigOption {
	return func(c *Config) {
		c.ModelPath = modelPath
		c.TokenizerPath = tokenizerPath
	}
}

// WithSharedLibraryPath sets the onnxruntime shared library location.
func WithSharedLibraryPath(path string) ConfigOption {
	return func(c *Config) {
		c.SharedLibraryPath = path
	}
}

// WithMaxSeqLen sets the token limit per text for the ONNX model.
func WithMaxSeqLen(n int) ConfigOption {
	return func(c *Config) {
		c.MaxSeqLen = n
	}
}

// WithDimensions sets the embedding width.
func WithDimensions(n int) ConfigOption {
	return func(c *Config) {
		c.Dimensions = n
	}
}

// DefaultConfig returns a Config with sensible defaults for a local OpenAI-compatible service
// serving the all-MiniLM-L6-v2 sentence transformer.
func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderOpenAI,
		EmbeddingHost:  "http://localhost:11434/v1",
		EmbeddingModel: "all-minilm",
		MaxSeqLen:      256,
		Dimensions:     384,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithProvider(ProviderONNX),
//	    WithONNXModel("models/model.onnx", "models/tokenizer.json"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It lower-cases the provider name and adds the /v1 suffix to the host if missing,
// which is required by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		// Remove trailing slash if present before adding /v1
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete for its provider.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}

	switch c.Provider {
	case ProviderOpenAI:
		if c.EmbeddingHost == "" {
			return errors.New("ai config: EmbeddingHost is required")
		}
	case ProviderONNX:
		if c.ModelPath == "" {
			return errors.New("ai config: ModelPath is required")
		}
		if c.TokenizerPath == "" {
			return errors.New("ai config: TokenizerPath is required")
		}
		if c.MaxSeqLen < 2 {
			return errors.New("ai config: MaxSeqLen must be at least 2")
		}
		if c.Dimensions < 1 {
			return errors.New("ai config: Dimensions must be positive")
		}
	default:
		return fmt.Errorf("ai config: unknown Provider %q", c.Provider)
	}
	return nil
}
