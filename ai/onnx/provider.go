package onnx

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/assessrec/ai"
	"github.com/poiesic/assessrec/core"
)

// Provider implements ai.AIProvider with an in-process ONNX Runtime encoder.
type Provider struct {
	config      *ai.Config
	encoder     *Encoder
	fingerprint string
	logger      *slog.Logger
}

// NewProvider loads the model and tokenizer named by config.
// config.Provider must be ai.ProviderONNX.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	encoder, err := newEncoder(config)
	if err != nil {
		return nil, err
	}
	fingerprint, err := modelFingerprint(config.ModelPath)
	if err != nil {
		encoder.Close()
		return nil, err
	}
	return &Provider{
		config:      config,
		encoder:     encoder,
		fingerprint: fingerprint,
		logger:      slog.Default().With("component", "onnx-provider"),
	}, nil
}

// modelFingerprint identifies the model file by absolute path, size and modification time.
// Replacing the file in place changes the fingerprint.
func modelFingerprint(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat model %s: %w", path, err)
	}
	id := core.IDFromContent(fmt.Sprintf("%s|%d|%d", abs, info.Size(), info.ModTime().UnixNano()))
	return fmt.Sprintf("%016x", uint64(id)), nil
}

// Embedder returns the encoder.
func (p *Provider) Embedder() ai.Embedder {
	return p.encoder
}

// ModelID returns the configured model label qualified by the model file fingerprint,
// so cached vectors are not reused after the file changes.
func (p *Provider) ModelID() string {
	return ai.ProviderONNX + ":" + p.config.EmbeddingModel + ":" + p.fingerprint
}

// Close releases the ONNX session.
func (p *Provider) Close() error {
	p.logger.Debug("closing ONNX provider")
	return p.encoder.Close()
}
