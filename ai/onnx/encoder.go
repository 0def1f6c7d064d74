package onnx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/assessrec/ai"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// Tensor names of a sentence-transformers BERT export.
var (
	inputNames  = []string{"input_ids", "attention_mask", "token_type_ids"}
	outputNames = []string{"last_hidden_state"}
)

// ErrEncoderClosed is returned by an Encoder after Close.
var ErrEncoderClosed = errors.New("onnx encoder is closed")

// The onnxruntime environment is process-wide; encoders share it.
var (
	envMu   sync.Mutex
	envRefs int
)

func acquireEnvironment(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if envRefs == 0 && !ort.IsInitialized() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}
	envRefs++
	return nil
}

func releaseEnvironment() {
	envMu.Lock()
	defer envMu.Unlock()
	envRefs--
	if envRefs == 0 {
		_ = ort.DestroyEnvironment()
	}
}

// Encoder implements ai.Embedder by running a sentence-transformer ONNX model in-process.
// Vectors are mean-pooled over attended tokens and L2-normalized.
type Encoder struct {
	mu        sync.Mutex
	session   *ort.DynamicAdvancedSession
	tk        *tokenizer.Tokenizer
	maxSeqLen int
	dims      int
	logger    *slog.Logger
}

var _ ai.Embedder = (*Encoder)(nil)

// newEncoder loads the tokenizer and model described by config.
func newEncoder(config *ai.Config) (*Encoder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	tk, err := pretrained.FromFile(config.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", config.TokenizerPath, err)
	}

	if err := acquireEnvironment(config.SharedLibraryPath); err != nil {
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(config.ModelPath, inputNames, outputNames, nil)
	if err != nil {
		releaseEnvironment()
		return nil, fmt.Errorf("load model %s: %w", config.ModelPath, err)
	}

	return &Encoder{
		session:   session,
		tk:        tk,
		maxSeqLen: config.MaxSeqLen,
		dims:      config.Dimensions,
		logger:    slog.Default().With("component", "onnx-encoder", "model", config.EmbeddingModel),
	}, nil
}

// EmbedText encodes a single text.
func (e *Encoder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts encodes texts as one padded batch.
func (e *Encoder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch, err := e.tokenize(texts)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil, ErrEncoderClosed
	}

	e.logger.Debug("encoding batch", "count", len(texts), "seq_len", batch.seqLen)
	return e.run(batch)
}

// tokenizedBatch holds row-major [batch][seqLen] model inputs.
type tokenizedBatch struct {
	size    int
	seqLen  int
	ids     []int64
	mask    []int64
	typeIDs []int64
}

func (e *Encoder) tokenize(texts []string) (*tokenizedBatch, error) {
	encoded := make([]*tokenizer.Encoding, len(texts))
	for i, text := range texts {
		en, err := e.tk.EncodeSingle(NormalizeText(text), true)
		if err != nil {
			return nil, fmt.Errorf("tokenize: %w", err)
		}
		encoded[i] = en
	}
	return packBatch(encoded, e.maxSeqLen), nil
}

// packBatch lays encodings out as one batch padded to its longest attended sequence.
// Padding configured in tokenizer.json is dropped first, so only real tokens carry mask 1.
func packBatch(encoded []*tokenizer.Encoding, maxSeqLen int) *tokenizedBatch {
	ids := make([][]int, len(encoded))
	typeIDs := make([][]int, len(encoded))
	seqLen := 1
	for i, en := range encoded {
		rowIDs, rowTypes := unpadded(en)
		ids[i] = truncate(rowIDs, maxSeqLen)
		typeIDs[i] = truncate(rowTypes, maxSeqLen)
		seqLen = max(seqLen, len(ids[i]))
	}

	b := &tokenizedBatch{
		size:    len(encoded),
		seqLen:  seqLen,
		ids:     make([]int64, len(encoded)*seqLen),
		mask:    make([]int64, len(encoded)*seqLen),
		typeIDs: make([]int64, len(encoded)*seqLen),
	}
	for i := range ids {
		row := i * seqLen
		for t, id := range ids[i] {
			b.ids[row+t] = int64(id)
			b.mask[row+t] = 1
			b.typeIDs[row+t] = int64(typeIDs[i][t])
		}
	}
	return b
}

// unpadded returns the ids and type ids of the tokens the attention mask marks as real.
// An encoding without a mask is taken as fully attended.
func unpadded(en *tokenizer.Encoding) (ids, typeIDs []int) {
	masked := len(en.AttentionMask) == len(en.Ids)
	ids = make([]int, 0, len(en.Ids))
	typeIDs = make([]int, 0, len(en.Ids))
	for t, id := range en.Ids {
		if masked && en.AttentionMask[t] == 0 {
			continue
		}
		ids = append(ids, id)
		typeID := 0
		if t < len(en.TypeIds) {
			typeID = en.TypeIds[t]
		}
		typeIDs = append(typeIDs, typeID)
	}
	return ids, typeIDs
}

func (e *Encoder) run(b *tokenizedBatch) ([][]float32, error) {
	shape := ort.NewShape(int64(b.size), int64(b.seqLen))

	idsT, err := ort.NewTensor(shape, b.ids)
	if err != nil {
		return nil, err
	}
	defer idsT.Destroy()
	maskT, err := ort.NewTensor(shape, b.mask)
	if err != nil {
		return nil, err
	}
	defer maskT.Destroy()
	typeT, err := ort.NewTensor(shape, b.typeIDs)
	if err != nil {
		return nil, err
	}
	defer typeT.Destroy()

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(int64(b.size), int64(b.seqLen), int64(e.dims)))
	if err != nil {
		return nil, err
	}
	defer out.Destroy()

	if err := e.session.Run([]ort.Value{idsT, maskT, typeT}, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("run model: %w", err)
	}

	hidden := out.GetData()
	stride := b.seqLen * e.dims
	vectors := make([][]float32, b.size)
	for i := range vectors {
		vec := meanPool(hidden[i*stride:(i+1)*stride], b.mask[i*b.seqLen:(i+1)*b.seqLen], b.seqLen, e.dims)
		l2Normalize(vec)
		vectors[i] = vec
	}
	return vectors, nil
}

// Close destroys the session and releases the shared runtime environment.
func (e *Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	releaseEnvironment()
	return err
}
