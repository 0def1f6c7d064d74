// Package onnx provides an ai.AIProvider that runs a sentence-transformer
// model (all-MiniLM-L6-v2 by default) in-process through ONNX Runtime.
//
// Texts are NFKC-normalized, tokenized with the model's HuggingFace
// tokenizer.json, truncated to MaxSeqLen tokens and encoded as one padded
// batch. Token vectors are mean-pooled over the attention mask and scaled to
// unit length, matching the sentence-transformers pipeline.
//
// The onnxruntime shared library must be installed; point
// ai.Config.SharedLibraryPath at it when it is not on the default search path.
package onnx
