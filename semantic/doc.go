// Package semantic implements the dense-embedding relevance signal.
//
// NewIndex encodes every catalog text once at startup. Texts are split into
// batches that run on an ants worker pool, each batch retried with exponential
// backoff. With WithCache, vectors are looked up in and written back to a
// storage.EmbeddingRepository keyed by content ID and model, so restarts only
// encode texts that changed.
//
// Index.Score embeds the query on every call and returns its cosine
// similarity to each catalog vector, index-aligned with the catalog.
package semantic
