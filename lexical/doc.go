// Package lexical implements the term-matching relevance signal.
//
// BM25 is the Okapi variant with k1=1.5, b=0.75 and negative IDF values
// floored at epsilon (0.25) times the mean IDF. Documents and queries are
// tokenized identically: lower-cased and split on whitespace, nothing else.
package lexical
