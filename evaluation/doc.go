// Package evaluation measures ranking quality against labelled queries.
//
// A dataset is a YAML file of queries, each with the URLs of the assessments a
// reviewer judged relevant:
//
//	k: 10
//	queries:
//	  - query: Java developers who can collaborate, under 40 minutes
//	    relevant:
//	      - https://example.com/products/java-8-new/
//
// Evaluate reports Mean Recall@K and MAP@K over the whole set.
package evaluation
