// Package server exposes the recommender over HTTP.
//
// Routes:
//
//	POST /recommend  {"query": "..."} -> 200 {"recommendations": [...]}
//	GET  /health     -> 200 {"status": "ok", "assessments": N}
//
// Malformed bodies get 400 and scoring failures 500, both as {"error": "..."}.
package server
