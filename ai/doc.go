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


// Package ai provides abstractions for the sentence encoders used by assessrec.
//
// The semantic scorer depends only on the Embedder interface defined here,
// never on a concrete model runtime.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible embedding APIs via langchaingo (Ollama, vLLM, ...)
//   - ai/onnx: in-process sentence-transformer inference via ONNX Runtime
//   - ai/mock: deterministic test doubles
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, onnx.NewProvider) return the
// ai.AIProvider interface. Test utility constructors (mock.NewMockEmbedder)
// return concrete types so tests can inject behavior and inspect call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithEmbeddingModel("all-minilm"))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "java developer assessment")
package ai
