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


// Package ranking fuses the lexical and semantic relevance signals into one ordering.
//
// Each signal is min-max normalized over the catalog, the normalized vectors are
// combined with fixed weights, candidates longer than a duration bound stated in the
// query are dropped, and the rest are stable-sorted by final score and truncated.
//
// Use RankWithMonitor with a Trace to inspect every intermediate vector.
package ranking
