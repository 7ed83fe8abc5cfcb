// Copyright 2025 VideoLens Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package text

import (
	"fmt"
	"strings"

	"github.com/videolens/go-video-insights/internal/core/model"
)

// Chunker splits text into segments whose estimated token count stays within
// a fixed budget.
type Chunker struct {
	maxTokens int
}

// NewChunker creates a Chunker with the given per-segment token budget. The
// budget must be positive.
func NewChunker(maxTokens int) (*Chunker, error) {
	if maxTokens < 1 {
		return nil, fmt.Errorf("%w: segment token budget must be positive, got %d",
			model.ErrInvalidConfiguration, maxTokens)
	}
	return &Chunker{maxTokens: maxTokens}, nil
}

// Chunk splits text on whitespace and greedily packs words into segments.
// A word that would push the current segment past the budget starts a new
// segment carrying that word and its token count. Segments never exceed the
// budget except when a single word alone does, in which case that word forms
// its own segment. Joining the returned segments with single spaces yields
// the whitespace-normalized input, so no word is lost or reordered.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var segments []string
	var current []string
	currentTokens := 0

	for _, word := range words {
		tokens := EstimateWordTokens(word)
		if len(current) > 0 && currentTokens+tokens > c.maxTokens {
			segments = append(segments, strings.Join(current, " "))
			current = current[:0]
			currentTokens = 0
		}
		current = append(current, word)
		currentTokens += tokens
	}
	segments = append(segments, strings.Join(current, " "))
	return segments
}
