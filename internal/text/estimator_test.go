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

package text_test

import (
	"strings"
	"testing"

	"github.com/zeebo/assert"

	"github.com/videolens/go-video-insights/internal/text"
)

func TestEstimateWordTokens(t *testing.T) {
	assert.Equal(t, 0, text.EstimateWordTokens(""))
	assert.Equal(t, 1, text.EstimateWordTokens("a"))
	assert.Equal(t, 1, text.EstimateWordTokens("four"))
	assert.Equal(t, 2, text.EstimateWordTokens("fives"))
	assert.Equal(t, 2, text.EstimateWordTokens("eightchr"))
	assert.Equal(t, 3, text.EstimateWordTokens("ninechars"))
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, text.EstimateTokens(""))
	assert.Equal(t, 0, text.EstimateTokens("   \t\n"))
	// "hello"(2) + "world"(2)
	assert.Equal(t, 4, text.EstimateTokens("hello world"))
	// Whitespace runs do not change the estimate.
	assert.Equal(t, text.EstimateTokens("hello world"), text.EstimateTokens("  hello \n world  "))
}

func TestEstimateTokensSplitsAreAdditive(t *testing.T) {
	s := "the quick brown fox jumps over the lazy dog"
	words := strings.Fields(s)

	total := 0
	for _, w := range words {
		total += text.EstimateTokens(w)
	}
	assert.Equal(t, total, text.EstimateTokens(s))
}
