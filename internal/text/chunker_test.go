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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videolens/go-video-insights/internal/core/model"
	"github.com/videolens/go-video-insights/internal/text"
)

func TestNewChunkerRejectsNonPositiveBudget(t *testing.T) {
	_, err := text.NewChunker(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)

	_, err = text.NewChunker(-5)
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)
}

func TestChunkEmptyInput(t *testing.T) {
	chunker, err := text.NewChunker(10)
	require.NoError(t, err)

	assert.Nil(t, chunker.Chunk(""))
	assert.Nil(t, chunker.Chunk("   \n\t "))
}

func TestChunkRespectsBudget(t *testing.T) {
	const budget = 5
	chunker, err := text.NewChunker(budget)
	require.NoError(t, err)

	input := "alpha beta gamma delta epsilon zeta eta theta iota kappa"
	segments := chunker.Chunk(input)
	require.NotEmpty(t, segments)

	for _, seg := range segments {
		assert.LessOrEqual(t, text.EstimateTokens(seg), budget, "segment %q over budget", seg)
	}
}

func TestChunkIsLossless(t *testing.T) {
	chunker, err := text.NewChunker(4)
	require.NoError(t, err)

	input := "  one   two three\nfour five six seven eight  "
	segments := chunker.Chunk(input)

	joined := strings.Join(segments, " ")
	assert.Equal(t, strings.Join(strings.Fields(input), " "), joined)
}

func TestChunkSingleOversizedWord(t *testing.T) {
	chunker, err := text.NewChunker(2)
	require.NoError(t, err)

	// 16 chars, 4 estimated tokens: exceeds the budget on its own.
	long := "pneumonoultramic"
	segments := chunker.Chunk("ab " + long + " cd")

	require.Len(t, segments, 3)
	assert.Equal(t, "ab", segments[0])
	assert.Equal(t, long, segments[1])
	assert.Equal(t, "cd", segments[2])
}

func TestChunkFitsEverythingUnderLargeBudget(t *testing.T) {
	chunker, err := text.NewChunker(1000)
	require.NoError(t, err)

	segments := chunker.Chunk("a handful of short words")
	require.Len(t, segments, 1)
	assert.Equal(t, "a handful of short words", segments[0])
}

func TestChunkNewSegmentCarriesTriggeringWord(t *testing.T) {
	// Budget of 2 with 1-token words: segments of exactly two words each,
	// and the word that overflows a segment starts the next one.
	chunker, err := text.NewChunker(2)
	require.NoError(t, err)

	segments := chunker.Chunk("aa bb cc dd ee")
	assert.Equal(t, []string{"aa bb", "cc dd", "ee"}, segments)
}
