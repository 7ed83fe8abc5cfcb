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

package commands_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videolens/go-video-insights/internal/core/commands"
	"github.com/videolens/go-video-insights/internal/core/cor"
	"github.com/videolens/go-video-insights/internal/core/model"
	"github.com/videolens/go-video-insights/internal/enrichment"
	"github.com/videolens/go-video-insights/internal/text"
)

// poisonedGenerator echoes each segment back as a well-formed insight, except
// segments containing the poison word, which always error.
type poisonedGenerator struct {
	poison string

	mu    sync.Mutex
	calls int
}

func (g *poisonedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	_, segment, found := strings.Cut(prompt, "Text:\n")
	if !found {
		return "", fmt.Errorf("prompt is missing the segment text")
	}
	segment = strings.TrimSpace(segment)
	if strings.Contains(segment, g.poison) {
		return "", errors.New("model unavailable")
	}
	insight := &model.Insight{
		Sentiment:  "Neutral",
		Keywords:   []string{},
		Summary:    segment,
		Complexity: "Low",
	}
	raw, err := json.Marshal(insight)
	return string(raw), err
}

func TestEnricherKeepsSiblingSegmentsWhenOneFailsPermanently(t *testing.T) {
	generator := &poisonedGenerator{poison: "ran"}
	client, err := enrichment.NewClient(generator, "Text:\n{{.TEXT}}", 2,
		time.Millisecond, 2*time.Millisecond)
	require.NoError(t, err)

	chunker, err := text.NewChunker(2)
	require.NoError(t, err)

	units := []*model.TextUnit{
		{FrameIndex: 0, FramePath: "frame_000000.png", Text: "red fox ran far off", TokenCount: 5},
		{FrameIndex: 1, FramePath: "frame_000001.png", Text: "all is well", TokenCount: 3},
	}
	// The first unit splits into three segments; only the middle one fails.
	require.Equal(t, []string{"red fox", "ran far", "off"}, chunker.Chunk(units[0].Text))

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, units)
	chainCtx.Add(commands.GetEnrichEnabledParamName(), true)

	commands.NewInsightEnricher("enrich-text-units", client, chunker, 2).Execute(chainCtx)
	require.False(t, chainCtx.HasErrors(), "a permanently failed segment must not fail the entry")

	entries, ok := chainCtx.Get(cor.CtxOut).([]*model.EnrichedEntry)
	require.True(t, ok)
	require.Len(t, entries, 2)

	// The sentinel sits at the failed segment's position; the siblings keep
	// their real insights and the count still matches the segment count.
	first := entries[0]
	require.Len(t, first.Insights, 3)
	assert.Equal(t, "red fox", first.Insights[0].Summary)
	assert.Equal(t, model.SentinelInsight(), first.Insights[1])
	assert.Equal(t, "off", first.Insights[2].Summary)

	second := entries[1]
	require.Len(t, second.Insights, 2)
	assert.Equal(t, "all is", second.Insights[0].Summary)
	assert.Equal(t, "well", second.Insights[1].Summary)

	// Four segments succeeded first try; the poisoned one burned both attempts.
	assert.Equal(t, 6, generator.calls)
}
