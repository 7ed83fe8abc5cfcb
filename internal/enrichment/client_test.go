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

package enrichment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videolens/go-video-insights/internal/core/model"
	"github.com/videolens/go-video-insights/internal/enrichment"
)

const testPrompt = "Example:\n{{.EXAMPLE_JSON}}\n\nText:\n{{.TEXT}}"

// scriptedGenerator returns its responses in order; a nil error with an empty
// script falls through to repeating the last response.
type scriptedGenerator struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	i := g.calls
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return g.responses[len(g.responses)-1], nil
}

// blockingGenerator waits for cancellation.
type blockingGenerator struct{}

func (blockingGenerator) Generate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func newClient(t *testing.T, g enrichment.Generator) *enrichment.Client {
	t.Helper()
	client, err := enrichment.NewClient(g, testPrompt, 3, time.Millisecond, 5*time.Millisecond)
	require.NoError(t, err)
	return client
}

func TestEnrichParsesWellFormedResponse(t *testing.T) {
	g := &scriptedGenerator{responses: []string{
		`{"sentiment":"Positive","keywords":["growth"],"summary":"Revenue grew.","complexity":"Low"}`,
	}}
	client := newClient(t, g)

	insight, err := client.Enrich(context.Background(), "revenue grew")
	require.NoError(t, err)
	assert.Equal(t, "Positive", insight.Sentiment)
	assert.Equal(t, []string{"growth"}, insight.Keywords)
	assert.Equal(t, 1, g.calls)
}

func TestEnrichStripsMarkdownFence(t *testing.T) {
	g := &scriptedGenerator{responses: []string{
		"```json\n{\"sentiment\":\"Neutral\",\"keywords\":[],\"summary\":\"ok\",\"complexity\":\"Low\"}\n```",
	}}
	client := newClient(t, g)

	insight, err := client.Enrich(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "Neutral", insight.Sentiment)
}

func TestEnrichRetriesTransientFailures(t *testing.T) {
	g := &scriptedGenerator{
		errs: []error{errors.New("boom"), errors.New("boom again"), nil},
		responses: []string{"", "",
			`{"sentiment":"Mixed","keywords":[],"summary":"third time lucky","complexity":"Medium"}`,
		},
	}
	client := newClient(t, g)

	insight, err := client.Enrich(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", insight.Summary)
	assert.Equal(t, 3, g.calls)
}

func TestEnrichSubstitutesSentinelAfterExhaustedRetries(t *testing.T) {
	g := &scriptedGenerator{
		errs: []error{errors.New("down"), errors.New("down"), errors.New("down")},
	}
	client := newClient(t, g)

	insight, err := client.Enrich(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, model.SentinelInsight(), insight)
	assert.Equal(t, 3, g.calls)
}

func TestEnrichSentinelOnPersistentlyMalformedResponse(t *testing.T) {
	g := &scriptedGenerator{responses: []string{"this is not json"}}
	client := newClient(t, g)

	insight, err := client.Enrich(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, model.SentinelInsight(), insight)
	assert.Equal(t, 3, g.calls, "malformed responses count against the attempt budget")
}

func TestEnrichPromptCarriesSegmentAndExample(t *testing.T) {
	g := &scriptedGenerator{responses: []string{
		`{"sentiment":"Neutral","keywords":[],"summary":"ok","complexity":"Low"}`,
	}}
	client := newClient(t, g)

	_, err := client.Enrich(context.Background(), "the actual segment text")
	require.NoError(t, err)
	require.Len(t, g.prompts, 1)
	assert.Contains(t, g.prompts[0], "the actual segment text")
	assert.Contains(t, g.prompts[0], `"sentiment"`)
}

func TestEnrichReturnsCancellationInsteadOfSentinel(t *testing.T) {
	client := newClient(t, blockingGenerator{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := client.Enrich(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClientValidation(t *testing.T) {
	g := &scriptedGenerator{responses: []string{"{}"}}

	_, err := enrichment.NewClient(g, "{{.Broken", 3, time.Second, time.Second)
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)

	_, err = enrichment.NewClient(g, testPrompt, 0, time.Second, time.Second)
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)
}
