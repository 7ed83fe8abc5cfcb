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

package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/videolens/go-video-insights/internal/core/model"
)

// Client turns one text segment into one Insight. Each segment is attempted
// up to maxAttempts times with exponential back-off between attempts; a
// segment that still fails gets the sentinel insight instead of an error, so
// one refused or garbled response never fails the surrounding pipeline.
type Client struct {
	generator   Generator
	template    *template.Template
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// NewClient parses the prompt template and builds a Client. The template
// receives two parameters: TEXT (the segment) and EXAMPLE_JSON (a well-formed
// sample response for few-shot prompting).
func NewClient(generator Generator, promptTemplate string, maxAttempts int, baseDelay, maxDelay time.Duration) (*Client, error) {
	tmpl, err := template.New("insight-prompt").Parse(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing insight prompt template: %v", model.ErrInvalidConfiguration, err)
	}
	if maxAttempts < 1 {
		return nil, fmt.Errorf("%w: enrichment attempts must be positive, got %d", model.ErrInvalidConfiguration, maxAttempts)
	}
	return &Client{
		generator:   generator,
		template:    tmpl,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
	}, nil
}

// buildPrompt renders the prompt template for one segment.
func (c *Client) buildPrompt(segment string) (string, error) {
	example, err := json.Marshal(model.GetExampleInsight())
	if err != nil {
		return "", err
	}
	params := map[string]interface{}{
		"TEXT":         segment,
		"EXAMPLE_JSON": string(example),
	}
	var buffer bytes.Buffer
	if err := c.template.Execute(&buffer, params); err != nil {
		return "", fmt.Errorf("executing insight prompt template: %w", err)
	}
	return buffer.String(), nil
}

// parseInsight decodes a model response into an Insight. Responses are often
// wrapped in a markdown code fence; strip it before decoding.
func parseInsight(raw string) (*model.Insight, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var insight model.Insight
	if err := json.Unmarshal([]byte(cleaned), &insight); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling insight response: %v", model.ErrEnrichmentTransient, err)
	}
	if insight.Summary == "" && insight.Sentiment == "" {
		return nil, fmt.Errorf("%w: response decoded to an empty insight", model.ErrEnrichmentTransient)
	}
	return &insight, nil
}

// Enrich sends one segment to the model and returns the structured insight.
// Transport errors and malformed responses are retried with exponential
// back-off; once attempts are exhausted the sentinel insight is returned with
// a nil error. The only error Enrich returns is context cancellation, which
// must stop the pipeline rather than be papered over with a sentinel.
func (c *Client) Enrich(ctx context.Context, segment string) (*model.Insight, error) {
	prompt, err := c.buildPrompt(segment)
	if err != nil {
		slog.Error("failed to build enrichment prompt", "error", err)
		return model.SentinelInsight(), nil
	}

	operation := func() (*model.Insight, error) {
		raw, genErr := c.generator.Generate(ctx, prompt)
		if genErr != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrEnrichmentTransient, genErr)
		}
		return parseInsight(raw)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.baseDelay
	policy.MaxInterval = c.maxDelay

	insight, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.maxAttempts)))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("enrichment exhausted retries; substituting sentinel insight",
			"attempts", c.maxAttempts, "error", err)
		return model.SentinelInsight(), nil
	}
	return insight, nil
}
