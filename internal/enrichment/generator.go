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

// Package enrichment sends text segments to a generative model and turns the
// responses into structured insights. The backend sits behind the Generator
// interface; the production implementation wraps the Gemini API with a rate
// limiter so concurrent pipeline workers cannot exceed the model quota.
package enrichment

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/videolens/go-video-insights/internal/config"
)

// Generator produces a raw model response for a text prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DefaultSafetySettings disables content blocking across the harm categories.
// The prompts are OCR text from user-supplied videos; blocking a segment
// would silently hole the results.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// RateLimitedModel decorates the Gemini content API with a token-bucket rate
// limiter. Generate blocks on the limiter, so concurrent workers queue up
// rather than error out when the quota is hot.
type RateLimitedModel struct {
	modelName     string
	modelHandle   *genai.Models
	contentConfig *genai.GenerateContentConfig
	limiter       *rate.Limiter
}

// NewRateLimitedModel wraps a model handle with its generation settings and a
// requests-per-second limit. The limiter refills at the configured rate and
// allows bursts up to one second's worth of requests.
func NewRateLimitedModel(modelHandle *genai.Models, modelName string, contentConfig *genai.GenerateContentConfig, requestsPerSecond int) *RateLimitedModel {
	return &RateLimitedModel{
		modelName:     modelName,
		modelHandle:   modelHandle,
		contentConfig: contentConfig,
		limiter:       rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

// Generate waits for rate-limiter clearance, sends the prompt, and returns
// the concatenated text of the response candidates.
func (m *RateLimitedModel) Generate(ctx context.Context, prompt string) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := m.modelHandle.GenerateContent(ctx, m.modelName, genai.Text(prompt), m.contentConfig)
	if err != nil {
		return "", err
	}

	value := ""
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			value += part.Text
		}
	}
	return value, nil
}

// NewGeminiGenerator builds the production Generator from configuration. The
// API key is read from the configured environment variable; a missing key
// fails construction so the server refuses to start half-configured instead
// of failing on the first enrichment call.
func NewGeminiGenerator(ctx context.Context, cfg *config.Config) (*RateLimitedModel, error) {
	apiKey := os.Getenv(cfg.GenAI.APIKeyEnvVar)
	if apiKey == "" {
		return nil, fmt.Errorf("environment variable %s is not set", cfg.GenAI.APIKeyEnvVar)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	contentConfig := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](cfg.GenAI.Temperature),
		TopP:              genai.Ptr[float32](cfg.GenAI.TopP),
		TopK:              genai.Ptr[float32](cfg.GenAI.TopK),
		MaxOutputTokens:   cfg.GenAI.MaxTokens,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: cfg.GenAI.SystemInstructions}}},
		SafetySettings:    DefaultSafetySettings,
		ResponseMIMEType:  cfg.GenAI.OutputFormat,
	}

	return NewRateLimitedModel(client.Models, cfg.GenAI.Model, contentConfig, cfg.GenAI.RateLimit), nil
}
