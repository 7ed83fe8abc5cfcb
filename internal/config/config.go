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

// Package config defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings for
// the upload store, the frame sampler, the OCR engine, the text chunker, and
// the generative enrichment backend.
//
// The configuration is an explicitly constructed, immutable value that is
// passed to each component at construction time. Components never reach for
// global state.
package config

import (
	"fmt"

	"github.com/videolens/go-video-insights/internal/core/model"
)

// Storage holds the local filesystem roots used by the pipeline. The layout
// is a convention shared with upload clients: chunks are staged under
// ChunksRoot keyed by upload id, assembled videos land in VideosRoot, frame
// images in FramesRoot, and result documents in ProcessedRoot.
type Storage struct {
	ChunksRoot    string `toml:"chunks_root"`    // Directory for staged upload chunks, one subdirectory per upload id.
	VideosRoot    string `toml:"videos_root"`    // Directory for assembled video files.
	FramesRoot    string `toml:"frames_root"`    // Directory for extracted frame images, one subdirectory per upload id.
	ProcessedRoot string `toml:"processed_root"` // Directory for per-upload JSON result documents.
}

// Sampling configures the frame sampler. Intervals outside the
// [MinIntervalSeconds, MaxIntervalSeconds] range are rejected before any
// processing starts.
type Sampling struct {
	DefaultIntervalSeconds float64 `toml:"default_interval_seconds"` // Interval used when the caller does not supply one.
	MinIntervalSeconds     float64 `toml:"min_interval_seconds"`     // Lower bound for an acceptable sampling interval.
	MaxIntervalSeconds     float64 `toml:"max_interval_seconds"`     // Upper bound for an acceptable sampling interval.
	FFmpegPath             string  `toml:"ffmpeg_path"`              // Path to the ffmpeg executable.
	FFprobePath            string  `toml:"ffprobe_path"`             // Path to the ffprobe executable.
}

// OCR configures the external text extraction engine.
type OCR struct {
	CommandPath string `toml:"command_path"` // Path to the tesseract executable.
	Language    string `toml:"language"`     // OCR language hint, e.g. "eng".
}

// Chunker configures token-budgeted text segmentation.
type Chunker struct {
	MaxTokensPerSegment int `toml:"max_tokens_per_segment"` // Estimated-token budget for each segment sent to the model.
}

// Dedupe configures consecutive near-duplicate removal. A threshold of 1.0
// keeps only exact normalized-text matches as duplicates; lower values drop
// units whose token overlap with the previous kept unit meets the threshold.
type Dedupe struct {
	SimilarityThreshold float64 `toml:"similarity_threshold"`
}

// GenAI configures the generative enrichment backend and the retry policy
// wrapped around each per-segment call.
type GenAI struct {
	Model              string  `toml:"model"`                 // Model name, e.g. "gemini-2.0-flash".
	APIKeyEnvVar       string  `toml:"api_key_env_var"`       // Environment variable holding the API credential.
	SystemInstructions string  `toml:"system_instructions"`   // System instructions for the model.
	Temperature        float32 `toml:"temperature"`           // Sampling temperature.
	TopP               float32 `toml:"top_p"`                 // Nucleus sampling parameter.
	TopK               float32 `toml:"top_k"`                 // Top-k sampling parameter.
	MaxTokens          int32   `toml:"max_tokens"`            // Maximum output tokens.
	OutputFormat       string  `toml:"output_format"`         // Desired response MIME type, e.g. "application/json".
	RateLimit          int     `toml:"rate_limit"`            // Requests per second allowed against the backend.
	MaxAttempts        int     `toml:"max_attempts"`          // Attempts per segment before the sentinel insight is substituted.
	BaseDelaySeconds   float64 `toml:"base_delay_seconds"`    // Initial back-off delay between attempts.
	MaxDelaySeconds    float64 `toml:"max_delay_seconds"`     // Cap on the back-off delay.
}

// PromptTemplates holds the text templates for prompts sent to the model.
type PromptTemplates struct {
	InsightPrompt string `toml:"insight"` // Template for the per-segment insight extraction prompt.
}

// Config is the top-level configuration for the application, loaded from
// TOML files.
type Config struct {
	Application struct {
		Name           string `toml:"name"`             // The name of the application, used in telemetry.
		ListenAddress  string `toml:"listen_address"`   // Address the HTTP server binds to, e.g. ":8080".
		ThreadPoolSize int    `toml:"thread_pool_size"` // Bound on concurrently running upload pipelines and enrichment workers.
	} `toml:"application"`
	Storage         Storage         `toml:"storage"`
	Sampling        Sampling        `toml:"sampling"`
	OCR             OCR             `toml:"ocr"`
	Chunker         Chunker         `toml:"chunker"`
	Dedupe          Dedupe          `toml:"dedupe"`
	GenAI           GenAI           `toml:"genai"`
	PromptTemplates PromptTemplates `toml:"prompt_templates"`
}

// NewConfig creates a Config populated with the defaults that do not depend
// on the deployment environment. TOML files loaded on top of it override any
// of these values.
func NewConfig() *Config {
	c := &Config{}
	c.Application.Name = "video-insights"
	c.Application.ListenAddress = ":8080"
	c.Application.ThreadPoolSize = 4
	c.Storage = Storage{
		ChunksRoot:    "uploads/chunks",
		VideosRoot:    "uploads/videos",
		FramesRoot:    "uploads/frames",
		ProcessedRoot: "uploads/processed",
	}
	c.Sampling = Sampling{
		DefaultIntervalSeconds: 2,
		MinIntervalSeconds:     0.5,
		MaxIntervalSeconds:     60,
		FFmpegPath:             "ffmpeg",
		FFprobePath:            "ffprobe",
	}
	c.OCR = OCR{CommandPath: "tesseract", Language: "eng"}
	c.Chunker = Chunker{MaxTokensPerSegment: 2000}
	c.Dedupe = Dedupe{SimilarityThreshold: 1.0}
	c.GenAI = GenAI{
		APIKeyEnvVar:     "GEMINI_API_KEY",
		OutputFormat:     "application/json",
		RateLimit:        1,
		MaxAttempts:      3,
		BaseDelaySeconds: 4,
		MaxDelaySeconds:  10,
	}
	return c
}

// Validate rejects configurations that would let a pipeline start with
// parameters no stage can honor. Errors wrap model.ErrInvalidConfiguration
// so callers can classify them.
func (c *Config) Validate() error {
	if c.Sampling.MinIntervalSeconds <= 0 || c.Sampling.MaxIntervalSeconds < c.Sampling.MinIntervalSeconds {
		return fmt.Errorf("%w: sampling interval bounds [%v, %v]",
			model.ErrInvalidConfiguration, c.Sampling.MinIntervalSeconds, c.Sampling.MaxIntervalSeconds)
	}
	if c.Sampling.DefaultIntervalSeconds < c.Sampling.MinIntervalSeconds ||
		c.Sampling.DefaultIntervalSeconds > c.Sampling.MaxIntervalSeconds {
		return fmt.Errorf("%w: default sampling interval %v outside [%v, %v]",
			model.ErrInvalidConfiguration, c.Sampling.DefaultIntervalSeconds,
			c.Sampling.MinIntervalSeconds, c.Sampling.MaxIntervalSeconds)
	}
	if c.Chunker.MaxTokensPerSegment <= 0 {
		return fmt.Errorf("%w: max tokens per segment must be positive, got %d",
			model.ErrInvalidConfiguration, c.Chunker.MaxTokensPerSegment)
	}
	if c.Dedupe.SimilarityThreshold <= 0 || c.Dedupe.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: dedupe similarity threshold %v outside (0, 1]",
			model.ErrInvalidConfiguration, c.Dedupe.SimilarityThreshold)
	}
	if c.Application.ThreadPoolSize <= 0 {
		return fmt.Errorf("%w: thread pool size must be positive, got %d",
			model.ErrInvalidConfiguration, c.Application.ThreadPoolSize)
	}
	return nil
}
