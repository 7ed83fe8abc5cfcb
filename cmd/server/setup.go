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

// Package main contains the setup and initialization logic for the server:
// loading the configuration, constructing the pipeline components, and wiring
// them into the shared application state used by the route handlers.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/videolens/go-video-insights/internal/chunkstore"
	"github.com/videolens/go-video-insights/internal/config"
	"github.com/videolens/go-video-insights/internal/core/services"
	"github.com/videolens/go-video-insights/internal/core/workflow"
	"github.com/videolens/go-video-insights/internal/enrichment"
	"github.com/videolens/go-video-insights/internal/media"
	"github.com/videolens/go-video-insights/internal/results"
	"github.com/videolens/go-video-insights/internal/text"
)

// StateManager holds the shared dependencies of the server. Handlers reach
// for it instead of globals scattered through the package.
type StateManager struct {
	config     *config.Config
	chunkStore *chunkstore.Store
	pipeline   *services.PipelineService
}

// state is the single instance of StateManager.
var state = &StateManager{}

// SetupOS points the configuration loader at the configs directory and the
// local runtime overrides.
func SetupOS() (err error) {
	err = os.Setenv(config.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(config.EnvConfigRuntime, "local")
	return err
}

// GetConfig provides a singleton instance of the application configuration,
// loaded from the TOML files on first use.
func GetConfig() *config.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to set up environment: %v\n", err)
		}
		cfg := config.NewConfig()
		config.LoadConfig(cfg)
		if err := cfg.Validate(); err != nil {
			log.Fatalf("invalid configuration: %v\n", err)
		}
		state.config = cfg
	}
	return state.config
}

// InitState constructs the pipeline components and wires them into the
// application state. Construction is fail-fast: a missing API credential or
// an unparsable prompt template stops the server before it accepts traffic.
func InitState(ctx context.Context) {
	cfg := GetConfig()

	chunkStore := chunkstore.NewStore(cfg.Storage.ChunksRoot, cfg.Storage.VideosRoot)
	resultStore := results.NewStore(cfg.Storage.ProcessedRoot)

	decoder := media.NewFFmpegDecoder(cfg.Sampling.FFmpegPath, cfg.Sampling.FFprobePath)
	sampler := media.NewFrameSampler(decoder, cfg.Storage.FramesRoot,
		cfg.Sampling.MinIntervalSeconds, cfg.Sampling.MaxIntervalSeconds)
	extractor := media.NewTextExtractor(media.NewTesseractEngine(cfg.OCR.CommandPath, cfg.OCR.Language))

	deduplicator := text.NewDeduplicator(cfg.Dedupe.SimilarityThreshold)
	chunker, err := text.NewChunker(cfg.Chunker.MaxTokensPerSegment)
	if err != nil {
		panic(err)
	}

	generator, err := enrichment.NewGeminiGenerator(ctx, cfg)
	if err != nil {
		panic(err)
	}
	enricher, err := enrichment.NewClient(
		generator,
		cfg.PromptTemplates.InsightPrompt,
		cfg.GenAI.MaxAttempts,
		time.Duration(cfg.GenAI.BaseDelaySeconds*float64(time.Second)),
		time.Duration(cfg.GenAI.MaxDelaySeconds*float64(time.Second)))
	if err != nil {
		panic(err)
	}

	pipeline := workflow.NewInsightPipeline(cfg, chunkStore, sampler, extractor,
		deduplicator, chunker, enricher, resultStore)

	state.chunkStore = chunkStore
	state.pipeline = services.NewPipelineService(cfg, pipeline, chunkStore, resultStore)
}
