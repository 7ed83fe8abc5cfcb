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

// Package workflow combines the pipeline commands into the end-to-end
// orchestration that turns an assembled upload into a persisted insight
// document.
package workflow

import (
	"github.com/videolens/go-video-insights/internal/chunkstore"
	"github.com/videolens/go-video-insights/internal/config"
	"github.com/videolens/go-video-insights/internal/core/commands"
	"github.com/videolens/go-video-insights/internal/core/cor"
	"github.com/videolens/go-video-insights/internal/enrichment"
	"github.com/videolens/go-video-insights/internal/media"
	"github.com/videolens/go-video-insights/internal/results"
	"github.com/videolens/go-video-insights/internal/text"
)

// InsightWorkflow is the full processing pipeline for one upload: locate the
// assembled video, sample frames, extract and deduplicate on-screen text,
// enrich the text segments, persist the result document, and clean up the
// working files. The workflow is itself a cor.Command, so it can be composed
// or executed directly.
type InsightWorkflow struct {
	cor.BaseCommand
	cfg          *config.Config
	store        *chunkstore.Store
	sampler      *media.FrameSampler
	extractor    *media.TextExtractor
	deduplicator *text.Deduplicator
	chunker      *text.Chunker
	enricher     *enrichment.Client
	results      *results.Store
	chain        cor.Chain
}

// Execute runs the workflow by invoking the underlying chain. The chain
// context must carry the upload id under cor.CtxIn.
func (w *InsightWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// initializeChain builds the command sequence. Each command's output under
// the chain's piping keys becomes the next command's input.
func (w *InsightWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Resolve the upload id to its assembled video file.
	out.AddCommand(commands.NewVideoLocator("locate-assembled-video", w.store))

	// Decode one frame per sampling interval.
	out.AddCommand(commands.NewFrameSamplerCommand("sample-frames", w.sampler,
		w.cfg.Sampling.DefaultIntervalSeconds))

	// OCR every sampled frame into a text unit.
	out.AddCommand(commands.NewTextExtractorCommand("extract-frame-text", w.extractor))

	// Drop consecutive frames showing the same text.
	out.AddCommand(commands.NewTextDedupeCommand("dedupe-frame-text", w.deduplicator))

	// Enrich each remaining unit with a worker pool; one insight per
	// token-budgeted segment.
	out.AddCommand(commands.NewInsightEnricher("enrich-text-units", w.enricher, w.chunker,
		w.cfg.Application.ThreadPoolSize))

	// Persist the final document next to the other processed uploads.
	out.AddCommand(commands.NewResultsPersister("persist-results", w.results))

	// Remove staged chunks and frame images.
	out.AddCommand(commands.NewMediaCleanup("cleanup-working-files", w.store,
		w.cfg.Storage.FramesRoot))

	w.chain = out
}

// NewInsightPipeline is the constructor for the InsightWorkflow. The caller
// supplies the already-constructed stage components so tests can substitute
// fakes for the decoder, OCR engine, and enrichment backend.
func NewInsightPipeline(
	cfg *config.Config,
	store *chunkstore.Store,
	sampler *media.FrameSampler,
	extractor *media.TextExtractor,
	deduplicator *text.Deduplicator,
	chunker *text.Chunker,
	enricher *enrichment.Client,
	resultStore *results.Store) *InsightWorkflow {

	pipeline := &InsightWorkflow{
		BaseCommand:  *cor.NewBaseCommand("insight-pipeline"),
		cfg:          cfg,
		store:        store,
		sampler:      sampler,
		extractor:    extractor,
		deduplicator: deduplicator,
		chunker:      chunker,
		enricher:     enricher,
		results:      resultStore,
	}
	pipeline.initializeChain()
	return pipeline
}
