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

package commands

import (
	goctx "context"
	"fmt"
	"sync"

	"github.com/videolens/go-video-insights/internal/core/cor"
	"github.com/videolens/go-video-insights/internal/core/model"
	"github.com/videolens/go-video-insights/internal/enrichment"
	"github.com/videolens/go-video-insights/internal/text"
)

// InsightEnricher fans the deduplicated text units out to a pool of workers.
// Each worker splits a unit's text into token-budgeted segments and requests
// one insight per segment, in segment order. Workers run concurrently across
// units; within a unit segments are enriched sequentially so the insight
// order mirrors the segment order.
//
// A unit whose segments all failed still produces an entry: failed segments
// carry the sentinel insight rather than dropping out. The only error that
// stops the batch is cancellation.
type InsightEnricher struct {
	cor.BaseCommand
	client          *enrichment.Client
	chunker         *text.Chunker
	numberOfWorkers int
}

// NewInsightEnricher is the constructor for the InsightEnricher command.
func NewInsightEnricher(name string, client *enrichment.Client, chunker *text.Chunker, numberOfWorkers int) *InsightEnricher {
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}
	return &InsightEnricher{
		BaseCommand:     *cor.NewBaseCommand(name),
		client:          client,
		chunker:         chunker,
		numberOfWorkers: numberOfWorkers,
	}
}

// enrichJob carries one text unit and its position in the batch.
type enrichJob struct {
	index int
	unit  *model.TextUnit
}

// enrichResponse carries one finished entry (or the error that stopped it)
// back to the aggregator.
type enrichResponse struct {
	index int
	entry *model.EnrichedEntry
	err   error
}

// Execute distributes the units to the worker pool, waits for completion, and
// emits the enriched entries in the original unit order. A run whose options
// did not enable enrichment passes the units through as entries with no
// insights and never touches the model.
func (c *InsightEnricher) Execute(context cor.Context) {
	units := context.Get(c.GetInputParam()).([]*model.TextUnit)

	if enabled, ok := context.Get(GetEnrichEnabledParamName()).(bool); ok && !enabled {
		entries := make([]*model.EnrichedEntry, 0, len(units))
		for _, unit := range units {
			entries = append(entries, &model.EnrichedEntry{
				OriginalText: unit.Text,
				FramePath:    unit.FramePath,
				TotalTokens:  unit.TokenCount,
				Insights:     []*model.Insight{},
			})
		}
		c.GetSuccessCounter().Add(context.GetContext(), 1)
		context.Add(c.GetOutputParam(), entries)
		return
	}

	notifyStage(context, model.JobStageEnriching)

	var wg sync.WaitGroup
	jobs := make(chan *enrichJob, len(units))
	results := make(chan *enrichResponse, len(units))

	for w := 0; w < c.numberOfWorkers; w++ {
		wg.Add(1)
		go c.enrichWorker(context.GetContext(), jobs, results, &wg)
	}

	for i, unit := range units {
		jobs <- &enrichJob{index: i, unit: unit}
	}
	close(jobs)

	wg.Wait()
	close(results)

	// Workers finish out of order; slot each entry back by its batch index
	// to restore the frame sequence.
	ordered := make([]*model.EnrichedEntry, len(units))
	for r := range results {
		if r.err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), fmt.Errorf("enriching unit %d: %w", r.index, r.err))
			continue
		}
		ordered[r.index] = r.entry
	}
	if context.HasErrors() {
		return
	}

	entries := make([]*model.EnrichedEntry, 0, len(units))
	for _, entry := range ordered {
		if entry != nil {
			entries = append(entries, entry)
		}
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), entries)
}

// enrichWorker consumes jobs until the channel closes, building one enriched
// entry per text unit.
func (c *InsightEnricher) enrichWorker(ctx goctx.Context, jobs <-chan *enrichJob, results chan<- *enrichResponse, wg *sync.WaitGroup) {
	defer wg.Done()

	for j := range jobs {
		segments := c.chunker.Chunk(j.unit.Text)
		insights := make([]*model.Insight, 0, len(segments))

		var failed error
		for _, segment := range segments {
			insight, err := c.client.Enrich(ctx, segment)
			if err != nil {
				failed = err
				break
			}
			insights = append(insights, insight)
		}
		if failed != nil {
			results <- &enrichResponse{index: j.index, err: failed}
			continue
		}

		results <- &enrichResponse{
			index: j.index,
			entry: &model.EnrichedEntry{
				OriginalText: j.unit.Text,
				FramePath:    j.unit.FramePath,
				TotalTokens:  j.unit.TokenCount,
				Insights:     insights,
			},
		}
	}
}
