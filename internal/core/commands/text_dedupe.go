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
	"log/slog"

	"github.com/videolens/go-video-insights/internal/core/cor"
	"github.com/videolens/go-video-insights/internal/core/model"
	"github.com/videolens/go-video-insights/internal/text"
)

// TextDedupeCommand drops consecutive frames whose text is the same
// on-screen content, keeping the first frame of each run.
type TextDedupeCommand struct {
	cor.BaseCommand
	deduplicator *text.Deduplicator
}

// NewTextDedupeCommand is the constructor for the TextDedupeCommand.
func NewTextDedupeCommand(name string, deduplicator *text.Deduplicator) *TextDedupeCommand {
	return &TextDedupeCommand{BaseCommand: *cor.NewBaseCommand(name), deduplicator: deduplicator}
}

// Execute deduplicates the text units from the previous command. An empty
// result is not an error: a video with no readable text yields an empty
// result document downstream.
func (c *TextDedupeCommand) Execute(context cor.Context) {
	units := context.Get(c.GetInputParam()).([]*model.TextUnit)

	notifyStage(context, model.JobStageDeduplicating)

	kept := c.deduplicator.Dedupe(units)
	slog.Info("deduplicated text units", "in", len(units), "kept", len(kept))

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), kept)
}
