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
	"github.com/videolens/go-video-insights/internal/core/cor"
	"github.com/videolens/go-video-insights/internal/core/model"
	"github.com/videolens/go-video-insights/internal/media"
)

// TextExtractorCommand runs OCR over the sampled frames and emits one text
// unit per frame, in frame order. OCR failures degrade to empty text inside
// the extractor, so this command only fails on cancellation.
type TextExtractorCommand struct {
	cor.BaseCommand
	extractor *media.TextExtractor
}

// NewTextExtractorCommand is the constructor for the TextExtractorCommand.
func NewTextExtractorCommand(name string, extractor *media.TextExtractor) *TextExtractorCommand {
	return &TextExtractorCommand{BaseCommand: *cor.NewBaseCommand(name), extractor: extractor}
}

// Execute extracts text from every frame sample produced by the previous
// command.
func (c *TextExtractorCommand) Execute(context cor.Context) {
	samples := context.Get(c.GetInputParam()).([]*model.FrameSample)

	units, err := c.extractor.Extract(context.GetContext(), samples)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), units)
}
