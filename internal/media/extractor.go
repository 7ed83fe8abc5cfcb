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

package media

import (
	"context"
	"log/slog"

	"github.com/videolens/go-video-insights/internal/core/model"
	"github.com/videolens/go-video-insights/internal/text"
)

// TextExtractor runs OCR over frame samples and produces one text unit per
// frame. OCR failure on a frame is not an error: the frame still yields a
// unit, with empty text, so downstream stages see the full frame sequence.
type TextExtractor struct {
	engine OCREngine
}

// NewTextExtractor creates a TextExtractor backed by the given OCR engine.
func NewTextExtractor(engine OCREngine) *TextExtractor {
	return &TextExtractor{engine: engine}
}

// Extract returns one TextUnit per sample, in input order, with the token
// count of the recognized text precomputed. Extract only fails when the
// context is canceled.
func (x *TextExtractor) Extract(ctx context.Context, samples []*model.FrameSample) ([]*model.TextUnit, error) {
	units := make([]*model.TextUnit, 0, len(samples))
	for _, sample := range samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		recognized, err := x.engine.Recognize(ctx, sample.ImagePath)
		if err != nil {
			slog.Warn("ocr failed; keeping frame with empty text",
				"frame", sample.ImagePath, "error", err)
			recognized = ""
		}
		units = append(units, &model.TextUnit{
			FrameIndex: sample.FrameIndex,
			FramePath:  sample.ImagePath,
			Text:       recognized,
			TokenCount: text.EstimateTokens(recognized),
		})
	}
	return units, nil
}
