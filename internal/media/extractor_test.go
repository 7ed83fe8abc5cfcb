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

package media_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videolens/go-video-insights/internal/core/model"
	"github.com/videolens/go-video-insights/internal/media"
)

// fakeOCR maps image paths to canned text; unknown paths fail.
type fakeOCR struct {
	texts map[string]string
}

func (f *fakeOCR) Recognize(_ context.Context, imagePath string) (string, error) {
	text, ok := f.texts[imagePath]
	if !ok {
		return "", fmt.Errorf("%w: synthetic ocr failure", model.ErrExtraction)
	}
	return text, nil
}

func samples(paths ...string) []*model.FrameSample {
	out := make([]*model.FrameSample, len(paths))
	for i, p := range paths {
		out[i] = &model.FrameSample{UploadID: "u1", FrameIndex: i, ImagePath: p}
	}
	return out
}

func TestExtractProducesUnitPerFrame(t *testing.T) {
	engine := &fakeOCR{texts: map[string]string{
		"f0.png": "first slide",
		"f1.png": "second slide",
	}}
	extractor := media.NewTextExtractor(engine)

	units, err := extractor.Extract(context.Background(), samples("f0.png", "f1.png"))
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, "first slide", units[0].Text)
	assert.Equal(t, "second slide", units[1].Text)
	assert.Equal(t, 0, units[0].FrameIndex)
	assert.Equal(t, 1, units[1].FrameIndex)
	assert.Greater(t, units[0].TokenCount, 0)
}

func TestExtractSwallowsOCRFailures(t *testing.T) {
	engine := &fakeOCR{texts: map[string]string{
		"f0.png": "readable",
		"f2.png": "also readable",
	}}
	extractor := media.NewTextExtractor(engine)

	units, err := extractor.Extract(context.Background(), samples("f0.png", "f1.png", "f2.png"))
	require.NoError(t, err)
	require.Len(t, units, 3)

	// The failed frame yields an empty unit, not a missing one.
	assert.Equal(t, "", units[1].Text)
	assert.Equal(t, 0, units[1].TokenCount)
	assert.Equal(t, "also readable", units[2].Text)
}

func TestExtractStopsOnCancellation(t *testing.T) {
	extractor := media.NewTextExtractor(&fakeOCR{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := extractor.Extract(ctx, samples("f0.png"))
	assert.ErrorIs(t, err, context.Canceled)
}
