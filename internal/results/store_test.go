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

package results_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videolens/go-video-insights/internal/core/model"
	"github.com/videolens/go-video-insights/internal/results"
)

func sampleDoc() *model.ResultDocument {
	return &model.ResultDocument{
		UploadID:  "u1",
		VideoPath: "uploads/videos/u1.mp4",
		Status:    model.ResultStatusDone,
		Entries: []*model.EnrichedEntry{
			{
				OriginalText: "hello world",
				FramePath:    "uploads/frames/u1/frame_000000.png",
				TotalTokens:  4,
				Insights: []*model.Insight{
					{Sentiment: "Neutral", Keywords: []string{"hello"}, Summary: "greeting", Complexity: "Low"},
				},
			},
		},
	}
}

func TestWriteAndReadRoundTrip(t *testing.T) {
	store := results.NewStore(t.TempDir())

	path, err := store.Write(sampleDoc())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "u1_results.json"))
	assert.Equal(t, "u1_results.json", filepath.Base(path))

	doc, err := store.Read("uploads/videos/u1.mp4")
	require.NoError(t, err)
	assert.Equal(t, sampleDoc(), doc)
}

func TestReadUnknownVideo(t *testing.T) {
	store := results.NewStore(t.TempDir())

	_, err := store.Read("uploads/videos/never-processed.mp4")
	assert.ErrorIs(t, err, model.ErrUnknownUpload)
}

func TestWriteReplacesPreviousRun(t *testing.T) {
	store := results.NewStore(t.TempDir())

	first := sampleDoc()
	first.Status = model.ResultStatusFailed
	first.Error = "transient outage"
	first.Entries = []*model.EnrichedEntry{}
	_, err := store.Write(first)
	require.NoError(t, err)

	_, err = store.Write(sampleDoc())
	require.NoError(t, err)

	doc, err := store.Read("uploads/videos/u1.mp4")
	require.NoError(t, err)
	assert.Equal(t, model.ResultStatusDone, doc.Status)
	assert.Empty(t, doc.Error)
	assert.Len(t, doc.Entries, 1)
}

func TestFailedRunDocument(t *testing.T) {
	store := results.NewStore(t.TempDir())

	doc := &model.ResultDocument{
		UploadID:  "u2",
		VideoPath: "uploads/videos/u2.mp4",
		Status:    model.ResultStatusFailed,
		Error:     "sample-frames: unreadable container",
		Entries:   []*model.EnrichedEntry{},
	}
	_, err := store.Write(doc)
	require.NoError(t, err)

	got, err := store.Read("uploads/videos/u2.mp4")
	require.NoError(t, err)
	assert.Equal(t, model.ResultStatusFailed, got.Status)
	assert.Contains(t, got.Error, "unreadable container")
}
