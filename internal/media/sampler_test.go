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

// fakeDecoder satisfies media.Decoder without shelling out to ffmpeg.
type fakeDecoder struct {
	duration    float64
	durationErr error
	failAt      map[float64]bool
	extracted   []float64
}

func (f *fakeDecoder) Duration(_ context.Context, _ string) (float64, error) {
	if f.durationErr != nil {
		return 0, f.durationErr
	}
	return f.duration, nil
}

func (f *fakeDecoder) ExtractFrame(_ context.Context, _ string, ts float64, _ string) error {
	if f.failAt[ts] {
		return fmt.Errorf("%w: synthetic decode failure", model.ErrExtraction)
	}
	f.extracted = append(f.extracted, ts)
	return nil
}

func testVideo() *model.AssembledVideo {
	return &model.AssembledVideo{UploadID: "u1", Path: "u1.mp4", MIMEType: "video/mp4"}
}

func TestSampleEveryInterval(t *testing.T) {
	dec := &fakeDecoder{duration: 10}
	sampler := media.NewFrameSampler(dec, t.TempDir(), 0.5, 60)

	samples, err := sampler.Sample(context.Background(), testVideo(), 2)
	require.NoError(t, err)
	require.Len(t, samples, 5)

	assert.Equal(t, []float64{0, 2, 4, 6, 8}, dec.extracted)
	for i, s := range samples {
		assert.Equal(t, i, s.FrameIndex)
		assert.Equal(t, "u1", s.UploadID)
		assert.NotEmpty(t, s.ImagePath)
	}
}

func TestSampleSkipsUndecodableFrames(t *testing.T) {
	dec := &fakeDecoder{duration: 10, failAt: map[float64]bool{6: true}}
	sampler := media.NewFrameSampler(dec, t.TempDir(), 0.5, 60)

	samples, err := sampler.Sample(context.Background(), testVideo(), 2)
	require.NoError(t, err)
	require.Len(t, samples, 4)

	// Timestamps stay monotonic across the gap.
	timestamps := make([]float64, 0, len(samples))
	for _, s := range samples {
		timestamps = append(timestamps, s.TimestampSeconds)
	}
	assert.Equal(t, []float64{0, 2, 4, 8}, timestamps)
}

func TestSampleRejectsOutOfRangeInterval(t *testing.T) {
	dec := &fakeDecoder{duration: 10}
	sampler := media.NewFrameSampler(dec, t.TempDir(), 0.5, 60)

	_, err := sampler.Sample(context.Background(), testVideo(), 0.1)
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)

	_, err = sampler.Sample(context.Background(), testVideo(), 120)
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)

	// No decoding happens for a rejected interval.
	assert.Empty(t, dec.extracted)
}

func TestSampleFailsWhenContainerUnreadable(t *testing.T) {
	dec := &fakeDecoder{durationErr: fmt.Errorf("%w: bad container", model.ErrExtraction)}
	sampler := media.NewFrameSampler(dec, t.TempDir(), 0.5, 60)

	_, err := sampler.Sample(context.Background(), testVideo(), 2)
	assert.ErrorIs(t, err, model.ErrExtraction)
}

func TestSampleStopsOnCancellation(t *testing.T) {
	dec := &fakeDecoder{duration: 10}
	sampler := media.NewFrameSampler(dec, t.TempDir(), 0.5, 60)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sampler.Sample(ctx, testVideo(), 2)
	assert.ErrorIs(t, err, context.Canceled)
}
