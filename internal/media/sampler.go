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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/videolens/go-video-insights/internal/core/model"
)

// FrameSampler extracts frames from a video at a fixed time interval.
type FrameSampler struct {
	decoder     Decoder
	framesRoot  string
	minInterval float64
	maxInterval float64
}

// NewFrameSampler creates a sampler that writes frame images under
// framesRoot/<upload-id>/. The [minInterval, maxInterval] bounds apply to
// every Sample call.
func NewFrameSampler(decoder Decoder, framesRoot string, minInterval, maxInterval float64) *FrameSampler {
	return &FrameSampler{
		decoder:     decoder,
		framesRoot:  framesRoot,
		minInterval: minInterval,
		maxInterval: maxInterval,
	}
}

// Sample extracts one frame every intervalSeconds across the video, starting
// at t=0, and returns the samples in timestamp order. An interval outside the
// configured bounds is rejected with model.ErrInvalidConfiguration before any
// decoding happens. A frame that fails to decode is logged and skipped; the
// remaining timestamps are still sampled. Sample fails outright only when the
// container itself cannot be read.
func (s *FrameSampler) Sample(ctx context.Context, video *model.AssembledVideo, intervalSeconds float64) ([]*model.FrameSample, error) {
	if intervalSeconds < s.minInterval || intervalSeconds > s.maxInterval {
		return nil, fmt.Errorf("%w: sampling interval %.2fs outside [%.2f, %.2f]",
			model.ErrInvalidConfiguration, intervalSeconds, s.minInterval, s.maxInterval)
	}

	duration, err := s.decoder.Duration(ctx, video.Path)
	if err != nil {
		return nil, err
	}

	frameDir := filepath.Join(s.framesRoot, video.UploadID)
	if err := os.MkdirAll(frameDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating frame directory for upload %s: %v", model.ErrStorage, video.UploadID, err)
	}

	var samples []*model.FrameSample
	index := 0
	for ts := 0.0; ts < duration; ts += intervalSeconds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		framePath := filepath.Join(frameDir, fmt.Sprintf("frame_%06d.png", index))
		if err := s.decoder.ExtractFrame(ctx, video.Path, ts, framePath); err != nil {
			slog.Warn("skipping undecodable frame",
				"upload_id", video.UploadID, "timestamp", ts, "error", err)
			index++
			continue
		}
		samples = append(samples, &model.FrameSample{
			UploadID:         video.UploadID,
			FrameIndex:       index,
			TimestampSeconds: ts,
			ImagePath:        framePath,
		})
		index++
	}

	slog.Info("sampled frames", "upload_id", video.UploadID,
		"duration", duration, "interval", intervalSeconds, "frames", len(samples))
	return samples, nil
}
