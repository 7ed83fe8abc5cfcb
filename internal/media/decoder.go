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

// Package media turns an assembled video into frame images and extracts any
// on-screen text from them. Decoding shells out to ffmpeg/ffprobe; OCR shells
// out to tesseract. Both sit behind small interfaces so the pipeline tests
// can run without either binary installed.
package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/videolens/go-video-insights/internal/core/model"
)

// Command-line templates for the external tools. Arguments carry no spaces
// beyond the separators, so a simple split is safe.
const (
	// DefaultFFprobeArgs asks ffprobe for the container duration in seconds
	// as a bare number.
	DefaultFFprobeArgs = "-v error -show_entries format=duration -of default=noprint_wrappers=1:nokey=1 %s"
	// DefaultFrameArgs seeks to a timestamp and writes exactly one frame as
	// a PNG. Seeking before -i keeps extraction fast on long videos.
	DefaultFrameArgs = "-y -hide_banner -loglevel error -ss %s -i %s -frames:v 1 %s"

	CommandSeparator = " "
)

// Decoder provides the two video operations the sampler needs: the total
// duration and a single frame at a timestamp.
type Decoder interface {
	// Duration returns the video length in seconds.
	Duration(ctx context.Context, videoPath string) (float64, error)

	// ExtractFrame decodes the frame nearest to the timestamp and writes it
	// to outputPath as an image.
	ExtractFrame(ctx context.Context, videoPath string, timestampSeconds float64, outputPath string) error
}

// FFmpegDecoder implements Decoder by invoking the ffmpeg and ffprobe
// binaries. One process per frame keeps a corrupt region of the video from
// taking down the whole extraction: a failed frame fails alone.
type FFmpegDecoder struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpegDecoder creates a decoder using the given executable paths.
func NewFFmpegDecoder(ffmpegPath, ffprobePath string) *FFmpegDecoder {
	return &FFmpegDecoder{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// Duration shells out to ffprobe and parses the reported duration. Errors
// wrap model.ErrExtraction since an unreadable container dooms sampling.
func (d *FFmpegDecoder) Duration(ctx context.Context, videoPath string) (float64, error) {
	args := fmt.Sprintf(DefaultFFprobeArgs, videoPath)
	cmd := exec.CommandContext(ctx, d.ffprobePath, strings.Split(args, CommandSeparator)...)
	cmd.Stderr = os.Stderr

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("%w: ffprobe failed on %s: %v", model.ErrExtraction, videoPath, err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unparsable duration %q for %s: %v", model.ErrExtraction, strings.TrimSpace(string(out)), videoPath, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%w: non-positive duration %f for %s", model.ErrExtraction, duration, videoPath)
	}
	return duration, nil
}

// ExtractFrame shells out to ffmpeg for a single frame at the timestamp.
func (d *FFmpegDecoder) ExtractFrame(ctx context.Context, videoPath string, timestampSeconds float64, outputPath string) error {
	ts := strconv.FormatFloat(timestampSeconds, 'f', 3, 64)
	args := fmt.Sprintf(DefaultFrameArgs, ts, videoPath, outputPath)
	cmd := exec.CommandContext(ctx, d.ffmpegPath, strings.Split(args, CommandSeparator)...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: ffmpeg frame extraction at %ss from %s: %v", model.ErrExtraction, ts, videoPath, err)
	}
	// ffmpeg can exit zero without producing output when the seek lands past
	// the last packet.
	if info, err := os.Stat(outputPath); err != nil || info.Size() == 0 {
		return fmt.Errorf("%w: ffmpeg produced no frame at %ss from %s", model.ErrExtraction, ts, videoPath)
	}
	return nil
}
