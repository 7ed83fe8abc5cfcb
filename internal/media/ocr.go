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
	"os/exec"
	"strings"

	"github.com/videolens/go-video-insights/internal/core/model"
)

// OCREngine recognizes text in a single image file.
type OCREngine interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// TesseractEngine implements OCREngine by invoking the tesseract binary with
// stdout output.
type TesseractEngine struct {
	commandPath string
	language    string
}

// NewTesseractEngine creates an engine using the given executable path and
// recognition language (for example "eng").
func NewTesseractEngine(commandPath, language string) *TesseractEngine {
	return &TesseractEngine{commandPath: commandPath, language: language}
}

// Recognize runs tesseract on the image and returns the recognized text with
// surrounding whitespace trimmed.
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	cmd := exec.CommandContext(ctx, e.commandPath, imagePath, "stdout", "-l", e.language)

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w: tesseract failed on %s: %v", model.ErrExtraction, imagePath, err)
	}
	return strings.TrimSpace(string(out)), nil
}
