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

// Package results persists the final per-upload insight documents as JSON
// files on the local filesystem.
package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/videolens/go-video-insights/internal/core/model"
)

// resultSuffix is appended to the video's base name to form the document
// file name.
const resultSuffix = "_results.json"

// Store writes and reads result documents under a single root directory.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// pathFor derives the document location from the video path: the video's
// base name without extension plus the result suffix.
func (s *Store) pathFor(videoPath string) string {
	base := filepath.Base(videoPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(s.root, base+resultSuffix)
}

// Write persists the document, replacing any previous run's output for the
// same video. The JSON is staged to a temporary file and renamed into place
// so readers never observe a partially written document.
func (s *Store) Write(doc *model.ResultDocument) (string, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating results directory: %v", model.ErrStorage, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: marshaling results for upload %s: %v", model.ErrStorage, doc.UploadID, err)
	}

	dest := s.pathFor(doc.VideoPath)
	tmp, err := os.CreateTemp(s.root, "results-*.json.part")
	if err != nil {
		return "", fmt.Errorf("%w: creating results temp file: %v", model.ErrStorage, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: writing results for upload %s: %v", model.ErrStorage, doc.UploadID, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: closing results for upload %s: %v", model.ErrStorage, doc.UploadID, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: committing results for upload %s: %v", model.ErrStorage, doc.UploadID, err)
	}
	return dest, nil
}

// Read loads the document previously written for a video. It returns
// model.ErrUnknownUpload when no document exists.
func (s *Store) Read(videoPath string) (*model.ResultDocument, error) {
	data, err := os.ReadFile(s.pathFor(videoPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, model.ErrUnknownUpload
		}
		return nil, fmt.Errorf("%w: reading results for %s: %v", model.ErrStorage, videoPath, err)
	}
	var doc model.ResultDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding results for %s: %v", model.ErrStorage, videoPath, err)
	}
	return &doc, nil
}
