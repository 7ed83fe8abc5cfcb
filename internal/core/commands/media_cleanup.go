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
	"os"
	"path/filepath"

	"github.com/videolens/go-video-insights/internal/chunkstore"
	"github.com/videolens/go-video-insights/internal/core/cor"
)

// MediaCleanup removes the working files of a finished pipeline run: the
// staged chunk files and the frame image directory. The assembled video and
// the result document stay. Cleanup failures are logged, never recorded as
// chain errors; a leftover directory must not fail an otherwise successful
// run.
type MediaCleanup struct {
	cor.BaseCommand
	store      *chunkstore.Store
	framesRoot string
}

// NewMediaCleanup is the constructor for the MediaCleanup command.
func NewMediaCleanup(name string, store *chunkstore.Store, framesRoot string) *MediaCleanup {
	return &MediaCleanup{BaseCommand: *cor.NewBaseCommand(name), store: store, framesRoot: framesRoot}
}

// IsExecutable requires only that the chain identified its upload; cleanup
// runs regardless of what the previous command produced.
func (v *MediaCleanup) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil &&
		context.Get(GetUploadIDParamName()) != nil
}

// Execute deletes the chunk staging directory and the frame images for the
// upload.
func (v *MediaCleanup) Execute(context cor.Context) {
	uploadID := context.Get(GetUploadIDParamName()).(string)

	if err := v.store.Cleanup(uploadID); err != nil {
		slog.Warn("failed to remove staged chunks", "upload_id", uploadID, "error", err)
	}
	if err := os.RemoveAll(filepath.Join(v.framesRoot, uploadID)); err != nil {
		slog.Warn("failed to remove frame images", "upload_id", uploadID, "error", err)
	}

	v.GetSuccessCounter().Add(context.GetContext(), 1)
}
