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

	"github.com/videolens/go-video-insights/internal/core/cor"
	"github.com/videolens/go-video-insights/internal/core/model"
	"github.com/videolens/go-video-insights/internal/results"
)

// ResultsPersister writes the enriched entries as the upload's result
// document. It is the terminal data step of the pipeline; its output is the
// path of the persisted document.
type ResultsPersister struct {
	cor.BaseCommand
	store *results.Store
}

// NewResultsPersister is the constructor for the ResultsPersister command.
func NewResultsPersister(name string, store *results.Store) *ResultsPersister {
	return &ResultsPersister{BaseCommand: *cor.NewBaseCommand(name), store: store}
}

// Execute assembles the result document from the entries and the upload
// identity seeded earlier in the chain, and persists it.
func (c *ResultsPersister) Execute(context cor.Context) {
	entries := context.Get(c.GetInputParam()).([]*model.EnrichedEntry)
	uploadID := context.Get(GetUploadIDParamName()).(string)
	video := context.Get(GetAssembledVideoParamName()).(*model.AssembledVideo)

	doc := &model.ResultDocument{
		UploadID:  uploadID,
		VideoPath: video.Path,
		Status:    model.ResultStatusDone,
		Entries:   entries,
	}

	path, err := c.store.Write(doc)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	slog.Info("persisted results", "upload_id", uploadID, "path", path, "entries", len(entries))
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), path)
}
