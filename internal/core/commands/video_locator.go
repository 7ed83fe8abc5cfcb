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
	"github.com/videolens/go-video-insights/internal/chunkstore"
	"github.com/videolens/go-video-insights/internal/core/cor"
)

// VideoLocator resolves an upload id to its assembled video. It is the first
// command of the pipeline and fails the chain when the upload is unknown or
// has not finished assembling.
type VideoLocator struct {
	cor.BaseCommand
	store *chunkstore.Store
}

// NewVideoLocator is the constructor for the VideoLocator command.
func NewVideoLocator(name string, store *chunkstore.Store) *VideoLocator {
	return &VideoLocator{BaseCommand: *cor.NewBaseCommand(name), store: store}
}

// Execute looks up the assembled video for the upload id found under the
// command's input parameter. The video is published both as the chain output
// and under a stable named key for commands later in the chain.
func (c *VideoLocator) Execute(context cor.Context) {
	uploadID := context.Get(c.GetInputParam()).(string)

	video, err := c.store.AssembledVideo(uploadID)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetUploadIDParamName(), uploadID)
	context.Add(GetAssembledVideoParamName(), video)
	context.Add(c.GetOutputParam(), video)
}
