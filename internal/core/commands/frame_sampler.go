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
	"github.com/videolens/go-video-insights/internal/core/cor"
	"github.com/videolens/go-video-insights/internal/core/model"
	"github.com/videolens/go-video-insights/internal/media"
)

// FrameSamplerCommand decodes the assembled video into time-sampled frame
// images. The sampling interval comes from the chain context when the caller
// supplied one, otherwise the configured default applies.
type FrameSamplerCommand struct {
	cor.BaseCommand
	sampler         *media.FrameSampler
	defaultInterval float64
}

// NewFrameSamplerCommand is the constructor for the FrameSamplerCommand.
func NewFrameSamplerCommand(name string, sampler *media.FrameSampler, defaultInterval float64) *FrameSamplerCommand {
	return &FrameSamplerCommand{
		BaseCommand:     *cor.NewBaseCommand(name),
		sampler:         sampler,
		defaultInterval: defaultInterval,
	}
}

// Execute samples frames at the effective interval. Individual frames the
// decoder cannot produce are skipped inside the sampler; only a failure to
// read the container at all fails the chain.
func (c *FrameSamplerCommand) Execute(context cor.Context) {
	video := context.Get(c.GetInputParam()).(*model.AssembledVideo)

	interval := c.defaultInterval
	if v, ok := context.Get(GetSamplingIntervalParamName()).(float64); ok && v > 0 {
		interval = v
	}

	notifyStage(context, model.JobStageExtracting)

	samples, err := c.sampler.Sample(context.GetContext(), video, interval)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), samples)
}
