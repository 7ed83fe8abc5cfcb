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

// Package commands provides the concrete pipeline steps that turn an
// assembled upload into a persisted insight document. Each command is a
// cor.Command: it reads its input from the shared chain context, performs one
// stage of the pipeline, and writes its output for the next command.
package commands

import (
	"github.com/videolens/go-video-insights/internal/core/cor"
	"github.com/videolens/go-video-insights/internal/core/model"
)

// Well-known context parameter names shared across the pipeline commands.
// Workflow assembly seeds these before the chain runs.
const (
	uploadIDParam         = "upload_id"
	assembledVideoParam   = "assembled_video"
	samplingIntervalParam = "sampling_interval"
	stageObserverParam    = "stage_observer"
	enrichEnabledParam    = "enrich_enabled"
)

// GetUploadIDParamName returns the context key holding the upload identifier.
func GetUploadIDParamName() string { return uploadIDParam }

// GetAssembledVideoParamName returns the context key holding the assembled
// video record, kept for commands that run after the main value has moved on.
func GetAssembledVideoParamName() string { return assembledVideoParam }

// GetSamplingIntervalParamName returns the context key holding the
// per-request frame sampling interval in seconds.
func GetSamplingIntervalParamName() string { return samplingIntervalParam }

// GetStageObserverParamName returns the context key holding the stage
// observer for the running job.
func GetStageObserverParamName() string { return stageObserverParam }

// GetEnrichEnabledParamName returns the context key holding the flag that
// enables the enrichment stage for the run.
func GetEnrichEnabledParamName() string { return enrichEnabledParam }

// StageObserver receives pipeline stage transitions as the chain advances.
// The job handle owned by the pipeline service implements it.
type StageObserver interface {
	SetStage(stage model.JobStage)
}

// notifyStage reports a stage transition when an observer is attached.
func notifyStage(context cor.Context, stage model.JobStage) {
	if observer, ok := context.Get(stageObserverParam).(StageObserver); ok {
		observer.SetStage(stage)
	}
}
