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

// Package services exposes the pipeline to callers: it owns the background
// jobs, bounds their concurrency, and tracks their lifecycle from the
// processing request to the persisted result.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/videolens/go-video-insights/internal/chunkstore"
	"github.com/videolens/go-video-insights/internal/config"
	"github.com/videolens/go-video-insights/internal/core/commands"
	"github.com/videolens/go-video-insights/internal/core/cor"
	"github.com/videolens/go-video-insights/internal/core/model"
	"github.com/videolens/go-video-insights/internal/core/workflow"
	"github.com/videolens/go-video-insights/internal/results"
)

// Job is the handle for one background pipeline run. It implements
// commands.StageObserver so the chain reports stage transitions directly
// onto it.
type Job struct {
	uploadID string
	video    *model.AssembledVideo
	cancel   context.CancelFunc
	done     chan struct{}

	mu    sync.Mutex
	stage model.JobStage
	err   error
}

// SetStage records a stage transition reported by the running chain.
func (j *Job) SetStage(stage model.JobStage) {
	j.mu.Lock()
	j.stage = stage
	j.mu.Unlock()
}

// Stage returns the job's current stage.
func (j *Job) Stage() model.JobStage {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stage
}

// Err returns the error that terminated the job, if any. It is only
// meaningful once Done is closed.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Cancel requests cancellation. The pipeline stops at the next stage
// boundary; in-flight work for the current stage is allowed to finish.
func (j *Job) Cancel() {
	j.cancel()
}

// Done is closed when the job has fully terminated and its final stage and
// error are set.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// finish records the terminal state and releases waiters.
func (j *Job) finish(stage model.JobStage, err error) {
	j.mu.Lock()
	j.stage = stage
	j.err = err
	j.mu.Unlock()
	close(j.done)
}

// running reports whether the job has not yet terminated.
func (j *Job) running() bool {
	select {
	case <-j.done:
		return false
	default:
		return true
	}
}

// JobStatus is the externally visible snapshot of a job.
type JobStatus struct {
	UploadID string         `json:"upload_id"`
	Stage    model.JobStage `json:"stage"`
	Error    string         `json:"error,omitempty"`
}

// PipelineService starts, bounds, and tracks pipeline jobs. At most
// ThreadPoolSize pipelines run concurrently; further Start calls queue on the
// semaphore without blocking the caller.
type PipelineService struct {
	cfg      *config.Config
	pipeline *workflow.InsightWorkflow
	store    *chunkstore.Store
	results  *results.Store
	pool     *semaphore.Weighted

	mu   sync.Mutex
	jobs map[string]*Job
}

// NewPipelineService is the constructor for the PipelineService.
func NewPipelineService(
	cfg *config.Config,
	pipeline *workflow.InsightWorkflow,
	store *chunkstore.Store,
	resultStore *results.Store) *PipelineService {
	return &PipelineService{
		cfg:      cfg,
		pipeline: pipeline,
		store:    store,
		results:  resultStore,
		pool:     semaphore.NewWeighted(int64(cfg.Application.ThreadPoolSize)),
		jobs:     make(map[string]*Job),
	}
}

// EnrichOption is the processing option that enables the enrichment stage.
// Unrecognized options are accepted and ignored.
const EnrichOption = "ai_insights"

// Start launches a background pipeline run for an assembled upload and
// returns its handle immediately. Starting an upload whose job is still
// running returns the running job, so repeated requests are idempotent.
// Start fails when the upload is unknown or not yet assembled, and when the
// requested sampling interval is out of bounds; nothing is launched in those
// cases.
func (s *PipelineService) Start(uploadID string, intervalSeconds float64, options []string) (*Job, error) {
	video, err := s.store.AssembledVideo(uploadID)
	if err != nil {
		return nil, err
	}
	if intervalSeconds == 0 {
		intervalSeconds = s.cfg.Sampling.DefaultIntervalSeconds
	}
	if intervalSeconds < s.cfg.Sampling.MinIntervalSeconds || intervalSeconds > s.cfg.Sampling.MaxIntervalSeconds {
		return nil, fmt.Errorf("%w: sampling interval %.2fs outside [%.2f, %.2f]",
			model.ErrInvalidConfiguration, intervalSeconds,
			s.cfg.Sampling.MinIntervalSeconds, s.cfg.Sampling.MaxIntervalSeconds)
	}

	s.mu.Lock()
	if existing, ok := s.jobs[uploadID]; ok && existing.running() {
		s.mu.Unlock()
		return existing, nil
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	job := &Job{
		uploadID: uploadID,
		video:    video,
		cancel:   cancel,
		done:     make(chan struct{}),
		stage:    model.JobStagePending,
	}
	s.jobs[uploadID] = job
	s.mu.Unlock()

	enrich := false
	for _, option := range options {
		if option == EnrichOption {
			enrich = true
		}
	}

	go s.run(jobCtx, job, intervalSeconds, enrich)
	return job, nil
}

// run executes one pipeline job to completion: it waits for a pool slot,
// drives the chain, and records the terminal state. A failed or canceled run
// persists an error document so the outcome survives a restart.
func (s *PipelineService) run(ctx context.Context, job *Job, intervalSeconds float64, enrich bool) {
	defer job.cancel()

	if err := s.pool.Acquire(ctx, 1); err != nil {
		s.terminate(job, err)
		return
	}
	defer s.pool.Release(1)

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, job.uploadID)
	chainCtx.Add(commands.GetSamplingIntervalParamName(), intervalSeconds)
	chainCtx.Add(commands.GetStageObserverParamName(), commands.StageObserver(job))
	chainCtx.Add(commands.GetEnrichEnabledParamName(), enrich)
	defer chainCtx.Close()

	slog.Info("pipeline started", "upload_id", job.uploadID,
		"interval", intervalSeconds, "enrich", enrich)
	s.pipeline.Execute(chainCtx)

	if !chainCtx.HasErrors() {
		slog.Info("pipeline finished", "upload_id", job.uploadID)
		job.finish(model.JobStageDone, nil)
		return
	}
	s.terminate(job, collectErrors(chainCtx.GetErrors()))
}

// terminate finalizes a failed or canceled job and persists the error
// document under the upload's result path.
func (s *PipelineService) terminate(job *Job, err error) {
	stage := model.JobStageFailed
	if errors.Is(err, context.Canceled) {
		stage = model.JobStageCanceled
		err = errors.New("processing canceled")
	}
	slog.Error("pipeline terminated", "upload_id", job.uploadID, "stage", stage, "error", err)

	doc := &model.ResultDocument{
		UploadID:  job.uploadID,
		VideoPath: job.video.Path,
		Status:    model.ResultStatusFailed,
		Error:     err.Error(),
		Entries:   []*model.EnrichedEntry{},
	}
	if _, werr := s.results.Write(doc); werr != nil {
		slog.Error("failed to persist error document", "upload_id", job.uploadID, "error", werr)
	}

	job.finish(stage, err)
}

// collectErrors folds the chain's per-command error map into one error.
func collectErrors(errs map[string]error) error {
	parts := make([]string, 0, len(errs))
	for name, err := range errs {
		if errors.Is(err, context.Canceled) {
			return context.Canceled
		}
		parts = append(parts, fmt.Sprintf("%s: %v", name, err))
	}
	return errors.New(strings.Join(parts, "; "))
}

// Status returns the current snapshot of an upload's job, or
// model.ErrUnknownUpload when processing was never requested for the id.
func (s *PipelineService) Status(uploadID string) (*JobStatus, error) {
	s.mu.Lock()
	job, ok := s.jobs[uploadID]
	s.mu.Unlock()
	if !ok {
		return nil, model.ErrUnknownUpload
	}

	status := &JobStatus{UploadID: uploadID, Stage: job.Stage()}
	if err := job.Err(); err != nil {
		status.Error = err.Error()
	}
	return status, nil
}

// Cancel requests cancellation of an upload's running job. Canceling a job
// that already terminated is a no-op.
func (s *PipelineService) Cancel(uploadID string) error {
	s.mu.Lock()
	job, ok := s.jobs[uploadID]
	s.mu.Unlock()
	if !ok {
		return model.ErrUnknownUpload
	}
	job.Cancel()
	return nil
}

// Results returns the persisted result document for an upload.
func (s *PipelineService) Results(uploadID string) (*model.ResultDocument, error) {
	video, err := s.store.AssembledVideo(uploadID)
	if err != nil {
		return nil, err
	}
	return s.results.Read(video.Path)
}

// Shutdown cancels every running job and waits for them to drain.
func (s *PipelineService) Shutdown() {
	s.mu.Lock()
	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	s.mu.Unlock()

	for _, job := range jobs {
		job.Cancel()
	}
	for _, job := range jobs {
		<-job.Done()
	}
}
