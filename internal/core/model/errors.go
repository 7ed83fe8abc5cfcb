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

package model

import "errors"

// Error taxonomy for the pipeline. Failures at frame or segment granularity
// are isolated by the stage that observes them; only session-level fatal
// conditions propagate far enough to mark a whole upload failed.
var (
	// ErrStorage marks a chunk write or read failure. The caller may retry
	// the same chunk; the session stays in StatusReceiving.
	ErrStorage = errors.New("storage error")

	// ErrInvalidConfiguration marks a sampling interval or token budget out
	// of bounds, rejected before any processing starts.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrExtraction marks a per-frame OCR failure. It is swallowed by the
	// text extractor, which yields an empty text unit instead.
	ErrExtraction = errors.New("extraction error")

	// ErrEnrichmentTransient marks a network, timeout, or parse failure that
	// is retried up to the configured attempt limit.
	ErrEnrichmentTransient = errors.New("transient enrichment error")

	// ErrEnrichmentPermanent marks exhausted retries or a malformed response;
	// the sentinel insight is substituted and entry processing continues.
	ErrEnrichmentPermanent = errors.New("permanent enrichment error")

	// ErrPipelineFatal marks a missing assembled video or corrupt input. It
	// aborts only the affected upload's pipeline, never the worker pool.
	ErrPipelineFatal = errors.New("pipeline fatal error")

	// ErrUnknownUpload is returned synchronously when a caller references an
	// upload id the store has never seen.
	ErrUnknownUpload = errors.New("unknown upload id")
)
