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

// Package model defines the core data structures for the video insights
// pipeline: the upload session tracked while chunks arrive, the intermediate
// frame and text representations that flow between stages, and the enriched
// result document that is persisted at the end of a run.
package model

// SessionStatus tracks an upload session through its lifecycle. A session is
// created on the first chunk for an unseen id and stays Receiving until every
// expected sequence number has arrived; gaps block completion but never fail
// the session.
type SessionStatus string

const (
	StatusReceiving  SessionStatus = "receiving"
	StatusComplete   SessionStatus = "complete"
	StatusAssembling SessionStatus = "assembling"
	StatusAssembled  SessionStatus = "assembled"
	StatusFailed     SessionStatus = "failed"
)

// UploadSession is the bookkeeping record for one chunked upload. Access is
// serialized by the chunk store; the struct itself carries no locking.
type UploadSession struct {
	ID            string           // Opaque upload identifier, caller-supplied or generated.
	TotalExpected int              // Number of chunks the caller declared for this upload.
	Received      map[int]struct{} // Set of sequence numbers written so far.
	Status        SessionStatus
	VideoPath     string // Path of the assembled video, set once Status is StatusAssembled.
}

// AssembledVideo identifies a fully reassembled upload. It is created once
// per completed session and read-only afterward.
type AssembledVideo struct {
	UploadID string `json:"upload_id"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mime_type"`
}

// FrameSample is one time-sampled frame decoded from an assembled video.
// Frame indexes are strictly increasing and unique per upload, and timestamps
// are monotonic in index order.
type FrameSample struct {
	UploadID         string  `json:"upload_id"`
	FrameIndex       int     `json:"frame_index"`
	TimestampSeconds float64 `json:"timestamp_seconds"`
	ImagePath        string  `json:"image_path"`
}

// TextUnit is the raw text derived from one frame sample. A frame whose
// extraction failed yields a unit with empty text rather than an error.
type TextUnit struct {
	FrameIndex  int    `json:"frame_index"`
	FramePath   string `json:"frame_path"`
	Text        string `json:"text"`
	TokenCount  int    `json:"token_count"`
}

// Insight is the structured result returned by the enrichment backend for a
// single text segment.
type Insight struct {
	Sentiment  string   `json:"sentiment"`
	Keywords   []string `json:"keywords"`
	Summary    string   `json:"summary"`
	Complexity string   `json:"complexity"`
}

// EnrichedEntry is the final per-text-unit record: the original text, its
// source frame, and one Insight per segment in segment order. The length of
// Insights always equals the number of segments produced for the entry.
type EnrichedEntry struct {
	OriginalText string     `json:"original_text"`
	FramePath    string     `json:"frame_path"`
	TotalTokens  int        `json:"total_tokens"`
	Insights     []*Insight `json:"insights"`
}

// JobStage tracks a processing job through the pipeline. Receiving and
// assembly belong to the upload session; a job starts at Pending once
// processing is requested.
type JobStage string

const (
	JobStagePending       JobStage = "pending"
	JobStageExtracting    JobStage = "extracting"
	JobStageDeduplicating JobStage = "deduplicating"
	JobStageEnriching     JobStage = "enriching"
	JobStageDone          JobStage = "done"
	JobStageFailed        JobStage = "failed"
	JobStageCanceled      JobStage = "canceled"
)

// Result status values for a persisted document.
const (
	ResultStatusDone   = "done"
	ResultStatusFailed = "failed"
)

// ResultDocument is the JSON document persisted once per upload. A failed run
// persists the same shape with ResultStatusFailed and an error string instead
// of entries.
type ResultDocument struct {
	UploadID  string           `json:"upload_id"`
	VideoPath string           `json:"video_path"`
	Status    string           `json:"status"`
	Error     string           `json:"error,omitempty"`
	Entries   []*EnrichedEntry `json:"entries"`
}

// SentinelInsight returns the fixed fallback substituted when enrichment for
// a segment permanently fails. It must never abort the surrounding batch.
func SentinelInsight() *Insight {
	return &Insight{
		Sentiment:  "Unknown",
		Keywords:   []string{},
		Summary:    "Error processing chunk",
		Complexity: "N/A",
	}
}
